package config

import "codeberg.org/mutker/periphcheck/internal/errors"

const (
	ErrInvalidConfig   = errors.ErrInvalidConfig
	ErrReadConfig      = errors.ErrReadConfig
	ErrBindFlags       = errors.ErrBindFlags
	ErrInvalidInterval = errors.ErrInvalidInterval
	ErrInvalidDuration = errors.ErrInvalidDuration
)
