package diagnostic

import "codeberg.org/mutker/periphcheck/internal/errors"

const (
	ErrAlreadyRunning = errors.ErrAlreadyRunning
	ErrNotRunning     = errors.ErrNotRunning
	ErrDeviceLost     = errors.ErrDeviceLost

	ErrInvalidSpec = errors.ErrorCode("diagnostic_invalid_spec")
	ErrOutOfOrder  = errors.ErrorCode("diagnostic_out_of_order")
)
