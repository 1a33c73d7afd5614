package sampling

import "codeberg.org/mutker/periphcheck/internal/errors"

const (
	ErrInvalidInterval = errors.ErrInvalidInterval
	ErrSubscribeFailed = errors.ErrorCode("sampling_subscribe_failed")
	ErrNoClock         = errors.ErrorCode("sampling_no_clock")
	ErrClockClosed     = errors.ErrorCode("sampling_clock_closed")
)
