package host

import "codeberg.org/mutker/periphcheck/internal/errors"

const (
	ErrForeignGrant = errors.ErrorCode("host_foreign_grant")
	ErrRawMode      = errors.ErrorCode("host_raw_mode_failed")
	ErrInputClosed  = errors.ErrorCode("host_input_closed")
)
