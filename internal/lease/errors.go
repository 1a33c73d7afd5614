package lease

import "codeberg.org/mutker/periphcheck/internal/errors"

const (
	ErrResourceUnavailable = errors.ErrResourceUnavailable
	ErrResourceBusy        = errors.ErrResourceBusy
	ErrAcquisitionRace     = errors.ErrAcquisitionRace
	ErrReleaseFailed       = errors.ErrReleaseFailed

	ErrNoProvider = errors.ErrorCode("lease_no_provider")
	ErrNoGrant    = errors.ErrorCode("lease_no_grant")
)
