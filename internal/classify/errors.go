package classify

import "codeberg.org/mutker/periphcheck/internal/errors"

const (
	ErrUnsortedTable = errors.ErrorCode("classify_unsorted_table")
)
