package catalog

import "codeberg.org/mutker/periphcheck/internal/errors"

const ErrUnknownDiagnostic = errors.ErrorCode("catalog_unknown_diagnostic")
