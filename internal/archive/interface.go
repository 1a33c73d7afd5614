// Package archive persists finished run summaries in sqlite.
package archive

import (
	"context"

	"codeberg.org/mutker/periphcheck/internal/history"
)

// Archive is the store the CLI and observers talk to.
type Archive interface {
	Record(ctx context.Context, summary history.Summary) error
	// Recent returns up to limit summaries, newest first. A non-positive
	// limit returns everything.
	Recent(ctx context.Context, limit int) ([]history.Summary, error)
	Close() error
	Enabled() bool
}

// Repository is the storage backend behind an Archive.
type Repository interface {
	Record(summary history.Summary) error
	Recent(limit int) ([]history.Summary, error)
	Close() error
}
