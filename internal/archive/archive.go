package archive

import (
	"context"

	"codeberg.org/mutker/periphcheck/internal/classify"
	"codeberg.org/mutker/periphcheck/internal/diagnostic"
	"codeberg.org/mutker/periphcheck/internal/errors"
	"codeberg.org/mutker/periphcheck/internal/history"
	"codeberg.org/mutker/periphcheck/internal/logger"
)

type service struct {
	repo Repository
	cfg  Config
}

type noopArchive struct{}

func NewService(cfg Config, log logger.Logger) (Archive, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		log.Debug().Msg("Archive disabled, using no-op archive")
		return noopArchive{}, nil
	}

	repo, err := NewRepository(cfg, log)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to create archive repository")
		return nil, err
	}

	log.Debug().
		Str("db_path", cfg.DBPath).
		Msg("Archive initialized")

	return &service{repo: repo, cfg: cfg}, nil
}

func (s *service) Record(ctx context.Context, summary history.Summary) error {
	errFactory := errors.New()

	if summary.Diagnostic == "" {
		return errFactory.New(ErrInvalidRecord)
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
	}

	if err := s.repo.Record(summary); err != nil {
		return errFactory.Wrap(ErrRecordFailed, err)
	}
	return nil
}

func (s *service) Recent(ctx context.Context, limit int) ([]history.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.New().Wrap(ErrOperationTimeout, err)
	}
	return s.repo.Recent(limit)
}

func (s *service) Close() error {
	if err := s.repo.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}
	return nil
}

func (*service) Enabled() bool { return true }

func (noopArchive) Record(context.Context, history.Summary) error { return nil }

func (noopArchive) Recent(context.Context, int) ([]history.Summary, error) { return nil, nil }

func (noopArchive) Close() error { return nil }

func (noopArchive) Enabled() bool { return false }

// Observer stores every recorded run an attached machine finishes.
type Observer struct {
	archive Archive
	log     logger.Logger
}

var _ diagnostic.Observer = (*Observer)(nil)

func NewObserver(a Archive, log logger.Logger) *Observer {
	return &Observer{archive: a, log: log}
}

func (*Observer) RunStarted(string, string) {}

func (*Observer) SampleRecorded(string, diagnostic.Sample, classify.Verdict) {}

func (o *Observer) RunFinished(name string, outcome diagnostic.Outcome) {
	if !outcome.Recorded {
		return
	}
	if err := o.archive.Record(context.Background(), outcome.Summary); err != nil {
		o.log.Warn().Err(err).Str("diagnostic", name).Msg("Failed to archive run summary")
	}
}

func (*Observer) RunFailed(string, error) {}
