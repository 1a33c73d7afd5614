package archive

import (
	"os"
	"path/filepath"
	"time"

	"codeberg.org/mutker/periphcheck/internal/errors"
)

const (
	defaultDirPerm      = 0o755
	defaultBatchSize    = 8
	defaultBatchTimeout = 5 * time.Second
	dbFileName          = "archive.db"
)

type Config struct {
	DBPath       string
	BackupDir    string
	BatchSize    int
	BatchTimeout time.Duration
	Enabled      bool
}

// DefaultConfig places the database under the user's state directory.
func DefaultConfig() Config {
	return Config{
		DBPath:       filepath.Join(stateDir(), dbFileName),
		BatchSize:    defaultBatchSize,
		BatchTimeout: defaultBatchTimeout,
		Enabled:      false,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if !c.Enabled {
		return nil
	}
	if c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}
	if c.BatchSize < 0 || c.BatchTimeout < 0 {
		return errFactory.WithData(ErrInvalidConfig, struct {
			BatchSize    int
			BatchTimeout time.Duration
		}{
			BatchSize:    c.BatchSize,
			BatchTimeout: c.BatchTimeout,
		})
	}
	return nil
}

func (c Config) backupDir() string {
	if c.BackupDir != "" {
		return c.BackupDir
	}
	return filepath.Join(filepath.Dir(c.DBPath), "backups")
}

func stateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "periphcheck")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "periphcheck")
	}
	return filepath.Join(os.TempDir(), "periphcheck")
}
