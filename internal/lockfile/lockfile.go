// Package lockfile claims a physical capability across processes with one
// pid file per capability.
package lockfile

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"codeberg.org/mutker/periphcheck/internal/errors"
)

const prefix = "periphcheck-"

// Lock is a held claim.
type Lock struct {
	id   string
	path string
}

// Path returns the pid file used for id under dir. An empty dir means the
// system temp directory.
func Path(dir, id string) string {
	if dir == "" {
		dir = os.TempDir()
	}

	return filepath.Join(dir, prefix+sanitize(id)+".pid")
}

// Claim takes the claim on id. It fails with ErrResourceBusy while a live
// process holds it. A pid file left behind by a dead process is replaced.
func Claim(dir, id string) (*Lock, error) {
	errFactory := errors.New()
	path := Path(dir, id)

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if err == nil {
			_, werr := f.WriteString(strconv.Itoa(os.Getpid()))
			cerr := f.Close()
			if werr != nil || cerr != nil {
				_ = os.Remove(path)
				return nil, errFactory.Wrap(errors.ErrInternal, errors.Join(werr, cerr))
			}
			return &Lock{id: id, path: path}, nil
		}

		if !os.IsExist(err) {
			return nil, errFactory.Wrap(errors.ErrInternal, err)
		}

		if owner, alive := holder(path); alive {
			return nil, errFactory.WithData(errors.ErrResourceBusy, struct {
				Device string
				PID    int
			}{
				Device: id,
				PID:    owner,
			})
		}

		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, errFactory.Wrap(errors.ErrInternal, err)
		}
	}

	return nil, errFactory.WithData(errors.ErrResourceBusy, id)
}

// Release removes the pid file. It is nil-safe and idempotent.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}

	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return errors.New().Wrap(errors.ErrInternal, err)
	}

	return nil
}

func (l *Lock) ID() string {
	return l.id
}

// holder reports the pid recorded in path and whether that process is
// still running. Unreadable files count as stale.
func holder(path string) (int, bool) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(bytes)))
	if err != nil || pid <= 0 {
		return 0, false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return pid, false
	}

	return pid, process.Signal(syscall.Signal(0)) == nil
}

func sanitize(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, id)
}
