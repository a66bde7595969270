package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another batch worker holds the database lock.
var ErrLocked = errors.New("another batch run holds the lock")

// Lock guarantees a single batch worker per database.
type Lock struct {
	path string
	fl   *flock.Flock
}

// LockPath returns the lock file used for the database at dbPath.
func LockPath(dbPath string) string {
	return dbPath + ".lock"
}

// AcquireLock takes the lock at path without blocking, creating its
// directory if needed.
func AcquireLock(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return &Lock{path: path, fl: fl}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.path }

// Release unlocks the lock file.
func (l *Lock) Release() error {
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
