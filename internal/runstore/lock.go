package runstore

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"steeple/internal/config"
)

// ErrAlreadyRunning indicates another reconciliation process holds the lock.
var ErrAlreadyRunning = errors.New("another steeple run is already in progress")

// Lock serializes reconciliation runs against the shared run database.
type Lock struct {
	lock *flock.Flock
	path string
}

// NewLock creates the run lock inside the data directory.
func NewLock(cfg *config.Config) (*Lock, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	path := filepath.Join(cfg.Paths.DataDir, "steeple.lock")
	return &Lock{lock: flock.New(path), path: path}, nil
}

// Acquire takes the lock without blocking. It fails with ErrAlreadyRunning
// when another process holds it.
func (l *Lock) Acquire() error {
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (lock file %s)", ErrAlreadyRunning, l.path)
	}
	return nil
}

// Release drops the lock.
func (l *Lock) Release() error {
	return l.lock.Unlock()
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}
