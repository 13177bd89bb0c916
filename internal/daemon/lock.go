package daemon

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName starts with a dot so the lock is never mirrored.
const LockFileName = ".rubox.lock"

var ErrAlreadyRunning = errors.New("another rubox daemon is already syncing this directory")

func LockPath(localRoot string) string {
	return filepath.Join(localRoot, LockFileName)
}

// AcquireLock takes the per-root instance lock without blocking.
func AcquireLock(localRoot string) (*flock.Flock, error) {
	lock := flock.New(LockPath(localRoot))

	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", lock.Path(), err)
	}
	if !locked {
		return nil, ErrAlreadyRunning
	}

	return lock, nil
}
