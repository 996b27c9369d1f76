package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrAlreadyRunning is returned when another instance holds the lock
var ErrAlreadyRunning = errors.New("another shelf instance is already running")

// InstanceLock guards the data directory against concurrent instances
type InstanceLock struct {
	lock *flock.Flock
}

// AcquireLock takes the lock at path without blocking
func AcquireLock(path string) (*InstanceLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	l := flock.New(path)
	ok, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}
	return &InstanceLock{lock: l}, nil
}

// Release unlocks. It is safe to call on a nil lock.
func (l *InstanceLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
