package batch

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"imgutil/internal/services"
)

// DestinationLock is held for the lifetime of a batch writing into one
// destination directory.
type DestinationLock struct {
	path string
	lock *flock.Flock
}

// LockDestination acquires a non-blocking lock keyed by the absolute
// destination path. Lock files live under lockDir.
func LockDestination(lockDir, destination string) (*DestinationLock, error) {
	abs, err := filepath.Abs(destination)
	if err != nil {
		return nil, fmt.Errorf("resolve destination: %w", err)
	}
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	sum := sha256.Sum256([]byte(filepath.Clean(abs)))
	lockPath := filepath.Join(lockDir, hex.EncodeToString(sum[:8])+".lock")

	fl := flock.New(lockPath)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "batch", "lock", fmt.Sprintf("another imgutil batch is writing to %s", abs), nil)
	}
	return &DestinationLock{path: lockPath, lock: fl}, nil
}

// Path returns the lock file path.
func (l *DestinationLock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release unlocks the destination. It is safe to call on a nil lock.
func (l *DestinationLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
