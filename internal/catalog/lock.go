package catalog

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrLocked reports that another fileset process holds the catalog lock.
var ErrLocked = errors.New("catalog is in use by another fileset process")

// Lock is an exclusive advisory lock on <database>.lock. Commands that write
// to the catalog hold it for their whole run.
type Lock struct {
	path string
	lock *flock.Flock
}

// AcquireLock takes the lock for the database at dbPath without blocking.
func AcquireLock(dbPath string) (*Lock, error) {
	lockPath := dbPath + ".lock"
	l := &Lock{path: lockPath, lock: flock.New(lockPath)}
	ok, err := l.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire catalog lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock file %s)", ErrLocked, lockPath)
	}
	return l, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// Release drops the lock. Calling Release on a nil lock is a no-op.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
