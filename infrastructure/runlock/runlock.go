package runlock

import (
	"errors"
	"os"
	"time"
)

// ErrLocked is returned when another run holds the lock
var ErrLocked = errors.New("another run is in progress")

// FileLock is an advisory, cross-process lock that keeps two runs from
// racing on the temporary file and the queue.
type FileLock struct {
	path string
	file *os.File
}

// NewFileLock creates a lock on path. The lock is not acquired until Lock is called.
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path}
}

// Lock acquires the lock, polling until timeout. A zero timeout tries once.
func (l *FileLock) Lock(timeout time.Duration) error {
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return err
	}

	deadline := time.Now().Add(timeout)
	for {
		if err = lockFile(file); err == nil {
			l.file = file
			return nil
		}
		if !time.Now().Before(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	file.Close()
	return ErrLocked
}

// Unlock releases the lock. The lock file stays in place: removing it would
// let a waiting run lock the old inode while a new run locks a fresh file.
func (l *FileLock) Unlock() error {
	if l.file == nil {
		return nil
	}
	err := unlockFile(l.file)
	l.file.Close()
	l.file = nil
	return err
}
