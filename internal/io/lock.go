package ioutils

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned by LockDir when another process holds the lock.
var ErrLocked = errors.New("directory is locked by another run")

// DirLock is an advisory lock on a directory.
//
// The lock file lives in the OS temp directory, named after a hash of the
// directory's absolute path, so the locked directory itself stays untouched.
type DirLock struct {
	dir  string
	path string
	lock *flock.Flock
}

// LockDir acquires the lock for dir without blocking.
func LockDir(dir string) (*DirLock, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	lockPath := lockFilePath(abs)
	l := &DirLock{dir: abs, path: lockPath, lock: flock.New(lockPath)}

	ok, err := l.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", lockPath, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", abs, ErrLocked)
	}
	return l, nil
}

// Path returns the lock file location.
func (l *DirLock) Path() string {
	return l.path
}

// Unlock releases the lock and removes the lock file.
func (l *DirLock) Unlock() error {
	if err := l.lock.Unlock(); err != nil {
		return err
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func lockFilePath(absDir string) string {
	sum := sha1.Sum([]byte(absDir))
	return filepath.Join(os.TempDir(), "multialbum-"+hex.EncodeToString(sum[:8])+".lock")
}
