//go:build unix

package lock

import (
	"fmt"
	"os"
	"syscall"
)

// LockStore attempts to acquire an exclusive, non-blocking advisory lock
// guarding the given data file.
//
// On Unix systems, this uses flock(2) to place an exclusive lock on a
// sidecar file named "<dataFilePath>.lock". If the lock cannot be acquired,
// the store is assumed to be in use by another logcask instance.
//
// The returned file handle must remain open for the duration of the lock.
func LockStore(dataFilePath string) (*os.File, error) {
	lockFilePath := dataFilePath + ".lock"

	f, err := os.OpenFile(lockFilePath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("unable to open lock file: %w", err)
	}

	err = syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("store already in use by another logcask instance")
	}

	return f, nil
}

// UnlockStore releases a store lock acquired via LockStore.
//
// On Unix systems, this releases the advisory flock and closes the file.
func UnlockStore(f *os.File) error {
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_UN); err != nil {
		f.Close()
		return fmt.Errorf("unable to release lock: %w", err)
	}
	return f.Close()
}
