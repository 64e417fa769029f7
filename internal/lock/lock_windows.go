//go:build windows

package lock

import (
	"fmt"
	"os"
)

// LockStore attempts to acquire an exclusive lock guarding the given data
// file using a sidecar lock file.
//
// On Windows, this is implemented by atomically creating a file named
// "<dataFilePath>.lock". If the file already exists, the store is assumed
// to be in use by another logcask instance.
//
// The returned file handle must be kept open for the duration of the lock.
func LockStore(dataFilePath string) (*os.File, error) {
	lockFilePath := dataFilePath + ".lock"

	f, err := os.OpenFile(lockFilePath, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("store already in use by another logcask instance")
	}

	return f, nil
}

// UnlockStore releases a store lock acquired via LockStore.
//
// On Windows, this removes the lock file from disk. UnlockStore should be
// called exactly once for each successful LockStore call.
func UnlockStore(f *os.File) error {
	name := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(name)
		return err
	}
	return os.Remove(name)
}
