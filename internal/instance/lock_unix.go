//go:build unix

package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"
)

// osLock is an advisory flock held on an open lock file.
type osLock struct {
	// file stays open for the life of the process; closing it would release the lock.
	file *os.File
}

func (l *osLock) acquire(name, dir string) (bool, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return false, fmt.Errorf("create lock directory: %w", err)
	}

	path := filepath.Join(dir, name+".lock")

	file, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return false, fmt.Errorf("open lock file: %w", err)
	}

	err = unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		_ = file.Close()

		if errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EAGAIN) {
			return false, nil
		}

		return false, fmt.Errorf("lock %s: %w", path, err)
	}

	// The PID is informational only; the flock is the lock.
	if err = file.Truncate(0); err == nil {
		_, _ = file.WriteAt([]byte(strconv.Itoa(os.Getpid())), 0)
	}

	l.file = file

	return true, nil
}
