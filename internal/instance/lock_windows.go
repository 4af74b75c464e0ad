//go:build windows

package instance

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
)

// osLock is a named mutex in the session namespace.
type osLock struct {
	// handle stays open for the life of the process; the OS closes it on exit.
	handle windows.Handle
}

func (l *osLock) acquire(name, _ string) (bool, error) {
	mutexName, err := windows.UTF16PtrFromString(`Local\` + name)
	if err != nil {
		return false, fmt.Errorf("mutex name: %w", err)
	}

	handle, err := windows.CreateMutex(nil, false, mutexName)
	if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
		if handle != 0 {
			_ = windows.CloseHandle(handle)
		}

		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("create mutex %s: %w", name, err)
	}

	l.handle = handle

	return true, nil
}
