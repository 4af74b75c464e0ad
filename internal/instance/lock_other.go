//go:build !unix && !windows

package instance

import (
	"errors"
	"runtime"
)

// errUnsupportedOS is returned where no single-instance primitive is available.
var errUnsupportedOS = errors.New("single-instance lock is not supported on " + runtime.GOOS)

type osLock struct{}

func (*osLock) acquire(_, _ string) (bool, error) {
	return false, errUnsupportedOS
}
