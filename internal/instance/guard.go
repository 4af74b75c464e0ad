package instance

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mitchellh/go-ps"
	"github.com/spf13/afero"
)

// Guard is a process-wide single-instance lock identified by name.
type Guard struct {
	// name identifies the lock across processes.
	name string
	// dir holds the lock file on platforms that use one, and the endpoint file.
	dir string
	// fs stores the endpoint file.
	fs afero.Fs

	// mu serializes Acquire calls on this guard.
	mu sync.Mutex
	// held is true once this guard owns the lock.
	held bool
	// lock is the platform-specific OS resource.
	lock osLock
}

// Option configures a Guard.
type Option func(*Guard)

// WithDir places the lock and endpoint files in dir instead of the user cache
// directory. On Windows, where the lock is a named mutex, only the endpoint file moves.
func WithDir(dir string) Option {
	return func(g *Guard) {
		if dir != "" {
			g.dir = dir
		}
	}
}

// NewGuard creates a guard for the given name.
func NewGuard(name string, opts ...Option) *Guard {
	g := &Guard{
		name: sanitize(name),
		dir:  defaultDir(),
		fs:   afero.NewOsFs(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Acquire claims the lock. It returns false with a nil error when another
// live process already holds it, and an error when the OS refused the
// operation itself. Once acquired the lock stays held until the process exits.
func (g *Guard) Acquire() (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.held {
		return true, nil
	}

	ok, err := g.lock.acquire(g.name, g.dir)
	if err != nil {
		return false, err
	}

	g.held = ok

	return ok, nil
}

// Process describes another running copy of this executable.
type Process struct {
	// PID is the process identifier.
	PID int
	// Executable is the binary name as reported by the OS.
	Executable string
}

// Holders lists other processes running the same executable as this one.
// It is used to report who holds the lock; it is not part of the lock itself.
func Holders() ([]Process, error) {
	processList, err := ps.Processes()
	if err != nil {
		return nil, err
	}

	self := os.Getpid()

	var name string

	if current, err := ps.FindProcess(self); err == nil && current != nil {
		name = current.Executable()
	} else if exe, err := os.Executable(); err == nil {
		name = filepath.Base(exe)
	}

	var result []Process

	for _, process := range processList {
		if process.Pid() == self || process.Executable() != name {
			continue
		}

		result = append(result, Process{
			PID:        process.Pid(),
			Executable: process.Executable(),
		})
	}

	return result, nil
}

// defaultDir is the per-user directory for lock files.
func defaultDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "hourly-chime")
	}

	return os.TempDir()
}

// sanitize keeps the name usable both as a file name and as a mutex name.
func sanitize(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "HourlyChimeInstanceLock"
	}

	return strings.NewReplacer(`\`, "_", "/", "_", ":", "_").Replace(name)
}
