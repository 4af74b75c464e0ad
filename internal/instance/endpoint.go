package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// endpointPermissions keeps the control address private to the user.
const endpointPermissions = 0o600

// ErrNoEndpoint is returned when the lock holder has not published a control address.
var ErrNoEndpoint = errors.New("no control endpoint published")

// WithFs stores the endpoint file on fs instead of the OS filesystem.
// The lock itself always uses the OS.
func WithFs(fs afero.Fs) Option {
	return func(g *Guard) {
		if fs != nil {
			g.fs = fs
		}
	}
}

// Publish records the control address of the lock holder next to the lock.
func (g *Guard) Publish(address string) error {
	if err := g.fs.MkdirAll(g.dir, 0o755); err != nil {
		return fmt.Errorf("create endpoint directory: %w", err)
	}

	if err := afero.WriteFile(g.fs, g.endpointPath(), []byte(address+"\n"), endpointPermissions); err != nil {
		return fmt.Errorf("write endpoint: %w", err)
	}

	return nil
}

// Unpublish removes the control address. A missing file is not an error.
func (g *Guard) Unpublish() error {
	if err := g.fs.Remove(g.endpointPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove endpoint: %w", err)
	}

	return nil
}

// Endpoint returns the control address published by the lock holder.
func (g *Guard) Endpoint() (string, error) {
	contents, err := afero.ReadFile(g.fs, g.endpointPath())
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoEndpoint
	}

	if err != nil {
		return "", fmt.Errorf("read endpoint: %w", err)
	}

	address := strings.TrimSpace(string(contents))
	if address == "" {
		return "", ErrNoEndpoint
	}

	return address, nil
}

func (g *Guard) endpointPath() string {
	return filepath.Join(g.dir, g.name+".addr")
}
