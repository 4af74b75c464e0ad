//go:build !windows

package autostart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// desktopFileName is the autostart entry file.
const desktopFileName = "hourly-chime.desktop"

// DesktopEntryToggle manages an XDG autostart desktop entry.
type DesktopEntryToggle struct {
	// fs is the filesystem holding the autostart directory.
	fs afero.Fs
	// dir is the autostart directory.
	dir string
	// command is the Exec line value.
	command string
}

// New returns the platform toggle for command.
//
//nolint:ireturn // Platform selection happens behind the interface.
func New(command string) Toggle {
	return NewDesktopEntryToggle(afero.NewOsFs(), autostartDir(), command)
}

// NewDesktopEntryToggle creates a toggle writing into dir on fs.
func NewDesktopEntryToggle(fs afero.Fs, dir, command string) *DesktopEntryToggle {
	return &DesktopEntryToggle{
		fs:      fs,
		dir:     dir,
		command: command,
	}
}

// IsEnabled reports whether the entry exists, runs this command and is not hidden.
func (d *DesktopEntryToggle) IsEnabled() bool {
	contents, err := afero.ReadFile(d.fs, d.path())
	if err != nil {
		return false
	}

	var execMatches, hidden bool

	for line := range strings.Lines(string(contents)) {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}

		switch key {
		case "Exec":
			execMatches = value == d.command
		case "Hidden":
			hidden = hidden || strings.EqualFold(value, "true")
		case "X-GNOME-Autostart-enabled":
			hidden = hidden || strings.EqualFold(value, "false")
		}
	}

	return execMatches && !hidden
}

// SetEnabled writes or removes the desktop entry.
func (d *DesktopEntryToggle) SetEnabled(enabled bool) error {
	if !enabled {
		if err := d.fs.Remove(d.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove autostart entry: %w", err)
		}

		return nil
	}

	if err := d.fs.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("create autostart directory: %w", err)
	}

	entry := "[Desktop Entry]\n" +
		"Type=Application\n" +
		"Name=" + EntryName + "\n" +
		"Comment=Announces the hour with a chime\n" +
		"Exec=" + d.command + "\n" +
		"Terminal=false\n" +
		"X-GNOME-Autostart-enabled=true\n"

	if err := afero.WriteFile(d.fs, d.path(), []byte(entry), 0o644); err != nil {
		return fmt.Errorf("write autostart entry: %w", err)
	}

	return nil
}

func (d *DesktopEntryToggle) path() string {
	return filepath.Join(d.dir, desktopFileName)
}

// autostartDir follows the XDG base directory rules.
func autostartDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "autostart")
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "autostart")
	}

	return filepath.Join(os.TempDir(), "autostart")
}
