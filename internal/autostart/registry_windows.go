//go:build windows

package autostart

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sys/windows/registry"
)

// runKeyPath is the per-user autostart key.
const runKeyPath = `Software\Microsoft\Windows\CurrentVersion\Run`

// RegistryToggle stores the command under HKCU\...\Run.
type RegistryToggle struct {
	// name is the registry value name.
	name string
	// command is the value data.
	command string
}

// New returns the platform toggle for command.
//
//nolint:ireturn // Platform selection happens behind the interface.
func New(command string) Toggle {
	return &RegistryToggle{
		name:    EntryName,
		command: command,
	}
}

// IsEnabled reports whether the Run value points at this executable.
func (r *RegistryToggle) IsEnabled() bool {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.QUERY_VALUE)
	if err != nil {
		return false
	}
	defer key.Close()

	value, _, err := key.GetStringValue(r.name)
	if err != nil {
		return false
	}

	return strings.Contains(strings.ToLower(value), strings.ToLower(strings.Trim(r.command, `"`)))
}

// SetEnabled writes or deletes the Run value.
func (r *RegistryToggle) SetEnabled(enabled bool) error {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open run key: %w", err)
	}
	defer key.Close()

	if enabled {
		if err = key.SetStringValue(r.name, r.command); err != nil {
			return fmt.Errorf("set run value: %w", err)
		}

		return nil
	}

	if err = key.DeleteValue(r.name); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("delete run value: %w", err)
	}

	return nil
}
