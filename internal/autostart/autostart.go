// Package autostart registers the chime to start at user logon.
//
// On Windows the executable is written to the HKCU Run key; elsewhere an XDG
// autostart desktop entry is used. Callers log failures and carry on: a
// missing autostart never stops the scheduler.
package autostart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EntryName is the registry value and desktop entry name.
const EntryName = "HourlyChime"

// Action is a requested change of the registration.
type Action string

const (
	// ActionShow leaves the registration alone.
	ActionShow Action = ""
	// ActionOn registers the executable.
	ActionOn Action = "on"
	// ActionOff unregisters the executable.
	ActionOff Action = "off"
	// ActionToggle flips the registration.
	ActionToggle Action = "toggle"
)

// ErrUnknownAction is returned for unsupported autostart actions.
var ErrUnknownAction = errors.New("unknown autostart action")

// ParseAction converts a command line word, ignoring case and surrounding spaces.
func ParseAction(s string) (Action, error) {
	action := Action(strings.ToLower(strings.TrimSpace(s)))

	switch action {
	case ActionShow, ActionOn, ActionOff, ActionToggle:
		return action, nil
	default:
		return ActionShow, fmt.Errorf("%q: %w", s, ErrUnknownAction)
	}
}

// Target returns the registration the action asks for, given the current one.
func (a Action) Target(current bool) bool {
	switch a {
	case ActionOn:
		return true
	case ActionOff:
		return false
	case ActionToggle:
		return !current
	default:
		return current
	}
}

// Toggle turns start-at-logon on and off.
type Toggle interface {
	// IsEnabled reports whether the current executable is registered.
	IsEnabled() bool
	// SetEnabled registers or unregisters the current executable.
	SetEnabled(enabled bool) error
}

// Command returns the command line that starts the current executable.
func Command() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}

	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	return quote(exe), nil
}

// quote wraps paths with spaces in double quotes.
func quote(path string) string {
	if strings.ContainsAny(path, " \t") {
		return `"` + path + `"`
	}

	return path
}
