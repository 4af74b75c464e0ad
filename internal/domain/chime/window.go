package chime

import (
	"errors"
	"fmt"
)

const (
	// MinHour is the first hour of a day.
	MinHour = 0
	// MaxHour is the last hour of a day.
	MaxHour = 23

	// DefaultStartHour is the first chiming hour when settings are missing.
	DefaultStartHour = 7
	// DefaultEndHour is the last chiming hour when settings are missing.
	DefaultEndHour = 22
)

var (
	// ErrHourOutOfRange is returned for hours outside [0, 23].
	ErrHourOutOfRange = errors.New("hour out of range")
	// ErrWindowInverted is returned when the start hour is after the end hour.
	ErrWindowInverted = errors.New("start hour is after end hour")
)

// Window is the inclusive range of hours during which chiming is permitted.
// Overnight windows (start after end) are not supported.
type Window struct {
	// StartHour is the first hour that chimes.
	StartHour int
	// EndHour is the last hour that chimes.
	EndHour int
}

// DefaultWindow returns the 7..22 window.
func DefaultWindow() Window {
	return Window{
		StartHour: DefaultStartHour,
		EndHour:   DefaultEndHour,
	}
}

// ValidateHour checks that hour is within a day.
func ValidateHour(hour int) error {
	if hour < MinHour || hour > MaxHour {
		return fmt.Errorf("%d: %w", hour, ErrHourOutOfRange)
	}

	return nil
}

// Validate checks both bounds and their order.
func (w Window) Validate() error {
	if err := ValidateHour(w.StartHour); err != nil {
		return fmt.Errorf("start hour: %w", err)
	}

	if err := ValidateHour(w.EndHour); err != nil {
		return fmt.Errorf("end hour: %w", err)
	}

	if w.StartHour > w.EndHour {
		return fmt.Errorf("%d > %d: %w", w.StartHour, w.EndHour, ErrWindowInverted)
	}

	return nil
}

// Contains reports whether hour falls inside the window, bounds included.
func (w Window) Contains(hour int) bool {
	return w.StartHour <= hour && hour <= w.EndHour
}

// String renders the window as "7-22".
func (w Window) String() string {
	return fmt.Sprintf("%d-%d", w.StartHour, w.EndHour)
}
