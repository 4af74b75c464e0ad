package chime

// Status describes a running scheduler.
type Status struct {
	// Window is the effective chime window.
	Window Window
	// Style is the effective chime style.
	Style Style
	// AutoStart reports whether start at logon is registered.
	AutoStart bool
	// LastFiredHour is the hour of the last scheduled chime.
	LastFiredHour int
	// HasFired is false until the first scheduled chime.
	HasFired bool
}
