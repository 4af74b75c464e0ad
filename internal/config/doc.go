// Package config loads the runtime options of the chime process.
//
// Options come from HOURLY_CHIME_* environment variables, optionally seeded
// from a .env file next to the executable, and are validated before use.
// User preferences (window, style, autostart) live in the settings package.
package config
