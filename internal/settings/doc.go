// Package settings persists user preferences of the chime as a flat YAML
// mapping and exposes typed getters with caller-provided fallbacks.
//
// Keys are case-insensitive. Every SetValue writes the file immediately.
// The Store re-reads the file when its modification time changes, so a
// value written by another process reaches the running scheduler on its
// next tick.
package settings
