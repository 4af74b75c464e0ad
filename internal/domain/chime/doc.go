// Package chime contains the core domain types of the hourly chime:
// the daily Window during which chiming is allowed, the chime Style,
// and the Clip sequences handed to the audio layer.
package chime
