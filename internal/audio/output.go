package audio

import (
	"errors"

	"github.com/oshokin/hourly-chime/internal/domain/chime"
)

// Output is a single-voice audio device.
type Output interface {
	// Load opens and decodes the clip, replacing any previously loaded one.
	Load(clip chime.Clip) error
	// Play starts the loaded clip and returns immediately.
	Play() error
	// Busy reports whether the last started clip is still audible.
	Busy() bool
	// Stop silences the output. Safe to call when nothing plays.
	Stop()
}

var (
	// ErrNothingLoaded is returned by Play when Load has not succeeded.
	ErrNothingLoaded = errors.New("no clip loaded")
	// ErrUnsupportedFormat is returned for files that are neither WAV nor MP3.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)
