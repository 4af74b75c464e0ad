package settings

import (
	"strconv"

	"github.com/oshokin/hourly-chime/internal/domain/chime"
)

// Recognized keys.
const (
	KeyAutoStart = "AutoStart"
	KeyStartHour = "StartHour"
	KeyEndHour   = "EndHour"
	KeyChimeType = "ChimeType"
)

// Defaults returns the values written into a freshly created settings file.
func Defaults() map[string]string {
	return map[string]string{
		KeyAutoStart: "true",
		KeyStartHour: strconv.Itoa(chime.DefaultStartHour),
		KeyEndHour:   strconv.Itoa(chime.DefaultEndHour),
		KeyChimeType: chime.DefaultStyle.String(),
	}
}

// knownKeys fixes the order in which recognized keys are written.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownKeys = []string{KeyAutoStart, KeyStartHour, KeyEndHour, KeyChimeType}
