package chime

import "strings"

// Style selects the primary chime clip.
type Style int

const (
	// Westminster is the Westminster quarters melody.
	Westminster Style = iota
	// Normal is a plain bell strike.
	Normal
)

// DefaultStyle is used when no valid style is configured.
const DefaultStyle = Westminster

// String returns the persisted name of the style.
func (s Style) String() string {
	switch s {
	case Normal:
		return "normal"
	default:
		return "westminster"
	}
}

// ParseStyle converts a persisted style name, ignoring case and surrounding spaces.
func ParseStyle(s string) (Style, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "westminster":
		return Westminster, true
	case "normal":
		return Normal, true
	default:
		return DefaultStyle, false
	}
}

// Styles lists every known style in menu order.
func Styles() []Style {
	return []Style{Westminster, Normal}
}
