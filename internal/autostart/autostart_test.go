package autostart

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestParseAction accepts the command line words and rejects the rest.
func TestParseAction(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]Action{
		"":       ActionShow,
		" ON ":   ActionOn,
		"off":    ActionOff,
		"Toggle": ActionToggle,
	} {
		action, err := ParseAction(input)
		require.NoError(t, err, input)
		require.Equal(t, want, action, input)
	}

	_, err := ParseAction("sometimes")
	require.ErrorIs(t, err, ErrUnknownAction)
}

// TestActionTarget checks the requested registration for both current states.
func TestActionTarget(t *testing.T) {
	t.Parallel()

	for _, current := range []bool{false, true} {
		require.Equal(t, current, ActionShow.Target(current))
		require.True(t, ActionOn.Target(current))
		require.False(t, ActionOff.Target(current))
		require.Equal(t, !current, ActionToggle.Target(current))
	}
}
