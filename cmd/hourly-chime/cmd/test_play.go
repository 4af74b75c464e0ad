package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/oshokin/hourly-chime/internal/service/chimer"
)

// testPlayCmd plays a chime once without touching the schedule.
var testPlayCmd = &cobra.Command{
	Use:   "test-play [hour]",
	Short: "Play the chime for the current or given hour.",
	Long: `Plays the chime sequence right away, regardless of the chime window.

The hour (0-23) selects the spoken announcement; it defaults to the current hour.
When the scheduler runs, it plays the chime itself, replacing whatever it is playing,
and its schedule is not affected. Otherwise the chime plays here and the command
waits until it finished.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		hour := -1

		if len(args) > 0 {
			parsed, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("parse hour %q: %w", args[0], err)
			}

			hour = parsed
		}

		ctx, stop := notifyContext()
		defer stop()

		return chimer.TestPlayOnce(ctx, &options, hour)
	},
}
