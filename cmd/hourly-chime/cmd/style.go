package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/hourly-chime/internal/service/chimer"
)

// styleCmd shows or changes the chime type.
var styleCmd = &cobra.Command{
	Use:       "style [westminster|normal]",
	Short:     "Show or set the chime type.",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"westminster", "normal"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var value string
		if len(args) > 0 {
			value = args[0]
		}

		ctx, stop := notifyContext()
		defer stop()

		style, err := chimer.ChimeStyle(ctx, &options, value)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Chime type: %s\n", style)

		return err
	},
}
