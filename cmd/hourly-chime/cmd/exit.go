package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/hourly-chime/internal/service/chimer"
)

// exitCmd stops the running scheduler.
var exitCmd = &cobra.Command{
	Use:   "exit",
	Short: "Stop the running instance.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := notifyContext()
		defer stop()

		stopped, err := chimer.Exit(ctx, &options)
		if err != nil {
			return err
		}

		message := "Not running"
		if stopped {
			message = "Stopped"
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), message)

		return err
	},
}
