package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/hourly-chime/internal/autostart"
	"github.com/oshokin/hourly-chime/internal/service/chimer"
)

// autostartCmd shows or changes start at logon.
var autostartCmd = &cobra.Command{
	Use:   "autostart [on|off|toggle]",
	Short: "Show or change start at logon.",
	Long: `Registers or unregisters the executable to start at logon and records the
choice in the AutoStart setting. Without an argument the current registration is shown.
A running instance applies the change itself.`,
	Args: cobra.MaximumNArgs(1),
	ValidArgs: []string{
		string(autostart.ActionOn),
		string(autostart.ActionOff),
		string(autostart.ActionToggle),
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		action := autostart.ActionShow

		if len(args) > 0 {
			parsed, err := autostart.ParseAction(args[0])
			if err != nil {
				return err
			}

			action = parsed
		}

		ctx, stop := notifyContext()
		defer stop()

		enabled, err := chimer.Autostart(ctx, &options, action)
		if err != nil {
			return err
		}

		state := "off"
		if enabled {
			state = "on"
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Autostart: %s\n", state)

		return err
	},
}
