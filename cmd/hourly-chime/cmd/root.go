package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/hourly-chime/internal/config"
	"github.com/oshokin/hourly-chime/internal/service/chimer"
	"github.com/oshokin/hourly-chime/internal/version"
)

var (
	// options collects the flags shared by every command.
	options chimer.Options

	// rootCmd represents the base command running the chime scheduler.
	rootCmd = &cobra.Command{
		Use:   "hourly-chime",
		Short: "Announce every hour with a chime.",
		Long: `Runs in the background and plays a chime at the top of every hour
inside the configured window (07:00-22:00 by default), followed by a spoken hour
announcement when one is available.

Only one instance runs per user session: a second start exits silently.
The running instance listens on a loopback control channel; the test-play, style,
autostart and exit subcommands talk to it when it runs and act on their own otherwise.
Settings live in a YAML file next to the executable and are re-read while running.

On the first start the new settings file records the current autostart
registration; afterwards the registration follows the AutoStart setting.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := notifyContext()
			defer stop()

			err := chimer.Run(ctx, &options)
			if errors.Is(err, chimer.ErrAlreadyRunning) {
				return nil
			}

			return err
		},
	}
)

// Execute runs the hourly-chime CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// notifyContext is canceled on SIGINT and SIGTERM.
func notifyContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVarP(&options.EnvFile, "env", "e", "", "path to dotenv file (default .env next to the executable)")
	flags.StringVarP(&options.SettingsFile, "settings", "s", "",
		"path to settings file (default "+config.DefaultSettingsFilename+" next to the executable)")
	flags.StringVarP(&options.ResourceDir, "resources", "r", "", "directory containing src-sound/")
	flags.StringVarP(&options.LogLevel, "log-level", "l", "", "log level: debug, info, warn or error")

	rootCmd.Flags().BoolVarP(&options.Console, "console", "i", false, "open an interactive control prompt")

	rootCmd.AddCommand(testPlayCmd, styleCmd, autostartCmd, exitCmd)
}
