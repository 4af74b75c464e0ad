package chimer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/hourly-chime/internal/audio"
	"github.com/oshokin/hourly-chime/internal/autostart"
	"github.com/oshokin/hourly-chime/internal/config"
	"github.com/oshokin/hourly-chime/internal/instance"
	"github.com/oshokin/hourly-chime/internal/logger"
	"github.com/oshokin/hourly-chime/internal/resources"
	"github.com/oshokin/hourly-chime/internal/settings"
)

// Options controls how the chime is started.
type Options struct {
	// EnvFile is the optional dotenv file. Empty means .env next to the executable.
	EnvFile string
	// SettingsFile overrides the settings file location.
	SettingsFile string
	// ResourceDir overrides the directory containing src-sound/.
	ResourceDir string
	// LogLevel overrides the configured log level.
	LogLevel string
	// Console opens the interactive prompt.
	Console bool
}

var (
	// ErrAlreadyRunning is returned when another process holds the instance lock.
	ErrAlreadyRunning = errors.New("hourly chime is already running")
	// ErrUnknownStyle is returned for chime type names that are not supported.
	ErrUnknownStyle = errors.New("unknown chime type")
	// ErrNothingPlayed is returned when no clip of a test play could be started.
	ErrNothingPlayed = errors.New("no clip could be played")
)

// Run starts the scheduler and blocks until ctx ends or exit is requested.
// It returns ErrAlreadyRunning without doing anything else when another
// instance holds the lock. While running, the scheduler serves the control
// channel used by the test-play, style, autostart and exit commands.
//
//nolint:funlen // Startup order matters and reads best top to bottom.
func Run(ctx context.Context, opts *Options) error {
	cfg, closeLog, err := setup(opts)
	if err != nil {
		return err
	}

	defer closeLog()

	ctx = logger.WithName(ctx, "hourly-chime")

	guard := instance.NewGuard(cfg.InstanceName)

	acquired, err := guard.Acquire()
	if err != nil {
		return fmt.Errorf("acquire instance lock: %w", err)
	}

	if !acquired {
		if holders, holdersErr := instance.Holders(); holdersErr == nil {
			logger.DebugKV(ctx, "Another instance holds the lock", "holders", holders)
		}

		return ErrAlreadyRunning
	}

	store := openSettings(ctx, cfg.SettingsFile)

	fs := afero.NewOsFs()
	sequencer := audio.NewSequencer(audio.NewBeepOutput(fs), audio.WithPollInterval(cfg.PollInterval))

	defer sequencer.Stop()

	scheduler := NewScheduler(store, resources.NewResolver(fs, cfg.ResourceDir), sequencer)

	toggle := newToggle(ctx)
	reconcileAutostart(ctx, store, toggle)

	svc := newService(scheduler, store, toggle)

	stopControl := startControl(ctx, svc, guard, cfg.ControlAddress)
	defer stopControl()

	ticker := time.NewTicker(cfg.TickInterval)
	defer ticker.Stop()

	if opts != nil && opts.Console {
		con, consoleErr := newReadlineConsole(svc)
		if consoleErr != nil {
			return consoleErr
		}

		go func() {
			if runErr := con.run(ctx); runErr != nil {
				logger.ErrorKV(ctx, "Console stopped", "error", runErr)
			}
		}()

		go func() {
			<-svc.stopped
			_ = con.in.Close()
		}()
	}

	logger.InfoKV(ctx, "Hourly chime started",
		"window", scheduler.Window(ctx).String(),
		"chime_type", scheduler.Style(ctx).String(),
		"settings", store.Path(),
		"resources", cfg.ResourceDir,
		"tick", cfg.TickInterval.String(),
	)

	svc.serve(ctx, ticker.C)

	return nil
}

// setup loads the runtime configuration, applies command line overrides and
// configures logging. The returned function closes the log file.
func setup(opts *Options) (*config.Config, func(), error) {
	if opts == nil {
		opts = new(Options)
	}

	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	if opts.SettingsFile != "" {
		cfg.SettingsFile = opts.SettingsFile
	}

	if opts.ResourceDir != "" {
		cfg.ResourceDir = opts.ResourceDir
	}

	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	if err = config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("validate configuration: %w", err)
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		return nil, nil, err
	}

	return cfg, closeLog, nil
}

func setupLogging(cfg *config.Config) (func(), error) {
	level, _ := logger.ParseLogLevel(cfg.LogLevel)
	logger.SetLevel(level)

	if cfg.LogFile == "" {
		return func() {}, nil
	}

	file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, config.DefaultFilePermissions)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	previous := logger.Logger()
	logger.SetLogger(logger.New(nil, logger.WithFile(zapcore.AddSync(file))))

	return func() {
		_ = logger.Logger().Sync()
		logger.SetLogger(previous)
		_ = file.Close()
	}, nil
}

// openSettings opens the settings file, falling back to defaults kept in memory.
func openSettings(ctx context.Context, path string) *settings.Store {
	store, err := settings.Open(afero.NewOsFs(), path)
	if err != nil {
		logger.WarnKV(ctx, "Settings unavailable, using defaults", "path", path, "error", err)

		return settings.InMemory()
	}

	return store
}

//nolint:ireturn // The toggle is platform specific.
func newToggle(ctx context.Context) autostart.Toggle {
	command, err := autostart.Command()
	if err != nil {
		logger.WarnKV(ctx, "Autostart unavailable", "error", err)

		return unavailableToggle{err: err}
	}

	return autostart.New(command)
}
