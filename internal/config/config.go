package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/oshokin/hourly-chime/internal/logger"
)

// Config holds process-level options of the chime scheduler.
type Config struct {
	// SettingsFile is the YAML file with user preferences.
	SettingsFile string `env:"HOURLY_CHIME_SETTINGS_FILE" envDefault:"hourly-chime-settings.yaml"`
	// ResourceDir is the directory containing src-sound/. Empty means the executable directory.
	ResourceDir string `env:"HOURLY_CHIME_RESOURCE_DIR"`
	// TickInterval is the period of the scheduling check.
	TickInterval time.Duration `env:"HOURLY_CHIME_TICK_INTERVAL" envDefault:"30s"`
	// PollInterval is how often the sequencer asks the audio output whether it is still busy.
	PollInterval time.Duration `env:"HOURLY_CHIME_POLL_INTERVAL" envDefault:"100ms"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"HOURLY_CHIME_LOG_LEVEL" envDefault:"info"`
	// LogFile optionally duplicates logs into a file.
	LogFile string `env:"HOURLY_CHIME_LOG_FILE"`
	// InstanceName identifies the single-instance lock.
	InstanceName string `env:"HOURLY_CHIME_INSTANCE_NAME" envDefault:"HourlyChimeInstanceLock"`
	// ControlAddress is the loopback address of the control channel. Port 0 picks a free port.
	ControlAddress string `env:"HOURLY_CHIME_CONTROL_ADDRESS" envDefault:"127.0.0.1:0"`
	// CallTimeout bounds each command sent to a running instance.
	CallTimeout time.Duration `env:"HOURLY_CHIME_CALL_TIMEOUT" envDefault:"5s"`
}

const (
	// DefaultEnvFilename is the optional dotenv file read on startup.
	DefaultEnvFilename = ".env"

	// DefaultSettingsFilename is the default filename for user settings.
	DefaultSettingsFilename = "hourly-chime-settings.yaml"

	// DefaultTickInterval is the default period of the scheduling check.
	DefaultTickInterval = 30 * time.Second

	// MaxTickInterval is the longest period that still lands inside minute 0 of every hour.
	MaxTickInterval = time.Minute

	// DefaultPollInterval is the default busy-poll period of the sequencer.
	DefaultPollInterval = 100 * time.Millisecond

	// DefaultInstanceName names the single-instance lock.
	DefaultInstanceName = "HourlyChimeInstanceLock"

	// DefaultControlAddress lets the OS pick a free loopback port for the control channel.
	DefaultControlAddress = "127.0.0.1:0"

	// DefaultCallTimeout bounds each command sent to a running instance.
	DefaultCallTimeout = 5 * time.Second

	// DefaultFilePermissions is the permission of files written by the application.
	DefaultFilePermissions = 0o600
)

var (
	// errTickIntervalTooLong is returned when ticks could skip minute 0 of an hour.
	errTickIntervalTooLong = errors.New("tick interval must not exceed one minute")
	// errUnknownLogLevel is returned for unparsable log levels.
	errUnknownLogLevel = errors.New("unknown log level")
	// errControlNotLoopback is returned when the control channel would be reachable from other machines.
	errControlNotLoopback = errors.New("control address must be a loopback address")
)

// Load reads the optional dotenv file, parses the environment and validates the result.
// A missing dotenv file is not an error; variables already set in the environment win.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = filepath.Join(ExecutableDir(), DefaultEnvFilename)
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read env file %s: %w", envFile, err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate fills defaults, resolves relative paths against the executable
// directory and rejects intervals the scheduler cannot work with.
func Validate(cfg *Config) error {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}

	if cfg.TickInterval > MaxTickInterval {
		return fmt.Errorf("%s: %w", cfg.TickInterval, errTickIntervalTooLong)
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%q: %w", cfg.LogLevel, errUnknownLogLevel)
	}

	if cfg.InstanceName == "" {
		cfg.InstanceName = DefaultInstanceName
	}

	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}

	if cfg.ControlAddress == "" {
		cfg.ControlAddress = DefaultControlAddress
	}

	if err := validateControlAddress(cfg.ControlAddress); err != nil {
		return err
	}

	if cfg.SettingsFile == "" {
		cfg.SettingsFile = DefaultSettingsFilename
	}

	cfg.SettingsFile = ResolvePath(cfg.SettingsFile)

	if cfg.ResourceDir == "" {
		cfg.ResourceDir = ExecutableDir()
	} else {
		cfg.ResourceDir = ResolvePath(cfg.ResourceDir)
	}

	if cfg.LogFile != "" {
		cfg.LogFile = ResolvePath(cfg.LogFile)
	}

	return nil
}

// validateControlAddress accepts host:port pairs on a loopback interface only.
func validateControlAddress(address string) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("control address %q: %w", address, err)
	}

	if strings.EqualFold(host, "localhost") {
		return nil
	}

	if ip := net.ParseIP(host); ip == nil || !ip.IsLoopback() {
		return fmt.Errorf("%q: %w", address, errControlNotLoopback)
	}

	return nil
}

// ResolvePath anchors a relative path at the executable directory.
// Autostarted processes do not run in a predictable working directory.
func ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return filepath.Clean(path)
	}

	return filepath.Join(ExecutableDir(), path)
}

// ExecutableDir returns the directory of the running binary, or the working
// directory when it cannot be determined.
func ExecutableDir() string {
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}

		return filepath.Dir(exe)
	}

	if wd, err := os.Getwd(); err == nil {
		return wd
	}

	return "."
}
