package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks defaults, bounds and path resolution.
func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := new(Config)
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultTickInterval, cfg.TickInterval)
	require.Equal(t, DefaultPollInterval, cfg.PollInterval)
	require.Equal(t, DefaultInstanceName, cfg.InstanceName)
	require.True(t, filepath.IsAbs(cfg.SettingsFile))
	require.Equal(t, DefaultSettingsFilename, filepath.Base(cfg.SettingsFile))
	require.Equal(t, ExecutableDir(), cfg.ResourceDir)
	require.Equal(t, DefaultControlAddress, cfg.ControlAddress)
	require.Equal(t, DefaultCallTimeout, cfg.CallTimeout)

	// Too long to guarantee a tick inside minute 0.
	cfg = &Config{TickInterval: 2 * time.Minute}
	require.ErrorIs(t, Validate(cfg), errTickIntervalTooLong)

	cfg = &Config{LogLevel: "loud"}
	require.ErrorIs(t, Validate(cfg), errUnknownLogLevel)

	// The control channel stays on this machine.
	for _, address := range []string{"0.0.0.0:7000", ":7000", "192.168.1.10:7000", "example.com:7000"} {
		cfg = &Config{ControlAddress: address}
		require.ErrorIs(t, Validate(cfg), errControlNotLoopback, address)
	}

	for _, address := range []string{"127.0.0.1:0", "[::1]:7000", "localhost:7000"} {
		cfg = &Config{ControlAddress: address}
		require.NoError(t, Validate(cfg), address)
	}

	cfg = &Config{ControlAddress: "no-port"}
	require.Error(t, Validate(cfg))

	abs := filepath.Join(t.TempDir(), "s.yaml")
	cfg = &Config{SettingsFile: abs, TickInterval: time.Minute}
	require.NoError(t, Validate(cfg))
	require.Equal(t, abs, cfg.SettingsFile)
	require.Equal(t, time.Minute, cfg.TickInterval)
}

// TestLoad_FromEnvFile reads values from a dotenv file.
// Not parallel: the test mutates the process environment.
func TestLoad_FromEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")

	contents := "HOURLY_CHIME_TICK_INTERVAL=15s\n" +
		"HOURLY_CHIME_RESOURCE_DIR=" + dir + "\n" +
		"HOURLY_CHIME_LOG_LEVEL=debug\n"
	require.NoError(t, os.WriteFile(envFile, []byte(contents), DefaultFilePermissions))

	// godotenv sets variables with os.Setenv; register them for cleanup.
	for _, key := range []string{
		"HOURLY_CHIME_TICK_INTERVAL",
		"HOURLY_CHIME_RESOURCE_DIR",
		"HOURLY_CHIME_LOG_LEVEL",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load(envFile)
	require.NoError(t, err)
	require.Equal(t, 15*time.Second, cfg.TickInterval)
	require.Equal(t, dir, cfg.ResourceDir)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, DefaultPollInterval, cfg.PollInterval)
}

// TestLoad_EnvironmentWins ensures real environment variables override the dotenv file
// and a missing dotenv file is tolerated.
func TestLoad_EnvironmentWins(t *testing.T) {
	t.Setenv("HOURLY_CHIME_TICK_INTERVAL", "45s")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, 45*time.Second, cfg.TickInterval)
}

// TestLoad_RejectsBadInterval surfaces validation errors from the environment.
func TestLoad_RejectsBadInterval(t *testing.T) {
	t.Setenv("HOURLY_CHIME_TICK_INTERVAL", "5m")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.ErrorIs(t, err, errTickIntervalTooLong)
}
