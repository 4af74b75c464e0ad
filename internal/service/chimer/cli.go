package chimer

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/oshokin/hourly-chime/internal/api/grpc/control"
	"github.com/oshokin/hourly-chime/internal/audio"
	"github.com/oshokin/hourly-chime/internal/autostart"
	"github.com/oshokin/hourly-chime/internal/domain/chime"
	"github.com/oshokin/hourly-chime/internal/instance"
	"github.com/oshokin/hourly-chime/internal/logger"
	"github.com/oshokin/hourly-chime/internal/resources"
	"github.com/oshokin/hourly-chime/internal/service/common"
	"github.com/oshokin/hourly-chime/internal/settings"
)

// TestPlayOnce plays the chime for hour. A negative hour means the current hour.
// A running instance plays it through its own sequencer, replacing whatever it
// is playing; otherwise this process plays it and waits until it finished.
func TestPlayOnce(ctx context.Context, opts *Options, hour int) error {
	cfg, closeLog, err := setup(opts)
	if err != nil {
		return err
	}

	defer closeLog()

	ctx = logger.WithName(ctx, "test-play")

	if hour >= 0 {
		if err = chime.ValidateHour(hour); err != nil {
			return err
		}
	}

	client, err := connect(ctx, instance.NewGuard(cfg.InstanceName), cfg.CallTimeout)
	if err != nil {
		return err
	}

	if client != nil {
		defer closeClient(ctx, client)

		if hour < 0 {
			hour = control.CurrentHour
		}

		played, playErr := client.TestPlay(ctx, hour)
		if playErr != nil {
			return playErr
		}

		logger.InfoKV(ctx, "Test play sent to the running instance", "hour", played)

		return nil
	}

	if hour < 0 {
		hour = time.Now().Hour()
	}

	store := openSettings(ctx, cfg.SettingsFile)

	fs := afero.NewOsFs()
	sequencer := audio.NewSequencer(audio.NewBeepOutput(fs), audio.WithPollInterval(cfg.PollInterval))

	defer sequencer.Stop()

	scheduler := NewScheduler(store, resources.NewResolver(fs, cfg.ResourceDir), sequencer)

	return playAndWait(ctx, scheduler, hour)
}

// ChimeStyle shows the chime type, or changes it when value is not empty.
// A running instance applies the change itself.
func ChimeStyle(ctx context.Context, opts *Options, value string) (chime.Style, error) {
	cfg, closeLog, err := setup(opts)
	if err != nil {
		return chime.DefaultStyle, err
	}

	defer closeLog()

	ctx = logger.WithName(ctx, "style")

	if value != "" {
		if _, ok := chime.ParseStyle(value); !ok {
			return chime.DefaultStyle, fmt.Errorf("%q: %w", value, ErrUnknownStyle)
		}
	}

	client, err := connect(ctx, instance.NewGuard(cfg.InstanceName), cfg.CallTimeout)
	if err != nil {
		return chime.DefaultStyle, err
	}

	if client != nil {
		defer closeClient(ctx, client)

		return client.ChimeStyle(ctx, value)
	}

	store, err := settings.Open(afero.NewOsFs(), cfg.SettingsFile)
	if err != nil {
		return chime.DefaultStyle, fmt.Errorf("open settings: %w", err)
	}

	return applyStyle(ctx, store, value)
}

// Autostart reports the start-at-logon registration after applying action.
// A running instance applies the change itself.
func Autostart(ctx context.Context, opts *Options, action autostart.Action) (bool, error) {
	cfg, closeLog, err := setup(opts)
	if err != nil {
		return false, err
	}

	defer closeLog()

	ctx = logger.WithName(ctx, "autostart")

	client, err := connect(ctx, instance.NewGuard(cfg.InstanceName), cfg.CallTimeout)
	if err != nil {
		return false, err
	}

	if client != nil {
		defer closeClient(ctx, client)

		return client.Autostart(ctx, action)
	}

	store, err := settings.Open(afero.NewOsFs(), cfg.SettingsFile)
	if err != nil {
		return false, fmt.Errorf("open settings: %w", err)
	}

	return applyAutostart(ctx, store, newToggle(ctx), action)
}

// Exit stops the running instance. It reports false when none was running.
func Exit(ctx context.Context, opts *Options) (bool, error) {
	cfg, closeLog, err := setup(opts)
	if err != nil {
		return false, err
	}

	defer closeLog()

	ctx = logger.WithName(ctx, "exit")

	client, err := connect(ctx, instance.NewGuard(cfg.InstanceName), cfg.CallTimeout)
	if err != nil || client == nil {
		return false, err
	}

	defer closeClient(ctx, client)

	if err = client.Exit(ctx); err != nil {
		return false, err
	}

	return true, nil
}

// connect returns a client for the instance holding guard's lock. When no
// instance runs it returns nil and this process keeps the lock until it
// exits, so a scheduler cannot start in the middle of the command.
//
//nolint:nilnil // A nil client means "run the command here".
func connect(ctx context.Context, guard *instance.Guard, callTimeout time.Duration) (*common.Client, error) {
	acquired, err := guard.Acquire()
	if err != nil {
		return nil, fmt.Errorf("acquire instance lock: %w", err)
	}

	if acquired {
		return nil, nil
	}

	address, err := guard.Endpoint()
	if err != nil {
		return nil, fmt.Errorf("find running instance: %w", err)
	}

	client, err := common.Dial(ctx, address, common.WithCallTimeout(callTimeout))
	if err != nil {
		return nil, err
	}

	logger.DebugKV(ctx, "Connected to the running instance", "address", address)

	return client, nil
}

func closeClient(ctx context.Context, client *common.Client) {
	if err := client.Close(); err != nil {
		logger.WarnKV(ctx, "Control connection not closed", "error", err)
	}
}

func playAndWait(ctx context.Context, scheduler *Scheduler, hour int) error {
	playback, err := scheduler.TestPlay(ctx, hour)
	if err != nil {
		return err
	}

	if err = playback.Wait(ctx); err != nil {
		return err
	}

	if len(playback.Played()) == 0 {
		return ErrNothingPlayed
	}

	return nil
}

func applyStyle(ctx context.Context, store settings.ReadWriter, value string) (chime.Style, error) {
	if value == "" {
		style, _ := chime.ParseStyle(store.GetString(settings.KeyChimeType, chime.DefaultStyle.String()))

		return style, nil
	}

	style, ok := chime.ParseStyle(value)
	if !ok {
		return chime.DefaultStyle, fmt.Errorf("%q: %w", value, ErrUnknownStyle)
	}

	if err := store.SetValue(settings.KeyChimeType, style); err != nil {
		return chime.DefaultStyle, fmt.Errorf("save chime type: %w", err)
	}

	logger.InfoKV(ctx, "Chime type changed", "chime_type", style.String())

	return style, nil
}

func applyAutostart(ctx context.Context, store settings.ReadWriter, toggle autostart.Toggle, action autostart.Action) (bool, error) {
	current := toggle.IsEnabled()
	if action == autostart.ActionShow {
		return current, nil
	}

	enabled := action.Target(current)

	if err := setAutostart(ctx, store, toggle, enabled); err != nil {
		return current, err
	}

	return enabled, nil
}
