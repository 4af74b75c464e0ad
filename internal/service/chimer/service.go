package chimer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oshokin/hourly-chime/internal/autostart"
	"github.com/oshokin/hourly-chime/internal/domain/chime"
	"github.com/oshokin/hourly-chime/internal/logger"
	"github.com/oshokin/hourly-chime/internal/settings"
)

// errLoopStopped is returned for commands sent after the loop has exited.
var errLoopStopped = errors.New("chime loop stopped")

// settingsStore is the settings file as the loop sees it.
type settingsStore interface {
	settings.ReadWriter
	// Refresh re-reads the file when it changed on disk.
	Refresh() error
}

// request is a control command executed on the loop goroutine.
type request struct {
	// apply runs the command.
	apply func(ctx context.Context) error
	// reply receives the result of apply.
	reply chan error
}

// service is the single scheduling actor. Ticks and control commands are
// handled one at a time by serve.
type service struct {
	// scheduler makes the chime decisions.
	scheduler *Scheduler
	// store holds the user settings.
	store settingsStore
	// toggle registers the executable to start at logon.
	toggle autostart.Toggle
	// now returns the current time for test plays.
	now func() time.Time

	// requests carries control commands into the loop.
	requests chan request
	// quit is closed by Exit.
	quit chan struct{}
	// quitOnce guards quit.
	quitOnce sync.Once
	// stopped is closed when serve returns.
	stopped chan struct{}
}

func newService(scheduler *Scheduler, store settingsStore, toggle autostart.Toggle) *service {
	return &service{
		scheduler: scheduler,
		store:     store,
		toggle:    toggle,
		now:       time.Now,
		requests:  make(chan request),
		quit:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
}

// serve runs the loop until ctx ends or Exit is called.
func (s *service) serve(ctx context.Context, ticks <-chan time.Time) {
	defer close(s.stopped)

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			return
		case <-s.quit:
			logger.Info(ctx, "Exit requested")
			return
		case now := <-ticks:
			s.tick(ctx, now)
		case req := <-s.requests:
			req.reply <- req.apply(ctx)
		}
	}
}

func (s *service) tick(ctx context.Context, now time.Time) {
	if err := s.store.Refresh(); err != nil {
		logger.WarnKV(ctx, "Settings refresh failed, keeping previous values", "error", err)
	}

	s.scheduler.OnTick(ctx, now)
}

// submit runs apply on the loop goroutine and waits for its result.
func (s *service) submit(ctx context.Context, apply func(ctx context.Context) error) error {
	req := request{
		apply: apply,
		reply: make(chan error, 1),
	}

	select {
	case s.requests <- req:
	case <-s.stopped:
		return errLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	return <-req.reply
}

// TestPlay chimes hour without affecting the schedule. A negative hour means the current one.
func (s *service) TestPlay(ctx context.Context, hour int) (int, error) {
	if hour < 0 {
		hour = s.now().Local().Hour()
	}

	err := s.submit(ctx, func(ctx context.Context) error {
		_, err := s.scheduler.TestPlay(ctx, hour)

		return err
	})

	return hour, err
}

// SetChimeStyle persists the chime style.
func (s *service) SetChimeStyle(ctx context.Context, style chime.Style) error {
	return s.submit(ctx, func(ctx context.Context) error {
		if err := s.store.SetValue(settings.KeyChimeType, style); err != nil {
			return fmt.Errorf("save chime type: %w", err)
		}

		logger.InfoKV(ctx, "Chime type changed", "chime_type", style.String())

		return nil
	})
}

// Autostart applies action to start at logon and returns the registration.
func (s *service) Autostart(ctx context.Context, action autostart.Action) (bool, error) {
	var enabled bool

	err := s.submit(ctx, func(ctx context.Context) error {
		var err error

		enabled, err = applyAutostart(ctx, s.store, s.toggle, action)

		return err
	})

	return enabled, err
}

// Status reports the effective settings and the last scheduled chime.
func (s *service) Status(ctx context.Context) (chime.Status, error) {
	var status chime.Status

	err := s.submit(ctx, func(ctx context.Context) error {
		status.Window = s.scheduler.Window(ctx)
		status.Style = s.scheduler.Style(ctx)
		status.AutoStart = s.toggle.IsEnabled()
		status.LastFiredHour, status.HasFired = s.scheduler.LastFiredHour()

		return nil
	})

	return status, err
}

// Exit stops the loop. It is safe to call more than once.
func (s *service) Exit() {
	s.quitOnce.Do(func() {
		close(s.quit)
	})
}

// setAutostart changes the registration and records the choice in the settings.
// The setting is written only when the registration succeeded.
func setAutostart(ctx context.Context, store settings.ReadWriter, toggle autostart.Toggle, enabled bool) error {
	if err := toggle.SetEnabled(enabled); err != nil {
		logger.WarnKV(ctx, "Autostart change failed", "enabled", enabled, "error", err)

		return fmt.Errorf("set autostart: %w", err)
	}

	if err := store.SetValue(settings.KeyAutoStart, enabled); err != nil {
		return fmt.Errorf("save autostart: %w", err)
	}

	logger.InfoKV(ctx, "Autostart changed", "enabled", enabled)

	return nil
}

// autostartSettings is the part of the settings file reconciliation needs.
type autostartSettings interface {
	settings.ReadWriter
	// Created reports whether the file was just created with defaults.
	Created() bool
}

// reconcileAutostart makes the registration follow the AutoStart setting of an
// existing settings file. A freshly created file adopts the current
// registration instead, so a first start never registers the executable.
func reconcileAutostart(ctx context.Context, store autostartSettings, toggle autostart.Toggle) {
	current := toggle.IsEnabled()

	if store.Created() {
		if err := store.SetValue(settings.KeyAutoStart, current); err != nil {
			logger.WarnKV(ctx, "Autostart setting not saved", "error", err)
		}

		logger.DebugKV(ctx, "New settings file follows autostart registration", "enabled", current)

		return
	}

	want := store.GetBool(settings.KeyAutoStart, current)
	if current == want {
		return
	}

	if err := toggle.SetEnabled(want); err != nil {
		logger.WarnKV(ctx, "Autostart registration out of sync", "want", want, "error", err)

		return
	}

	logger.InfoKV(ctx, "Autostart registration updated", "enabled", want)
}

// unavailableToggle stands in when the executable path cannot be determined.
type unavailableToggle struct {
	// err explains why autostart is unavailable.
	err error
}

func (u unavailableToggle) IsEnabled() bool {
	return false
}

func (u unavailableToggle) SetEnabled(bool) error {
	return u.err
}
