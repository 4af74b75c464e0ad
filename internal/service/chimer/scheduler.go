package chimer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oshokin/hourly-chime/internal/audio"
	"github.com/oshokin/hourly-chime/internal/domain/chime"
	"github.com/oshokin/hourly-chime/internal/logger"
	"github.com/oshokin/hourly-chime/internal/settings"
)

// ClipResolver builds the clip list for a style and hour.
type ClipResolver interface {
	Sequence(style chime.Style, hour int) chime.Sequence
}

// SequencePlayer plays clip lists without blocking for their duration.
type SequencePlayer interface {
	PlaySequence(ctx context.Context, clips chime.Sequence) (*audio.Playback, error)
}

// calendarHour identifies one hour of one local day.
type calendarHour struct {
	year int
	day  int
	hour int
}

func calendarHourOf(t time.Time) calendarHour {
	return calendarHour{
		year: t.Year(),
		day:  t.YearDay(),
		hour: t.Hour(),
	}
}

// schedulerState is the transient de-duplication state. It starts empty on every process start.
type schedulerState struct {
	// lastFired is the calendar hour of the last scheduled chime.
	lastFired calendarHour
	// fired is false until the first scheduled chime.
	fired bool
}

// Scheduler turns ticks into at most one chime per calendar hour.
type Scheduler struct {
	// settings provides the window and the style.
	settings settings.Reader
	// clips resolves styles and hours to files.
	clips ClipResolver
	// player plays the resolved clips.
	player SequencePlayer

	// mu protects state.
	mu sync.Mutex
	// state remembers the last chimed hour.
	state schedulerState
}

// NewScheduler creates a scheduler with empty state.
func NewScheduler(reader settings.Reader, clips ClipResolver, player SequencePlayer) *Scheduler {
	return &Scheduler{
		settings: reader,
		clips:    clips,
		player:   player,
	}
}

// OnTick chimes when now is in minute 0 of an hour that has not chimed yet and
// lies inside the window. It reports whether a chime was started. The hour is
// marked as chimed only when the window check passes, whatever the playback
// outcome.
func (s *Scheduler) OnTick(ctx context.Context, now time.Time) bool {
	now = now.Local()

	if now.Minute() != 0 {
		return false
	}

	hour := now.Hour()
	current := calendarHourOf(now)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.fired && s.state.lastFired == current {
		return false
	}

	window := s.Window(ctx)
	if !window.Contains(hour) {
		logger.DebugKV(ctx, "Hour outside chime window", "hour", hour, "window", window.String())

		return false
	}

	_, _ = s.play(ctx, hour)

	s.state = schedulerState{
		lastFired: current,
		fired:     true,
	}

	return true
}

// TestPlay plays the chime for hour right away. It ignores minute, window and
// state, and never counts as the hour's chime.
func (s *Scheduler) TestPlay(ctx context.Context, hour int) (*audio.Playback, error) {
	if err := chime.ValidateHour(hour); err != nil {
		return nil, err
	}

	return s.play(ctx, hour)
}

// LastFiredHour returns the hour of the last scheduled chime, if any.
func (s *Scheduler) LastFiredHour() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.lastFired.hour, s.state.fired
}

// Window reads the chime window, falling back to 7-22 when it is invalid.
func (s *Scheduler) Window(ctx context.Context) chime.Window {
	window := chime.Window{
		StartHour: s.settings.GetInt(settings.KeyStartHour, chime.DefaultStartHour),
		EndHour:   s.settings.GetInt(settings.KeyEndHour, chime.DefaultEndHour),
	}

	if err := window.Validate(); err != nil {
		logger.WarnKV(ctx, "Invalid chime window, using defaults", "error", err)

		return chime.DefaultWindow()
	}

	return window
}

// Style reads the chime style, falling back to Westminster for unknown names.
func (s *Scheduler) Style(ctx context.Context) chime.Style {
	raw := s.settings.GetString(settings.KeyChimeType, chime.DefaultStyle.String())

	style, ok := chime.ParseStyle(raw)
	if !ok {
		logger.WarnKV(ctx, "Unknown chime type, using default", "chime_type", raw, "default", style.String())
	}

	return style
}

func (s *Scheduler) play(ctx context.Context, hour int) (*audio.Playback, error) {
	clips := s.clips.Sequence(s.Style(ctx), hour)

	logger.InfoKV(ctx, "Chiming", "hour", fmt.Sprintf("%02d:00", hour), "clips", clips.Names())

	playback, err := s.player.PlaySequence(ctx, clips)
	if err != nil {
		logger.ErrorKV(ctx, "Chime playback failed", "hour", hour, "error", err)

		return nil, err
	}

	return playback, nil
}
