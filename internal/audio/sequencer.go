package audio

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oshokin/hourly-chime/internal/domain/chime"
	"github.com/oshokin/hourly-chime/internal/logger"
)

// DefaultPollInterval is how often the worker checks whether the current clip ended.
const DefaultPollInterval = 100 * time.Millisecond

// ErrNothingToPlay is returned for an empty sequence.
var ErrNothingToPlay = errors.New("nothing to play")

// Sequencer plays clip sequences on an Output, one sequence at a time.
type Sequencer struct {
	// output is the device; only the sequencer touches it.
	output Output
	// pollInterval is the Busy polling period.
	pollInterval time.Duration

	// mu serializes every access to output and current.
	mu sync.Mutex
	// current is the playback that owns the output.
	current *Playback
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithPollInterval overrides DefaultPollInterval.
func WithPollInterval(interval time.Duration) Option {
	return func(s *Sequencer) {
		if interval > 0 {
			s.pollInterval = interval
		}
	}
}

// NewSequencer creates a sequencer that owns output.
func NewSequencer(output Output, opts ...Option) *Sequencer {
	s := &Sequencer{
		output:       output,
		pollInterval: DefaultPollInterval,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// PlaySequence stops whatever is playing, starts the first playable clip
// and returns while a worker plays the rest. ctx bounds the whole playback.
// Clips that cannot be opened or decoded are logged and skipped; a failure
// of the output itself abandons the sequence.
func (s *Sequencer) PlaySequence(ctx context.Context, clips chime.Sequence) (*Playback, error) {
	if len(clips) == 0 {
		logger.Info(ctx, "Nothing to play")

		return nil, ErrNothingToPlay
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		logger.DebugKV(ctx, "Pre-empting playback", "clips", s.current.clips.Names())
		s.current.finish()
		s.current = nil
	}

	s.output.Stop()

	playCtx, cancel := context.WithCancel(ctx)
	p := newPlayback(clips, cancel)

	if !s.advance(playCtx, p) {
		p.finish()

		return p, nil
	}

	s.current = p

	go s.watch(playCtx, p)

	return p, nil
}

// Stop silences the output and ends the current playback, if any.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.current.finish()
		s.current = nil
	}

	s.output.Stop()
}

// watch advances p each time the output stops being busy.
func (s *Sequencer) watch(ctx context.Context, p *Playback) {
	defer p.finish()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if !s.step(ctx, p) {
			return
		}
	}
}

// step starts the next clip once the output is idle. It returns false when p is over.
func (s *Sequencer) step(ctx context.Context, p *Playback) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A newer sequence owns the output now.
	if ctx.Err() != nil || s.current != p {
		return false
	}

	if s.output.Busy() {
		return true
	}

	if p.remaining() > 0 && s.advance(ctx, p) {
		return true
	}

	s.current = nil

	logger.DebugKV(ctx, "Sequence finished", "played", p.Played().Names(), "failed", len(p.Failures()))

	return false
}

// advance starts the next playable clip of p. It returns false when no clip
// was started, either because the list is exhausted or the output failed.
// Callers hold mu.
func (s *Sequencer) advance(ctx context.Context, p *Playback) bool {
	for p.remaining() > 0 {
		clip := p.clips[p.next]
		p.next++

		if err := s.output.Load(clip); err != nil {
			logger.WarnKV(ctx, "Skipping clip", "clip", clip.Name, "path", clip.Path, "error", err)
			p.addFailure(clip, err)

			continue
		}

		if err := s.output.Play(); err != nil {
			logger.ErrorKV(ctx, "Audio output failed, abandoning sequence", "clip", clip.Name, "error", err)
			p.addFailure(clip, err)
			p.next = len(p.clips)

			return false
		}

		logger.DebugKV(ctx, "Playing clip", "clip", clip.Name)
		p.addPlayed(clip)

		return true
	}

	return false
}
