package audio

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/oshokin/hourly-chime/internal/domain/chime"
)

// ClipError describes a clip that could not be played.
type ClipError struct {
	// Clip is the clip that failed.
	Clip chime.Clip
	// Err is the underlying failure.
	Err error
}

// Error implements error.
func (e *ClipError) Error() string {
	return fmt.Sprintf("clip %s: %v", e.Clip.Name, e.Err)
}

// Unwrap returns the underlying failure.
func (e *ClipError) Unwrap() error {
	return e.Err
}

// Playback tracks one PlaySequence call.
type Playback struct {
	// clips is the requested sequence.
	clips chime.Sequence
	// next is the index of the next clip to start. Guarded by the sequencer mutex.
	next int
	// cancel stops the playback worker.
	cancel context.CancelFunc

	// done is closed when the playback is over.
	done chan struct{}
	// doneOnce guards close(done).
	doneOnce sync.Once

	// mu protects played and failures.
	mu sync.Mutex
	// played lists clips that were started.
	played chime.Sequence
	// failures lists clips that were skipped or aborted the sequence.
	failures []*ClipError
}

func newPlayback(clips chime.Sequence, cancel context.CancelFunc) *Playback {
	return &Playback{
		clips:  slices.Clone(clips),
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Done is closed when every clip has finished, the playback was pre-empted
// by a newer sequence, or its context ended.
func (p *Playback) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the playback is over or ctx ends.
func (p *Playback) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Played returns the clips that were started, in order.
func (p *Playback) Played() chime.Sequence {
	p.mu.Lock()
	defer p.mu.Unlock()

	return slices.Clone(p.played)
}

// Failures returns the clips that could not be played.
func (p *Playback) Failures() []*ClipError {
	p.mu.Lock()
	defer p.mu.Unlock()

	return slices.Clone(p.failures)
}

func (p *Playback) remaining() int {
	return len(p.clips) - p.next
}

func (p *Playback) addPlayed(clip chime.Clip) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.played = append(p.played, clip)
}

func (p *Playback) addFailure(clip chime.Clip, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.failures = append(p.failures, &ClipError{Clip: clip, Err: err})
}

func (p *Playback) finish() {
	p.doneOnce.Do(func() {
		p.cancel()
		close(p.done)
	})
}
