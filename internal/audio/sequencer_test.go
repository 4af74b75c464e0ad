package audio

import (
	"context"
	"errors"
	"io/fs"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/hourly-chime/internal/domain/chime"
)

var errDeviceGone = errors.New("device gone")

const (
	testPoll    = 5 * time.Millisecond
	waitFor     = time.Second
	checkEvery  = 2 * time.Millisecond
	quietPeriod = 40 * time.Millisecond
)

// recordingOutput is an in-memory Output that logs every call.
type recordingOutput struct {
	mu sync.Mutex
	// calls is the ordered call log, e.g. "load:a", "play:a", "stop".
	calls []string
	// missing holds clip names whose Load fails with fs.ErrNotExist.
	missing map[string]bool
	// playErr is returned by Play when set.
	playErr error
	// loaded is the clip last loaded.
	loaded chime.Clip
	// busy simulates a clip that is still audible.
	busy bool
}

func newRecordingOutput(missing ...string) *recordingOutput {
	o := &recordingOutput{missing: make(map[string]bool)}
	for _, name := range missing {
		o.missing[name] = true
	}

	return o
}

func (o *recordingOutput) Load(clip chime.Clip) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.calls = append(o.calls, "load:"+clip.Name)
	if o.missing[clip.Name] {
		return fs.ErrNotExist
	}

	o.loaded = clip

	return nil
}

func (o *recordingOutput) Play() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.calls = append(o.calls, "play:"+o.loaded.Name)
	if o.playErr != nil {
		return o.playErr
	}

	o.busy = true

	return nil
}

func (o *recordingOutput) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.busy
}

func (o *recordingOutput) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.calls = append(o.calls, "stop")
	o.busy = false
}

// finishClip simulates the current clip draining.
func (o *recordingOutput) finishClip() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.busy = false
}

func (o *recordingOutput) log() []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	return slices.Clone(o.calls)
}

func (o *recordingOutput) logContains(call string) func() bool {
	return func() bool {
		return slices.Contains(o.log(), call)
	}
}

func clips(names ...string) chime.Sequence {
	seq := make(chime.Sequence, 0, len(names))
	for _, name := range names {
		seq = append(seq, chime.Clip{Name: name, Path: "/sounds/" + name + ".wav"})
	}

	return seq
}

func isDone(p *Playback) func() bool {
	return func() bool {
		select {
		case <-p.Done():
			return true
		default:
			return false
		}
	}
}

// TestPlaySequence_Empty reports nothing to play and leaves the output alone.
func TestPlaySequence_Empty(t *testing.T) {
	t.Parallel()

	out := newRecordingOutput()
	seq := NewSequencer(out, WithPollInterval(testPoll))

	p, err := seq.PlaySequence(context.Background(), nil)
	require.ErrorIs(t, err, ErrNothingToPlay)
	require.Nil(t, p)
	require.Empty(t, out.log())
}

// TestPlaySequence_BackToBack starts the first clip at once and the next only after it ends.
func TestPlaySequence_BackToBack(t *testing.T) {
	t.Parallel()

	out := newRecordingOutput()
	seq := NewSequencer(out, WithPollInterval(testPoll))

	p, err := seq.PlaySequence(context.Background(), clips("chime", "speak"))
	require.NoError(t, err)
	require.Equal(t, []string{"stop", "load:chime", "play:chime"}, out.log())

	// While the first clip is busy nothing else happens.
	time.Sleep(quietPeriod)
	require.Equal(t, []string{"stop", "load:chime", "play:chime"}, out.log())
	require.False(t, isDone(p)())

	out.finishClip()
	require.Eventually(t, out.logContains("play:speak"), waitFor, checkEvery)
	require.False(t, isDone(p)())

	out.finishClip()
	require.Eventually(t, isDone(p), waitFor, checkEvery)
	require.Equal(t, []string{"chime", "speak"}, p.Played().Names())
	require.Empty(t, p.Failures())
}

// TestPlaySequence_SkipsMissingClip logs one failure and still plays the valid clip.
func TestPlaySequence_SkipsMissingClip(t *testing.T) {
	t.Parallel()

	out := newRecordingOutput("missing")
	seq := NewSequencer(out, WithPollInterval(testPoll))

	p, err := seq.PlaySequence(context.Background(), clips("missing", "valid"))
	require.NoError(t, err)
	require.Equal(t, []string{"stop", "load:missing", "load:valid", "play:valid"}, out.log())

	out.finishClip()
	require.NoError(t, p.Wait(context.Background()))

	failures := p.Failures()
	require.Len(t, failures, 1)
	require.Equal(t, "missing", failures[0].Clip.Name)
	require.ErrorIs(t, failures[0], fs.ErrNotExist)
	require.Equal(t, []string{"valid"}, p.Played().Names())
}

// TestPlaySequence_AllMissing finishes immediately when nothing can be played.
func TestPlaySequence_AllMissing(t *testing.T) {
	t.Parallel()

	out := newRecordingOutput("a", "b")
	seq := NewSequencer(out, WithPollInterval(testPoll))

	p, err := seq.PlaySequence(context.Background(), clips("a", "b"))
	require.NoError(t, err)
	require.True(t, isDone(p)())
	require.Len(t, p.Failures(), 2)
	require.Empty(t, p.Played())
}

// TestPlaySequence_OutputFailureAbandons stops at the first Play error.
func TestPlaySequence_OutputFailureAbandons(t *testing.T) {
	t.Parallel()

	out := newRecordingOutput()
	out.playErr = errDeviceGone
	seq := NewSequencer(out, WithPollInterval(testPoll))

	p, err := seq.PlaySequence(context.Background(), clips("chime", "speak"))
	require.NoError(t, err)
	require.True(t, isDone(p)())
	require.Equal(t, []string{"stop", "load:chime", "play:chime"}, out.log())

	failures := p.Failures()
	require.Len(t, failures, 1)
	require.ErrorIs(t, failures[0], errDeviceGone)
}

// TestPlaySequence_PreemptsPrevious stops the running sequence before the new one starts.
func TestPlaySequence_PreemptsPrevious(t *testing.T) {
	t.Parallel()

	out := newRecordingOutput()
	seq := NewSequencer(out, WithPollInterval(testPoll))

	first, err := seq.PlaySequence(context.Background(), clips("chime", "speak"))
	require.NoError(t, err)

	second, err := seq.PlaySequence(context.Background(), clips("test"))
	require.NoError(t, err)

	require.Equal(t, []string{
		"stop", "load:chime", "play:chime",
		"stop", "load:test", "play:test",
	}, out.log())
	require.Eventually(t, isDone(first), waitFor, checkEvery)
	require.False(t, isDone(second)())

	// The pre-empted sequence never resumes.
	out.finishClip()
	require.Eventually(t, isDone(second), waitFor, checkEvery)
	time.Sleep(quietPeriod)
	require.NotContains(t, out.log(), "load:speak")
	require.Equal(t, []string{"chime"}, first.Played().Names())
}

// TestPlaySequence_ContextEndsPlayback finishes the playback when ctx is canceled.
func TestPlaySequence_ContextEndsPlayback(t *testing.T) {
	t.Parallel()

	out := newRecordingOutput()
	seq := NewSequencer(out, WithPollInterval(testPoll))

	ctx, cancel := context.WithCancel(context.Background())

	p, err := seq.PlaySequence(ctx, clips("chime", "speak"))
	require.NoError(t, err)

	cancel()
	require.Eventually(t, isDone(p), waitFor, checkEvery)

	out.finishClip()
	time.Sleep(quietPeriod)
	require.NotContains(t, out.log(), "load:speak")
}

// TestSequencerStop silences the output and ends the playback.
func TestSequencerStop(t *testing.T) {
	t.Parallel()

	out := newRecordingOutput()
	seq := NewSequencer(out, WithPollInterval(testPoll))

	p, err := seq.PlaySequence(context.Background(), clips("chime"))
	require.NoError(t, err)

	seq.Stop()
	require.True(t, isDone(p)())
	require.False(t, out.Busy())
	require.Equal(t, "stop", out.log()[len(out.log())-1])
}

// TestPlayback_WaitHonorsContext returns the context error while still playing.
func TestPlayback_WaitHonorsContext(t *testing.T) {
	t.Parallel()

	out := newRecordingOutput()
	seq := NewSequencer(out, WithPollInterval(testPoll))

	p, err := seq.PlaySequence(context.Background(), clips("chime"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	require.ErrorIs(t, p.Wait(ctx), context.DeadlineExceeded)

	seq.Stop()
}
