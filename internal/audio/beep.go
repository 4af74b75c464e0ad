package audio

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/spf13/afero"

	"github.com/oshokin/hourly-chime/internal/domain/chime"
)

const (
	// DefaultSampleRate is the rate the speaker is opened with.
	DefaultSampleRate beep.SampleRate = 44100
	// resampleQuality is passed to beep.Resample for clips with another rate.
	resampleQuality = 4
	// speakerBuffer is the latency of the speaker buffer.
	speakerBuffer = time.Second / 10
)

// BeepOutput drives the default sound device through the beep speaker.
// The speaker is a process-wide singleton, so only one BeepOutput should exist.
type BeepOutput struct {
	// fs is the filesystem clips are opened from.
	fs afero.Fs
	// sampleRate is the speaker rate; clips are resampled to it.
	sampleRate beep.SampleRate

	// initOnce guards the lazy speaker initialization.
	initOnce sync.Once
	// initErr is the speaker initialization result.
	initErr error
	// opened is set once the speaker works.
	opened atomic.Bool

	// mu protects stream and format.
	mu sync.Mutex
	// stream is the decoded clip waiting to be played or playing.
	stream beep.StreamSeekCloser
	// format describes stream.
	format beep.Format

	// generation identifies the latest Play; callbacks of older ones are ignored.
	generation atomic.Uint64
	// busy is true from Play until the clip drains or Stop is called.
	busy atomic.Bool
}

// NewBeepOutput creates an output reading clips from fs.
func NewBeepOutput(fs afero.Fs) *BeepOutput {
	return &BeepOutput{
		fs:         fs,
		sampleRate: DefaultSampleRate,
	}
}

// Load opens and decodes a WAV or MP3 clip.
func (o *BeepOutput) Load(clip chime.Clip) error {
	file, err := o.fs.Open(clip.Path)
	if err != nil {
		return fmt.Errorf("open clip %s: %w", clip.Name, err)
	}

	var (
		stream beep.StreamSeekCloser
		format beep.Format
	)

	switch strings.ToLower(filepath.Ext(clip.Path)) {
	case ".wav":
		stream, format, err = wav.Decode(file)
	case ".mp3":
		stream, format, err = mp3.Decode(file)
	default:
		err = ErrUnsupportedFormat
	}

	if err != nil {
		_ = file.Close()

		return fmt.Errorf("decode clip %s: %w", clip.Name, err)
	}

	if o.busy.Load() {
		o.Stop()
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.closeStream()
	o.stream, o.format = stream, format

	return nil
}

// Play starts the loaded clip on the speaker.
func (o *BeepOutput) Play() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.stream == nil {
		return ErrNothingLoaded
	}

	if err := o.init(); err != nil {
		return err
	}

	var streamer beep.Streamer = o.stream
	if o.format.SampleRate != o.sampleRate {
		streamer = beep.Resample(resampleQuality, o.format.SampleRate, o.sampleRate, o.stream)
	}

	gen := o.generation.Add(1)

	o.busy.Store(true)

	// The callback runs on the speaker goroutine with the speaker locked,
	// so it must not take o.mu.
	speaker.Play(beep.Seq(streamer, beep.Callback(func() {
		if o.generation.Load() == gen {
			o.busy.Store(false)
		}
	})))

	return nil
}

// Busy reports whether the clip started by the last Play is still playing.
func (o *BeepOutput) Busy() bool {
	return o.busy.Load()
}

// Stop clears the speaker and releases the loaded clip.
func (o *BeepOutput) Stop() {
	o.generation.Add(1)
	o.busy.Store(false)

	if o.opened.Load() {
		speaker.Clear()
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.closeStream()
}

func (o *BeepOutput) init() error {
	o.initOnce.Do(func() {
		if err := speaker.Init(o.sampleRate, o.sampleRate.N(speakerBuffer)); err != nil {
			o.initErr = fmt.Errorf("init speaker: %w", err)

			return
		}

		o.opened.Store(true)
	})

	return o.initErr
}

// closeStream releases the decoded clip. Callers hold mu.
func (o *BeepOutput) closeStream() {
	if o.stream == nil {
		return
	}

	_ = o.stream.Close()
	o.stream = nil
}
