// Package resources maps chime styles and hours to audio files under the
// resource directory.
package resources

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/oshokin/hourly-chime/internal/domain/chime"
)

// SoundDir is the sub-directory holding every clip.
const SoundDir = "src-sound"

// Resolver builds clip sequences from files present on fs.
type Resolver struct {
	// fs is the filesystem the clips are read from.
	fs afero.Fs
	// dir is the resource root containing SoundDir.
	dir string
}

// NewResolver creates a resolver rooted at dir.
func NewResolver(fs afero.Fs, dir string) *Resolver {
	return &Resolver{
		fs:  fs,
		dir: filepath.Clean(dir),
	}
}

// Chime returns the primary clip for the style. The file may be missing;
// the sequencer reports and skips such clips.
func (r *Resolver) Chime(style chime.Style) chime.Clip {
	name := "chime-" + style.String()

	return chime.Clip{
		Name: name,
		Path: filepath.Join(r.dir, SoundDir, name+".wav"),
	}
}

// HourAnnouncement returns the spoken hour clip when it exists.
func (r *Resolver) HourAnnouncement(hour int) (chime.Clip, bool) {
	if chime.ValidateHour(hour) != nil {
		return chime.Clip{}, false
	}

	name := fmt.Sprintf("hourly-speak-%02d", hour)
	clip := chime.Clip{
		Name: name,
		Path: filepath.Join(r.dir, SoundDir, name+".wav"),
	}

	exists, err := afero.Exists(r.fs, clip.Path)
	if err != nil || !exists {
		return chime.Clip{}, false
	}

	return clip, true
}

// Sequence returns [primary chime, hour announcement if present].
func (r *Resolver) Sequence(style chime.Style, hour int) chime.Sequence {
	sequence := chime.Sequence{r.Chime(style)}

	if announcement, ok := r.HourAnnouncement(hour); ok {
		sequence = append(sequence, announcement)
	}

	return sequence
}
