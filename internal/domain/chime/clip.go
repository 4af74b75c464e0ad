package chime

// Clip references a single audio file.
type Clip struct {
	// Name is a short label used in logs (e.g. "chime-westminster").
	Name string
	// Path is the location of the file on the resource filesystem.
	Path string
}

// Sequence is an ordered list of clips played back-to-back.
type Sequence []Clip

// Names returns clip labels, mostly for logging.
func (s Sequence) Names() []string {
	names := make([]string, 0, len(s))
	for _, clip := range s {
		names = append(names, clip.Name)
	}

	return names
}
