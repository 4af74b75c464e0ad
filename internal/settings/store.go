package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/hourly-chime/internal/config"
)

// Reader is the read side of the store used by the scheduler.
type Reader interface {
	GetBool(key string, fallback bool) bool
	GetInt(key string, fallback int) int
	GetString(key string, fallback string) string
}

// ReadWriter adds write-through updates to Reader.
type ReadWriter interface {
	Reader
	SetValue(key string, value any) error
}

var (
	// errNotMapping is returned when the settings document is not a YAML mapping.
	errNotMapping = errors.New("settings document is not a mapping")
	// errEmptyKey is returned by SetValue for blank keys.
	errEmptyKey = errors.New("settings key must not be empty")
)

// entry keeps a value together with the key spelling it was written with.
type entry struct {
	key   string
	value string
}

// Store is a file-backed key-value store with typed getters.
type Store struct {
	// fs is the filesystem holding the settings file.
	fs afero.Fs
	// path is the location of the YAML file.
	path string
	// values maps lower-cased keys to entries.
	values map[string]entry
	// modTime is the modification time of the file when it was last read or written.
	modTime time.Time
	// mu protects values and modTime.
	mu sync.Mutex
	// created is set when Open wrote the defaults because no file existed.
	created bool
}

// Open loads the settings file, creating it with Defaults when it does not exist.
func Open(fs afero.Fs, path string) (*Store, error) {
	s := &Store{
		fs:     fs,
		path:   filepath.Clean(path),
		values: make(map[string]entry, len(knownKeys)),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.read()
	if err == nil {
		return s, nil
	}

	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	for key, value := range Defaults() {
		s.values[strings.ToLower(key)] = entry{key: key, value: value}
	}

	if err = s.write(); err != nil {
		return nil, err
	}

	s.created = true

	return s, nil
}

// Created reports whether the values are fresh defaults rather than read from an existing file.
func (s *Store) Created() bool {
	return s.created
}

// Path returns the location of the settings file.
func (s *Store) Path() string {
	return s.path
}

// Refresh re-reads the file when it changed on disk since the last read or write.
// On failure the previously loaded values stay in effect.
func (s *Store) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := s.fs.Stat(s.path)
	if err != nil {
		return fmt.Errorf("stat settings: %w", err)
	}

	if info.ModTime().Equal(s.modTime) {
		return nil
	}

	return s.read()
}

// GetBool returns the boolean stored under key or fallback when missing or malformed.
// Besides strconv forms, yes/no and on/off are accepted.
func (s *Store) GetBool(key string, fallback bool) bool {
	raw, ok := s.lookup(key)
	if !ok {
		return fallback
	}

	switch strings.ToLower(raw) {
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}

	return value
}

// GetInt returns the integer stored under key or fallback when missing or malformed.
func (s *Store) GetInt(key string, fallback int) int {
	raw, ok := s.lookup(key)
	if !ok {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return value
}

// GetString returns the string stored under key or fallback when missing.
func (s *Store) GetString(key, fallback string) string {
	raw, ok := s.lookup(key)
	if !ok {
		return fallback
	}

	return raw
}

// SetValue stores the value and persists the file immediately.
// Booleans are written in lower case.
func (s *Store) SetValue(key string, value any) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lower := strings.ToLower(key)

	previous, existed := s.values[lower]
	if existed {
		key = previous.key
	}

	s.values[lower] = entry{key: key, value: formatValue(value)}

	if err := s.write(); err != nil {
		if existed {
			s.values[lower] = previous
		} else {
			delete(s.values, lower)
		}

		return err
	}

	return nil
}

func (s *Store) lookup(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.values[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return "", false
	}

	return strings.TrimSpace(e.value), true
}

// read replaces values with the file contents. Callers hold mu.
func (s *Store) read() error {
	contents, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	var document yaml.Node
	if err = yaml.Unmarshal(contents, &document); err != nil {
		return fmt.Errorf("unmarshal settings: %w", err)
	}

	values := make(map[string]entry, len(knownKeys))

	// An empty file decodes to a zero node and simply has no values.
	if len(document.Content) > 0 {
		root := document.Content[0]
		if root.Kind != yaml.MappingNode {
			return errNotMapping
		}

		for i := 0; i+1 < len(root.Content); i += 2 {
			keyNode, valueNode := root.Content[i], root.Content[i+1]
			if valueNode.Kind != yaml.ScalarNode {
				continue
			}

			values[strings.ToLower(keyNode.Value)] = entry{key: keyNode.Value, value: valueNode.Value}
		}
	}

	s.values = values
	s.touch()

	return nil
}

// write serializes values in a stable order: known keys first, then the rest sorted.
// Callers hold mu.
func (s *Store) write() error {
	root := &yaml.Node{Kind: yaml.MappingNode}

	for _, e := range s.ordered() {
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: e.key},
			&yaml.Node{Kind: yaml.ScalarNode, Value: e.value},
		)
	}

	data, err := yaml.Marshal(root)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err = s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings directory: %w", err)
		}
	}

	if err = afero.WriteFile(s.fs, s.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	s.touch()

	return nil
}

func (s *Store) ordered() []entry {
	result := make([]entry, 0, len(s.values))
	seen := make(map[string]struct{}, len(knownKeys))

	for _, key := range knownKeys {
		lower := strings.ToLower(key)
		if e, ok := s.values[lower]; ok {
			result = append(result, e)
			seen[lower] = struct{}{}
		}
	}

	rest := make([]string, 0, len(s.values))
	for lower := range s.values {
		if _, ok := seen[lower]; !ok {
			rest = append(rest, lower)
		}
	}

	slices.Sort(rest)

	for _, lower := range rest {
		result = append(result, s.values[lower])
	}

	return result
}

// touch remembers the current modification time of the file.
func (s *Store) touch() {
	if info, err := s.fs.Stat(s.path); err == nil {
		s.modTime = info.ModTime()
	}
}

func formatValue(value any) string {
	switch v := value.(type) {
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// InMemory returns a store holding Defaults that never touches the disk.
// It stands in when the settings file cannot be read.
func InMemory() *Store {
	s := &Store{
		fs:     afero.NewMemMapFs(),
		path:   filepath.Join(string(filepath.Separator), config.DefaultSettingsFilename),
		values: make(map[string]entry, len(knownKeys)),
	}

	for key, value := range Defaults() {
		s.values[strings.ToLower(key)] = entry{key: key, value: value}
	}

	// Writing to a fresh MemMapFs does not fail; it gives Refresh a file to stat.
	_ = s.write()
	s.created = true

	return s
}
