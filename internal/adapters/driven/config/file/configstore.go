package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/recall-labs/recall-cli/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore persists configuration as TOML under the Recall config
// directory. Values load into a flat map keyed by dot notation, so a
// [vault] table with a path entry reads as "vault.path".
type ConfigStore struct {
	mu     sync.RWMutex
	path   string
	values map[string]any
}

// NewConfigStore opens the store rooted at configDir, creating the
// directory if needed. An empty configDir means ~/.recall.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".recall")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	s := &ConfigStore{
		path:   filepath.Join(configDir, "config.toml"),
		values: make(map[string]any),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the raw value for key and whether it exists.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	return v, ok
}

// value returns the entry for key when it holds exactly type T.
func value[T any](s *ConfigStore, key string) (T, bool) {
	raw, ok := s.Get(key)
	if !ok {
		var zero T
		return zero, false
	}
	v, ok := raw.(T)
	return v, ok
}

// GetString returns the string at key, or "" when absent or not a string.
func (s *ConfigStore) GetString(key string) string {
	v, _ := value[string](s, key)
	return v
}

// GetBool returns the bool at key, or false when absent or not a bool.
func (s *ConfigStore) GetBool(key string) bool {
	v, _ := value[bool](s, key)
	return v
}

// GetInt returns the integer at key. TOML decodes integers as int64;
// values stored through Set may be plain int.
func (s *ConfigStore) GetInt(key string) int {
	raw, _ := s.Get(key)
	switch v := raw.(type) {
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// GetFloat returns the number at key as a float. Integer values
// convert, since TOML users write temperature = 1 as readily as 1.0.
func (s *ConfigStore) GetFloat(key string) float64 {
	raw, _ := s.Get(key)
	switch v := raw.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// GetStringSlice returns the string list at key. TOML decodes arrays
// as []any; non-string elements are skipped.
func (s *ConfigStore) GetStringSlice(key string) []string {
	raw, _ := s.Get(key)
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// Set stores value under key and writes the file immediately.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return s.flush()
}

// Save writes the current values to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flush()
}

// flush marshals and writes the file. Caller holds the lock. The file
// is mode 0600; it can hold API keys.
func (s *ConfigStore) flush() error {
	encoded, err := toml.Marshal(s.values)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, encoded, 0600)
}

// Load replaces the in-memory values with the file contents. A missing
// file is not an error; the store starts empty.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.values = make(map[string]any)
			return nil
		}
		return err
	}

	var parsed map[string]any
	if err := toml.Unmarshal(raw, &parsed); err != nil {
		return err
	}

	flat := make(map[string]any)
	flatten(flat, "", parsed)
	s.values = flat
	return nil
}

// flatten collapses nested tables into dst using dot-notation keys.
func flatten(dst map[string]any, prefix string, src map[string]any) {
	for key, val := range src {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if table, ok := val.(map[string]any); ok {
			flatten(dst, full, table)
			continue
		}
		dst[full] = val
	}
}

// Path reports which file the store reads and writes.
func (s *ConfigStore) Path() string {
	return s.path
}
