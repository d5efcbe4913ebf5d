package memory

import (
	"sync"

	"github.com/recall-labs/recall-cli/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a map. Tests use it in place of the
// TOML store; Save and Load are no-ops since there is no file.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore returns an empty store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{values: make(map[string]any)}
}

// Get returns the raw value for key and whether it exists.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// GetString returns the string at key, or "".
func (s *ConfigStore) GetString(key string) string {
	raw, _ := s.Get(key)
	v, _ := raw.(string)
	return v
}

// GetBool returns the bool at key, or false.
func (s *ConfigStore) GetBool(key string) bool {
	raw, _ := s.Get(key)
	v, _ := raw.(bool)
	return v
}

// GetInt returns the integer at key, accepting the numeric types
// tests are likely to store.
func (s *ConfigStore) GetInt(key string) int {
	raw, _ := s.Get(key)
	switch v := raw.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// GetFloat returns the number at key as a float.
func (s *ConfigStore) GetFloat(key string) float64 {
	raw, _ := s.Get(key)
	switch v := raw.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// GetStringSlice returns the string list at key, or nil.
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

// Set stores value under key.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Save is a no-op.
func (s *ConfigStore) Save() error { return nil }

// Load is a no-op.
func (s *ConfigStore) Load() error { return nil }

// Path identifies the store in settings output.
func (s *ConfigStore) Path() string { return ":memory:" }
