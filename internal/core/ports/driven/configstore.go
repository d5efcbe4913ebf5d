package driven

// ConfigStore reads and writes application settings. Keys use dot
// notation ("vault.path", "llm.temperature"); the typed getters
// return the zero value when a key is absent or holds another type,
// so callers layer their own defaults on top.
type ConfigStore interface {
	// Get returns the raw value for key and whether it exists.
	Get(key string) (any, bool)

	// GetString returns the string at key, or "".
	GetString(key string) string

	// GetInt returns the integer at key, or 0. Implementations accept
	// the integer types their decoder produces (TOML yields int64).
	GetInt(key string) int

	// GetBool returns the bool at key, or false.
	GetBool(key string) bool

	// GetFloat returns the number at key, or 0. Integer values convert.
	GetFloat(key string) float64

	// GetStringSlice returns the string list at key, or nil.
	GetStringSlice(key string) []string

	// Set stores value under key and persists immediately.
	Set(key string, value any) error

	// Save persists the current values.
	Save() error

	// Load replaces the current values from storage.
	Load() error

	// Path names the backing file, for display in settings output.
	Path() string
}
