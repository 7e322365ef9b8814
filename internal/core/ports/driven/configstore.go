package driven

// ConfigStore is the key/value view of config.toml. Keys are dotted paths
// such as "llm.model". Typed getters return the zero value when a key is
// missing or holds another type.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	// GetFloat also accepts integer values.
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set writes the value through to disk.
	Set(key string, value any) error
	Save() error
	Load() error

	// Path is the file backing the store, or "" for in-memory stores.
	Path() string
}
