package driven

// ConfigStore is a flat key/value view of the settings file, with dotted
// keys such as "rag.top_k". Typed getters return the zero value for a
// missing key or one that cannot be converted.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// GetFloat accepts integer values too.
	GetFloat(key string) float64

	// Set writes through to storage.
	Set(key string, value any) error

	Save() error
	Load() error

	// Path locates the backing file for display.
	Path() string
}
