package driven

// ConfigStore is the persisted key/value layer under Settings. Keys are
// dotted paths such as "chunking.min_code" that map onto TOML tables.
//
// The typed getters never fail: a missing key or a value of the wrong
// type yields the zero value, and the caller substitutes its default.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string

	// GetInt accepts int, int64 and float64 values.
	GetInt(key string) int

	// GetFloat accepts floats and integers.
	GetFloat(key string) float64

	GetBool(key string) bool

	// GetStringSlice accepts a list of strings in either typed or decoded
	// ([]any) form.
	GetStringSlice(key string) []string

	// Set updates one key and writes the file.
	Set(key string, value any) error

	Save() error
	Load() error

	// Path is the backing file, or a placeholder for in-memory stores.
	Path() string
}
