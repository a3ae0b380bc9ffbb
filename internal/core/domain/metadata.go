package domain

// Standard metadata keys attached to every chunk.
const (
	KeyFilePath          = "file_path"
	KeyFileName          = "file_name"
	KeyRelativePath      = "relative_path"
	KeyRelativeDirectory = "relative_directory"
	KeyDepth             = "depth"
	KeyFileType          = "file_type"
	KeyIsCode            = "is_code"
	KeyIsDocumentation   = "is_documentation"
	KeyRepository        = "repository"
	KeyRepositoryPath    = "repository_path"
	KeyInRepository      = "in_repository"
	KeyKeywords          = "keywords"
	KeyPageLabel         = "page_label"
	KeyHeaderPath        = "header_path"
)

// Metadata maps string keys to scalar values.
type Metadata map[string]any

// Clone returns a shallow copy. A nil receiver yields an empty map.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Merge returns a new map holding m overlaid with other.
// Keys present in both take other's value.
func (m Metadata) Merge(other Metadata) Metadata {
	out := m.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}

// String returns the string value for key, or "" when absent or not a string.
func (m Metadata) String(key string) string {
	s, _ := m[key].(string)
	return s
}

// Bool returns the bool value for key, or false when absent or not a bool.
func (m Metadata) Bool(key string) bool {
	b, _ := m[key].(bool)
	return b
}

// Int returns the integer value for key.
// Numbers decoded from JSON arrive as float64 and are converted.
func (m Metadata) Int(key string) (int, bool) {
	switch v := m[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// Strings returns the string slice value for key.
// Slices decoded from JSON arrive as []any and are converted.
func (m Metadata) Strings(key string) []string {
	switch v := m[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
