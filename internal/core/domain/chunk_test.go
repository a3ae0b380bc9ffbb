package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsBlank(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"empty", "", true},
		{"spaces", "   ", true},
		{"mixed whitespace", " \n\t\r\n ", true},
		{"text", "x", false},
		{"padded text", "  x  ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBlank(tt.input))
			assert.Equal(t, tt.want, RawChunk{Text: tt.input}.IsBlank())
			assert.Equal(t, tt.want, Chunk{Text: tt.input}.IsBlank())
		})
	}
}

func TestTrimmedLen(t *testing.T) {
	assert.Equal(t, 0, TrimmedLen("   "))
	assert.Equal(t, 5, TrimmedLen("  hello \n"))
	// Characters, not bytes.
	assert.Equal(t, 4, TrimmedLen("über"))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "abc", Preview("abc", 10))
	assert.Equal(t, "ab", Preview("abc", 2))
	assert.Equal(t, "üb", Preview("über", 2))
}

func TestIndexReport_Duration(t *testing.T) {
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	r := IndexReport{StartedAt: start, FinishedAt: start.Add(90 * time.Second)}

	assert.Equal(t, 90*time.Second, r.Duration())
}
