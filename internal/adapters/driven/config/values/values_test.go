package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversions(t *testing.T) {
	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string", String("x"), "x"},
		{"string from int", String(3), ""},
		{"int", Int(4), 4},
		{"int from int64", Int(int64(5)), 5},
		{"int from float", Int(6.9), 6},
		{"int from string", Int("7"), 0},
		{"int from nil", Int(nil), 0},
		{"float", Float(0.5), 0.5},
		{"float from float32", Float(float32(0.25)), 0.25},
		{"float from int", Float(2), 2.0},
		{"float from int64", Float(int64(3)), 3.0},
		{"float from bool", Float(true), 0.0},
		{"bool", Bool(true), true},
		{"bool from string", Bool("true"), false},
		{"strings", Strings([]string{"a"}), []string{"a"}},
		{"strings from any", Strings([]any{"a", 1, "b"}), []string{"a", "b"}},
		{"strings from string", Strings("a"), []string(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}
