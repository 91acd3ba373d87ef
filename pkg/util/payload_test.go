package util

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncatePayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		max  int
		want string
	}{
		{"short payload untouched", "hello", 100, "hello"},
		{"exact length untouched", "12345", 5, "12345"},
		{"one over", "123456", 5, "12345...(truncated)"},
		{"zero max uses default", "hello", 0, "hello"},
		{"negative max uses default", "hello", -1, "hello"},
		{"empty payload", "", 10, ""},
		{"hard cut", "abcdefghij", 3, "abc...(truncated)"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, TruncatePayload([]byte(tt.data), tt.max))
		})
	}
}

func TestTruncatePayloadDefaultCap(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte{'x'}, MaxLogPayload+50)
	got := TruncatePayload(data, 0)
	assert.Len(t, got, MaxLogPayload+len("...(truncated)"))
	assert.Contains(t, got, "...(truncated)")

	// At the cap, nothing is cut.
	assert.Equal(t, string(data[:MaxLogPayload]), TruncatePayload(data[:MaxLogPayload], 0))
}
