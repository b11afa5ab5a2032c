package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSanitizerLevels(t *testing.T) {
	tests := []struct {
		in   string
		want PIILevel
	}{
		{"none", PIILevelNone},
		{"HASHED", PIILevelHashed},
		{" full ", PIILevelFull},
		{"", PIILevelHashed},
		{"bogus", PIILevelHashed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewSanitizer(tt.in, "salt").Level(), "level %q", tt.in)
	}

	var nilSanitizer *Sanitizer
	assert.Equal(t, PIILevelFull, nilSanitizer.Level())
	assert.Equal(t, "a@x.com", nilSanitizer.Sanitize("a@x.com"))
}

func TestSanitizeHashed(t *testing.T) {
	s := NewSanitizer("hashed", "simple-social")

	out := s.Sanitize("email=alice@example.com&from=10.0.0.1")
	assert.NotContains(t, out, "alice@example.com")
	assert.NotContains(t, out, "10.0.0.1")
	assert.Contains(t, out, "email=[EMAIL:")
	assert.Contains(t, out, "&from=[IP:")

	assert.Equal(t, s.Sanitize("alice@example.com"), s.Sanitize("alice@example.com"))
	assert.NotEqual(t, s.Sanitize("alice@example.com"), NewSanitizer("hashed", "other").Sanitize("alice@example.com"))

	ipv6 := s.Sanitize("2001:0db8:85a3:0000:0000:8a2e:0370:7334")
	assert.Regexp(t, `^\[IP:[0-9a-f]{8}\]$`, ipv6)

	assert.Equal(t, "caption=hello", s.Sanitize("caption=hello"))
	assert.Equal(t, "", s.Sanitize(""))
}

func TestSanitizeNoneAndFull(t *testing.T) {
	assert.Equal(t, "[REDACTED]", NewSanitizer("none", "").Sanitize("a@x.com"))
	assert.Equal(t, "a@x.com", NewSanitizer("full", "").Sanitize("a@x.com"))
}
