package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// PIILevel controls how personal data is written to logs.
type PIILevel string

const (
	// PIILevelNone redacts values entirely.
	PIILevelNone PIILevel = "none"
	// PIILevelHashed replaces emails and IP addresses with salted hashes.
	PIILevelHashed PIILevel = "hashed"
	// PIILevelFull logs values as-is.
	PIILevelFull PIILevel = "full"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	ipv4Pattern  = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
	ipv6Pattern  = regexp.MustCompile(`\b(?:[A-Fa-f0-9]{1,4}:){7}[A-Fa-f0-9]{1,4}\b`)
)

// Sanitizer scrubs emails and IP addresses from log values.
type Sanitizer struct {
	level PIILevel
	salt  string
}

// NewSanitizer builds a sanitizer. Unknown levels fall back to hashed.
func NewSanitizer(level, salt string) *Sanitizer {
	l := PIILevel(strings.ToLower(strings.TrimSpace(level)))
	switch l {
	case PIILevelNone, PIILevelHashed, PIILevelFull:
	default:
		l = PIILevelHashed
	}
	return &Sanitizer{level: l, salt: salt}
}

// Level returns the effective level.
func (s *Sanitizer) Level() PIILevel {
	if s == nil {
		return PIILevelFull
	}
	return s.level
}

// Sanitize rewrites every email and IP address found in input.
func (s *Sanitizer) Sanitize(input string) string {
	if input == "" {
		return ""
	}
	switch s.Level() {
	case PIILevelFull:
		return input
	case PIILevelNone:
		return "[REDACTED]"
	}

	result := emailPattern.ReplaceAllStringFunc(input, func(match string) string {
		return "[EMAIL:" + s.hash(match) + "]"
	})
	result = ipv4Pattern.ReplaceAllStringFunc(result, func(match string) string {
		return "[IP:" + s.hash(match) + "]"
	})
	return ipv6Pattern.ReplaceAllStringFunc(result, func(match string) string {
		return "[IP:" + s.hash(match) + "]"
	})
}

// hash returns the first 8 hex chars of sha256(data+salt).
func (s *Sanitizer) hash(data string) string {
	sum := sha256.Sum256([]byte(data + s.salt))
	return hex.EncodeToString(sum[:])[:8]
}
