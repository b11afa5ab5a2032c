package postid

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const prefix = "post_"

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// New returns a post_* ULID string. IDs generated by one process sort in
// creation order, which the feed relies on to break created_at ties.
func New() string {
	return NewAt(time.Now())
}

// NewAt returns a post_* ULID with the given timestamp component.
func NewAt(t time.Time) string {
	entropyMu.Lock()
	id := ulid.MustNew(ulid.Timestamp(t), entropy)
	entropyMu.Unlock()
	return prefix + strings.ToLower(id.String())
}

// IsValid reports whether the string is a well-formed post identifier.
func IsValid(value string) bool {
	if !strings.HasPrefix(value, prefix) {
		return false
	}
	_, err := Parse(value)
	return err == nil
}

// Parse strips the post_ prefix and returns the ULID.
func Parse(value string) (ulid.ULID, error) {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, prefix)
	return ulid.ParseStrict(value)
}
