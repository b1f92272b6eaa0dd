package cache

import (
	"time"
)

// Entry is a cached Shovels page response.
type Entry struct {
	// Data is the raw response body.
	Data []byte `json:"data"`

	// StoredAt is when the response was cached.
	StoredAt time.Time `json:"stored_at"`
}

// Age returns how long ago the entry was stored.
func (e *Entry) Age() time.Duration {
	return time.Since(e.StoredAt)
}
