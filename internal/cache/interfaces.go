// Package cache provides the process-wide store used to memoize resolved
// indicator payloads, with per-entry TTLs and lazy expiration.
package cache

import "time"

// Entry is a stored value together with its absolute expiry.
type Entry struct {
	Value     any
	ExpiresAt time.Time
}

// Reader defines the interface for reading cache entries
type Reader interface {
	// Get returns the value for key and true, or false if the key was never
	// set or its entry has expired. Expired entries are evicted on read.
	Get(key string) (any, bool)
}

// Writer defines the interface for writing cache entries
type Writer interface {
	// Set stores value under key, replacing any previous entry, so that it
	// expires ttl from now.
	Set(key string, value any, ttl time.Duration)
}

// Store combines both cache operations
type Store interface {
	Reader
	Writer
}
