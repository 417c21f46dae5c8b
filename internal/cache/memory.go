package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Seen remembers keys for a limited time. It is used to log a repeated
// condition once per window instead of once per occurrence.
type Seen struct {
	cache *gocache.Cache
}

// NewSeen creates a Seen cache. A ttl of zero keeps keys for the whole run.
func NewSeen(ttl time.Duration) *Seen {
	cleanup := 10 * time.Minute
	if ttl <= 0 {
		ttl = gocache.NoExpiration
		cleanup = 0
	}
	return &Seen{
		cache: gocache.New(ttl, cleanup),
	}
}

// First reports whether key was not seen within the window and marks it seen
func (s *Seen) First(key string) bool {
	return s.cache.Add(key, struct{}{}, gocache.DefaultExpiration) == nil
}
