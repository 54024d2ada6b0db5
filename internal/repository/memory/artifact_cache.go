package memory

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// ArtifactCache is the in-process hot layer of the artifact cache. It only
// ever holds payloads from completed jobs; entries expire on their own and
// the durable layers remain authoritative.
type ArtifactCache struct {
	cache *cache.Cache
}

func NewArtifactCache(ttl time.Duration) *ArtifactCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	// Purge expired entries every 10 minutes
	c := cache.New(ttl, 10*time.Minute)
	return &ArtifactCache{
		cache: c,
	}
}

func key(userId uuid.UUID, fingerprint string) string {
	return userId.String() + ":" + fingerprint
}

func (c *ArtifactCache) Set(userId uuid.UUID, fingerprint string, payload json.RawMessage) {
	c.cache.Set(key(userId, fingerprint), payload, cache.DefaultExpiration)
}

func (c *ArtifactCache) Get(userId uuid.UUID, fingerprint string) (json.RawMessage, bool) {
	if x, found := c.cache.Get(key(userId, fingerprint)); found {
		return x.(json.RawMessage), true
	}
	return nil, false
}

// DeletePrefix drops every entry of the user whose fingerprint starts with
// prefix and returns how many were dropped.
func (c *ArtifactCache) DeletePrefix(userId uuid.UUID, prefix string) int {
	full := key(userId, prefix)
	deleted := 0
	for k := range c.cache.Items() {
		if strings.HasPrefix(k, full) {
			c.cache.Delete(k)
			deleted++
		}
	}
	return deleted
}
