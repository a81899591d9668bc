package cache

import (
	"fmt"
	"time"

	"deepresearch-be/internal/entity"
	"deepresearch-be/pkg/llm"

	patrickmncache "github.com/patrickmn/go-cache"
	"golang.org/x/crypto/blake2b"
)

// Entry is the immutable payload stored under a (query, mode)
// fingerprint: a fully completed research result, ready to be returned
// as-is (with fromCache stamped by the caller) on a cache hit.
type Entry struct {
	Report    string
	Citations []entity.Citation
	Tokens    llm.TokenUsage
	LatencyMs int
}

// ResearchCache is the process-local, self-sweeping (query, mode) →
// Entry cache. It is a hint, never a lock: concurrent writers for the
// same key are fine, last writer wins.
type ResearchCache struct {
	store *patrickmncache.Cache

	quickTTL    time.Duration
	standardTTL time.Duration
	deepTTL     time.Duration
}

func NewResearchCache(quickTTL, standardTTL, deepTTL time.Duration) *ResearchCache {
	return &ResearchCache{
		store:       patrickmncache.New(standardTTL, 5*time.Minute),
		quickTTL:    quickTTL,
		standardTTL: standardTTL,
		deepTTL:     deepTTL,
	}
}

func (c *ResearchCache) ttlFor(mode string) time.Duration {
	switch mode {
	case "quick":
		return c.quickTTL
	case "deep":
		return c.deepTTL
	default:
		return c.standardTTL
	}
}

// Get returns the cached entry for (query, mode), if any and unexpired.
// go-cache reports an expired item as a miss but leaves it in the store
// until its sweep runs, so Get removes the key itself on a miss.
func (c *ResearchCache) Get(query, mode string) (Entry, bool) {
	key := Fingerprint(query, mode)
	v, found := c.store.Get(key)
	if !found {
		c.store.Delete(key)
		return Entry{}, false
	}
	entry, ok := v.(Entry)
	return entry, ok
}

// Set stores an immutable completed result under its (query, mode)
// fingerprint with the mode's TTL.
func (c *ResearchCache) Set(query, mode string, entry Entry) {
	c.store.Set(Fingerprint(query, mode), entry, c.ttlFor(mode))
}

// Fingerprint is a short, collision-resistant key derived from
// query || "::" || mode via blake2b, truncated to 16 bytes — enough
// collision resistance for an in-process cache, far shorter than the
// raw query string.
func Fingerprint(query, mode string) string {
	sum := blake2b.Sum256([]byte(query + "::" + mode))
	return fmt.Sprintf("%x", sum[:16])
}
