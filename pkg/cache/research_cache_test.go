package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResearchCache_SetThenGet_Idempotent(t *testing.T) {
	c := NewResearchCache(15*time.Minute, 20*time.Minute, 30*time.Minute)
	entry := Entry{Report: "report content", LatencyMs: 42}

	c.Set("what is http", "quick", entry)

	got, hit := c.Get("what is http", "quick")
	assert.True(t, hit)
	assert.Equal(t, entry.Report, got.Report)
	assert.Equal(t, entry.LatencyMs, got.LatencyMs)

	got2, hit2 := c.Get("what is http", "quick")
	assert.True(t, hit2)
	assert.Equal(t, got, got2)
}

func TestResearchCache_Miss_ForUnknownKey(t *testing.T) {
	c := NewResearchCache(15*time.Minute, 20*time.Minute, 30*time.Minute)
	_, hit := c.Get("never asked", "standard")
	assert.False(t, hit)
}

func TestResearchCache_KeyIsScopedByMode(t *testing.T) {
	c := NewResearchCache(15*time.Minute, 20*time.Minute, 30*time.Minute)
	c.Set("same query", "quick", Entry{Report: "quick answer"})

	_, hit := c.Get("same query", "deep")
	assert.False(t, hit, "a cache entry under one mode must not satisfy a lookup under another mode")
}

func TestResearchCache_Fingerprint_StableAndDistinct(t *testing.T) {
	a := Fingerprint("what is http", "quick")
	b := Fingerprint("what is http", "quick")
	assert.Equal(t, a, b, "fingerprint must be deterministic for the same (query, mode)")

	diffMode := Fingerprint("what is http", "deep")
	assert.NotEqual(t, a, diffMode)

	diffQuery := Fingerprint("what is tcp", "quick")
	assert.NotEqual(t, a, diffQuery)
}
