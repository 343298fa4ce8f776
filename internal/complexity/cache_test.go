package complexity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(2)
	c.Set(1, Metrics{Cyclomatic: 1})
	c.Set(2, Metrics{Cyclomatic: 2})

	// Touch key 1 so key 2 becomes the eviction candidate.
	_, ok := c.Get(1)
	assert.True(t, ok)

	c.Set(3, Metrics{Cyclomatic: 3})

	_, ok = c.Get(2)
	assert.False(t, ok, "least-recently-used entry should have been evicted")
	_, ok = c.Get(1)
	assert.True(t, ok)
	_, ok = c.Get(3)
	assert.True(t, ok)
}

func TestCache_SnapshotTracksAllCounters(t *testing.T) {
	c := NewCache(2)
	c.Set(1, Metrics{})
	c.Set(2, Metrics{})
	c.Get(1)  // hit
	c.Get(99) // miss
	c.Set(3, Metrics{}) // evicts

	s := c.Snapshot()
	assert.Equal(t, 2, s.Entries)
	assert.Equal(t, 1, s.Hits)
	assert.Equal(t, 1, s.Misses)
	assert.Equal(t, 1, s.Evictions)
	assert.InDelta(t, 0.5, s.HitRate(), 0.0001)
}

func TestCacheStats_HitRateZeroBeforeAnyLookup(t *testing.T) {
	assert.Equal(t, 0.0, CacheStats{}.HitRate())
}

func TestCache_UpdateExistingKeyDoesNotEvict(t *testing.T) {
	c := NewCache(2)
	c.Set(1, Metrics{Cyclomatic: 1})
	c.Set(2, Metrics{Cyclomatic: 2})
	c.Set(1, Metrics{Cyclomatic: 7})

	m, ok := c.Get(1)
	assert.True(t, ok)
	assert.Equal(t, 7, m.Cyclomatic)
	assert.Equal(t, 0, c.Snapshot().Evictions)
}

func TestShannonEntropy_RepetitiveStreamIsLow(t *testing.T) {
	repetitive := shannonEntropy([]string{"x", "x", "x", "x", "x", "x", "x", "x"})
	varied := shannonEntropy([]string{"a", "b", "c", "d", "e", "f", "g", "h"})

	assert.Less(t, repetitive, varied)
	assert.Equal(t, 0.0, repetitive)
	assert.InDelta(t, 1.0, varied, 0.0001)
}

func TestShannonEntropy_BoundsAndDegenerateInputs(t *testing.T) {
	assert.Equal(t, 0.0, shannonEntropy(nil))
	assert.Equal(t, 0.0, shannonEntropy([]string{"only"}))

	h := shannonEntropy([]string{"a", "a", "b", "b", "c"})
	assert.GreaterOrEqual(t, h, 0.0)
	assert.LessOrEqual(t, h, 1.0)
}

func TestAdjustedComplexity_DampensRepetitiveNeverBelowOne(t *testing.T) {
	// Repetitive body: dampened toward 60% of raw but floored at raw for
	// varied logic and at 1 absolutely.
	assert.InDelta(t, 6.0, adjustedComplexity(10, 0, 100), 0.0001)
	assert.InDelta(t, 10.0, adjustedComplexity(10, 1, 100), 0.0001)
	assert.Equal(t, 1.0, adjustedComplexity(1, 0, 100))

	// Too few tokens: entropy signal is noise, raw count wins.
	assert.Equal(t, 5.0, adjustedComplexity(5, 0, 3))
}
