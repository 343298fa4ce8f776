package complexity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShannonEntropy_EmptyAndSingleton(t *testing.T) {
	assert.Equal(t, 0.0, shannonEntropy(nil))
	assert.Equal(t, 0.0, shannonEntropy([]string{"x"}))
}

func TestShannonEntropy_RepetitiveLowerThanVaried(t *testing.T) {
	repetitive := []string{"if", "value", "<", "0", "if", "value", ">", "100", "if", "value", "%", "2"}
	varied := []string{"base", "discount", "loyalty", "bonus", "volume", "total", "min", "max", "customer", "premium", "regular", "years"}

	repH := shannonEntropy(repetitive)
	variedH := shannonEntropy(varied)

	assert.Less(t, repH, variedH)
}

func TestAdjustedComplexity_DampensLowEntropyRepetition(t *testing.T) {
	adjusted := adjustedComplexity(10, 0.1, 20)
	assert.Less(t, adjusted, 10.0)
	assert.GreaterOrEqual(t, adjusted, 1.0)
}

func TestAdjustedComplexity_PreservesHighEntropyLogic(t *testing.T) {
	adjusted := adjustedComplexity(10, 0.95, 20)
	assert.InDelta(t, 10*(0.6+0.4*0.95), adjusted, 0.0001)
}

func TestAdjustedComplexity_TooFewTokensTrustsRawCount(t *testing.T) {
	adjusted := adjustedComplexity(7, 0.0, 3)
	assert.Equal(t, 7.0, adjusted)
}

func TestCache_HitAfterSet(t *testing.T) {
	c := NewCache(4)
	_, ok := c.Get(42)
	assert.False(t, ok)

	c.Set(42, Metrics{Cyclomatic: 3})
	m, ok := c.Get(42)
	assert.True(t, ok)
	assert.Equal(t, 3, m.Cyclomatic)

	hits, misses := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestCache_EvictsLeastRecentlyUsed_Metrics(t *testing.T) {
	c := NewCache(2)
	c.Set(1, Metrics{Cyclomatic: 1})
	c.Set(2, Metrics{Cyclomatic: 2})
	c.Get(1) // touch 1, making 2 the LRU entry
	c.Set(3, Metrics{Cyclomatic: 3})

	_, ok := c.Get(2)
	assert.False(t, ok, "entry 2 should have been evicted as least-recently-used")

	_, ok = c.Get(1)
	assert.True(t, ok)
	_, ok = c.Get(3)
	assert.True(t, ok)
}
