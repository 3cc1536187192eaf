package automod

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowEviction(t *testing.T) {
	w := &MessageWindow{}
	for i := 0; i < windowSize+10; i++ {
		w.Add(&CachedMessage{ID: fmt.Sprintf("m%d", i)})
	}
	assert.Equal(t, windowSize, w.Len())

	msgs := w.Select(0, 0, true, "", time.Now())
	assert.Equal(t, "m10", msgs[0].ID, "oldest entries are evicted first")
}

func TestWindowEditReplacesInPlace(t *testing.T) {
	w := &MessageWindow{}
	w.Add(&CachedMessage{ID: "a", Content: "one"})
	w.Add(&CachedMessage{ID: "b", Content: "two"})
	w.Add(&CachedMessage{ID: "a", Content: "edited"})

	assert.Equal(t, 2, w.Len())
	msgs := w.Select(0, 0, true, "", time.Now())
	assert.Equal(t, "edited", msgs[0].Content)
	assert.Equal(t, "b", msgs[1].ID, "edit does not reorder the window")
}

func TestWindowSelect(t *testing.T) {
	now := time.Now()
	w := &MessageWindow{}
	w.Add(&CachedMessage{ID: "old", ChannelID: "c1", Content: "hello", CreatedAt: now.Add(-time.Hour)})
	w.Add(&CachedMessage{ID: "short", ChannelID: "c1", Content: "hi", CreatedAt: now})
	w.Add(&CachedMessage{ID: "other", ChannelID: "c2", Content: "hello", CreatedAt: now})
	w.Add(&CachedMessage{ID: "match", ChannelID: "c1", Content: "hello", CreatedAt: now})

	scoped := w.Select(3, 30*time.Minute, false, "c1", now)
	if assert.Len(t, scoped, 1) {
		assert.Equal(t, "match", scoped[0].ID)
	}

	global := w.Select(3, 30*time.Minute, true, "c1", now)
	assert.Len(t, global, 2, "global scope includes other channels")

	all := w.Select(0, 0, true, "", now)
	assert.Len(t, all, 4, "zero lookback means unbounded")
}

func TestMemoized(t *testing.T) {
	m := &CachedMessage{Content: "x"}
	calls := 0
	compute := func(*CachedMessage) RuleCount {
		calls++
		return RuleCount{Count: 7}
	}

	assert.Equal(t, RuleCount{Count: 7}, m.Memoized("rule-1", compute))
	assert.Equal(t, RuleCount{Count: 7}, m.Memoized("rule-1", compute))
	assert.Equal(t, 1, calls, "second lookup hits the memo")

	m.Memoized("rule-2", compute)
	assert.Equal(t, 2, calls, "memo is keyed per rule")
}

func TestWindowCache(t *testing.T) {
	c := NewWindowCache()
	w1 := c.Window("g", "u")
	w1.Add(&CachedMessage{ID: "a"})

	w2 := c.Window("g", "u")
	assert.Same(t, w1, w2)
	assert.Equal(t, 1, w2.Len())

	assert.NotSame(t, w1, c.Window("g", "other"))
}
