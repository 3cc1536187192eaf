package automod

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// windowSize bounds the per-user FIFO of recent messages.
const windowSize = 100

// cacheExpiration evicts idle user windows.
const cacheExpiration = time.Hour

// ReferencedMessage is the reply target of a cached message.
type ReferencedMessage struct {
	AuthorID string
	Bot      bool
}

// CachedMessage is one entry of a user's sliding window. The memo map
// caches per-rule counts so repeated rule passes within an evaluation do
// not recompute; it is keyed by trigger id only.
type CachedMessage struct {
	ID             string
	ChannelID      string
	Content        string
	CreatedAt      time.Time
	Attachments    int
	MentionUserIDs []string
	MentionRoleIDs []string
	Reference      *ReferencedMessage

	mu   sync.Mutex
	memo map[string]RuleCount
}

// RuleCount is a per-message count; Total is only meaningful for duplicate
// rules, where the percentage is counted/total across the window.
type RuleCount struct {
	Count int64
	Total int64
}

// Memoized returns the cached count for ruleID or computes and stores it.
func (m *CachedMessage) Memoized(ruleID string, compute func(*CachedMessage) RuleCount) RuleCount {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.memo == nil {
		m.memo = make(map[string]RuleCount)
	}
	if c, ok := m.memo[ruleID]; ok {
		return c
	}
	c := compute(m)
	m.memo[ruleID] = c
	return c
}

// MessageWindow is a bounded FIFO of a user's recent messages, safe for
// concurrent use by multiple in-flight message handlers.
type MessageWindow struct {
	mu   sync.Mutex
	msgs []*CachedMessage
}

// Add appends a message, evicting the oldest entries beyond the window size.
// A message that is already present (an edit) is replaced in place.
func (w *MessageWindow) Add(m *CachedMessage) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, existing := range w.msgs {
		if existing.ID == m.ID {
			w.msgs[i] = m
			return
		}
	}
	w.msgs = append(w.msgs, m)
	if over := len(w.msgs) - windowSize; over > 0 {
		w.msgs = w.msgs[over:]
	}
}

// Select returns the messages matching a rule's minimum length, lookback
// window and channel scope.
func (w *MessageWindow) Select(minLength int, lookback time.Duration, global bool, channelID string, now time.Time) []*CachedMessage {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []*CachedMessage
	for _, m := range w.msgs {
		if len(m.Content) < minLength {
			continue
		}
		if lookback > 0 && now.Sub(m.CreatedAt) >= lookback {
			continue
		}
		if !global && m.ChannelID != channelID {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Len reports the current number of cached messages.
func (w *MessageWindow) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.msgs)
}

type windowKey struct {
	GuildID string
	UserID  string
}

// WindowCache holds the per-(guild, user) message windows with time-based
// eviction. The windows are an advisory cache, never authoritative.
type WindowCache struct {
	mu  sync.Mutex
	lru *expirable.LRU[windowKey, *MessageWindow]
}

// NewWindowCache creates the cache with the standard TTL.
func NewWindowCache() *WindowCache {
	return &WindowCache{
		lru: expirable.NewLRU[windowKey, *MessageWindow](4096, nil, cacheExpiration),
	}
}

// Window returns the window for the given user, creating it if absent.
func (c *WindowCache) Window(guildID, userID string) *MessageWindow {
	key := windowKey{GuildID: guildID, UserID: userID}
	c.mu.Lock()
	defer c.mu.Unlock()
	if w, ok := c.lru.Get(key); ok {
		return w
	}
	w := &MessageWindow{}
	c.lru.Add(key, w)
	return w
}
