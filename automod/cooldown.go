package automod

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type cooldownKey struct {
	GuildID string
	RuleID  string // empty for the user-level cooldown
	UserID  string
}

// CooldownStore tracks user-level and (rule, user) cooldown markers.
// Deadlines are stored per entry; the LRU's own TTL only bounds memory.
type CooldownStore struct {
	lru *expirable.LRU[cooldownKey, time.Time]
	now func() time.Time
}

// NewCooldownStore creates an empty store.
func NewCooldownStore() *CooldownStore {
	return &CooldownStore{
		lru: expirable.NewLRU[cooldownKey, time.Time](8192, nil, 24*time.Hour),
		now: time.Now,
	}
}

// SetUser starts a user-level cooldown.
func (s *CooldownStore) SetUser(guildID, userID string, d time.Duration) {
	if d <= 0 {
		return
	}
	s.lru.Add(cooldownKey{GuildID: guildID, UserID: userID}, s.now().Add(d))
}

// SetRule starts a (rule, user) cooldown.
func (s *CooldownStore) SetRule(guildID, ruleID, userID string, d time.Duration) {
	if d <= 0 {
		return
	}
	s.lru.Add(cooldownKey{GuildID: guildID, RuleID: ruleID, UserID: userID}, s.now().Add(d))
}

// UserActive reports whether the user-level cooldown is still running.
func (s *CooldownStore) UserActive(guildID, userID string) bool {
	return s.active(cooldownKey{GuildID: guildID, UserID: userID})
}

// RuleActive reports whether the (rule, user) cooldown is still running.
func (s *CooldownStore) RuleActive(guildID, ruleID, userID string) bool {
	return s.active(cooldownKey{GuildID: guildID, RuleID: ruleID, UserID: userID})
}

func (s *CooldownStore) active(key cooldownKey) bool {
	until, ok := s.lru.Get(key)
	if !ok {
		return false
	}
	if s.now().After(until) {
		s.lru.Remove(key)
		return false
	}
	return true
}
