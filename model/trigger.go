package model

import "time"

// TriggerMode controls how a trigger's threshold amount is compared against
// a count.
type TriggerMode string

const (
	// ModeExact fires only when the count equals the amount.
	ModeExact TriggerMode = "exact"
	// ModeRetroactive fires when the count meets or exceeds the amount.
	ModeRetroactive TriggerMode = "retroactive"
	// ModeMultiple fires on every nonzero multiple of the amount.
	ModeMultiple TriggerMode = "multiple"
)

// Trigger is the shared part of every configured rule: censors, reprimand
// triggers and auto-moderation configurations all embed it.
type Trigger struct {
	ID         string        `json:"id"`
	GuildID    string        `json:"guild_id"`
	IsActive   bool          `json:"is_active"`
	Amount     int64         `json:"amount"`
	Mode       TriggerMode   `json:"mode"`
	Cooldown   time.Duration `json:"cooldown,omitempty"` // 0 = no rule cooldown
	CategoryID string        `json:"category_id,omitempty"`
	Exclusions Exclusions    `json:"exclusions,omitempty"`
}

// IsTriggered reports whether count satisfies the trigger's mode and amount.
func (t Trigger) IsTriggered(count int64) bool {
	if t.Amount <= 0 {
		return false
	}
	switch t.Mode {
	case ModeExact:
		return count == t.Amount
	case ModeMultiple:
		return count != 0 && count%t.Amount == 0
	default: // retroactive
		return count >= t.Amount
	}
}

// Exclusions exempt channels, users or roles from a rule.
type Exclusions struct {
	ChannelIDs []string `json:"channel_ids,omitempty"`
	UserIDs    []string `json:"user_ids,omitempty"`
	RoleIDs    []string `json:"role_ids,omitempty"`
}

// Excluded reports whether the given channel, user or any of the user's
// roles are exempted.
func (e Exclusions) Excluded(channelID, userID string, roleIDs []string) bool {
	for _, id := range e.ChannelIDs {
		if id == channelID {
			return true
		}
	}
	for _, id := range e.UserIDs {
		if id == userID {
			return true
		}
	}
	for _, id := range e.RoleIDs {
		for _, role := range roleIDs {
			if id == role {
				return true
			}
		}
	}
	return false
}

// ExcludesUser reports whether the user id alone is exempted.
func (e Exclusions) ExcludesUser(userID string) bool {
	for _, id := range e.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ExcludesRole reports whether the role id is exempted.
func (e Exclusions) ExcludesRole(roleID string) bool {
	for _, id := range e.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// ReprimandAction describes the secondary reprimand a trigger issues once
// its threshold is satisfied.
type ReprimandAction struct {
	Kind       ReprimandKind `json:"kind"`
	Length     time.Duration `json:"length,omitempty"` // 0 = use configured default
	DeleteDays int64         `json:"delete_days,omitempty"`
	Count      int64         `json:"count,omitempty"` // warning amount, defaults to 1
}

// Censor is a regex rule applied to message content and member names.
type Censor struct {
	Trigger
	Pattern         string           `json:"pattern"`
	CaseInsensitive bool             `json:"case_insensitive,omitempty"`
	Silent          bool             `json:"silent,omitempty"` // keep the message, still record the censor
	Action          *ReprimandAction `json:"action,omitempty"`
}

// Expr is the pattern with its configured options folded in.
func (c Censor) Expr() string {
	if c.CaseInsensitive {
		return "(?i)" + c.Pattern
	}
	return c.Pattern
}

// ReprimandTrigger counts a user's reprimands of a source kind and issues a
// secondary action once the count satisfies the mode.
type ReprimandTrigger struct {
	Trigger
	Source ReprimandKind   `json:"source"` // warning, notice or censored
	Action ReprimandAction `json:"action"`
}
