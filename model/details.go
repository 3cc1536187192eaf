package model

import "github.com/bwmarrin/discordgo"

// ReprimandDetails carries everything one moderation action needs: the
// subject, the acting moderator, the reason and the optional originating
// trigger and command context. It lives for a single action and is never
// persisted.
type ReprimandDetails struct {
	GuildID     string
	UserID      string
	ModeratorID string
	Reason      string
	CategoryID  string
	TriggerID   string

	// Interaction is the originating command, nil for automatic actions.
	Interaction *discordgo.Interaction

	// Ephemeral keeps the action private: the command is deferred with an
	// ephemeral response and the publisher skips the public and user logs.
	Ephemeral bool
}

// MessageRef identifies a platform message for deletion.
type MessageRef struct {
	ChannelID string
	MessageID string
}

// ReprimandResult is the outcome of one action chain: the primary reprimand
// plus any secondary reprimands produced by cascades, in firing order.
type ReprimandResult struct {
	Primary   *Reprimand
	Secondary []*Reprimand
}

// Last is the most recently issued reprimand of the chain.
func (r *ReprimandResult) Last() *Reprimand {
	if len(r.Secondary) > 0 {
		return r.Secondary[len(r.Secondary)-1]
	}
	return r.Primary
}

// All returns the primary followed by the secondaries.
func (r *ReprimandResult) All() []*Reprimand {
	all := make([]*Reprimand, 0, len(r.Secondary)+1)
	all = append(all, r.Primary)
	all = append(all, r.Secondary...)
	return all
}
