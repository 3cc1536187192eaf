package model

import (
	"time"

	"github.com/google/uuid"
)

// ReprimandKind identifies the concrete kind of a reprimand record.
type ReprimandKind string

const (
	ReprimandWarning  ReprimandKind = "warning"
	ReprimandNotice   ReprimandKind = "notice"
	ReprimandNote     ReprimandKind = "note"
	ReprimandMute     ReprimandKind = "mute"
	ReprimandBan      ReprimandKind = "ban"
	ReprimandKick     ReprimandKind = "kick"
	ReprimandCensored ReprimandKind = "censored"
)

// ReprimandStatus is the lifecycle state of a reprimand.
// Added is the initial state; Updated may recur; Pardoned, Expired and
// Deleted are terminal for escalation purposes.
type ReprimandStatus string

const (
	StatusAdded    ReprimandStatus = "added"
	StatusUpdated  ReprimandStatus = "updated"
	StatusPardoned ReprimandStatus = "pardoned"
	StatusExpired  ReprimandStatus = "expired"
	StatusDeleted  ReprimandStatus = "deleted"
)

// Reprimand is a single disciplinary record against a user.
// The kind-specific fields (Count, DeleteDays, Content, Pattern, the
// expiry columns) are only meaningful for the kinds that use them.
type Reprimand struct {
	ID         string          `db:"id"`
	GuildID    string          `db:"guild_id"`
	UserID     string          `db:"user_id"`
	Kind       ReprimandKind   `db:"kind"`
	Status     ReprimandStatus `db:"status"`
	CategoryID string          `db:"category_id"`
	TriggerID  string          `db:"trigger_id"`

	ModeratorID string    `db:"moderator_id"`
	Reason      string    `db:"reason"`
	CreatedAt   time.Time `db:"created_at"`

	ModifiedModeratorID string     `db:"modified_moderator_id"`
	ModifiedReason      string     `db:"modified_reason"`
	ModifiedAt          *time.Time `db:"modified_at"`

	Count      int64  `db:"count"`       // warning accumulation amount
	DeleteDays int64  `db:"delete_days"` // ban message-deletion window
	Content    string `db:"content"`     // censored original content
	Pattern    string `db:"pattern"`     // censor pattern that matched

	StartsAt  *time.Time    `db:"starts_at"`
	Length    time.Duration `db:"length"` // 0 = indefinite
	ExpiresAt *time.Time    `db:"expires_at"`
	EndedAt   *time.Time    `db:"ended_at"`
}

// NewReprimand creates a reprimand in the Added state from the given details.
func NewReprimand(kind ReprimandKind, details ReprimandDetails) *Reprimand {
	return &Reprimand{
		ID:          uuid.NewString(),
		GuildID:     details.GuildID,
		UserID:      details.UserID,
		Kind:        kind,
		Status:      StatusAdded,
		CategoryID:  details.CategoryID,
		TriggerID:   details.TriggerID,
		ModeratorID: details.ModeratorID,
		Reason:      details.Reason,
		CreatedAt:   time.Now().UTC(),
	}
}

// SetLength stamps the start time and, for a non-zero length, the computed
// expiry. A zero length means indefinite and leaves ExpiresAt nil.
func (r *Reprimand) SetLength(length time.Duration) {
	now := time.Now().UTC()
	r.StartsAt = &now
	r.Length = length
	if length > 0 {
		expires := now.Add(length)
		r.ExpiresAt = &expires
	} else {
		r.ExpiresAt = nil
	}
}

// IsActive reports whether the reprimand still counts toward active totals.
func (r *Reprimand) IsActive() bool {
	return r.Status == StatusAdded || r.Status == StatusUpdated
}

// IsExpirable reports whether this kind carries a start/length/expiry window.
func (r *Reprimand) IsExpirable() bool {
	switch r.Kind {
	case ReprimandMute, ReprimandBan, ReprimandWarning, ReprimandNotice, ReprimandCensored:
		return true
	default:
		return false
	}
}

// CountsAs is the weight this record contributes to a user's totals.
// Warnings carry their accumulation amount, every other kind counts once.
func (r *Reprimand) CountsAs() int64 {
	if r.Kind == ReprimandWarning {
		if r.Count <= 0 {
			return 1
		}
		return r.Count
	}
	return 1
}

// TriggerSource maps a reprimand kind to the trigger source that counts it.
// Only warnings, notices and censor records feed reprimand triggers.
func TriggerSource(kind ReprimandKind) (ReprimandKind, bool) {
	switch kind {
	case ReprimandWarning, ReprimandNotice, ReprimandCensored:
		return kind, true
	default:
		return "", false
	}
}
