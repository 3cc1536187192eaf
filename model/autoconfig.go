package model

import "time"

// AutoKind selects the counting strategy of a message-stream rule.
type AutoKind string

const (
	AutoMessage    AutoKind = "message"
	AutoDuplicate  AutoKind = "duplicate"
	AutoAttachment AutoKind = "attachment"
	AutoEmoji      AutoKind = "emoji"
	AutoInvite     AutoKind = "invite"
	AutoLink       AutoKind = "link"
	AutoMention    AutoKind = "mention"
	AutoReply      AutoKind = "reply"
	AutoNewLine    AutoKind = "newline"
)

// DuplicateType is the granularity of duplicate detection.
type DuplicateType string

const (
	DuplicateMessage   DuplicateType = "message"
	DuplicateWord      DuplicateType = "word"
	DuplicateCharacter DuplicateType = "character"
)

// AutoConfiguration is a message-stream counting rule. Messages from the
// per-user window that satisfy MinimumLength, Lookback and the channel scope
// are counted with the kind-specific strategy; the aggregate is compared
// against the embedded trigger's mode and amount.
type AutoConfiguration struct {
	Trigger
	Kind           AutoKind      `json:"kind"`
	Reason         string        `json:"reason,omitempty"` // overrides the generated reason
	MinimumLength  int           `json:"minimum_length,omitempty"`
	Lookback       time.Duration `json:"lookback"`
	Global         bool          `json:"global,omitempty"` // count across channels
	DeleteMessages bool          `json:"delete_messages,omitempty"`

	// Duplicate rules.
	DuplicateType       DuplicateType `json:"duplicate_type,omitempty"`
	DuplicatePercentage float64       `json:"duplicate_percentage,omitempty"`
	DuplicateTolerance  int           `json:"duplicate_tolerance,omitempty"` // 0 = exact match

	// Emoji, invite and link rules.
	EmojiExclusions  []string `json:"emoji_exclusions,omitempty"`
	InviteExclusions []string `json:"invite_exclusions,omitempty"`
	LinkExclusions   []string `json:"link_exclusions,omitempty"` // domains or URI prefixes

	// Mention rules.
	MentionCountDuplicates  bool `json:"mention_count_duplicates,omitempty"`
	MentionCountInvalid     bool `json:"mention_count_invalid,omitempty"`
	MentionCountRoleMembers bool `json:"mention_count_role_members,omitempty"`

	// Newline rules.
	NewLineBlankOnly bool `json:"newline_blank_only,omitempty"`

	// Reprimand to issue when triggered. Nil means delete-only.
	Action *ReprimandAction `json:"action,omitempty"`
}

// Title is the human name of the rule used in generated reasons.
func (c AutoConfiguration) Title() string {
	switch c.Kind {
	case AutoMessage:
		return "Message Spam"
	case AutoDuplicate:
		return "Duplicate"
	case AutoAttachment:
		return "Attachment"
	case AutoEmoji:
		return "Emoji"
	case AutoInvite:
		return "Invite"
	case AutoLink:
		return "Link"
	case AutoMention:
		return "Mention"
	case AutoReply:
		return "Reply"
	case AutoNewLine:
		return "NewLine"
	default:
		return string(c.Kind)
	}
}
