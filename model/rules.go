package model

import "time"

// ModerationCategory is a named policy bucket whose settings override the
// guild-wide defaults for reprimands issued under it.
type ModerationCategory struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	MuteRoleID   string        `json:"mute_role_id,omitempty"`
	ReplaceMutes *bool         `json:"replace_mutes,omitempty"`
	AutoCooldown time.Duration `json:"auto_cooldown,omitempty"`

	WarningExpiryLength  time.Duration `json:"warning_expiry_length,omitempty"`
	NoticeExpiryLength   time.Duration `json:"notice_expiry_length,omitempty"`
	CensoredExpiryLength time.Duration `json:"censored_expiry_length,omitempty"`
	AutoExpiryLength     time.Duration `json:"auto_expiry_length,omitempty"`
}

// ModerationRules is the per-guild configuration root.
type ModerationRules struct {
	GuildID string

	MuteRoleID      string
	ReplaceMutes    bool
	CensorNicknames bool
	CensorUsernames bool
	NameReplacement string

	AutoCooldown time.Duration // user-level cooldown after an auto rule fires

	WarningExpiryLength  time.Duration
	NoticeExpiryLength   time.Duration
	CensoredExpiryLength time.Duration
	AutoExpiryLength     time.Duration

	Exclusions       Exclusions
	CensorExclusions Exclusions

	Categories         []ModerationCategory
	Censors            []Censor
	ReprimandTriggers  []ReprimandTrigger
	AutoConfigurations []AutoConfiguration

	Logging LoggingRules
}

// Category looks up a category by id; returns nil for the empty id or an
// unknown id.
func (r *ModerationRules) Category(id string) *ModerationCategory {
	if id == "" {
		return nil
	}
	for i := range r.Categories {
		if r.Categories[i].ID == id {
			return &r.Categories[i]
		}
	}
	return nil
}

// ExpiryFor resolves the configured expiry length for a reprimand kind,
// preferring the category override. Zero means indefinite.
func (r *ModerationRules) ExpiryFor(kind ReprimandKind, categoryID string) time.Duration {
	cat := r.Category(categoryID)
	switch kind {
	case ReprimandWarning:
		if cat != nil && cat.WarningExpiryLength > 0 {
			return cat.WarningExpiryLength
		}
		return r.WarningExpiryLength
	case ReprimandNotice:
		if cat != nil && cat.NoticeExpiryLength > 0 {
			return cat.NoticeExpiryLength
		}
		return r.NoticeExpiryLength
	case ReprimandCensored:
		if cat != nil && cat.CensoredExpiryLength > 0 {
			return cat.CensoredExpiryLength
		}
		return r.CensoredExpiryLength
	default:
		return 0
	}
}

// AutoExpiryFor resolves the expiry length applied to reprimands issued by
// auto-moderation rules.
func (r *ModerationRules) AutoExpiryFor(categoryID string) time.Duration {
	if cat := r.Category(categoryID); cat != nil && cat.AutoExpiryLength > 0 {
		return cat.AutoExpiryLength
	}
	return r.AutoExpiryLength
}

// CooldownFor resolves the user-level cooldown set after an auto rule fires.
func (r *ModerationRules) CooldownFor(categoryID string) time.Duration {
	if cat := r.Category(categoryID); cat != nil && cat.AutoCooldown > 0 {
		return cat.AutoCooldown
	}
	return r.AutoCooldown
}

// MuteRoleFor resolves the mute role, preferring the category override.
func (r *ModerationRules) MuteRoleFor(categoryID string) string {
	if cat := r.Category(categoryID); cat != nil && cat.MuteRoleID != "" {
		return cat.MuteRoleID
	}
	return r.MuteRoleID
}

// ReplaceMutesFor resolves the replace-active-mute policy.
func (r *ModerationRules) ReplaceMutesFor(categoryID string) bool {
	if cat := r.Category(categoryID); cat != nil && cat.ReplaceMutes != nil {
		return *cat.ReplaceMutes
	}
	return r.ReplaceMutes
}

// LogOptions toggle the individual parts of a rendered notification.
type LogOptions struct {
	ShowModerator bool `json:"show_moderator,omitempty"`
	ShowReason    bool `json:"show_reason,omitempty"`
	ShowActive    bool `json:"show_active,omitempty"`
	ShowTotal     bool `json:"show_total,omitempty"`
	ShowCategory  bool `json:"show_category,omitempty"`
	ShowTrigger   bool `json:"show_trigger,omitempty"`
	ShowID        bool `json:"show_id,omitempty"`
}

// LogDestination is one notification target with its own type/status filter.
// Empty Kinds or Statuses mean "all".
type LogDestination struct {
	ChannelID string            `json:"channel_id,omitempty"`
	Kinds     []ReprimandKind   `json:"kinds,omitempty"`
	Statuses  []ReprimandStatus `json:"statuses,omitempty"`
	Options   LogOptions        `json:"options"`
}

// Includes reports whether a reprimand of the given kind and status passes
// this destination's filter.
func (d *LogDestination) Includes(kind ReprimandKind, status ReprimandStatus) bool {
	if d == nil {
		return false
	}
	if len(d.Kinds) > 0 {
		found := false
		for _, k := range d.Kinds {
			if k == kind {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(d.Statuses) > 0 {
		for _, s := range d.Statuses {
			if s == status {
				return true
			}
		}
		return false
	}
	return true
}

// LoggingRules configures the notification fan-out destinations.
type LoggingRules struct {
	IgnoreDuplicates bool            `json:"ignore_duplicates,omitempty"`
	ModeratorLog     *LogDestination `json:"moderator_log,omitempty"`
	PublicLog        *LogDestination `json:"public_log,omitempty"`
	CommandLog       *LogDestination `json:"command_log,omitempty"`
	UserLog          *LogDestination `json:"user_log,omitempty"`
}
