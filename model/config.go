package model

import "time"

// ModerationDefaults seed the rules of guilds that have no stored
// configuration yet. Loaded from data/moderation.yaml.
type ModerationDefaults struct {
	AutoCooldown         time.Duration `mapstructure:"auto_cooldown"`
	WarningExpiryLength  time.Duration `mapstructure:"warning_expiry_length"`
	NoticeExpiryLength   time.Duration `mapstructure:"notice_expiry_length"`
	CensoredExpiryLength time.Duration `mapstructure:"censored_expiry_length"`
	AutoExpiryLength     time.Duration `mapstructure:"auto_expiry_length"`
	NameReplacement      string        `mapstructure:"name_replacement"`
}

// Config stores the application configuration.
type Config struct {
	BotToken      string
	AppID         string
	DBPath        string
	MetricsAddr   string // empty disables the metrics endpoint
	LogWebhookURL string // ops webhook, empty disables
	GuildIDs      []string

	Defaults ModerationDefaults
}
