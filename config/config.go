package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"moderation-bot/model"
)

// Load reads the configuration from environment variables and the optional
// data/moderation.yaml defaults file.
func Load() (*model.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		log.Fatal("Error: BOT_TOKEN environment variable not set")
	}

	appID := os.Getenv("APP_ID")
	if appID == "" {
		log.Fatal("Error: APP_ID environment variable not set")
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "data/moderation.db"
	}

	webhookURL := os.Getenv("LOG_WEBHOOK_URL")
	if webhookURL == "" {
		log.Println("Warning: LOG_WEBHOOK_URL not set, operational logging will be disabled")
	}

	var guildIDs []string
	if raw := os.Getenv("GUILD_IDS"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				guildIDs = append(guildIDs, id)
			}
		}
	}

	cfg := &model.Config{
		BotToken:      token,
		AppID:         appID,
		DBPath:        dbPath,
		MetricsAddr:   os.Getenv("METRICS_ADDR"),
		LogWebhookURL: webhookURL,
		GuildIDs:      guildIDs,
	}

	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}
	cfg.Defaults = *defaults

	return cfg, nil
}

func loadDefaults() (*model.ModerationDefaults, error) {
	v := viper.New()
	v.SetConfigName("moderation")
	v.SetConfigType("yaml")
	v.AddConfigPath("data")

	v.SetDefault("auto_cooldown", "30s")
	v.SetDefault("warning_expiry_length", (90 * 24 * time.Hour).String())
	v.SetDefault("notice_expiry_length", (30 * 24 * time.Hour).String())
	v.SetDefault("censored_expiry_length", (30 * 24 * time.Hour).String())
	v.SetDefault("auto_expiry_length", (7 * 24 * time.Hour).String())
	v.SetDefault("name_replacement", "Censored")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read moderation defaults: %w", err)
		}
		log.Println("Warning: data/moderation.yaml not found, using built-in defaults")
	}

	var defaults model.ModerationDefaults
	if err := v.Unmarshal(&defaults); err != nil {
		return nil, fmt.Errorf("failed to parse moderation defaults: %w", err)
	}
	return &defaults, nil
}
