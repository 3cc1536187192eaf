package reprimands

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Init opens the database and ensures all necessary tables are created.
func Init(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	reprimandsSchema := `CREATE TABLE IF NOT EXISTS reprimands (
	          id TEXT PRIMARY KEY,
	          guild_id TEXT NOT NULL,
	          user_id TEXT NOT NULL,
	          kind TEXT NOT NULL,
	          status TEXT NOT NULL,
	          category_id TEXT NOT NULL DEFAULT '',
	          trigger_id TEXT NOT NULL DEFAULT '',
	          moderator_id TEXT NOT NULL DEFAULT '',
	          reason TEXT NOT NULL DEFAULT '',
	          created_at TIMESTAMP NOT NULL,
	          modified_moderator_id TEXT NOT NULL DEFAULT '',
	          modified_reason TEXT NOT NULL DEFAULT '',
	          modified_at TIMESTAMP,
	          count INTEGER NOT NULL DEFAULT 0,
	          delete_days INTEGER NOT NULL DEFAULT 0,
	          content TEXT NOT NULL DEFAULT '',
	          pattern TEXT NOT NULL DEFAULT '',
	          starts_at TIMESTAMP,
	          length INTEGER NOT NULL DEFAULT 0,
	          expires_at TIMESTAMP,
	          ended_at TIMESTAMP
	      );`
	if _, err = db.Exec(reprimandsSchema); err != nil {
		return nil, fmt.Errorf("failed to create reprimands table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_reprimands_user ON reprimands (guild_id, user_id, kind, status)`,
		`CREATE INDEX IF NOT EXISTS idx_reprimands_trigger ON reprimands (guild_id, user_id, trigger_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reprimands_expiry ON reprimands (status, expires_at)`,
	}
	for _, stmt := range indexes {
		if _, err = db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to create index: %w", err)
		}
	}

	rulesSchema := `CREATE TABLE IF NOT EXISTS moderation_rules (
	          guild_id TEXT PRIMARY KEY,
	          mute_role_id TEXT NOT NULL DEFAULT '',
	          replace_mutes INTEGER NOT NULL DEFAULT 0,
	          censor_nicknames INTEGER NOT NULL DEFAULT 0,
	          censor_usernames INTEGER NOT NULL DEFAULT 0,
	          name_replacement TEXT NOT NULL DEFAULT '',
	          auto_cooldown INTEGER NOT NULL DEFAULT 0,
	          warning_expiry_length INTEGER NOT NULL DEFAULT 0,
	          notice_expiry_length INTEGER NOT NULL DEFAULT 0,
	          censored_expiry_length INTEGER NOT NULL DEFAULT 0,
	          auto_expiry_length INTEGER NOT NULL DEFAULT 0,
	          exclusions_json TEXT NOT NULL DEFAULT '{}',
	          censor_exclusions_json TEXT NOT NULL DEFAULT '{}',
	          categories_json TEXT NOT NULL DEFAULT '[]',
	          censors_json TEXT NOT NULL DEFAULT '[]',
	          reprimand_triggers_json TEXT NOT NULL DEFAULT '[]',
	          auto_configurations_json TEXT NOT NULL DEFAULT '[]',
	          logging_json TEXT NOT NULL DEFAULT '{}'
	      );`
	if _, err = db.Exec(rulesSchema); err != nil {
		return nil, fmt.Errorf("failed to create moderation_rules table: %w", err)
	}

	return db, nil
}
