package reprimands

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jmoiron/sqlx"

	"moderation-bot/model"
)

const rulesCacheTTL = time.Minute

// Store persists reprimands and per-guild rules. Rules reads go through a
// short-lived cache since every incoming message loads them.
type Store struct {
	db       *sqlx.DB
	defaults model.ModerationDefaults
	rules    *expirable.LRU[string, *model.ModerationRules]
}

func NewStore(db *sqlx.DB, defaults model.ModerationDefaults) *Store {
	return &Store{
		db:       db,
		defaults: defaults,
		rules:    expirable.NewLRU[string, *model.ModerationRules](256, nil, rulesCacheTTL),
	}
}

func (s *Store) CreateReprimand(ctx context.Context, r *model.Reprimand) error {
	query := `INSERT INTO reprimands (id, guild_id, user_id, kind, status, category_id, trigger_id,
	              moderator_id, reason, created_at, modified_moderator_id, modified_reason, modified_at,
	              count, delete_days, content, pattern, starts_at, length, expires_at, ended_at)
	          VALUES (:id, :guild_id, :user_id, :kind, :status, :category_id, :trigger_id,
	              :moderator_id, :reason, :created_at, :modified_moderator_id, :modified_reason, :modified_at,
	              :count, :delete_days, :content, :pattern, :starts_at, :length, :expires_at, :ended_at)`
	if _, err := s.db.NamedExecContext(ctx, query, r); err != nil {
		return fmt.Errorf("failed to insert reprimand: %w", err)
	}
	return nil
}

func (s *Store) UpdateReprimand(ctx context.Context, r *model.Reprimand) error {
	query := `UPDATE reprimands SET status = :status, reason = :reason,
	              modified_moderator_id = :modified_moderator_id, modified_reason = :modified_reason,
	              modified_at = :modified_at, count = :count, starts_at = :starts_at, length = :length,
	              expires_at = :expires_at, ended_at = :ended_at
	          WHERE id = :id`
	result, err := s.db.NamedExecContext(ctx, query, r)
	if err != nil {
		return fmt.Errorf("failed to update reprimand %s: %w", r.ID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for reprimand %s: %w", r.ID, err)
	}
	if rows == 0 {
		return fmt.Errorf("no reprimand found with id %s", r.ID)
	}
	return nil
}

func (s *Store) DeleteReprimand(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM reprimands WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete reprimand %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for reprimand %s: %w", id, err)
	}
	if rows == 0 {
		return fmt.Errorf("no reprimand found with id %s", id)
	}
	return nil
}

func (s *Store) Reprimand(ctx context.Context, id string) (*model.Reprimand, error) {
	var r model.Reprimand
	err := s.db.GetContext(ctx, &r, "SELECT * FROM reprimands WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reprimand %s: %w", id, err)
	}
	return &r, nil
}

func (s *Store) ActiveReprimand(ctx context.Context, guildID, userID string, kind model.ReprimandKind) (*model.Reprimand, error) {
	var r model.Reprimand
	query := `SELECT * FROM reprimands
	          WHERE guild_id = ? AND user_id = ? AND kind = ? AND status IN ('added', 'updated')
	          ORDER BY created_at DESC LIMIT 1`
	err := s.db.GetContext(ctx, &r, query, guildID, userID, kind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active %s for user %s: %w", kind, userID, err)
	}
	return &r, nil
}

// countExpr picks the aggregate for a kind: warnings sum their amounts (at
// least one each), everything else counts rows.
func countExpr(kind model.ReprimandKind) string {
	if kind == model.ReprimandWarning {
		return "COALESCE(SUM(MAX(count, 1)), 0)"
	}
	return "COUNT(*)"
}

func (s *Store) ReprimandCount(ctx context.Context, guildID, userID string, kind model.ReprimandKind,
	categoryID string, activeOnly bool) (int64, error) {

	query := fmt.Sprintf(`SELECT %s FROM reprimands
	          WHERE guild_id = ? AND user_id = ? AND kind = ? AND category_id = ?`, countExpr(kind))
	if activeOnly {
		query += " AND status IN ('added', 'updated')"
	}
	var count int64
	if err := s.db.GetContext(ctx, &count, query, guildID, userID, kind, categoryID); err != nil {
		return 0, fmt.Errorf("failed to count %s reprimands for user %s: %w", kind, userID, err)
	}
	return count, nil
}

func (s *Store) ReprimandCountAll(ctx context.Context, guildID, userID string, kind model.ReprimandKind,
	activeOnly bool) (int64, error) {

	query := fmt.Sprintf(`SELECT %s FROM reprimands
	          WHERE guild_id = ? AND user_id = ? AND kind = ?`, countExpr(kind))
	if activeOnly {
		query += " AND status IN ('added', 'updated')"
	}
	var count int64
	if err := s.db.GetContext(ctx, &count, query, guildID, userID, kind); err != nil {
		return 0, fmt.Errorf("failed to count %s reprimands for user %s: %w", kind, userID, err)
	}
	return count, nil
}

func (s *Store) ReprimandCountByTrigger(ctx context.Context, guildID, userID, triggerID string, activeOnly bool) (int64, error) {
	query := `SELECT COUNT(*) FROM reprimands WHERE guild_id = ? AND user_id = ? AND trigger_id = ?`
	if activeOnly {
		query += " AND status IN ('added', 'updated')"
	}
	var count int64
	if err := s.db.GetContext(ctx, &count, query, guildID, userID, triggerID); err != nil {
		return 0, fmt.Errorf("failed to count reprimands for trigger %s: %w", triggerID, err)
	}
	return count, nil
}

func (s *Store) ActiveExpirable(ctx context.Context) ([]*model.Reprimand, error) {
	var records []*model.Reprimand
	query := `SELECT * FROM reprimands
	          WHERE status IN ('added', 'updated') AND expires_at IS NOT NULL
	          ORDER BY expires_at`
	if err := s.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("failed to get active expirable reprimands: %w", err)
	}
	return records, nil
}

// ListReprimands returns a user's newest records first, for the history view.
func (s *Store) ListReprimands(ctx context.Context, guildID, userID string, limit int) ([]*model.Reprimand, error) {
	if limit <= 0 {
		limit = 25
	}
	var records []*model.Reprimand
	query := `SELECT * FROM reprimands WHERE guild_id = ? AND user_id = ?
	          ORDER BY created_at DESC LIMIT ?`
	if err := s.db.SelectContext(ctx, &records, query, guildID, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list reprimands for user %s: %w", userID, err)
	}
	return records, nil
}

type rulesRow struct {
	GuildID              string        `db:"guild_id"`
	MuteRoleID           string        `db:"mute_role_id"`
	ReplaceMutes         bool          `db:"replace_mutes"`
	CensorNicknames      bool          `db:"censor_nicknames"`
	CensorUsernames      bool          `db:"censor_usernames"`
	NameReplacement      string        `db:"name_replacement"`
	AutoCooldown         time.Duration `db:"auto_cooldown"`
	WarningExpiryLength  time.Duration `db:"warning_expiry_length"`
	NoticeExpiryLength   time.Duration `db:"notice_expiry_length"`
	CensoredExpiryLength time.Duration `db:"censored_expiry_length"`
	AutoExpiryLength     time.Duration `db:"auto_expiry_length"`

	ExclusionsJSON         string `db:"exclusions_json"`
	CensorExclusionsJSON   string `db:"censor_exclusions_json"`
	CategoriesJSON         string `db:"categories_json"`
	CensorsJSON            string `db:"censors_json"`
	ReprimandTriggersJSON  string `db:"reprimand_triggers_json"`
	AutoConfigurationsJSON string `db:"auto_configurations_json"`
	LoggingJSON            string `db:"logging_json"`
}

func (row *rulesRow) toRules() (*model.ModerationRules, error) {
	rules := &model.ModerationRules{
		GuildID:              row.GuildID,
		MuteRoleID:           row.MuteRoleID,
		ReplaceMutes:         row.ReplaceMutes,
		CensorNicknames:      row.CensorNicknames,
		CensorUsernames:      row.CensorUsernames,
		NameReplacement:      row.NameReplacement,
		AutoCooldown:         row.AutoCooldown,
		WarningExpiryLength:  row.WarningExpiryLength,
		NoticeExpiryLength:   row.NoticeExpiryLength,
		CensoredExpiryLength: row.CensoredExpiryLength,
		AutoExpiryLength:     row.AutoExpiryLength,
	}
	blobs := []struct {
		data string
		into interface{}
	}{
		{row.ExclusionsJSON, &rules.Exclusions},
		{row.CensorExclusionsJSON, &rules.CensorExclusions},
		{row.CategoriesJSON, &rules.Categories},
		{row.CensorsJSON, &rules.Censors},
		{row.ReprimandTriggersJSON, &rules.ReprimandTriggers},
		{row.AutoConfigurationsJSON, &rules.AutoConfigurations},
		{row.LoggingJSON, &rules.Logging},
	}
	for _, blob := range blobs {
		if blob.data == "" {
			continue
		}
		if err := json.Unmarshal([]byte(blob.data), blob.into); err != nil {
			return nil, fmt.Errorf("failed to decode rules for guild %s: %w", row.GuildID, err)
		}
	}
	return rules, nil
}

// Rules loads a guild's configuration, seeding unset guilds from the
// configured defaults.
func (s *Store) Rules(ctx context.Context, guildID string) (*model.ModerationRules, error) {
	if cached, ok := s.rules.Get(guildID); ok {
		return cached, nil
	}

	var row rulesRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM moderation_rules WHERE guild_id = ?", guildID)
	if errors.Is(err, sql.ErrNoRows) {
		rules := s.defaultRules(guildID)
		s.rules.Add(guildID, rules)
		return rules, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rules for guild %s: %w", guildID, err)
	}

	rules, err := row.toRules()
	if err != nil {
		return nil, err
	}
	s.rules.Add(guildID, rules)
	return rules, nil
}

func (s *Store) defaultRules(guildID string) *model.ModerationRules {
	return &model.ModerationRules{
		GuildID:              guildID,
		NameReplacement:      s.defaults.NameReplacement,
		AutoCooldown:         s.defaults.AutoCooldown,
		WarningExpiryLength:  s.defaults.WarningExpiryLength,
		NoticeExpiryLength:   s.defaults.NoticeExpiryLength,
		CensoredExpiryLength: s.defaults.CensoredExpiryLength,
		AutoExpiryLength:     s.defaults.AutoExpiryLength,
	}
}

// SaveRules upserts a guild's configuration and drops the cached copy.
func (s *Store) SaveRules(ctx context.Context, rules *model.ModerationRules) error {
	row := rulesRow{
		GuildID:              rules.GuildID,
		MuteRoleID:           rules.MuteRoleID,
		ReplaceMutes:         rules.ReplaceMutes,
		CensorNicknames:      rules.CensorNicknames,
		CensorUsernames:      rules.CensorUsernames,
		NameReplacement:      rules.NameReplacement,
		AutoCooldown:         rules.AutoCooldown,
		WarningExpiryLength:  rules.WarningExpiryLength,
		NoticeExpiryLength:   rules.NoticeExpiryLength,
		CensoredExpiryLength: rules.CensoredExpiryLength,
		AutoExpiryLength:     rules.AutoExpiryLength,
	}
	blobs := []struct {
		into *string
		data interface{}
	}{
		{&row.ExclusionsJSON, rules.Exclusions},
		{&row.CensorExclusionsJSON, rules.CensorExclusions},
		{&row.CategoriesJSON, rules.Categories},
		{&row.CensorsJSON, rules.Censors},
		{&row.ReprimandTriggersJSON, rules.ReprimandTriggers},
		{&row.AutoConfigurationsJSON, rules.AutoConfigurations},
		{&row.LoggingJSON, rules.Logging},
	}
	for _, blob := range blobs {
		data, err := json.Marshal(blob.data)
		if err != nil {
			return fmt.Errorf("failed to encode rules for guild %s: %w", rules.GuildID, err)
		}
		*blob.into = string(data)
	}

	query := `INSERT INTO moderation_rules (guild_id, mute_role_id, replace_mutes, censor_nicknames,
	              censor_usernames, name_replacement, auto_cooldown, warning_expiry_length,
	              notice_expiry_length, censored_expiry_length, auto_expiry_length, exclusions_json,
	              censor_exclusions_json, categories_json, censors_json, reprimand_triggers_json,
	              auto_configurations_json, logging_json)
	          VALUES (:guild_id, :mute_role_id, :replace_mutes, :censor_nicknames, :censor_usernames,
	              :name_replacement, :auto_cooldown, :warning_expiry_length, :notice_expiry_length,
	              :censored_expiry_length, :auto_expiry_length, :exclusions_json, :censor_exclusions_json,
	              :categories_json, :censors_json, :reprimand_triggers_json, :auto_configurations_json,
	              :logging_json)
	          ON CONFLICT (guild_id) DO UPDATE SET
	              mute_role_id = excluded.mute_role_id,
	              replace_mutes = excluded.replace_mutes,
	              censor_nicknames = excluded.censor_nicknames,
	              censor_usernames = excluded.censor_usernames,
	              name_replacement = excluded.name_replacement,
	              auto_cooldown = excluded.auto_cooldown,
	              warning_expiry_length = excluded.warning_expiry_length,
	              notice_expiry_length = excluded.notice_expiry_length,
	              censored_expiry_length = excluded.censored_expiry_length,
	              auto_expiry_length = excluded.auto_expiry_length,
	              exclusions_json = excluded.exclusions_json,
	              censor_exclusions_json = excluded.censor_exclusions_json,
	              categories_json = excluded.categories_json,
	              censors_json = excluded.censors_json,
	              reprimand_triggers_json = excluded.reprimand_triggers_json,
	              auto_configurations_json = excluded.auto_configurations_json,
	              logging_json = excluded.logging_json`
	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to save rules for guild %s: %w", rules.GuildID, err)
	}
	s.rules.Remove(rules.GuildID)
	return nil
}
