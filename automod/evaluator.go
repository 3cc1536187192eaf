package automod

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"moderation-bot/model"
)

// RulesProvider loads a guild's moderation rules. A nil result with a nil
// error means the guild has no configuration and nothing is evaluated.
type RulesProvider interface {
	Rules(ctx context.Context, guildID string) (*model.ModerationRules, error)
}

// Moderator is the slice of the reprimand engine the evaluator and censor
// engine hand off to.
type Moderator interface {
	// AutoReprimand deletes the selected messages (when the rule says so),
	// executes the rule's configured action and publishes the result.
	AutoReprimand(ctx context.Context, details model.ReprimandDetails, action *model.ReprimandAction,
		length time.Duration, deleteMessages bool, del []model.MessageRef) (*model.ReprimandResult, error)

	// Censor records a censored message and resolves the censor's own
	// trigger threshold.
	Censor(ctx context.Context, details model.ReprimandDetails, censor model.Censor,
		content string, msg model.MessageRef, length time.Duration) (*model.ReprimandResult, error)

	// CensorName records a censored member name and renames the member.
	CensorName(ctx context.Context, details model.ReprimandDetails, censor model.Censor,
		name string, length time.Duration) (*model.ReprimandResult, error)
}

// IncomingMessage is the platform-neutral view of a message event.
type IncomingMessage struct {
	GuildID     string
	ChannelID   string
	MessageID   string
	UserID      string
	AuthorRoles []string
	Bot         bool
	Content     string
	CreatedAt   time.Time
	Attachments int

	MentionUserIDs []string
	MentionRoleIDs []string
	Reference      *ReferencedMessage
}

func (m *IncomingMessage) cached() *CachedMessage {
	return &CachedMessage{
		ID:             m.MessageID,
		ChannelID:      m.ChannelID,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
		Attachments:    m.Attachments,
		MentionUserIDs: m.MentionUserIDs,
		MentionRoleIDs: m.MentionRoleIDs,
		Reference:      m.Reference,
	}
}

// Evaluator classifies inbound messages against the guild's auto-moderation
// rules and requests reprimands when a threshold is crossed. At most one
// rule fires per message.
type Evaluator struct {
	rules     RulesProvider
	moderator Moderator
	roles     RoleMemberCounter
	windows   *WindowCache
	cooldowns *CooldownStore

	mu    sync.Mutex
	gates map[string]*sync.Mutex // per guild
}

// NewEvaluator wires the evaluator to its collaborators. roles may be nil
// when no mention rule counts role members.
func NewEvaluator(rules RulesProvider, moderator Moderator, roles RoleMemberCounter) *Evaluator {
	return &Evaluator{
		rules:     rules,
		moderator: moderator,
		roles:     roles,
		windows:   NewWindowCache(),
		cooldowns: NewCooldownStore(),
		gates:     make(map[string]*sync.Mutex),
	}
}

func (e *Evaluator) gate(guildID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	g, ok := e.gates[guildID]
	if !ok {
		g = &sync.Mutex{}
		e.gates[guildID] = g
	}
	return g
}

// ProcessMessage runs every active, non-excluded configuration against the
// user's message window. A fault in one rule is logged and does not abort
// the others.
func (e *Evaluator) ProcessMessage(ctx context.Context, msg *IncomingMessage) error {
	if msg.Bot || msg.GuildID == "" {
		return nil
	}
	if e.cooldowns.UserActive(msg.GuildID, msg.UserID) {
		return nil
	}

	rules, err := e.rules.Rules(ctx, msg.GuildID)
	if err != nil {
		return fmt.Errorf("loading rules for guild %s: %w", msg.GuildID, err)
	}
	if rules == nil {
		return nil
	}
	if rules.Exclusions.Excluded(msg.ChannelID, msg.UserID, msg.AuthorRoles) {
		return nil
	}

	incoming := msg.cached()
	window := e.windows.Window(msg.GuildID, msg.UserID)
	window.Add(incoming)

	now := time.Now()
	for i := range rules.AutoConfigurations {
		cfg := rules.AutoConfigurations[i]
		if !cfg.IsActive {
			continue
		}
		if cfg.Exclusions.Excluded(msg.ChannelID, msg.UserID, msg.AuthorRoles) {
			continue
		}
		if e.cooldowns.RuleActive(msg.GuildID, cfg.ID, msg.UserID) {
			continue
		}

		selected := window.Select(cfg.MinimumLength, cfg.Lookback, cfg.Global, msg.ChannelID, now)
		counts := e.countAll(cfg, selected, incoming, msg.GuildID)

		if cfg.Kind == model.AutoDuplicate && !duplicatePercentageMet(cfg, counts) {
			continue
		}

		result, err := e.tryReprimand(ctx, rules, cfg, selected, counts, msg)
		if err != nil {
			log.Printf("automod: rule %s failed for guild %s: %v", cfg.ID, msg.GuildID, err)
			continue
		}
		if result != nil {
			rulesFired.WithLabelValues(string(cfg.Kind)).Inc()
			return nil
		}
	}
	return nil
}

// countAll computes the per-message counts for a rule, memoizing everything
// except whole-message duplicate comparisons, which depend on the incoming
// message.
func (e *Evaluator) countAll(cfg model.AutoConfiguration, selected []*CachedMessage, incoming *CachedMessage, guildID string) []RuleCount {
	counts := make([]RuleCount, len(selected))
	for i, m := range selected {
		switch cfg.Kind {
		case model.AutoMessage:
			counts[i] = RuleCount{Count: 1}
		case model.AutoDuplicate:
			counts[i] = countDuplicates(m, cfg, incoming)
		case model.AutoAttachment:
			counts[i] = m.Memoized(cfg.ID, countAttachments)
		case model.AutoEmoji:
			counts[i] = m.Memoized(cfg.ID, func(m *CachedMessage) RuleCount { return countEmoji(m, cfg) })
		case model.AutoInvite:
			counts[i] = m.Memoized(cfg.ID, func(m *CachedMessage) RuleCount { return countInvites(m, cfg) })
		case model.AutoLink:
			counts[i] = m.Memoized(cfg.ID, func(m *CachedMessage) RuleCount { return countLinks(m, cfg) })
		case model.AutoMention:
			counts[i] = m.Memoized(cfg.ID, func(m *CachedMessage) RuleCount {
				return countMentions(m, cfg, guildID, e.roles)
			})
		case model.AutoReply:
			counts[i] = m.Memoized(cfg.ID, func(m *CachedMessage) RuleCount { return countReply(m, cfg) })
		case model.AutoNewLine:
			counts[i] = m.Memoized(cfg.ID, func(m *CachedMessage) RuleCount { return countNewLines(m, cfg) })
		}
	}
	return counts
}

// duplicatePercentageMet guards the duplicate rules: an empty window (total
// zero) never fires.
func duplicatePercentageMet(cfg model.AutoConfiguration, counts []RuleCount) bool {
	var count, total int64
	for _, c := range counts {
		count += c.Count
		total += c.Total
	}
	if total == 0 {
		return false
	}
	return float64(count)/float64(total) >= cfg.DuplicatePercentage
}

// tryReprimand re-checks cooldowns under the per-guild gate, sets them, and
// hands off to the reprimand engine. Returns nil when the rule did not fire
// or the engine refused.
func (e *Evaluator) tryReprimand(ctx context.Context, rules *model.ModerationRules, cfg model.AutoConfiguration,
	selected []*CachedMessage, counts []RuleCount, msg *IncomingMessage) (*model.ReprimandResult, error) {

	var total int64
	for _, c := range counts {
		total += c.Count
	}
	if !cfg.IsTriggered(total) {
		return nil, nil
	}

	gate := e.gate(msg.GuildID)
	gate.Lock()
	defer gate.Unlock()

	// Two near-simultaneous messages must not both cross the threshold.
	if e.cooldowns.UserActive(msg.GuildID, msg.UserID) ||
		e.cooldowns.RuleActive(msg.GuildID, cfg.ID, msg.UserID) {
		return nil, nil
	}

	e.cooldowns.SetUser(msg.GuildID, msg.UserID, rules.CooldownFor(cfg.CategoryID))
	e.cooldowns.SetRule(msg.GuildID, cfg.ID, msg.UserID, cfg.Cooldown)

	var del []model.MessageRef
	for i, m := range selected {
		if counts[i].Count > 0 {
			del = append(del, model.MessageRef{ChannelID: m.ChannelID, MessageID: m.ID})
		}
	}

	reason := cfg.Reason
	if reason == "" {
		reason = fmt.Sprintf("[%s Limit of %d Triggered] at %d", cfg.Title(), cfg.Amount, total)
	}
	details := model.ReprimandDetails{
		GuildID:    msg.GuildID,
		UserID:     msg.UserID,
		Reason:     reason,
		CategoryID: cfg.CategoryID,
		TriggerID:  cfg.ID,
	}

	return e.moderator.AutoReprimand(ctx, details, cfg.Action, rules.AutoExpiryFor(cfg.CategoryID), cfg.DeleteMessages, del)
}
