package moderation

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"moderation-bot/model"
)

// Notifier fans a finished action chain out to the configured destinations.
type Notifier interface {
	Publish(ctx context.Context, result *model.ReprimandResult, details model.ReprimandDetails)
	PublishRefusal(ctx context.Context, details model.ReprimandDetails, message string)
}

// ExpiryRegistry accepts expiry registrations for newly issued reprimands.
type ExpiryRegistry interface {
	Register(reprimandID string, at time.Time)
}

// Service issues, escalates, reverses and expires reprimands. It is the
// single writer for reprimand state; handlers and the automod engines only
// ever go through it.
type Service struct {
	store    Store
	platform Platform
	notifier Notifier
	expiries ExpiryRegistry

	mu    sync.Mutex
	gates map[string]*sync.Mutex
}

func NewService(store Store, platform Platform, notifier Notifier, expiries ExpiryRegistry) *Service {
	return &Service{
		store:    store,
		platform: platform,
		notifier: notifier,
		expiries: expiries,
		gates:    make(map[string]*sync.Mutex),
	}
}

func (s *Service) gate(guildID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.gates[guildID]
	if !ok {
		g = &sync.Mutex{}
		s.gates[guildID] = g
	}
	return g
}

// chain accumulates the reprimands of one action and the trigger ids that
// already fired, so a cycle of triggers cannot escalate forever.
type chain struct {
	result *model.ReprimandResult
	fired  []string
}

func (c *chain) add(r *model.Reprimand) {
	if c.result == nil {
		c.result = &model.ReprimandResult{Primary: r}
		return
	}
	c.result.Secondary = append(c.result.Secondary, r)
}

func (c *chain) hasFired(triggerID string) bool {
	for _, id := range c.fired {
		if id == triggerID {
			return true
		}
	}
	return false
}

func (s *Service) rules(ctx context.Context, guildID string) (*model.ModerationRules, error) {
	rules, err := s.store.Rules(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("loading rules for guild %s: %w", guildID, err)
	}
	if rules == nil {
		rules = &model.ModerationRules{GuildID: guildID}
	}
	return rules, nil
}

func (s *Service) systemDetails(guildID, userID, reason string) model.ReprimandDetails {
	return model.ReprimandDetails{
		GuildID:     guildID,
		UserID:      userID,
		ModeratorID: s.platform.BotUserID(),
		Reason:      reason,
	}
}

// Warn issues a warning worth amount toward the user's totals.
func (s *Service) Warn(ctx context.Context, details model.ReprimandDetails, amount int64) (*model.ReprimandResult, error) {
	rules, err := s.rules(ctx, details.GuildID)
	if err != nil {
		return nil, err
	}
	return s.warn(ctx, rules, details, amount, rules.ExpiryFor(model.ReprimandWarning, details.CategoryID), nil)
}

func (s *Service) warn(ctx context.Context, rules *model.ModerationRules, details model.ReprimandDetails,
	amount int64, length time.Duration, ch *chain) (*model.ReprimandResult, error) {

	r := model.NewReprimand(model.ReprimandWarning, details)
	if amount < 1 {
		amount = 1
	}
	r.Count = amount
	r.SetLength(length)
	if err := s.store.CreateReprimand(ctx, r); err != nil {
		return nil, fmt.Errorf("persisting warning: %w", err)
	}
	return s.resolve(ctx, rules, r, details, ch)
}

// Notice issues a notice, a lighter mark that still feeds notice triggers.
func (s *Service) Notice(ctx context.Context, details model.ReprimandDetails) (*model.ReprimandResult, error) {
	rules, err := s.rules(ctx, details.GuildID)
	if err != nil {
		return nil, err
	}
	return s.notice(ctx, rules, details, rules.ExpiryFor(model.ReprimandNotice, details.CategoryID), nil)
}

func (s *Service) notice(ctx context.Context, rules *model.ModerationRules, details model.ReprimandDetails,
	length time.Duration, ch *chain) (*model.ReprimandResult, error) {

	r := model.NewReprimand(model.ReprimandNotice, details)
	r.SetLength(length)
	if err := s.store.CreateReprimand(ctx, r); err != nil {
		return nil, fmt.Errorf("persisting notice: %w", err)
	}
	return s.resolve(ctx, rules, r, details, ch)
}

// Note records a moderator note. Notes never count and never escalate.
func (s *Service) Note(ctx context.Context, details model.ReprimandDetails) (*model.ReprimandResult, error) {
	rules, err := s.rules(ctx, details.GuildID)
	if err != nil {
		return nil, err
	}
	return s.note(ctx, rules, details, nil)
}

func (s *Service) note(ctx context.Context, rules *model.ModerationRules, details model.ReprimandDetails,
	ch *chain) (*model.ReprimandResult, error) {

	r := model.NewReprimand(model.ReprimandNote, details)
	if err := s.store.CreateReprimand(ctx, r); err != nil {
		return nil, fmt.Errorf("persisting note: %w", err)
	}
	return s.resolve(ctx, rules, r, details, ch)
}

// Kick removes the user from the guild. The platform call happens before the
// record is persisted so a refused kick leaves no half-written state; a
// permission refusal returns (nil, nil).
func (s *Service) Kick(ctx context.Context, details model.ReprimandDetails) (*model.ReprimandResult, error) {
	rules, err := s.rules(ctx, details.GuildID)
	if err != nil {
		return nil, err
	}
	return s.kick(ctx, rules, details, nil)
}

func (s *Service) kick(ctx context.Context, rules *model.ModerationRules, details model.ReprimandDetails,
	ch *chain) (*model.ReprimandResult, error) {

	if err := s.platform.Kick(ctx, details.GuildID, details.UserID, details.Reason); err != nil {
		if IsForbidden(err) {
			s.notifier.PublishRefusal(ctx, details, "Missing permission to kick this user.")
			return nil, nil
		}
		return nil, fmt.Errorf("kicking user %s: %w", details.UserID, err)
	}
	r := model.NewReprimand(model.ReprimandKick, details)
	if err := s.store.CreateReprimand(ctx, r); err != nil {
		return nil, fmt.Errorf("persisting kick: %w", err)
	}
	return s.resolve(ctx, rules, r, details, ch)
}

// Mute assigns the configured mute role for the given length, zero meaning
// indefinite. An existing active mute is either replaced (its record expired
// first, role left in place) or refused, per the guild's replace policy.
func (s *Service) Mute(ctx context.Context, details model.ReprimandDetails, length time.Duration) (*model.ReprimandResult, error) {
	rules, err := s.rules(ctx, details.GuildID)
	if err != nil {
		return nil, err
	}
	return s.muteOp(ctx, rules, details, length, nil)
}

func (s *Service) muteOp(ctx context.Context, rules *model.ModerationRules, details model.ReprimandDetails,
	length time.Duration, ch *chain) (*model.ReprimandResult, error) {

	roleID := rules.MuteRoleFor(details.CategoryID)
	if roleID == "" {
		s.notifier.PublishRefusal(ctx, details, "No mute role is configured.")
		return nil, nil
	}

	active, err := s.store.ActiveReprimand(ctx, details.GuildID, details.UserID, model.ReprimandMute)
	if err != nil {
		return nil, fmt.Errorf("looking up active mute: %w", err)
	}
	if active != nil {
		if !rules.ReplaceMutesFor(details.CategoryID) {
			s.notifier.PublishRefusal(ctx, details, "User is already muted.")
			return nil, nil
		}
		// Replacing: retire the old record without touching the role, the
		// new mute keeps it assigned.
		if err := s.transition(ctx, active, model.StatusExpired,
			s.systemDetails(details.GuildID, details.UserID, "[Mute Replaced]")); err != nil {
			return nil, err
		}
	}

	if err := s.platform.AddRole(ctx, details.GuildID, details.UserID, roleID); err != nil {
		if IsForbidden(err) {
			s.notifier.PublishRefusal(ctx, details, "Missing permission to assign the mute role.")
			return nil, nil
		}
		return nil, fmt.Errorf("assigning mute role: %w", err)
	}
	if err := s.platform.SetVoiceMute(ctx, details.GuildID, details.UserID, true); err != nil {
		log.Printf("moderation: voice mute for %s failed: %v", details.UserID, err)
	}

	r := model.NewReprimand(model.ReprimandMute, details)
	r.SetLength(length)
	if err := s.store.CreateReprimand(ctx, r); err != nil {
		return nil, fmt.Errorf("persisting mute: %w", err)
	}
	return s.resolve(ctx, rules, r, details, ch)
}

// Ban bans the user, optionally purging deleteDays of messages and expiring
// after length (zero = permanent).
func (s *Service) Ban(ctx context.Context, details model.ReprimandDetails, deleteDays int64, length time.Duration) (*model.ReprimandResult, error) {
	rules, err := s.rules(ctx, details.GuildID)
	if err != nil {
		return nil, err
	}
	return s.ban(ctx, rules, details, deleteDays, length, nil)
}

func (s *Service) ban(ctx context.Context, rules *model.ModerationRules, details model.ReprimandDetails,
	deleteDays int64, length time.Duration, ch *chain) (*model.ReprimandResult, error) {

	active, err := s.store.ActiveReprimand(ctx, details.GuildID, details.UserID, model.ReprimandBan)
	if err != nil {
		return nil, fmt.Errorf("looking up active ban: %w", err)
	}
	if active != nil {
		if err := s.transition(ctx, active, model.StatusExpired,
			s.systemDetails(details.GuildID, details.UserID, "[Ban Replaced]")); err != nil {
			return nil, err
		}
	}

	if deleteDays < 0 {
		deleteDays = 0
	}
	if deleteDays > 7 {
		deleteDays = 7
	}
	if err := s.platform.Ban(ctx, details.GuildID, details.UserID, details.Reason, deleteDays); err != nil {
		if IsForbidden(err) {
			s.notifier.PublishRefusal(ctx, details, "Missing permission to ban this user.")
			return nil, nil
		}
		return nil, fmt.Errorf("banning user %s: %w", details.UserID, err)
	}

	r := model.NewReprimand(model.ReprimandBan, details)
	r.DeleteDays = deleteDays
	r.SetLength(length)
	if err := s.store.CreateReprimand(ctx, r); err != nil {
		return nil, fmt.Errorf("persisting ban: %w", err)
	}
	return s.resolve(ctx, rules, r, details, ch)
}

// resolve admits the freshly persisted reprimand into the chain, runs the
// reprimand-trigger escalation and, at the end of the chain, publishes the
// combined result exactly once.
func (s *Service) resolve(ctx context.Context, rules *model.ModerationRules, r *model.Reprimand,
	details model.ReprimandDetails, ch *chain) (*model.ReprimandResult, error) {

	if ch == nil {
		ch = &chain{}
	}
	s.admit(r, ch)

	if source, ok := model.TriggerSource(r.Kind); ok {
		count, err := s.store.ReprimandCount(ctx, r.GuildID, r.UserID, source, r.CategoryID, true)
		if err != nil {
			log.Printf("moderation: counting %s reprimands for %s: %v", source, r.UserID, err)
		} else if trigger := matchTrigger(rules, source, r.CategoryID, count); trigger != nil && !ch.hasFired(trigger.ID) {
			ch.fired = append(ch.fired, trigger.ID)

			secondary := details
			secondary.Reason = fmt.Sprintf("[Reprimand Count Triggered] at %d", count)
			secondary.TriggerID = trigger.ID
			secondary.CategoryID = trigger.CategoryID

			sec, err := s.executeAction(ctx, rules, trigger.Action, secondary, ch)
			if err != nil {
				log.Printf("moderation: trigger %s action failed: %v", trigger.ID, err)
			} else if sec != nil {
				cascadesFired.Inc()
				return ch.result, nil
			}
		}
	}

	s.notifier.Publish(ctx, ch.result, details)
	return ch.result, nil
}

func (s *Service) admit(r *model.Reprimand, ch *chain) {
	ch.add(r)
	if r.ExpiresAt != nil && s.expiries != nil {
		s.expiries.Register(r.ID, *r.ExpiresAt)
	}
	reprimandsIssued.WithLabelValues(string(r.Kind)).Inc()
}

// matchTrigger picks the active trigger for the source and category whose
// threshold the count satisfies, preferring the highest amount.
func matchTrigger(rules *model.ModerationRules, source model.ReprimandKind, categoryID string, count int64) *model.ReprimandTrigger {
	var best *model.ReprimandTrigger
	for i := range rules.ReprimandTriggers {
		t := &rules.ReprimandTriggers[i]
		if !t.IsActive || t.Source != source || t.CategoryID != categoryID {
			continue
		}
		if !t.IsTriggered(count) {
			continue
		}
		if best == nil || t.Amount > best.Amount {
			best = t
		}
	}
	return best
}

func (s *Service) executeAction(ctx context.Context, rules *model.ModerationRules, action model.ReprimandAction,
	details model.ReprimandDetails, ch *chain) (*model.ReprimandResult, error) {

	switch action.Kind {
	case model.ReprimandWarning:
		length := action.Length
		if length == 0 {
			length = rules.ExpiryFor(model.ReprimandWarning, details.CategoryID)
		}
		return s.warn(ctx, rules, details, action.Count, length, ch)
	case model.ReprimandNotice:
		length := action.Length
		if length == 0 {
			length = rules.ExpiryFor(model.ReprimandNotice, details.CategoryID)
		}
		return s.notice(ctx, rules, details, length, ch)
	case model.ReprimandNote:
		return s.note(ctx, rules, details, ch)
	case model.ReprimandMute:
		return s.muteOp(ctx, rules, details, action.Length, ch)
	case model.ReprimandKick:
		return s.kick(ctx, rules, details, ch)
	case model.ReprimandBan:
		return s.ban(ctx, rules, details, action.DeleteDays, action.Length, ch)
	default:
		return nil, fmt.Errorf("unknown reprimand action kind %q", action.Kind)
	}
}

// transition rewrites the status, stamps the modification fields and
// publishes the change on its own.
func (s *Service) transition(ctx context.Context, r *model.Reprimand, status model.ReprimandStatus,
	details model.ReprimandDetails) error {

	now := time.Now().UTC()
	r.Status = status
	r.ModifiedModeratorID = details.ModeratorID
	r.ModifiedReason = details.Reason
	r.ModifiedAt = &now
	if status == model.StatusPardoned || status == model.StatusExpired {
		r.EndedAt = &now
	}
	if err := s.store.UpdateReprimand(ctx, r); err != nil {
		return fmt.Errorf("updating reprimand %s: %w", r.ID, err)
	}
	s.notifier.Publish(ctx, &model.ReprimandResult{Primary: r}, details)
	return nil
}

// reverseEffect undoes the platform-side effect of an active reprimand.
// Failures are logged, not fatal: the record transition must not be blocked
// by a role or ban that was already removed by hand.
func (s *Service) reverseEffect(ctx context.Context, rules *model.ModerationRules, r *model.Reprimand) {
	switch r.Kind {
	case model.ReprimandMute:
		if roleID := rules.MuteRoleFor(r.CategoryID); roleID != "" {
			if err := s.platform.RemoveRole(ctx, r.GuildID, r.UserID, roleID); err != nil {
				log.Printf("moderation: removing mute role for %s: %v", r.UserID, err)
			}
		}
		if err := s.platform.SetVoiceMute(ctx, r.GuildID, r.UserID, false); err != nil {
			log.Printf("moderation: voice unmute for %s: %v", r.UserID, err)
		}
	case model.ReprimandBan:
		if err := s.platform.Unban(ctx, r.GuildID, r.UserID); err != nil {
			log.Printf("moderation: unbanning %s: %v", r.UserID, err)
		}
	}
}

// Pardon retires an active reprimand, reversing its platform effect first.
// A missing or already inactive record returns (nil, nil).
func (s *Service) Pardon(ctx context.Context, reprimandID string, details model.ReprimandDetails) (*model.Reprimand, error) {
	r, err := s.store.Reprimand(ctx, reprimandID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil
	}

	g := s.gate(r.GuildID)
	g.Lock()
	defer g.Unlock()

	r, err = s.store.Reprimand(ctx, reprimandID)
	if err != nil || r == nil || !r.IsActive() {
		return nil, err
	}

	rules, err := s.rules(ctx, r.GuildID)
	if err != nil {
		return nil, err
	}
	s.reverseEffect(ctx, rules, r)
	if err := s.transition(ctx, r, model.StatusPardoned, details); err != nil {
		return nil, err
	}
	return r, nil
}

// Unmute pardons the user's active mute. Without one, it still strips the
// configured mute role so a manually assigned role can be cleared.
func (s *Service) Unmute(ctx context.Context, details model.ReprimandDetails) (*model.Reprimand, error) {
	active, err := s.store.ActiveReprimand(ctx, details.GuildID, details.UserID, model.ReprimandMute)
	if err != nil {
		return nil, fmt.Errorf("looking up active mute: %w", err)
	}
	if active != nil {
		return s.Pardon(ctx, active.ID, details)
	}

	rules, err := s.rules(ctx, details.GuildID)
	if err != nil {
		return nil, err
	}
	if roleID := rules.MuteRoleFor(details.CategoryID); roleID != "" {
		if err := s.platform.RemoveRole(ctx, details.GuildID, details.UserID, roleID); err != nil {
			log.Printf("moderation: removing mute role for %s: %v", details.UserID, err)
		}
	}
	if err := s.platform.SetVoiceMute(ctx, details.GuildID, details.UserID, false); err != nil {
		log.Printf("moderation: voice unmute for %s: %v", details.UserID, err)
	}
	return nil, nil
}

// Unban pardons the user's active ban, or lifts the platform ban directly
// when no record exists.
func (s *Service) Unban(ctx context.Context, details model.ReprimandDetails) (*model.Reprimand, error) {
	active, err := s.store.ActiveReprimand(ctx, details.GuildID, details.UserID, model.ReprimandBan)
	if err != nil {
		return nil, fmt.Errorf("looking up active ban: %w", err)
	}
	if active != nil {
		return s.Pardon(ctx, active.ID, details)
	}
	if err := s.platform.Unban(ctx, details.GuildID, details.UserID); err != nil {
		if IsForbidden(err) {
			s.notifier.PublishRefusal(ctx, details, "Missing permission to unban this user.")
			return nil, nil
		}
		return nil, fmt.Errorf("unbanning user %s: %w", details.UserID, err)
	}
	return nil, nil
}

// Update rewrites a reprimand's reason and, when hasLength is set, its
// length, rescheduling or cancelling the expiry accordingly.
func (s *Service) Update(ctx context.Context, reprimandID string, details model.ReprimandDetails,
	length time.Duration, hasLength bool) (*model.Reprimand, error) {

	r, err := s.store.Reprimand(ctx, reprimandID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil
	}

	g := s.gate(r.GuildID)
	g.Lock()
	defer g.Unlock()

	r, err = s.store.Reprimand(ctx, reprimandID)
	if err != nil || r == nil {
		return nil, err
	}

	now := time.Now().UTC()
	r.ModifiedModeratorID = details.ModeratorID
	r.ModifiedReason = details.Reason
	r.ModifiedAt = &now
	if r.IsActive() {
		r.Status = model.StatusUpdated
	}
	if hasLength && r.IsExpirable() {
		start := r.StartsAt
		if start == nil {
			start = &now
			r.StartsAt = start
		}
		r.Length = length
		if length > 0 {
			expires := start.Add(length)
			r.ExpiresAt = &expires
			if s.expiries != nil {
				s.expiries.Register(r.ID, expires)
			}
		} else {
			r.ExpiresAt = nil
		}
	}
	if err := s.store.UpdateReprimand(ctx, r); err != nil {
		return nil, fmt.Errorf("updating reprimand %s: %w", r.ID, err)
	}
	s.notifier.Publish(ctx, &model.ReprimandResult{Primary: r}, details)
	return r, nil
}

// Delete removes the record entirely, reversing its effect when still
// active. The deletion is published before the row disappears so the logs
// keep a trace of it.
func (s *Service) Delete(ctx context.Context, reprimandID string, details model.ReprimandDetails) (*model.Reprimand, error) {
	r, err := s.store.Reprimand(ctx, reprimandID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil
	}

	g := s.gate(r.GuildID)
	g.Lock()
	defer g.Unlock()

	r, err = s.store.Reprimand(ctx, reprimandID)
	if err != nil || r == nil {
		return nil, err
	}

	rules, err := s.rules(ctx, r.GuildID)
	if err != nil {
		return nil, err
	}
	if r.IsActive() {
		s.reverseEffect(ctx, rules, r)
	}

	now := time.Now().UTC()
	r.Status = model.StatusDeleted
	r.ModifiedModeratorID = details.ModeratorID
	r.ModifiedReason = details.Reason
	r.ModifiedAt = &now
	s.notifier.Publish(ctx, &model.ReprimandResult{Primary: r}, details)

	if err := s.store.DeleteReprimand(ctx, reprimandID); err != nil {
		return nil, fmt.Errorf("deleting reprimand %s: %w", reprimandID, err)
	}
	return r, nil
}

// ExpireReprimand is the scheduler callback. It is idempotent: the record is
// re-read under the guild gate and only an active record whose deadline has
// actually arrived is expired. A deadline pushed into the future by an
// update is re-registered instead.
func (s *Service) ExpireReprimand(ctx context.Context, reprimandID string) error {
	r, err := s.store.Reprimand(ctx, reprimandID)
	if err != nil {
		return err
	}
	if r == nil {
		return nil
	}

	g := s.gate(r.GuildID)
	g.Lock()
	defer g.Unlock()

	r, err = s.store.Reprimand(ctx, reprimandID)
	if err != nil || r == nil {
		return err
	}
	if !r.IsActive() || r.ExpiresAt == nil {
		return nil
	}
	if time.Now().Before(*r.ExpiresAt) {
		if s.expiries != nil {
			s.expiries.Register(r.ID, *r.ExpiresAt)
		}
		return nil
	}

	rules, err := s.rules(ctx, r.GuildID)
	if err != nil {
		return err
	}
	s.reverseEffect(ctx, rules, r)
	if err := s.transition(ctx, r, model.StatusExpired,
		s.systemDetails(r.GuildID, r.UserID, "[Reprimand Expired]")); err != nil {
		return err
	}
	expiriesProcessed.Inc()
	return nil
}

// AutoReprimand implements the automod hand-off: delete the offending
// messages when the rule says so, then run the rule's configured action as
// the start of a fresh chain. A rule without an action is delete-only.
func (s *Service) AutoReprimand(ctx context.Context, details model.ReprimandDetails, action *model.ReprimandAction,
	length time.Duration, deleteMessages bool, del []model.MessageRef) (*model.ReprimandResult, error) {

	if deleteMessages && len(del) > 0 {
		byChannel := make(map[string][]string)
		for _, ref := range del {
			byChannel[ref.ChannelID] = append(byChannel[ref.ChannelID], ref.MessageID)
		}
		for channelID, ids := range byChannel {
			if err := s.platform.BulkDeleteMessages(ctx, channelID, ids); err != nil {
				log.Printf("moderation: deleting %d messages in %s: %v", len(ids), channelID, err)
			}
		}
	}
	if action == nil {
		return nil, nil
	}

	rules, err := s.rules(ctx, details.GuildID)
	if err != nil {
		return nil, err
	}
	act := *action
	if act.Length == 0 && length > 0 {
		act.Length = length
	}
	return s.executeAction(ctx, rules, act, details, &chain{})
}

// Censor records a censored message, deleting it unless the censor is
// silent, and resolves the censor's own escalation threshold.
func (s *Service) Censor(ctx context.Context, details model.ReprimandDetails, censor model.Censor,
	content string, msg model.MessageRef, length time.Duration) (*model.ReprimandResult, error) {

	if !censor.Silent && msg.MessageID != "" {
		if err := s.platform.DeleteMessage(ctx, msg.ChannelID, msg.MessageID); err != nil {
			log.Printf("moderation: deleting censored message %s: %v", msg.MessageID, err)
		}
	}

	rules, err := s.rules(ctx, details.GuildID)
	if err != nil {
		return nil, err
	}
	r := model.NewReprimand(model.ReprimandCensored, details)
	r.Content = content
	r.Pattern = censor.Pattern
	r.SetLength(length)
	if err := s.store.CreateReprimand(ctx, r); err != nil {
		return nil, fmt.Errorf("persisting censor record: %w", err)
	}
	return s.resolveCensored(ctx, rules, censor, r, details)
}

// CensorName renames the member to the configured replacement and records
// the censored name.
func (s *Service) CensorName(ctx context.Context, details model.ReprimandDetails, censor model.Censor,
	name string, length time.Duration) (*model.ReprimandResult, error) {

	rules, err := s.rules(ctx, details.GuildID)
	if err != nil {
		return nil, err
	}
	replacement := rules.NameReplacement
	if replacement == "" {
		replacement = "Censored"
	}
	if err := s.platform.SetNickname(ctx, details.GuildID, details.UserID, replacement); err != nil {
		log.Printf("moderation: renaming %s: %v", details.UserID, err)
	}

	r := model.NewReprimand(model.ReprimandCensored, details)
	r.Content = name
	r.Pattern = censor.Pattern
	r.SetLength(length)
	if err := s.store.CreateReprimand(ctx, r); err != nil {
		return nil, fmt.Errorf("persisting name censor record: %w", err)
	}
	return s.resolveCensored(ctx, rules, censor, r, details)
}

// resolveCensored prefers the censor's own trigger over the generic
// censored-source triggers: when the per-censor threshold is satisfied its
// action runs, otherwise the record goes through the normal escalation.
func (s *Service) resolveCensored(ctx context.Context, rules *model.ModerationRules, censor model.Censor,
	r *model.Reprimand, details model.ReprimandDetails) (*model.ReprimandResult, error) {

	if censor.Action != nil {
		count, err := s.store.ReprimandCountByTrigger(ctx, r.GuildID, r.UserID, censor.ID, true)
		if err != nil {
			log.Printf("moderation: counting censor %s records for %s: %v", censor.ID, r.UserID, err)
		} else if censor.IsTriggered(count) {
			ch := &chain{fired: []string{censor.ID}}
			s.admit(r, ch)

			secondary := details
			secondary.Reason = fmt.Sprintf("[Censor Count Triggered] at %d", count)
			secondary.TriggerID = censor.ID

			sec, err := s.executeAction(ctx, rules, *censor.Action, secondary, ch)
			if err != nil {
				log.Printf("moderation: censor %s action failed: %v", censor.ID, err)
			} else if sec != nil {
				cascadesFired.Inc()
				return ch.result, nil
			}
			s.notifier.Publish(ctx, ch.result, details)
			return ch.result, nil
		}
	}
	return s.resolve(ctx, rules, r, details, nil)
}

// Counts summarizes a user's standing per reprimand kind.
type Counts struct {
	Active int64
	Total  int64
}

// UserCounts gathers active and lifetime totals for every kind, for the
// history command.
func (s *Service) UserCounts(ctx context.Context, guildID, userID string) (map[model.ReprimandKind]Counts, error) {
	kinds := []model.ReprimandKind{
		model.ReprimandWarning, model.ReprimandNotice, model.ReprimandNote,
		model.ReprimandMute, model.ReprimandKick, model.ReprimandBan,
		model.ReprimandCensored,
	}
	out := make(map[model.ReprimandKind]Counts, len(kinds))
	for _, kind := range kinds {
		active, err := s.store.ReprimandCountAll(ctx, guildID, userID, kind, true)
		if err != nil {
			return nil, err
		}
		total, err := s.store.ReprimandCountAll(ctx, guildID, userID, kind, false)
		if err != nil {
			return nil, err
		}
		out[kind] = Counts{Active: active, Total: total}
	}
	return out, nil
}
