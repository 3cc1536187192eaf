package moderation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moderation-bot/model"
)

// fakeStore is an in-memory Store mirroring the relational counting
// semantics: warnings sum their amounts, other kinds count records.
type fakeStore struct {
	mu      sync.Mutex
	records []*model.Reprimand
	rules   *model.ModerationRules
}

func (s *fakeStore) CreateReprimand(ctx context.Context, r *model.Reprimand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.records = append(s.records, &cp)
	return nil
}

func (s *fakeStore) UpdateReprimand(ctx context.Context, r *model.Reprimand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.records {
		if existing.ID == r.ID {
			cp := *r
			s.records[i] = &cp
			return nil
		}
	}
	return nil
}

func (s *fakeStore) DeleteReprimand(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.records {
		if r.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *fakeStore) Reprimand(ctx context.Context, id string) (*model.Reprimand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) ActiveReprimand(ctx context.Context, guildID, userID string, kind model.ReprimandKind) (*model.Reprimand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.records) - 1; i >= 0; i-- {
		r := s.records[i]
		if r.GuildID == guildID && r.UserID == userID && r.Kind == kind && r.IsActive() {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) ReprimandCount(ctx context.Context, guildID, userID string, kind model.ReprimandKind,
	categoryID string, activeOnly bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, r := range s.records {
		if r.GuildID != guildID || r.UserID != userID || r.Kind != kind || r.CategoryID != categoryID {
			continue
		}
		if activeOnly && !r.IsActive() {
			continue
		}
		n += r.CountsAs()
	}
	return n, nil
}

func (s *fakeStore) ReprimandCountAll(ctx context.Context, guildID, userID string, kind model.ReprimandKind,
	activeOnly bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, r := range s.records {
		if r.GuildID != guildID || r.UserID != userID || r.Kind != kind {
			continue
		}
		if activeOnly && !r.IsActive() {
			continue
		}
		n += r.CountsAs()
	}
	return n, nil
}

func (s *fakeStore) ReprimandCountByTrigger(ctx context.Context, guildID, userID, triggerID string, activeOnly bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, r := range s.records {
		if r.GuildID != guildID || r.UserID != userID || r.TriggerID != triggerID {
			continue
		}
		if activeOnly && !r.IsActive() {
			continue
		}
		n++
	}
	return n, nil
}

func (s *fakeStore) ActiveExpirable(ctx context.Context) ([]*model.Reprimand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Reprimand
	for _, r := range s.records {
		if r.IsActive() && r.ExpiresAt != nil {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeStore) Rules(ctx context.Context, guildID string) (*model.ModerationRules, error) {
	return s.rules, nil
}

func (s *fakeStore) byKind(kind model.ReprimandKind) []*model.Reprimand {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Reprimand
	for _, r := range s.records {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

type sentEmbed struct {
	channelID string
	embed     *discordgo.MessageEmbed
}

// fakePlatform records every call and fails the configured methods with a
// permission error.
type fakePlatform struct {
	mu        sync.Mutex
	forbidden map[string]bool
	calls     map[string]int
	deleted   map[string][]string
	sends     []sentEmbed
	dms       []*discordgo.MessageEmbed
	responses []*discordgo.MessageEmbed
	texts     []string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		forbidden: make(map[string]bool),
		calls:     make(map[string]int),
		deleted:   make(map[string][]string),
	}
}

func forbiddenErr() error {
	return &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeMissingPermissions}}
}

func (p *fakePlatform) record(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[name]++
	if p.forbidden[name] {
		return forbiddenErr()
	}
	return nil
}

func (p *fakePlatform) count(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[name]
}

func (p *fakePlatform) BotUserID() string { return "bot" }

func (p *fakePlatform) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	p.mu.Lock()
	p.deleted[channelID] = append(p.deleted[channelID], messageID)
	p.mu.Unlock()
	return p.record("DeleteMessage")
}

func (p *fakePlatform) BulkDeleteMessages(ctx context.Context, channelID string, messageIDs []string) error {
	p.mu.Lock()
	p.deleted[channelID] = append(p.deleted[channelID], messageIDs...)
	p.mu.Unlock()
	return p.record("BulkDeleteMessages")
}

func (p *fakePlatform) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	return p.record("AddRole")
}

func (p *fakePlatform) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	return p.record("RemoveRole")
}

func (p *fakePlatform) SetVoiceMute(ctx context.Context, guildID, userID string, mute bool) error {
	return p.record("SetVoiceMute")
}

func (p *fakePlatform) SetNickname(ctx context.Context, guildID, userID, nick string) error {
	return p.record("SetNickname")
}

func (p *fakePlatform) Kick(ctx context.Context, guildID, userID, reason string) error {
	return p.record("Kick")
}

func (p *fakePlatform) Ban(ctx context.Context, guildID, userID, reason string, deleteDays int64) error {
	return p.record("Ban")
}

func (p *fakePlatform) Unban(ctx context.Context, guildID, userID string) error {
	return p.record("Unban")
}

func (p *fakePlatform) SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error {
	p.mu.Lock()
	p.sends = append(p.sends, sentEmbed{channelID: channelID, embed: embed})
	p.mu.Unlock()
	return p.record("SendEmbed")
}

func (p *fakePlatform) SendDMEmbed(ctx context.Context, userID string, embed *discordgo.MessageEmbed) error {
	p.mu.Lock()
	p.dms = append(p.dms, embed)
	p.mu.Unlock()
	return p.record("SendDMEmbed")
}

func (p *fakePlatform) RespondEmbed(ctx context.Context, interaction *discordgo.Interaction, embed *discordgo.MessageEmbed) error {
	p.mu.Lock()
	p.responses = append(p.responses, embed)
	p.mu.Unlock()
	return p.record("RespondEmbed")
}

func (p *fakePlatform) RespondText(ctx context.Context, interaction *discordgo.Interaction, content string) error {
	p.mu.Lock()
	p.texts = append(p.texts, content)
	p.mu.Unlock()
	return p.record("RespondText")
}

func (p *fakePlatform) RoleMemberCount(guildID, roleID string) int { return 0 }

type published struct {
	result  *model.ReprimandResult
	details model.ReprimandDetails
}

type fakeNotifier struct {
	mu        sync.Mutex
	published []published
	refusals  []string
}

func (n *fakeNotifier) Publish(ctx context.Context, result *model.ReprimandResult, details model.ReprimandDetails) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.published = append(n.published, published{result: result, details: details})
}

func (n *fakeNotifier) PublishRefusal(ctx context.Context, details model.ReprimandDetails, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.refusals = append(n.refusals, message)
}

type fakeRegistry struct {
	mu      sync.Mutex
	entries map[string][]time.Time
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{entries: make(map[string][]time.Time)}
}

func (f *fakeRegistry) Register(reprimandID string, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[reprimandID] = append(f.entries[reprimandID], at)
}

type testEnv struct {
	store    *fakeStore
	platform *fakePlatform
	notifier *fakeNotifier
	registry *fakeRegistry
	service  *Service
}

func newTestEnv(rules *model.ModerationRules) *testEnv {
	store := &fakeStore{rules: rules}
	platform := newFakePlatform()
	notifier := &fakeNotifier{}
	registry := newFakeRegistry()
	return &testEnv{
		store:    store,
		platform: platform,
		notifier: notifier,
		registry: registry,
		service:  NewService(store, platform, notifier, registry),
	}
}

func details(userID string) model.ReprimandDetails {
	return model.ReprimandDetails{GuildID: "g", UserID: userID, ModeratorID: "mod", Reason: "spamming"}
}

func TestWarnCascadesToMute(t *testing.T) {
	rules := &model.ModerationRules{
		GuildID:    "g",
		MuteRoleID: "muted",
		ReprimandTriggers: []model.ReprimandTrigger{{
			Trigger: model.Trigger{ID: "t1", IsActive: true, Amount: 2, Mode: model.ModeRetroactive},
			Source:  model.ReprimandWarning,
			Action:  model.ReprimandAction{Kind: model.ReprimandMute, Length: time.Hour},
		}},
	}
	env := newTestEnv(rules)
	ctx := context.Background()

	first, err := env.service.Warn(ctx, details("u"), 1)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Empty(t, first.Secondary)
	assert.Equal(t, 0, env.platform.count("AddRole"))

	second, err := env.service.Warn(ctx, details("u"), 1)
	require.NoError(t, err)
	require.NotNil(t, second)
	require.Len(t, second.Secondary, 1, "the second warning crosses the threshold")
	assert.Equal(t, model.ReprimandWarning, second.Primary.Kind)
	assert.Equal(t, model.ReprimandMute, second.Secondary[0].Kind)
	assert.Contains(t, second.Secondary[0].Reason, "[Reprimand Count Triggered] at 2")
	assert.Equal(t, 1, env.platform.count("AddRole"))

	// One publication per chain, never one per link.
	require.Len(t, env.notifier.published, 2)
	assert.Len(t, env.notifier.published[1].result.Secondary, 1)
}

func TestWarnAmountFeedsTrigger(t *testing.T) {
	rules := &model.ModerationRules{
		GuildID:    "g",
		MuteRoleID: "muted",
		ReprimandTriggers: []model.ReprimandTrigger{{
			Trigger: model.Trigger{ID: "t1", IsActive: true, Amount: 3, Mode: model.ModeRetroactive},
			Source:  model.ReprimandWarning,
			Action:  model.ReprimandAction{Kind: model.ReprimandMute},
		}},
	}
	env := newTestEnv(rules)

	result, err := env.service.Warn(context.Background(), details("u"), 3)
	require.NoError(t, err)
	require.Len(t, result.Secondary, 1, "a weight-3 warning satisfies the threshold alone")
}

func TestCascadeCycleFiresOnce(t *testing.T) {
	// A warning trigger whose action is itself a warning must not loop.
	rules := &model.ModerationRules{
		GuildID: "g",
		ReprimandTriggers: []model.ReprimandTrigger{{
			Trigger: model.Trigger{ID: "t1", IsActive: true, Amount: 2, Mode: model.ModeRetroactive},
			Source:  model.ReprimandWarning,
			Action:  model.ReprimandAction{Kind: model.ReprimandWarning, Count: 1},
		}},
	}
	env := newTestEnv(rules)
	ctx := context.Background()

	_, err := env.service.Warn(ctx, details("u"), 1)
	require.NoError(t, err)
	result, err := env.service.Warn(ctx, details("u"), 1)
	require.NoError(t, err)

	require.Len(t, result.Secondary, 1, "the trigger fires exactly once per chain")
	assert.Len(t, env.store.byKind(model.ReprimandWarning), 3)
	require.Len(t, env.notifier.published, 2)
}

func TestHighestAmountTriggerWins(t *testing.T) {
	rules := &model.ModerationRules{
		GuildID:    "g",
		MuteRoleID: "muted",
		ReprimandTriggers: []model.ReprimandTrigger{
			{
				Trigger: model.Trigger{ID: "low", IsActive: true, Amount: 1, Mode: model.ModeRetroactive},
				Source:  model.ReprimandWarning,
				Action:  model.ReprimandAction{Kind: model.ReprimandNotice},
			},
			{
				Trigger: model.Trigger{ID: "high", IsActive: true, Amount: 2, Mode: model.ModeRetroactive},
				Source:  model.ReprimandWarning,
				Action:  model.ReprimandAction{Kind: model.ReprimandMute},
			},
		},
	}
	env := newTestEnv(rules)

	result, err := env.service.Warn(context.Background(), details("u"), 2)
	require.NoError(t, err)
	require.Len(t, result.Secondary, 1)
	assert.Equal(t, model.ReprimandMute, result.Secondary[0].Kind)
}

func TestMuteRefusedWhenAlreadyMuted(t *testing.T) {
	env := newTestEnv(&model.ModerationRules{GuildID: "g", MuteRoleID: "muted"})
	ctx := context.Background()

	first, err := env.service.Mute(ctx, details("u"), time.Hour)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := env.service.Mute(ctx, details("u"), time.Hour)
	require.NoError(t, err)
	assert.Nil(t, second)
	assert.Equal(t, 1, env.platform.count("AddRole"))
	require.Len(t, env.notifier.refusals, 1)
	assert.Contains(t, env.notifier.refusals[0], "already muted")
}

func TestMuteReplacesActiveMute(t *testing.T) {
	env := newTestEnv(&model.ModerationRules{GuildID: "g", MuteRoleID: "muted", ReplaceMutes: true})
	ctx := context.Background()

	first, err := env.service.Mute(ctx, details("u"), time.Hour)
	require.NoError(t, err)
	second, err := env.service.Mute(ctx, details("u"), 2*time.Hour)
	require.NoError(t, err)
	require.NotNil(t, second)

	old, err := env.store.Reprimand(ctx, first.Primary.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusExpired, old.Status)
	assert.Equal(t, "[Mute Replaced]", old.ModifiedReason)

	// The role stays in place for the replacement mute.
	assert.Equal(t, 0, env.platform.count("RemoveRole"))
	assert.Equal(t, 2, env.platform.count("AddRole"))
}

func TestMuteWithoutRoleRefused(t *testing.T) {
	env := newTestEnv(&model.ModerationRules{GuildID: "g"})
	result, err := env.service.Mute(context.Background(), details("u"), time.Hour)
	require.NoError(t, err)
	assert.Nil(t, result)
	require.Len(t, env.notifier.refusals, 1)
	assert.Contains(t, env.notifier.refusals[0], "No mute role")
}

func TestKickForbidden(t *testing.T) {
	env := newTestEnv(&model.ModerationRules{GuildID: "g"})
	env.platform.forbidden["Kick"] = true

	result, err := env.service.Kick(context.Background(), details("u"))
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Empty(t, env.store.byKind(model.ReprimandKick), "a refused kick leaves no record")
	assert.Len(t, env.notifier.refusals, 1)
}

func TestBanClampsDeleteDays(t *testing.T) {
	env := newTestEnv(&model.ModerationRules{GuildID: "g"})
	result, err := env.service.Ban(context.Background(), details("u"), 30, 0)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, int64(7), result.Primary.DeleteDays)
	assert.Nil(t, result.Primary.ExpiresAt, "a zero length ban is permanent")
}

func TestExpireReprimand(t *testing.T) {
	env := newTestEnv(&model.ModerationRules{GuildID: "g", MuteRoleID: "muted"})
	ctx := context.Background()

	result, err := env.service.Mute(ctx, details("u"), time.Nanosecond)
	require.NoError(t, err)
	id := result.Primary.ID
	time.Sleep(time.Millisecond)

	require.NoError(t, env.service.ExpireReprimand(ctx, id))
	assert.Equal(t, 1, env.platform.count("RemoveRole"))

	r, err := env.store.Reprimand(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusExpired, r.Status)
	assert.Equal(t, "[Reprimand Expired]", r.ModifiedReason)
	assert.Equal(t, "bot", r.ModifiedModeratorID)
	assert.NotNil(t, r.EndedAt)

	// A second run sees the terminal status and does nothing.
	require.NoError(t, env.service.ExpireReprimand(ctx, id))
	assert.Equal(t, 1, env.platform.count("RemoveRole"))
}

func TestExpireReprimandFutureDeadline(t *testing.T) {
	env := newTestEnv(&model.ModerationRules{GuildID: "g", MuteRoleID: "muted"})
	ctx := context.Background()

	result, err := env.service.Mute(ctx, details("u"), time.Hour)
	require.NoError(t, err)
	id := result.Primary.ID

	require.NoError(t, env.service.ExpireReprimand(ctx, id))

	r, err := env.store.Reprimand(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAdded, r.Status, "an unexpired deadline is left alone")
	assert.Len(t, env.registry.entries[id], 2, "the deadline is re-registered")
}

func TestExpireReprimandMissing(t *testing.T) {
	env := newTestEnv(&model.ModerationRules{GuildID: "g"})
	require.NoError(t, env.service.ExpireReprimand(context.Background(), "missing"))
}

func TestPardon(t *testing.T) {
	env := newTestEnv(&model.ModerationRules{GuildID: "g", MuteRoleID: "muted"})
	ctx := context.Background()

	result, err := env.service.Mute(ctx, details("u"), time.Hour)
	require.NoError(t, err)

	pardoned, err := env.service.Pardon(ctx, result.Primary.ID, details("u"))
	require.NoError(t, err)
	require.NotNil(t, pardoned)
	assert.Equal(t, model.StatusPardoned, pardoned.Status)
	assert.NotNil(t, pardoned.EndedAt)
	assert.Equal(t, 1, env.platform.count("RemoveRole"))

	// Pardoning again finds nothing active.
	again, err := env.service.Pardon(ctx, result.Primary.ID, details("u"))
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestPardonMissing(t *testing.T) {
	env := newTestEnv(&model.ModerationRules{GuildID: "g"})
	r, err := env.service.Pardon(context.Background(), "missing", details("u"))
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestUnmuteWithoutRecord(t *testing.T) {
	env := newTestEnv(&model.ModerationRules{GuildID: "g", MuteRoleID: "muted"})
	r, err := env.service.Unmute(context.Background(), details("u"))
	require.NoError(t, err)
	assert.Nil(t, r)
	assert.Equal(t, 1, env.platform.count("RemoveRole"), "the role is stripped even without a record")
}

func TestUnbanPardonsActiveRecord(t *testing.T) {
	env := newTestEnv(&model.ModerationRules{GuildID: "g"})
	ctx := context.Background()

	result, err := env.service.Ban(ctx, details("u"), 0, 0)
	require.NoError(t, err)

	pardoned, err := env.service.Unban(ctx, details("u"))
	require.NoError(t, err)
	require.NotNil(t, pardoned)
	assert.Equal(t, result.Primary.ID, pardoned.ID)
	assert.Equal(t, model.StatusPardoned, pardoned.Status)
	assert.Equal(t, 1, env.platform.count("Unban"))
}

func TestUpdateReschedulesExpiry(t *testing.T) {
	env := newTestEnv(&model.ModerationRules{GuildID: "g", MuteRoleID: "muted"})
	ctx := context.Background()

	result, err := env.service.Mute(ctx, details("u"), time.Hour)
	require.NoError(t, err)
	id := result.Primary.ID

	updated, err := env.service.Update(ctx, id, details("u"), 2*time.Hour, true)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, model.StatusUpdated, updated.Status)
	require.NotNil(t, updated.ExpiresAt)
	assert.Equal(t, updated.StartsAt.Add(2*time.Hour), *updated.ExpiresAt)
	assert.Len(t, env.registry.entries[id], 2)

	indefinite, err := env.service.Update(ctx, id, details("u"), 0, true)
	require.NoError(t, err)
	assert.Nil(t, indefinite.ExpiresAt, "a zero length cancels the expiry")
}

func TestUpdateMissing(t *testing.T) {
	env := newTestEnv(&model.ModerationRules{GuildID: "g"})
	r, err := env.service.Update(context.Background(), "missing", details("u"), 0, false)
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestDeletePublishesBeforeRemoval(t *testing.T) {
	env := newTestEnv(&model.ModerationRules{GuildID: "g", MuteRoleID: "muted"})
	ctx := context.Background()

	result, err := env.service.Mute(ctx, details("u"), time.Hour)
	require.NoError(t, err)
	id := result.Primary.ID

	deleted, err := env.service.Delete(ctx, id, details("u"))
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.Equal(t, model.StatusDeleted, deleted.Status)
	assert.Equal(t, 1, env.platform.count("RemoveRole"), "an active record is reversed first")

	gone, err := env.store.Reprimand(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, gone)

	last := env.notifier.published[len(env.notifier.published)-1]
	assert.Equal(t, model.StatusDeleted, last.result.Primary.Status)
}

func TestAutoReprimandDeleteOnly(t *testing.T) {
	env := newTestEnv(&model.ModerationRules{GuildID: "g"})
	del := []model.MessageRef{
		{ChannelID: "c1", MessageID: "m1"},
		{ChannelID: "c1", MessageID: "m2"},
		{ChannelID: "c2", MessageID: "m3"},
	}

	result, err := env.service.AutoReprimand(context.Background(), details("u"), nil, 0, true, del)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.ElementsMatch(t, []string{"m1", "m2"}, env.platform.deleted["c1"])
	assert.ElementsMatch(t, []string{"m3"}, env.platform.deleted["c2"])
	assert.Empty(t, env.store.records)
}

func TestAutoReprimandWithAction(t *testing.T) {
	env := newTestEnv(&model.ModerationRules{GuildID: "g"})
	action := &model.ReprimandAction{Kind: model.ReprimandWarning, Count: 1}

	result, err := env.service.AutoReprimand(context.Background(), details("u"), action, time.Hour, false, nil)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, model.ReprimandWarning, result.Primary.Kind)
	require.NotNil(t, result.Primary.ExpiresAt, "the rule expiry applies when the action has no length")
	assert.Equal(t, 0, env.platform.count("BulkDeleteMessages"))
}

func TestCensorDeletesUnlessSilent(t *testing.T) {
	env := newTestEnv(&model.ModerationRules{GuildID: "g"})
	ctx := context.Background()
	censor := model.Censor{
		Trigger: model.Trigger{ID: "c1", IsActive: true},
		Pattern: "badword",
	}
	ref := model.MessageRef{ChannelID: "ch", MessageID: "m1"}

	_, err := env.service.Censor(ctx, details("u"), censor, "badword here", ref, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, env.platform.count("DeleteMessage"))

	censor.Silent = true
	_, err = env.service.Censor(ctx, details("u"), censor, "badword here", ref, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, env.platform.count("DeleteMessage"), "a silent censor keeps the message")
}

func TestCensorOwnTriggerEscalates(t *testing.T) {
	env := newTestEnv(&model.ModerationRules{GuildID: "g", MuteRoleID: "muted"})
	ctx := context.Background()
	censor := model.Censor{
		Trigger: model.Trigger{ID: "c1", IsActive: true, Amount: 2, Mode: model.ModeRetroactive},
		Pattern: "badword",
		Action:  &model.ReprimandAction{Kind: model.ReprimandMute, Length: time.Hour},
	}
	d := details("u")
	d.TriggerID = "c1"
	ref := model.MessageRef{ChannelID: "ch", MessageID: "m1"}

	first, err := env.service.Censor(ctx, d, censor, "badword", ref, 0)
	require.NoError(t, err)
	assert.Empty(t, first.Secondary)
	assert.Equal(t, 0, env.platform.count("AddRole"))

	second, err := env.service.Censor(ctx, d, censor, "badword again", ref, 0)
	require.NoError(t, err)
	require.Len(t, second.Secondary, 1)
	assert.Equal(t, model.ReprimandMute, second.Secondary[0].Kind)
	assert.Contains(t, second.Secondary[0].Reason, "[Censor Count Triggered] at 2")
	assert.Equal(t, 1, env.platform.count("AddRole"))
}

func TestCensorNameRenames(t *testing.T) {
	env := newTestEnv(&model.ModerationRules{GuildID: "g", NameReplacement: "Redacted"})
	censor := model.Censor{Trigger: model.Trigger{ID: "c1", IsActive: true}, Pattern: "bad"}

	result, err := env.service.CensorName(context.Background(), details("u"), censor, "badnick", 0)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 1, env.platform.count("SetNickname"))
	assert.Equal(t, "badnick", result.Primary.Content)
	assert.Equal(t, "bad", result.Primary.Pattern)
}

func TestUserCounts(t *testing.T) {
	env := newTestEnv(&model.ModerationRules{GuildID: "g"})
	ctx := context.Background()

	_, err := env.service.Warn(ctx, details("u"), 2)
	require.NoError(t, err)
	result, err := env.service.Warn(ctx, details("u"), 1)
	require.NoError(t, err)
	_, err = env.service.Pardon(ctx, result.Primary.ID, details("u"))
	require.NoError(t, err)
	_, err = env.service.Note(ctx, details("u"))
	require.NoError(t, err)

	counts, err := env.service.UserCounts(ctx, "g", "u")
	require.NoError(t, err)
	assert.Equal(t, Counts{Active: 2, Total: 3}, counts[model.ReprimandWarning])
	assert.Equal(t, Counts{Active: 1, Total: 1}, counts[model.ReprimandNote])
	assert.Equal(t, Counts{}, counts[model.ReprimandBan])
}
