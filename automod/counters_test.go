package automod

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"moderation-bot/model"
)

func TestCountEmoji(t *testing.T) {
	m := &CachedMessage{Content: "hi 😀😀 <:custom:123> <a:spin:456>"}
	c := countEmoji(m, model.AutoConfiguration{})
	assert.Equal(t, int64(4), c.Count)

	excluded := countEmoji(m, model.AutoConfiguration{EmojiExclusions: []string{"<:custom:123>"}})
	assert.Equal(t, int64(3), excluded.Count)
}

func TestCountInvites(t *testing.T) {
	m := &CachedMessage{Content: "join discord.gg/abc and https://discord.com/invite/xyz"}
	c := countInvites(m, model.AutoConfiguration{})
	assert.Equal(t, int64(2), c.Count)

	excluded := countInvites(m, model.AutoConfiguration{InviteExclusions: []string{"abc"}})
	assert.Equal(t, int64(1), excluded.Count)
}

func TestCountLinks(t *testing.T) {
	m := &CachedMessage{Content: "see https://example.com/page and https://docs.example.com/x plus http://other.net"}

	c := countLinks(m, model.AutoConfiguration{})
	assert.Equal(t, int64(3), c.Count)

	byDomain := countLinks(m, model.AutoConfiguration{LinkExclusions: []string{"example.com"}})
	assert.Equal(t, int64(1), byDomain.Count, "domain exclusion covers subdomains")

	byPrefix := countLinks(m, model.AutoConfiguration{LinkExclusions: []string{"https://example.com/page"}})
	assert.Equal(t, int64(2), byPrefix.Count)
}

func TestCountMentions(t *testing.T) {
	m := &CachedMessage{
		Content:        "<@1> <@1> <@2> <@&3>",
		MentionUserIDs: []string{"1", "2"},
		MentionRoleIDs: []string{"3"},
	}

	c := countMentions(m, model.AutoConfiguration{}, "g", nil)
	assert.Equal(t, int64(3), c.Count, "each distinct mention counts once")

	dup := countMentions(m, model.AutoConfiguration{MentionCountDuplicates: true}, "g", nil)
	assert.Equal(t, int64(4), dup.Count, "duplicates count occurrences")

	excluded := countMentions(m, model.AutoConfiguration{
		Trigger: model.Trigger{Exclusions: model.Exclusions{UserIDs: []string{"1"}}},
	}, "g", nil)
	assert.Equal(t, int64(2), excluded.Count)
}

type staticRoles map[string]int

func (r staticRoles) RoleMemberCount(guildID, roleID string) int { return r[roleID] }

func TestCountMentionsRoleMembers(t *testing.T) {
	m := &CachedMessage{
		Content:        "<@&3>",
		MentionRoleIDs: []string{"3"},
	}
	c := countMentions(m, model.AutoConfiguration{MentionCountRoleMembers: true}, "g", staticRoles{"3": 12})
	assert.Equal(t, int64(12), c.Count)
}

func TestCountMentionsInvalid(t *testing.T) {
	// Raw mention text is counted even when the ids resolve to nothing.
	m := &CachedMessage{Content: "<@99> <@99> <@100>"}
	c := countMentions(m, model.AutoConfiguration{MentionCountInvalid: true}, "g", nil)
	assert.Equal(t, int64(3), c.Count)

	distinct := countMentions(m, model.AutoConfiguration{
		MentionCountInvalid:    true,
		MentionCountDuplicates: true,
	}, "g", nil)
	assert.Equal(t, int64(2), distinct.Count)
}

func TestCountReply(t *testing.T) {
	m := &CachedMessage{
		MentionUserIDs: []string{"author"},
		Reference:      &ReferencedMessage{AuthorID: "author"},
	}
	assert.Equal(t, int64(1), countReply(m, model.AutoConfiguration{}).Count)

	bot := &CachedMessage{
		MentionUserIDs: []string{"author"},
		Reference:      &ReferencedMessage{AuthorID: "author", Bot: true},
	}
	assert.Equal(t, int64(0), countReply(bot, model.AutoConfiguration{}).Count)

	plain := &CachedMessage{Reference: &ReferencedMessage{AuthorID: "author"}}
	assert.Equal(t, int64(0), countReply(plain, model.AutoConfiguration{}).Count,
		"reply without the ping does not count")
}

func TestCountNewLines(t *testing.T) {
	m := &CachedMessage{Content: "a\nb\n\nc\n  \nd"}
	assert.Equal(t, int64(5), countNewLines(m, model.AutoConfiguration{}).Count)
	assert.Equal(t, int64(2), countNewLines(m, model.AutoConfiguration{NewLineBlankOnly: true}).Count)
}

func TestWordDuplicates(t *testing.T) {
	m := &CachedMessage{Content: "spam spam spam ham"}
	c := wordDuplicates(m, model.AutoConfiguration{})
	assert.Equal(t, int64(3), c.Count)
	assert.Equal(t, int64(4), c.Total)

	empty := wordDuplicates(&CachedMessage{Content: "   "}, model.AutoConfiguration{})
	assert.Equal(t, RuleCount{}, empty)
}

func TestCharacterDuplicates(t *testing.T) {
	c := characterDuplicates(&CachedMessage{Content: "aaab c"})
	assert.Equal(t, int64(3), c.Count)
	assert.Equal(t, int64(5), c.Total, "spaces are ignored")
}

func TestIsDuplicate(t *testing.T) {
	assert.True(t, isDuplicate("hello", "hello", 0))
	assert.False(t, isDuplicate("hello", "hxllo", 0))
	assert.True(t, isDuplicate("hello", "hxllo", 1))
	assert.False(t, isDuplicate("hello", "hxxlo", 1))
	assert.True(t, isDuplicate("hello", "hxxlo", 2))
}

func TestEditDistance(t *testing.T) {
	assert.Equal(t, 0, editDistance("abc", "abc"))
	assert.Equal(t, 3, editDistance("", "abc"))
	assert.Equal(t, 1, editDistance("abc", "abcd"))
	assert.Equal(t, 2, editDistance("kitten", "sitten"+"g"))
}
