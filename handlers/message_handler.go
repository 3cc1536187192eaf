package handlers

import (
	"context"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/automod"
	"moderation-bot/bot"
)

// HandleMessage runs an incoming or edited message through the censors and
// then the counting rules. Both engines skip bots and excluded subjects on
// their own.
func HandleMessage(b *bot.Bot, m *discordgo.Message) {
	if m == nil || m.Author == nil || m.GuildID == "" {
		return
	}
	msg := incomingMessage(m)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		defer cancel()
		if err := b.Censors.ProcessMessage(ctx, msg); err != nil {
			log.Printf("Error censoring message %s: %v", m.ID, err)
		}
		if err := b.Evaluator.ProcessMessage(ctx, msg); err != nil {
			log.Printf("Error evaluating message %s: %v", m.ID, err)
		}
	}()
}

func incomingMessage(m *discordgo.Message) *automod.IncomingMessage {
	createdAt := m.Timestamp
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var roles []string
	if m.Member != nil {
		roles = m.Member.Roles
	}

	mentionIDs := make([]string, 0, len(m.Mentions))
	for _, u := range m.Mentions {
		mentionIDs = append(mentionIDs, u.ID)
	}

	msg := &automod.IncomingMessage{
		GuildID:        m.GuildID,
		ChannelID:      m.ChannelID,
		MessageID:      m.ID,
		UserID:         m.Author.ID,
		AuthorRoles:    roles,
		Bot:            m.Author.Bot,
		Content:        m.Content,
		CreatedAt:      createdAt,
		Attachments:    len(m.Attachments),
		MentionUserIDs: mentionIDs,
		MentionRoleIDs: m.MentionRoles,
	}
	if ref := m.ReferencedMessage; ref != nil && ref.Author != nil {
		msg.Reference = &automod.ReferencedMessage{
			AuthorID: ref.Author.ID,
			Bot:      ref.Author.Bot,
		}
	}
	return msg
}

func memberName(guildID string, member *discordgo.Member) *automod.MemberName {
	return &automod.MemberName{
		GuildID:  guildID,
		UserID:   member.User.ID,
		Username: member.User.Username,
		Nickname: member.Nick,
		Roles:    member.Roles,
		Bot:      member.User.Bot,
	}
}
