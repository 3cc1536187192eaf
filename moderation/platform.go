package moderation

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// Platform wraps the chat platform calls the moderation service issues, so
// the service logic can be exercised in tests without a live gateway.
type Platform interface {
	BotUserID() string

	DeleteMessage(ctx context.Context, channelID, messageID string) error
	BulkDeleteMessages(ctx context.Context, channelID string, messageIDs []string) error

	AddRole(ctx context.Context, guildID, userID, roleID string) error
	RemoveRole(ctx context.Context, guildID, userID, roleID string) error
	SetVoiceMute(ctx context.Context, guildID, userID string, mute bool) error
	SetNickname(ctx context.Context, guildID, userID, nick string) error

	Kick(ctx context.Context, guildID, userID, reason string) error
	Ban(ctx context.Context, guildID, userID, reason string, deleteDays int64) error
	Unban(ctx context.Context, guildID, userID string) error

	SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error
	SendDMEmbed(ctx context.Context, userID string, embed *discordgo.MessageEmbed) error
	RespondEmbed(ctx context.Context, interaction *discordgo.Interaction, embed *discordgo.MessageEmbed) error
	RespondText(ctx context.Context, interaction *discordgo.Interaction, content string) error

	RoleMemberCount(guildID, roleID string) int
}

// IsForbidden reports whether a platform error means the bot lacks the
// permission or hierarchy standing for the call. Operations treat these as
// a refusal rather than a failure.
func IsForbidden(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden {
		return true
	}
	if restErr.Message == nil {
		return false
	}
	switch restErr.Message.Code {
	case discordgo.ErrCodeMissingPermissions, discordgo.ErrCodeMissingAccess,
		discordgo.ErrCodeCannotSendMessagesToThisUser:
		return true
	}
	return false
}

// DiscordPlatform implements Platform on a discordgo session.
type DiscordPlatform struct {
	session *discordgo.Session
}

func NewDiscordPlatform(session *discordgo.Session) *DiscordPlatform {
	return &DiscordPlatform{session: session}
}

func (p *DiscordPlatform) BotUserID() string {
	if p.session.State != nil && p.session.State.User != nil {
		return p.session.State.User.ID
	}
	return ""
}

func (p *DiscordPlatform) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return p.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
}

func (p *DiscordPlatform) BulkDeleteMessages(ctx context.Context, channelID string, messageIDs []string) error {
	if len(messageIDs) == 1 {
		return p.DeleteMessage(ctx, channelID, messageIDs[0])
	}
	return p.session.ChannelMessagesBulkDelete(channelID, messageIDs, discordgo.WithContext(ctx))
}

func (p *DiscordPlatform) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	return p.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (p *DiscordPlatform) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	return p.session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (p *DiscordPlatform) SetVoiceMute(ctx context.Context, guildID, userID string, mute bool) error {
	return p.session.GuildMemberMute(guildID, userID, mute, discordgo.WithContext(ctx))
}

func (p *DiscordPlatform) SetNickname(ctx context.Context, guildID, userID, nick string) error {
	return p.session.GuildMemberNickname(guildID, userID, nick, discordgo.WithContext(ctx))
}

func (p *DiscordPlatform) Kick(ctx context.Context, guildID, userID, reason string) error {
	return p.session.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx))
}

func (p *DiscordPlatform) Ban(ctx context.Context, guildID, userID, reason string, deleteDays int64) error {
	return p.session.GuildBanCreateWithReason(guildID, userID, reason, int(deleteDays), discordgo.WithContext(ctx))
}

func (p *DiscordPlatform) Unban(ctx context.Context, guildID, userID string) error {
	return p.session.GuildBanDelete(guildID, userID, discordgo.WithContext(ctx))
}

func (p *DiscordPlatform) SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error {
	_, err := p.session.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx))
	return err
}

func (p *DiscordPlatform) SendDMEmbed(ctx context.Context, userID string, embed *discordgo.MessageEmbed) error {
	channel, err := p.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to open DM channel: %w", err)
	}
	_, err = p.session.ChannelMessageSendEmbed(channel.ID, embed, discordgo.WithContext(ctx))
	return err
}

// RespondEmbed edits the deferred command response with the embed. Handlers
// defer every moderation command before handing off to the service, and the
// defer already fixed whether the response is ephemeral.
func (p *DiscordPlatform) RespondEmbed(ctx context.Context, interaction *discordgo.Interaction, embed *discordgo.MessageEmbed) error {
	_, err := p.session.InteractionResponseEdit(interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	}, discordgo.WithContext(ctx))
	return err
}

func (p *DiscordPlatform) RespondText(ctx context.Context, interaction *discordgo.Interaction, content string) error {
	_, err := p.session.InteractionResponseEdit(interaction, &discordgo.WebhookEdit{
		Content: &content,
	}, discordgo.WithContext(ctx))
	return err
}

func (p *DiscordPlatform) RoleMemberCount(guildID, roleID string) int {
	guild, err := p.session.State.Guild(guildID)
	if err != nil {
		return 0
	}
	var count int
	for _, member := range guild.Members {
		for _, id := range member.Roles {
			if id == roleID {
				count++
				break
			}
		}
	}
	return count
}

var _ Platform = (*DiscordPlatform)(nil)
