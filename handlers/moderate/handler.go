package moderate

import (
	"context"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/bot"
	"moderation-bot/model"
	"moderation-bot/utils"
)

const commandTimeout = 30 * time.Second

// commandOptions is the flattened view of a moderation command's options.
type commandOptions struct {
	TargetUser *discordgo.User
	Reason     string
	Category   string
	ID         string
	Amount     int64
	DeleteDays int64
	Length     time.Duration
	HasLength  bool
	BadLength  string
}

func parseOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) commandOptions {
	parsed := commandOptions{Amount: 1}
	for _, opt := range opts {
		switch opt.Name {
		case "user":
			if v, ok := opt.Value.(string); ok {
				parsed.TargetUser = &discordgo.User{ID: v}
			}
		case "reason":
			parsed.Reason = opt.StringValue()
		case "category":
			parsed.Category = opt.StringValue()
		case "id":
			parsed.ID = opt.StringValue()
		case "amount":
			parsed.Amount = opt.IntValue()
		case "delete_days":
			parsed.DeleteDays = opt.IntValue()
		case "length":
			raw := opt.StringValue()
			if raw == "0" {
				parsed.HasLength = true
				break
			}
			length, err := utils.ParseDuration(raw)
			if err != nil {
				parsed.BadLength = raw
				break
			}
			parsed.Length = length
			parsed.HasLength = true
		}
	}
	return parsed
}

func resolveUser(i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.User {
	for _, opt := range opts {
		if opt.Name == "user" {
			if i.ApplicationCommandData().Resolved != nil {
				if u, ok := i.ApplicationCommandData().Resolved.Users[opt.Value.(string)]; ok {
					return u
				}
			}
			return &discordgo.User{ID: opt.Value.(string)}
		}
	}
	return nil
}

func detailsFrom(i *discordgo.InteractionCreate, target *discordgo.User, opts commandOptions) model.ReprimandDetails {
	details := model.ReprimandDetails{
		GuildID:     i.GuildID,
		Reason:      opts.Reason,
		CategoryID:  opts.Category,
		Interaction: i.Interaction,
	}
	if target != nil {
		details.UserID = target.ID
	}
	if i.Member != nil && i.Member.User != nil {
		details.ModeratorID = i.Member.User.ID
	}
	return details
}

// begin defers the response and parses the command; a false return means the
// interaction already received an error message. Ephemerality must be decided
// here since the defer fixes it for every later response edit.
func begin(s *discordgo.Session, i *discordgo.InteractionCreate, needUser, ephemeral bool) (commandOptions, *discordgo.User, bool) {
	if err := utils.DeferResponse(s, i, ephemeral); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return commandOptions{}, nil, false
	}
	data := i.ApplicationCommandData()
	opts := parseOptions(data.Options)
	if opts.BadLength != "" {
		utils.SendFollowUpError(s, i.Interaction, "Could not parse length "+opts.BadLength+". Use forms like 30m, 2h or 7d.")
		return commandOptions{}, nil, false
	}
	target := resolveUser(i, data.Options)
	if needUser && target == nil {
		utils.SendFollowUpError(s, i.Interaction, "No user given.")
		return commandOptions{}, nil, false
	}
	return opts, target, true
}

func HandleWarn(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts, target, ok := begin(s, i, true, false)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if _, err := b.Service.Warn(ctx, detailsFrom(i, target, opts), opts.Amount); err != nil {
		log.Printf("Error warning user %s: %v", target.ID, err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to warn the user.")
	}
}

func HandleNotice(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts, target, ok := begin(s, i, true, false)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if _, err := b.Service.Notice(ctx, detailsFrom(i, target, opts)); err != nil {
		log.Printf("Error noticing user %s: %v", target.ID, err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to add the notice.")
	}
}

// HandleNote is the one private command: the defer is ephemeral so only the
// issuing moderator sees the response.
func HandleNote(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts, target, ok := begin(s, i, true, true)
	if !ok {
		return
	}
	details := detailsFrom(i, target, opts)
	details.Ephemeral = true
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if _, err := b.Service.Note(ctx, details); err != nil {
		log.Printf("Error noting user %s: %v", target.ID, err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to add the note.")
	}
}

func HandleMute(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts, target, ok := begin(s, i, true, false)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if _, err := b.Service.Mute(ctx, detailsFrom(i, target, opts), opts.Length); err != nil {
		log.Printf("Error muting user %s: %v", target.ID, err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to mute the user.")
	}
}

func HandleUnmute(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts, target, ok := begin(s, i, true, false)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	rep, err := b.Service.Unmute(ctx, detailsFrom(i, target, opts))
	if err != nil {
		log.Printf("Error unmuting user %s: %v", target.ID, err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to unmute the user.")
		return
	}
	if rep == nil {
		utils.SendFollowUp(s, i.Interaction, "No active mute on record; the mute role was removed directly.")
	}
}

func HandleKick(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts, target, ok := begin(s, i, true, false)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if _, err := b.Service.Kick(ctx, detailsFrom(i, target, opts)); err != nil {
		log.Printf("Error kicking user %s: %v", target.ID, err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to kick the user.")
	}
}

func HandleBan(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts, target, ok := begin(s, i, true, false)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if _, err := b.Service.Ban(ctx, detailsFrom(i, target, opts), opts.DeleteDays, opts.Length); err != nil {
		log.Printf("Error banning user %s: %v", target.ID, err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to ban the user.")
	}
}

func HandleUnban(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts, target, ok := begin(s, i, true, false)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	rep, err := b.Service.Unban(ctx, detailsFrom(i, target, opts))
	if err != nil {
		log.Printf("Error unbanning user %s: %v", target.ID, err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to unban the user.")
		return
	}
	if rep == nil {
		utils.SendFollowUp(s, i.Interaction, "No active ban on record; the platform ban was lifted directly.")
	}
}

func HandlePardon(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts, _, ok := begin(s, i, false, false)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	rep, err := b.Service.Pardon(ctx, opts.ID, detailsFrom(i, nil, opts))
	if err != nil {
		log.Printf("Error pardoning reprimand %s: %v", opts.ID, err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to pardon the reprimand.")
		return
	}
	if rep == nil {
		utils.SendFollowUpError(s, i.Interaction, "No active reprimand found with that id.")
	}
}

func HandleReprimand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, false); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]
	opts := parseOptions(sub.Options)
	if opts.BadLength != "" {
		utils.SendFollowUpError(s, i.Interaction, "Could not parse length "+opts.BadLength+". Use forms like 30m, 2h or 7d.")
		return
	}
	details := detailsFrom(i, nil, opts)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	switch sub.Name {
	case "update":
		rep, err := b.Service.Update(ctx, opts.ID, details, opts.Length, opts.HasLength)
		if err != nil {
			log.Printf("Error updating reprimand %s: %v", opts.ID, err)
			utils.SendFollowUpError(s, i.Interaction, "Failed to update the reprimand.")
			return
		}
		if rep == nil {
			utils.SendFollowUpError(s, i.Interaction, "No reprimand found with that id.")
		}
	case "delete":
		rep, err := b.Service.Delete(ctx, opts.ID, details)
		if err != nil {
			log.Printf("Error deleting reprimand %s: %v", opts.ID, err)
			utils.SendFollowUpError(s, i.Interaction, "Failed to delete the reprimand.")
			return
		}
		if rep == nil {
			utils.SendFollowUpError(s, i.Interaction, "No reprimand found with that id.")
		}
	}
}
