package moderate

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/bot"
	"moderation-bot/model"
	"moderation-bot/utils"
)

const historyLimit = 15

func HandleHistory(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	_, target, ok := begin(s, i, true, false)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	counts, err := b.Service.UserCounts(ctx, i.GuildID, target.ID)
	if err != nil {
		log.Printf("Error counting reprimands for user %s: %v", target.ID, err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to load the user's history.")
		return
	}
	records, err := b.Store.ListReprimands(ctx, i.GuildID, target.ID, historyLimit)
	if err != nil {
		log.Printf("Error listing reprimands for user %s: %v", target.ID, err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to load the user's history.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Reprimand History",
		Color:       0x5865F2,
		Description: fmt.Sprintf("<@%s>", target.ID),
	}

	order := []model.ReprimandKind{
		model.ReprimandWarning, model.ReprimandNotice, model.ReprimandMute,
		model.ReprimandKick, model.ReprimandBan, model.ReprimandCensored,
		model.ReprimandNote,
	}
	var summary []string
	for _, kind := range order {
		c := counts[kind]
		if c.Total == 0 {
			continue
		}
		summary = append(summary, fmt.Sprintf("%s: %d active / %d total", kind, c.Active, c.Total))
	}
	if len(summary) == 0 {
		summary = append(summary, "No reprimands on record.")
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "Totals", Value: strings.Join(summary, "\n"),
	})

	for _, r := range records {
		value := fmt.Sprintf("%s · <t:%d:d> · `%s`", r.Status, r.CreatedAt.Unix(), r.ID)
		if r.Reason != "" {
			value += "\n" + r.Reason
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  string(r.Kind),
			Value: value,
		})
	}

	_, err = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	})
	if err != nil {
		log.Printf("Error sending history response: %v", err)
	}
}
