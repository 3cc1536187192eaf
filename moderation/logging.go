package moderation

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/model"
)

// Publisher renders finished action chains into embeds and fans them out to
// the guild's configured destinations. Delivery failures are soft: they are
// logged and, when a command context exists, surfaced in the command response,
// but they never fail the action itself.
type Publisher struct {
	store    Store
	platform Platform
}

func NewPublisher(store Store, platform Platform) *Publisher {
	return &Publisher{store: store, platform: platform}
}

var statusColors = map[model.ReprimandStatus]int{
	model.StatusAdded:    0xe74c3c,
	model.StatusUpdated:  0xe67e22,
	model.StatusPardoned: 0x2ecc71,
	model.StatusExpired:  0x95a5a6,
	model.StatusDeleted:  0x34495e,
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// boldMatch wraps the parts of the censored content the pattern matched in
// markdown bold, so the log shows what tripped the censor.
func boldMatch(content, pattern string) string {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return content
	}
	return re.ReplaceAllString(content, "**$0**")
}

// Publish delivers the result of one action chain to every destination whose
// filter admits the primary reprimand's kind and status.
func (p *Publisher) Publish(ctx context.Context, result *model.ReprimandResult, details model.ReprimandDetails) {
	if result == nil || result.Primary == nil {
		return
	}
	rules, err := p.store.Rules(ctx, details.GuildID)
	if err != nil {
		log.Printf("moderation: loading rules for notification in guild %s: %v", details.GuildID, err)
		return
	}
	if rules == nil {
		return
	}
	logging := rules.Logging
	primary := result.Primary

	var failed bool
	deliver := func(name string, err error) {
		if err != nil {
			failed = true
			notificationFailures.Inc()
			log.Printf("moderation: %s delivery failed for reprimand %s: %v", name, primary.ID, err)
			return
		}
		notificationsSent.Inc()
	}

	// The command response doubles as the command log; a separate channel
	// destination is used for automatic actions without an interaction.
	commandLogged := ""
	if dest := logging.CommandLog; dest.Includes(primary.Kind, primary.Status) {
		embed := p.render(ctx, rules, result, details, dest.Options)
		if details.Interaction != nil {
			deliver("command log", p.platform.RespondEmbed(ctx, details.Interaction, embed))
			commandLogged = details.Interaction.ChannelID
		} else if dest.ChannelID != "" {
			deliver("command log", p.platform.SendEmbed(ctx, dest.ChannelID, embed))
			commandLogged = dest.ChannelID
		}
	}
	if commandLogged == "" && details.Interaction != nil {
		// A deferred command always gets its response, filter or not.
		embed := p.render(ctx, rules, result, details,
			model.LogOptions{ShowModerator: true, ShowReason: true, ShowID: true})
		deliver("command response", p.platform.RespondEmbed(ctx, details.Interaction, embed))
		commandLogged = details.Interaction.ChannelID
	}

	if dest := logging.ModeratorLog; dest.Includes(primary.Kind, primary.Status) && dest.ChannelID != "" {
		if logging.IgnoreDuplicates && dest.ChannelID == commandLogged {
			// Same channel already carries the command response.
		} else {
			embed := p.render(ctx, rules, result, details, dest.Options)
			deliver("moderator log", p.platform.SendEmbed(ctx, dest.ChannelID, embed))
		}
	}

	// An ephemeral action stays between the moderators: no public post, no DM.
	if dest := logging.PublicLog; !details.Ephemeral && dest.Includes(primary.Kind, primary.Status) && dest.ChannelID != "" {
		embed := p.render(ctx, rules, result, details, dest.Options)
		deliver("public log", p.platform.SendEmbed(ctx, dest.ChannelID, embed))
	}

	if dest := logging.UserLog; !details.Ephemeral && dest.Includes(primary.Kind, primary.Status) {
		embed := p.render(ctx, rules, result, details, dest.Options)
		deliver("user notification", p.platform.SendDMEmbed(ctx, primary.UserID, embed))
	}

	if failed && details.Interaction != nil {
		warn := p.platform.RespondText(ctx, details.Interaction,
			"Some notification deliveries failed; check the logs.")
		if warn != nil {
			log.Printf("moderation: delivery warning failed: %v", warn)
		}
	}
}

// PublishRefusal reports a policy refusal, such as a missing mute role, to
// the moderator who asked, or to the operational log for automatic actions.
func (p *Publisher) PublishRefusal(ctx context.Context, details model.ReprimandDetails, message string) {
	if details.Interaction != nil {
		if err := p.platform.RespondText(ctx, details.Interaction, message); err != nil {
			log.Printf("moderation: refusal response failed: %v", err)
		}
		return
	}
	log.Printf("moderation: refused action for %s in guild %s: %s", details.UserID, details.GuildID, message)
}

func (p *Publisher) render(ctx context.Context, rules *model.ModerationRules, result *model.ReprimandResult,
	details model.ReprimandDetails, opts model.LogOptions) *discordgo.MessageEmbed {

	primary := result.Primary
	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("%s | %s", titleCase(string(primary.Kind)), titleCase(string(primary.Status))),
		Color:     statusColors[primary.Status],
		Timestamp: primary.CreatedAt.Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: fmt.Sprintf("<@%s>", primary.UserID), Inline: true},
		},
	}

	if opts.ShowModerator && primary.ModeratorID != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Moderator", Value: fmt.Sprintf("<@%s>", primary.ModeratorID), Inline: true,
		})
	}
	if opts.ShowReason && primary.Reason != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Reason", Value: primary.Reason,
		})
	}
	if primary.Kind == model.ReprimandCensored && primary.Content != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Content", Value: boldMatch(primary.Content, primary.Pattern),
		})
	}
	if primary.ExpiresAt != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Expires", Value: fmt.Sprintf("<t:%d:R>", primary.ExpiresAt.Unix()), Inline: true,
		})
	}
	if opts.ShowActive || opts.ShowTotal {
		p.appendCounts(ctx, embed, primary, opts)
	}
	if opts.ShowCategory && primary.CategoryID != "" {
		name := primary.CategoryID
		if cat := rules.Category(primary.CategoryID); cat != nil && cat.Name != "" {
			name = cat.Name
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Category", Value: name, Inline: true,
		})
	}
	if opts.ShowTrigger && primary.TriggerID != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Trigger", Value: primary.TriggerID, Inline: true,
		})
	}
	if opts.ShowID {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: primary.ID}
	}

	for _, sec := range result.Secondary {
		value := titleCase(string(sec.Kind))
		if sec.Kind == model.ReprimandMute || sec.Kind == model.ReprimandBan {
			if sec.ExpiresAt != nil {
				value += fmt.Sprintf(" until <t:%d:f>", sec.ExpiresAt.Unix())
			} else {
				value += " indefinitely"
			}
		}
		if opts.ShowReason && sec.Reason != "" {
			value += "\n" + sec.Reason
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Escalation", Value: value,
		})
	}
	return embed
}

func (p *Publisher) appendCounts(ctx context.Context, embed *discordgo.MessageEmbed, r *model.Reprimand, opts model.LogOptions) {
	if opts.ShowActive {
		active, err := p.store.ReprimandCountAll(ctx, r.GuildID, r.UserID, r.Kind, true)
		if err != nil {
			log.Printf("moderation: counting active %s reprimands: %v", r.Kind, err)
		} else {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name: "Active", Value: fmt.Sprintf("%d", active), Inline: true,
			})
		}
	}
	if opts.ShowTotal {
		total, err := p.store.ReprimandCountAll(ctx, r.GuildID, r.UserID, r.Kind, false)
		if err != nil {
			log.Printf("moderation: counting total %s reprimands: %v", r.Kind, err)
		} else {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name: "Total", Value: fmt.Sprintf("%d", total), Inline: true,
			})
		}
	}
}

var _ Notifier = (*Publisher)(nil)
