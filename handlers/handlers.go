package handlers

import (
	"context"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/bot"
	"moderation-bot/handlers/moderate"
)

const eventTimeout = 30 * time.Second

func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	wrap := func(h func(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot)) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			h(s, i, b)
		}
	}
	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"warn":      wrap(moderate.HandleWarn),
		"notice":    wrap(moderate.HandleNotice),
		"note":      wrap(moderate.HandleNote),
		"mute":      wrap(moderate.HandleMute),
		"unmute":    wrap(moderate.HandleUnmute),
		"kick":      wrap(moderate.HandleKick),
		"ban":       wrap(moderate.HandleBan),
		"unban":     wrap(moderate.HandleUnban),
		"pardon":    wrap(moderate.HandlePardon),
		"reprimand": wrap(moderate.HandleReprimand),
		"history":   wrap(moderate.HandleHistory),
		"status":    StatusHandler,
	}
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
			h(s, i)
		}
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		HandleMessage(b, m.Message)
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageUpdate) {
		// Edits re-enter moderation so a message cannot be slipped past the
		// censors after the fact.
		if m.Author == nil {
			return
		}
		HandleMessage(b, m.Message)
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		HandleMemberName(b, m.GuildID, m.Member)
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberUpdate) {
		HandleMemberName(b, m.GuildID, m.Member)
	})
}

// HandleMemberName runs the name censors against a joining or renamed member.
func HandleMemberName(b *bot.Bot, guildID string, member *discordgo.Member) {
	if member == nil || member.User == nil {
		return
	}
	name := memberName(guildID, member)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		defer cancel()
		if err := b.Censors.ProcessName(ctx, name); err != nil {
			log.Printf("Error processing member name in guild %s: %v", guildID, err)
		}
	}()
}
