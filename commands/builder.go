package commands

import (
	"github.com/bwmarrin/discordgo"

	"moderation-bot/commands/defs"
)

// GenerateCommands returns every slash command the bot registers.
func GenerateCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		defs.Warn,
		defs.Notice,
		defs.Note,
		defs.Mute,
		defs.Unmute,
		defs.Kick,
		defs.Ban,
		defs.Unban,
		defs.Pardon,
		defs.Reprimand,
		defs.History,
		defs.Status,
	}
}
