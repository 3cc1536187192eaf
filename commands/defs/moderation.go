package defs

import "github.com/bwmarrin/discordgo"

var (
	moderatePerms = int64(discordgo.PermissionModerateMembers)
	kickPerms     = int64(discordgo.PermissionKickMembers)
	banPerms      = int64(discordgo.PermissionBanMembers)
)

func userOption(required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: "The member this action applies to.",
		Required:    required,
	}
}

func reasonOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "reason",
		Description: "Why this action is being taken.",
		Required:    false,
	}
}

func categoryOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "category",
		Description: "Moderation category to file this under.",
		Required:    false,
	}
}

func lengthOption(desc string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "length",
		Description: desc,
		Required:    false,
	}
}

var Warn = &discordgo.ApplicationCommand{
	Name:                     "warn",
	Description:              "Warn a member.",
	DefaultMemberPermissions: &moderatePerms,
	Options: []*discordgo.ApplicationCommandOption{
		userOption(true),
		reasonOption(),
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "amount",
			Description: "How many warnings this counts as (default 1).",
			Required:    false,
		},
		categoryOption(),
	},
}

var Notice = &discordgo.ApplicationCommand{
	Name:                     "notice",
	Description:              "Give a member a notice, a lighter mark than a warning.",
	DefaultMemberPermissions: &moderatePerms,
	Options: []*discordgo.ApplicationCommandOption{
		userOption(true),
		reasonOption(),
		categoryOption(),
	},
}

var Note = &discordgo.ApplicationCommand{
	Name:                     "note",
	Description:              "Attach a private note to a member. Notes never escalate.",
	DefaultMemberPermissions: &moderatePerms,
	Options: []*discordgo.ApplicationCommandOption{
		userOption(true),
		reasonOption(),
		categoryOption(),
	},
}

var Mute = &discordgo.ApplicationCommand{
	Name:                     "mute",
	Description:              "Mute a member.",
	DefaultMemberPermissions: &moderatePerms,
	Options: []*discordgo.ApplicationCommandOption{
		userOption(true),
		lengthOption("How long the mute lasts, e.g. 30m, 2h, 7d. Omit for indefinite."),
		reasonOption(),
		categoryOption(),
	},
}

var Unmute = &discordgo.ApplicationCommand{
	Name:                     "unmute",
	Description:              "Lift a member's mute.",
	DefaultMemberPermissions: &moderatePerms,
	Options: []*discordgo.ApplicationCommandOption{
		userOption(true),
		reasonOption(),
	},
}

var Kick = &discordgo.ApplicationCommand{
	Name:                     "kick",
	Description:              "Kick a member from the server.",
	DefaultMemberPermissions: &kickPerms,
	Options: []*discordgo.ApplicationCommandOption{
		userOption(true),
		reasonOption(),
		categoryOption(),
	},
}

var Ban = &discordgo.ApplicationCommand{
	Name:                     "ban",
	Description:              "Ban a member.",
	DefaultMemberPermissions: &banPerms,
	Options: []*discordgo.ApplicationCommandOption{
		userOption(true),
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "delete_days",
			Description: "Days of the member's messages to delete (0-7).",
			Required:    false,
		},
		lengthOption("How long the ban lasts, e.g. 7d. Omit for permanent."),
		reasonOption(),
		categoryOption(),
	},
}

var Unban = &discordgo.ApplicationCommand{
	Name:                     "unban",
	Description:              "Lift a member's ban.",
	DefaultMemberPermissions: &banPerms,
	Options: []*discordgo.ApplicationCommandOption{
		userOption(true),
		reasonOption(),
	},
}

var Pardon = &discordgo.ApplicationCommand{
	Name:                     "pardon",
	Description:              "Pardon a reprimand so it no longer counts against the member.",
	DefaultMemberPermissions: &moderatePerms,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "id",
			Description: "The reprimand id to pardon.",
			Required:    true,
		},
		reasonOption(),
	},
}

var Reprimand = &discordgo.ApplicationCommand{
	Name:                     "reprimand",
	Description:              "Manage an existing reprimand.",
	DefaultMemberPermissions: &moderatePerms,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "update",
			Description: "Rewrite a reprimand's reason or length.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "id",
					Description: "The reprimand id to update.",
					Required:    true,
				},
				reasonOption(),
				lengthOption("New length, e.g. 30m, 2h, 7d. Use 0 for indefinite."),
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "delete",
			Description: "Delete a reprimand record entirely.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "id",
					Description: "The reprimand id to delete.",
					Required:    true,
				},
				reasonOption(),
			},
		},
	},
}

var History = &discordgo.ApplicationCommand{
	Name:                     "history",
	Description:              "Show a member's reprimand history.",
	DefaultMemberPermissions: &moderatePerms,
	Options: []*discordgo.ApplicationCommandOption{
		userOption(true),
	},
}

var Status = &discordgo.ApplicationCommand{
	Name:        "status",
	Description: "Display bot and system status information.",
}
