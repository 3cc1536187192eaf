package bot

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/commands"
	"moderation-bot/utils"
)

func (b *Bot) Run() {
	if err := b.Session.Open(); err != nil {
		log.Fatalf("Error opening connection: %v", err)
	}

	cfg := b.GetConfig()
	reportFault := func(operation, detail string) {
		if cfg.LogWebhookURL == "" {
			return
		}
		if err := utils.LogError(cfg.LogWebhookURL, "System", operation, detail); err != nil {
			log.Printf("Failed to send fault log: %v", err)
		}
	}

	cmds := commands.GenerateCommands()
	b.RegisteredCommands = make([]*discordgo.ApplicationCommand, 0)
	if len(cfg.GuildIDs) == 0 {
		log.Printf("Registering %d global commands...", len(cmds))
		registered, err := b.Session.ApplicationCommandBulkOverwrite(cfg.AppID, "", cmds)
		if err != nil {
			log.Printf("cannot register global commands: %v", err)
			reportFault("Command Registration", fmt.Sprintf("Global registration failed: %v", err))
		} else {
			b.RegisteredCommands = append(b.RegisteredCommands, registered...)
		}
	} else {
		for _, guildID := range cfg.GuildIDs {
			log.Printf("Registering %d commands for guild %s...", len(cmds), guildID)
			registered, err := b.Session.ApplicationCommandBulkOverwrite(cfg.AppID, guildID, cmds)
			if err != nil {
				log.Printf("cannot register commands for guild '%s': %v", guildID, err)
				reportFault("Command Registration", fmt.Sprintf("Registration failed for guild %s: %v", guildID, err))
				continue
			}
			b.RegisteredCommands = append(b.RegisteredCommands, registered...)
		}
	}

	if err := b.Scheduler.Start(context.Background(), b.Service); err != nil {
		reportFault("Expiry Scheduler", fmt.Sprintf("Scheduler failed to start: %v", err))
		log.Fatalf("Error starting expiry scheduler: %v", err)
	}

	if b.metrics != nil {
		go func() {
			log.Printf("Metrics listening on %s", b.metrics.Addr)
			if err := b.metrics.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("Metrics server error: %v", err)
				if cfg.LogWebhookURL != "" {
					if werr := utils.LogWarn(cfg.LogWebhookURL, "System", "Metrics", fmt.Sprintf("Metrics server stopped: %v", err)); werr != nil {
						log.Printf("Failed to send metrics warning log: %v", werr)
					}
				}
			}
		}()
	}

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	if cfg.LogWebhookURL != "" {
		if err := utils.LogInfo(cfg.LogWebhookURL, "System", "Startup", "Bot has started successfully."); err != nil {
			log.Printf("Failed to send startup log: %v", err)
		}
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
}
