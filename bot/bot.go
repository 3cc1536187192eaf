package bot

import (
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"moderation-bot/automod"
	"moderation-bot/model"
	"moderation-bot/moderation"
	"moderation-bot/utils/database/reprimands"
)

type Bot struct {
	Session            *discordgo.Session
	DB                 *sqlx.DB
	Store              *reprimands.Store
	Service            *moderation.Service
	Scheduler          *moderation.Scheduler
	Evaluator          *automod.Evaluator
	Censors            *automod.CensorEngine
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	RegisteredCommands []*discordgo.ApplicationCommand

	config  atomic.Value // *model.Config
	metrics *http.Server
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func New(cfg *model.Config, db *sqlx.DB) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent | discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildVoiceStates

	store := reprimands.NewStore(db, cfg.Defaults)
	platform := moderation.NewDiscordPlatform(dg)
	publisher := moderation.NewPublisher(store, platform)
	scheduler := moderation.NewScheduler(store)
	service := moderation.NewService(store, platform, publisher, scheduler)

	b := &Bot{
		Session:   dg,
		DB:        db,
		Store:     store,
		Service:   service,
		Scheduler: scheduler,
		Evaluator: automod.NewEvaluator(store, service, platform),
		Censors:   automod.NewCensorEngine(store, service),
	}
	b.config.Store(cfg)

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		b.metrics = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return b, nil
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	if b.Scheduler != nil {
		b.Scheduler.Stop()
	}
	if b.metrics != nil {
		if err := b.metrics.Close(); err != nil {
			log.Printf("Error closing metrics server: %v", err)
		}
	}
	if err := b.Session.Close(); err != nil {
		log.Printf("Error closing session: %v", err)
	}
	if err := b.DB.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}
