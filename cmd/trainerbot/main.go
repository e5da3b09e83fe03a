// Command trainerbot runs the chess trainer's Telegram bot: record
// keeping for students, schedule, homework, news and materials, plus
// broadcast delivery to registered parents.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	tele "gopkg.in/telebot.v4"

	"chess-trainer-bot/internal/bot"
	"chess-trainer-bot/internal/config"
	"chess-trainer-bot/internal/logger"
	"chess-trainer-bot/internal/service"
	"chess-trainer-bot/internal/store"
	"chess-trainer-bot/internal/telegram"
	"chess-trainer-bot/internal/telegram/middleware"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("trainerbot: %v", err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", cfgPath, err)
	}

	if err := logger.Init(cfg); err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	records, err := service.Open(st)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}

	sender := telegram.NewBotSender()
	broadcaster := service.NewBroadcaster(sender,
		time.Duration(cfg.Broadcast.SendTimeoutSeconds)*time.Second)
	app := bot.New(records, broadcaster, cfg.Telegram.TrainerID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return telegram.Run(ctx, telegram.RunOptions{
		Config:      cfg,
		Middlewares: middlewares(cfg),
		Routes:      app.Routes(),
		OnStart: func(b *tele.Bot) error {
			sender.Bind(b)
			return nil
		},
	})
}

func middlewares(cfg *config.Config) []telegram.Middleware {
	chain := []telegram.Middleware{
		{Name: "recover", Use: middleware.Recover},
		{Name: "logging", Use: middleware.Logging},
	}
	if cfg.RateLimit.IntervalMS > 0 {
		exclude := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
		for _, kind := range cfg.RateLimit.ExcludeUpdates {
			exclude[kind] = struct{}{}
		}
		chain = append(chain, telegram.Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimit(middleware.RateLimitOptions{
				Interval: time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
				Exclude:  exclude,
			}),
		})
	}
	return chain
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		if err := store.RunMigrations(cfg.Storage.Database); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		db, err := store.Connect(cfg.Storage.Database)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		return store.NewPostgresStore(db), nil
	default:
		return store.NewFileStore(cfg.Storage.Path), nil
	}
}
