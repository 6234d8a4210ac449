package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-bot/internal/api/http"
	"github.com/spec-kit/ticket-bot/internal/api/http/handlers"
	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/discord"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/journal"
	"github.com/spec-kit/ticket-bot/internal/observability"
	"github.com/spec-kit/ticket-bot/internal/ticket"
	"github.com/spec-kit/ticket-bot/internal/watcher"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	eventJournal := journal.New(cfg.Redis, logger)
	eventJournal.Register(dispatcher)
	defer eventJournal.Close()

	session, err := discord.NewSession(cfg.Discord.BotToken)
	if err != nil {
		logger.Fatal("failed to create discord session", zap.Error(err))
	}
	client := discord.NewClient(session, cfg.Discord.GuildID)

	tickets := ticket.NewService(ticket.Options{
		CategoryID:        cfg.Discord.CategoryID,
		Policy:            cfg.Discord.Policy(),
		ConfirmTTL:        cfg.Tickets.ConfirmTTL(),
		ConfirmCloseDelay: cfg.Tickets.ConfirmCloseDelay(),
		DirectCloseDelay:  cfg.Tickets.DirectCloseDelay(),
	}, ticket.Dependencies{
		Platform:   client,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})

	bot := discord.NewBot(session, client, tickets, cfg.Discord, logger)
	if err := bot.Start(); err != nil {
		logger.Fatal("failed to connect to discord", zap.Error(err))
	}
	defer bot.Stop()

	var app *fiber.App
	switch cfg.App.Mode {
	case config.ModeRelay:
		// The storefront writes ticket files instead of calling the webhook.
		fileWatcher := watcher.New(cfg.Watcher.Dir, cfg.Watcher.Interval(), tickets, logger)
		go fileWatcher.Run(ctx)
	default:
		app = fiber.New()
		httptransport.RegisterMiddlewares(app, logger, metrics)
		httptransport.RegisterRoutes(app, httptransport.RouteConfig{
			Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, bot.ConnectionStatus),
			Webhook: handlers.NewWebhookHandler(tickets, logger),
		})
		go func() {
			if err := app.Listen(cfg.HTTP.Addr()); err != nil {
				logger.Fatal("fiber listen", zap.Error(err))
			}
		}()
	}

	logger.Info("market ticket bot running",
		zap.String("mode", cfg.App.Mode),
		zap.String("guild_id", cfg.Discord.GuildID),
		zap.String("category_id", cfg.Discord.CategoryID))

	waitForShutdown(logger)

	if app != nil {
		_ = app.Shutdown()
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
