package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	shopapproot "github.com/set-night/shopapp"
	"github.com/set-night/shopapp/internal/config"
	"github.com/set-night/shopapp/internal/handler"
	"github.com/set-night/shopapp/internal/middleware"
	"github.com/set-night/shopapp/internal/repository"
	"github.com/set-night/shopapp/internal/service"
	"github.com/set-night/shopapp/internal/telegram"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	migrationsFS, err := fs.Sub(shopapproot.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	store := repository.New(pool)

	// Initialize services that do not talk back to Telegram
	userService := service.NewUserService(pool, store)
	promoService := service.NewPromoService(pool, store, cfg)
	cartService := service.NewCartService(pool, store, promoService, cfg)
	catalogService := service.NewCatalogService(store)
	attentionService := service.NewAttentionService(store, cfg)
	importerService := service.NewImporterService()

	// Handler pointer for use in default handler closure
	var h *handler.Handler

	// Create bot
	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(),
			middleware.Logging(),
			middleware.RateLimit(store, cfg),
			middleware.UserLoader(userService, cfg),
		),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if h == nil {
				return
			}
			h.HandleDefault(ctx, b, update)
		}),
	}

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	// Get bot info
	me, err := b.GetMe(ctx)
	if err != nil {
		slog.Error("failed to get bot info", "error", err)
		os.Exit(1)
	}
	slog.Info("bot info retrieved", "id", me.ID, "username", me.Username)

	notifier := telegram.NewStaffNotifier(b, cfg)
	orderService := service.NewOrderService(pool, store, promoService, notifier, cfg)

	// Initialize handler
	h = handler.New(handler.Deps{
		Bot:       b,
		Cfg:       cfg,
		Users:     userService,
		Carts:     cartService,
		Catalog:   catalogService,
		Orders:    orderService,
		Promos:    promoService,
		Attention: attentionService,
		Importer:  importerService,
		Notifier:  notifier,
	})
	h.Register()

	// Periodically rebuild the attention report and push a digest into the
	// staff channel. Also keeps the cache warm for /attention.
	go func() {
		ticker := time.NewTicker(config.AttentionRefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				report, err := attentionService.Report(context.Background(), true)
				if err != nil {
					slog.Error("refresh attention report", "error", err)
					continue
				}
				notifier.AttentionDigest(report)
			}
		}
	}()

	// Rate limit windows are only useful for a minute; clear out old rows.
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := store.CleanupRateLimits(context.Background()); err != nil {
					slog.Error("cleanup rate limits", "error", err)
				}
			}
		}
	}()

	// Start bot
	slog.Info("starting bot", "username", me.Username, "id", me.ID)
	b.Start(ctx)

	// Graceful shutdown
	slog.Info("bot stopped gracefully")
}
