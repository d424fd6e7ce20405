package middleware

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/shopapp/internal/config"
	"github.com/set-night/shopapp/internal/repository"
)

// RateLimit returns middleware that enforces per-minute rate limits.
func RateLimit(store *repository.Store, cfg *config.Config) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			// Only rate limit messages (not callbacks or other updates)
			if update.Message == nil {
				next(ctx, b, update)
				return
			}

			chatID := update.Message.Chat.ID

			count, err := store.CheckAndIncrementRateLimit(ctx, chatID)
			if err != nil {
				slog.Error("rate limit check failed", "error", err, "chat_id", chatID)
				next(ctx, b, update)
				return
			}

			limit := config.RateLimitShopper
			if update.Message.From != nil && cfg.IsAdmin(update.Message.From.ID) {
				limit = config.RateLimitStaff
			}

			if count > limit {
				slog.Debug("rate limited", "chat_id", chatID, "count", count, "limit", limit)
				b.SendMessage(ctx, &bot.SendMessageParams{
					ChatID: chatID,
					Text:   "⏳ Слишком много запросов. Подождите немного.",
				})
				return
			}

			next(ctx, b, update)
		}
	}
}
