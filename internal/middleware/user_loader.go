package middleware

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/shopapp/internal/domain"
	"github.com/set-night/shopapp/internal/service"
)

type ctxKey string

const userKey ctxKey = "user"

// GetUser extracts the resolved user from context. The user carries its role
// explicitly; handlers pass it into every service call instead of reading
// permissions from ambient state.
func GetUser(ctx context.Context) *domain.User {
	u, ok := ctx.Value(userKey).(*domain.User)
	if !ok {
		return nil
	}
	return u
}

// UserLoader returns middleware that resolves the Telegram account to a shop
// user once per update.
func UserLoader(userService *service.UserService, cfg interface{ IsAdmin(int64) bool }) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			var from *models.User

			if update.Message != nil {
				from = update.Message.From
			} else if update.CallbackQuery != nil {
				from = &update.CallbackQuery.From
			}

			if from == nil {
				next(ctx, b, update)
				return
			}

			isAdmin := cfg.IsAdmin(from.ID)
			user, _, err := userService.FindOrCreate(ctx, from.ID, from.FirstName, from.Username, isAdmin)
			if err == nil && user != nil {
				ctx = context.WithValue(ctx, userKey, user)
			}

			next(ctx, b, update)
		}
	}
}
