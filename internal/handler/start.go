package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/shopapp/internal/middleware"
	"github.com/set-night/shopapp/internal/telegram"
)

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	text := "👋 Добро пожаловать в магазин!\n\n" +
		"/catalog — каталог товаров\n" +
		"/cart — корзина\n" +
		"/orders — мои заказы\n" +
		"/promo <код> — применить промокод"
	if user.Role.Staff() {
		text += "\n\n*Для персонала:*\n" +
			"/attention — очередь задач\n" +
			"/active — активные заказы\n" +
			"/find <id> — найти заказ\n" +
			"/promoCreate — создать промокод\n" +
			"/import <url> — импорт карточки товара"
	}

	telegram.SendMessage(ctx, b, update.Message.Chat.ID, text,
		telegram.InlineKeyboard(
			telegram.ButtonRow(telegram.InlineButton("🛍 Каталог", "cat_0")),
			telegram.ButtonRow(telegram.InlineButton("🛒 Корзина", "cart_view")),
		))
}
