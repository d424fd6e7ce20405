package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/shopapp/internal/domain"
	"github.com/set-night/shopapp/internal/middleware"
	"github.com/set-night/shopapp/internal/service"
	"github.com/set-night/shopapp/internal/telegram"
)

func (h *Handler) handleCheckoutStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil {
		return
	}
	telegram.AnswerCallback(ctx, b, cb.ID, "")

	user := middleware.GetUser(ctx)
	if user == nil || cb.Message.Message == nil {
		return
	}
	chatID := cb.Message.Message.Chat.ID

	view, err := h.carts.View(ctx, user, true)
	if err != nil {
		slog.Error("load cart", "error", err, "user_id", user.ID)
		telegram.SendMessage(ctx, b, chatID, "❌ Не удалось загрузить корзину.", nil)
		return
	}
	if len(view.Cart.InStockLines()) == 0 {
		telegram.SendMessage(ctx, b, chatID, "В корзине нет доступных товаров. Загляните в /catalog", nil)
		return
	}
	if view.PromoErr != nil {
		telegram.SendMessage(ctx, b, chatID,
			"⚠️ "+promoErrorMessage(view.PromoErr)+"\nУберите промокод в /cart и попробуйте снова.", nil)
		return
	}

	h.setPendingCheckout(chatID, true)
	telegram.SendMessage(ctx, b, chatID,
		"📦 Для оформления отправьте одним сообщением, каждое с новой строки:\n\n"+
			"1. ФИО\n2. Телефон\n3. Адрес доставки", nil)
}

// handleCheckoutDetails consumes the three-line reply started by
// handleCheckoutStart and submits the order.
func (h *Handler) handleCheckoutDetails(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil || update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	parts := strings.Split(strings.TrimSpace(update.Message.Text), "\n")
	if len(parts) < 3 {
		telegram.SendMessage(ctx, b, chatID,
			"Нужны три строки: ФИО, телефон и адрес доставки. Попробуйте ещё раз.", nil)
		return
	}
	in := service.CheckoutInput{
		FIO:             strings.TrimSpace(parts[0]),
		Phone:           strings.TrimSpace(parts[1]),
		DeliveryAddress: strings.TrimSpace(strings.Join(parts[2:], ", ")),
	}
	if in.FIO == "" || in.DeliveryAddress == "" {
		telegram.SendMessage(ctx, b, chatID,
			"ФИО и адрес доставки не могут быть пустыми. Попробуйте ещё раз.", nil)
		return
	}

	order, err := h.orders.Checkout(ctx, user, in)
	if err != nil {
		h.setPendingCheckout(chatID, false)
		switch err {
		case domain.ErrCartEmpty:
			telegram.SendMessage(ctx, b, chatID, "В корзине нет доступных товаров.", nil)
		case domain.ErrOutOfStock:
			telegram.SendMessage(ctx, b, chatID,
				"❌ Часть товаров закончилась, пока вы оформляли заказ. Проверьте /cart и попробуйте снова.", nil)
		case domain.ErrConcurrentModification:
			telegram.SendMessage(ctx, b, chatID,
				"❌ Промокод только что исчерпали. Уберите его в /cart и попробуйте снова.", nil)
		case domain.ErrPromoNotFound, domain.ErrPromoExpired, domain.ErrPromoUsageExhausted, domain.ErrPromoSelfReferral:
			telegram.SendMessage(ctx, b, chatID,
				"❌ "+promoErrorMessage(err)+"\nУберите промокод в /cart и попробуйте снова.", nil)
		default:
			slog.Error("checkout", "error", err, "user_id", user.ID)
			h.notifier.ReportError(err, "checkout")
			telegram.SendMessage(ctx, b, chatID, "❌ Не удалось оформить заказ, попробуйте позже.", nil)
		}
		return
	}
	h.setPendingCheckout(chatID, false)

	text := fmt.Sprintf("✅ Заказ `%s` оформлен!\n\n*К оплате: %s ₽*\n\n"+
		"Оплатите заказ и отправьте скриншот чека кнопкой ниже.",
		order.PublicID, order.TotalAmount.StringFixed(0))
	telegram.SendMessage(ctx, b, chatID, text,
		telegram.InlineKeyboard(
			telegram.ButtonRow(telegram.InlineButton("🧾 Отправить чек", fmt.Sprintf("ord_proof_%d", order.ID))),
			telegram.ButtonRow(telegram.InlineButton("📋 Мои заказы", fmt.Sprintf("ord_view_%d", order.ID))),
		))
}
