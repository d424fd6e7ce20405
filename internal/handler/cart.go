package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"

	"github.com/set-night/shopapp/internal/domain"
	"github.com/set-night/shopapp/internal/middleware"
	"github.com/set-night/shopapp/internal/service"
	"github.com/set-night/shopapp/internal/telegram"
)

func (h *Handler) handleCart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}
	h.sendCart(ctx, b, user, update.Message.Chat.ID, 0)
}

func (h *Handler) handleCartView(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil {
		return
	}
	telegram.AnswerCallback(ctx, b, cb.ID, "")

	user := middleware.GetUser(ctx)
	if user == nil || cb.Message.Message == nil {
		return
	}
	msg := cb.Message.Message
	h.sendCart(ctx, b, user, msg.Chat.ID, msg.ID)
}

// sendCart renders the priced cart. The delivery fee is previewed as if an
// address were already given, so the shopper sees the amount they will
// actually pay at checkout.
func (h *Handler) sendCart(ctx context.Context, b *bot.Bot, user *domain.User, chatID int64, messageID int) {
	view, err := h.carts.View(ctx, user, true)
	if err != nil {
		slog.Error("load cart", "error", err, "user_id", user.ID)
		telegram.SendMessage(ctx, b, chatID, "❌ Не удалось загрузить корзину.", nil)
		return
	}

	if len(view.Cart.Lines) == 0 {
		text := "🛒 Корзина пуста.\n\nЗагляните в /catalog"
		if messageID == 0 {
			telegram.SendMessage(ctx, b, chatID, text, nil)
		} else {
			telegram.EditMessage(ctx, b, chatID, messageID, text, nil)
		}
		return
	}

	text, markup := renderCart(view)
	if messageID == 0 {
		telegram.SendMessage(ctx, b, chatID, text, markup)
	} else {
		telegram.EditMessage(ctx, b, chatID, messageID, text, markup)
	}
}

func renderCart(view service.CartView) (string, models.ReplyMarkup) {
	var sb strings.Builder
	sb.WriteString("🛒 *Корзина*\n")

	var rows [][]models.InlineKeyboardButton
	for _, l := range view.Cart.Lines {
		label := l.Title
		if l.Size != "" || l.Color != "" {
			label += " (" + strings.TrimSpace(l.Size+" "+l.Color) + ")"
		}
		if l.InStock {
			sb.WriteString(fmt.Sprintf("\n%s\n%d × %s ₽ = %s ₽\n",
				label, l.Quantity, l.UnitPrice.StringFixed(0),
				l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).StringFixed(0)))
		} else {
			sb.WriteString(fmt.Sprintf("\n~%s~ — нет в наличии\n", label))
		}
		rows = append(rows, telegram.ButtonRow(
			telegram.InlineButton("➖", fmt.Sprintf("cart_dec_%d", l.VariantID)),
			telegram.InlineButton(fmt.Sprintf("%d", l.Quantity), "cur"),
			telegram.InlineButton("➕", fmt.Sprintf("cart_inc_%d", l.VariantID)),
			telegram.InlineButton("🗑", fmt.Sprintf("cart_del_%d", l.VariantID)),
		))
	}

	sb.WriteString(fmt.Sprintf("\nТовары: %s ₽", view.Totals.Subtotal.StringFixed(0)))
	if view.Cart.Promo != nil {
		sb.WriteString(fmt.Sprintf("\nПромокод `%s`: −%s ₽", view.Cart.Promo.Code, view.Totals.Discount.StringFixed(0)))
	}
	if view.PromoErr != nil {
		sb.WriteString("\n⚠️ " + promoErrorMessage(view.PromoErr))
	}
	if view.Totals.DeliveryFee.IsPositive() {
		sb.WriteString(fmt.Sprintf("\nДоставка: %s ₽", view.Totals.DeliveryFee.StringFixed(0)))
	} else {
		sb.WriteString("\nДоставка: бесплатно")
	}
	sb.WriteString(fmt.Sprintf("\n*Итого: %s ₽*", view.Totals.PayableTotal.StringFixed(0)))

	rows = append(rows, telegram.ButtonRow(
		telegram.InlineButton("✅ Оформить заказ", "checkout"),
	))
	bottom := []models.InlineKeyboardButton{
		telegram.InlineButton("🗑 Очистить", "cart_clear"),
	}
	if view.Cart.Promo != nil || view.PromoErr != nil {
		bottom = append(bottom, telegram.InlineButton("Убрать промокод", "promo_clear"))
	}
	rows = append(rows, bottom)

	return sb.String(), telegram.InlineKeyboard(rows...)
}

func (h *Handler) handleCartInc(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.changeCartQuantity(ctx, b, update, "cart_inc_", +1)
}

func (h *Handler) handleCartDec(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.changeCartQuantity(ctx, b, update, "cart_dec_", -1)
}

func (h *Handler) changeCartQuantity(ctx context.Context, b *bot.Bot, update *models.Update, prefix string, delta int) {
	cb := update.CallbackQuery
	if cb == nil {
		return
	}
	user := middleware.GetUser(ctx)
	if user == nil || cb.Message.Message == nil {
		return
	}

	variantID, err := strconv.ParseInt(strings.TrimPrefix(cb.Data, prefix), 10, 64)
	if err != nil {
		return
	}

	qty := currentCartQuantity(ctx, h, user, variantID) + delta
	if qty < 0 {
		qty = 0
	}
	if err := h.carts.SetQuantity(ctx, user, variantID, qty); err != nil {
		slog.Error("change cart quantity", "error", err, "variant_id", variantID)
		telegram.AnswerCallback(ctx, b, cb.ID, "Ошибка, попробуйте ещё раз")
		return
	}
	telegram.AnswerCallback(ctx, b, cb.ID, "")

	msg := cb.Message.Message
	h.sendCart(ctx, b, user, msg.Chat.ID, msg.ID)
}

func currentCartQuantity(ctx context.Context, h *Handler, user *domain.User, variantID int64) int {
	view, err := h.carts.View(ctx, user, true)
	if err != nil {
		return 0
	}
	for _, l := range view.Cart.Lines {
		if l.VariantID == variantID {
			return l.Quantity
		}
	}
	return 0
}

func (h *Handler) handleCartRemove(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil {
		return
	}
	user := middleware.GetUser(ctx)
	if user == nil || cb.Message.Message == nil {
		return
	}

	variantID, err := strconv.ParseInt(strings.TrimPrefix(cb.Data, "cart_del_"), 10, 64)
	if err != nil {
		return
	}
	if err := h.carts.Remove(ctx, user, variantID); err != nil {
		slog.Error("remove cart line", "error", err, "variant_id", variantID)
		telegram.AnswerCallback(ctx, b, cb.ID, "Ошибка, попробуйте ещё раз")
		return
	}
	telegram.AnswerCallback(ctx, b, cb.ID, "Удалено")

	msg := cb.Message.Message
	h.sendCart(ctx, b, user, msg.Chat.ID, msg.ID)
}

func (h *Handler) handleCartClear(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil {
		return
	}
	user := middleware.GetUser(ctx)
	if user == nil || cb.Message.Message == nil {
		return
	}
	if err := h.carts.Clear(ctx, user); err != nil {
		slog.Error("clear cart", "error", err, "user_id", user.ID)
		telegram.AnswerCallback(ctx, b, cb.ID, "Ошибка, попробуйте ещё раз")
		return
	}
	telegram.AnswerCallback(ctx, b, cb.ID, "Корзина очищена")

	msg := cb.Message.Message
	telegram.EditMessage(ctx, b, msg.Chat.ID, msg.ID, "🛒 Корзина пуста.\n\nЗагляните в /catalog", nil)
}

// handlePromoApply handles "/promo <код>".
func (h *Handler) handlePromoApply(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	// "/promo" is a prefix of "/promoCreate"; prefix matching may route the
	// staff command here.
	if strings.HasPrefix(update.Message.Text, "/promoCreate") {
		h.handlePromoCreate(ctx, b, update)
		return
	}
	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}
	chatID := update.Message.Chat.ID

	code := strings.TrimSpace(strings.TrimPrefix(update.Message.Text, "/promo"))
	if code == "" {
		telegram.SendMessage(ctx, b, chatID, "Использование: `/promo КОД`", nil)
		return
	}

	app, err := h.carts.ApplyPromo(ctx, user, code)
	if err != nil {
		telegram.SendMessage(ctx, b, chatID, "❌ "+promoErrorMessage(err), nil)
		return
	}

	var discount string
	if app.DiscountPercent != nil {
		discount = fmt.Sprintf("%d%%", *app.DiscountPercent)
	} else if app.DiscountAmount != nil {
		discount = app.DiscountAmount.StringFixed(0) + " ₽"
	}
	telegram.SendMessage(ctx, b, chatID,
		fmt.Sprintf("✅ Промокод `%s` применён: скидка %s.\n\nПосмотреть: /cart", app.Code, discount), nil)
}

func (h *Handler) handlePromoClear(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil {
		return
	}
	user := middleware.GetUser(ctx)
	if user == nil || cb.Message.Message == nil {
		return
	}
	if err := h.carts.ClearPromo(ctx, user); err != nil {
		slog.Error("clear cart promo", "error", err, "user_id", user.ID)
		telegram.AnswerCallback(ctx, b, cb.ID, "Ошибка, попробуйте ещё раз")
		return
	}
	telegram.AnswerCallback(ctx, b, cb.ID, "Промокод убран")

	msg := cb.Message.Message
	h.sendCart(ctx, b, user, msg.Chat.ID, msg.ID)
}

// promoErrorMessage maps promo resolution errors to shopper-facing text.
func promoErrorMessage(err error) string {
	switch err {
	case domain.ErrPromoNotFound:
		return "Такого промокода нет."
	case domain.ErrPromoExpired:
		return "Срок действия промокода истёк."
	case domain.ErrPromoUsageExhausted:
		return "Лимит использований промокода исчерпан."
	case domain.ErrPromoSelfReferral:
		return "Свой реферальный код применить нельзя."
	default:
		slog.Error("resolve promo", "error", err)
		return "Не удалось проверить промокод, попробуйте позже."
	}
}
