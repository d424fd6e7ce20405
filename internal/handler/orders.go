package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/shopapp/internal/config"
	"github.com/set-night/shopapp/internal/domain"
	"github.com/set-night/shopapp/internal/middleware"
	"github.com/set-night/shopapp/internal/telegram"
)

var statusLabels = map[domain.OrderStatus]string{
	domain.OrderStatusAwaitingPayment: "⏳ Ожидает оплаты",
	domain.OrderStatusPaid:            "🧾 Оплачен",
	domain.OrderStatusProcessing:      "📦 Собирается",
	domain.OrderStatusSent:            "🚚 Отправлен",
	domain.OrderStatusDelivered:       "📬 Доставлен",
	domain.OrderStatusReceived:        "✅ Получен",
	domain.OrderStatusCancelled:       "❌ Отменён",
}

func statusLabel(s domain.OrderStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return s.String()
}

func (h *Handler) handleOrders(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}
	chatID := update.Message.Chat.ID

	orders, err := h.orders.ListByUser(ctx, user.ID, config.OrdersPerPage, 0)
	if err != nil {
		slog.Error("list orders", "error", err, "user_id", user.ID)
		telegram.SendMessage(ctx, b, chatID, "❌ Не удалось загрузить заказы.", nil)
		return
	}
	if len(orders) == 0 {
		telegram.SendMessage(ctx, b, chatID, "У вас пока нет заказов.\n\nЗагляните в /catalog", nil)
		return
	}

	var rows [][]models.InlineKeyboardButton
	for _, o := range orders {
		label := fmt.Sprintf("%s — %s ₽ — %s",
			o.CreatedAt.Format("02.01"), o.TotalAmount.StringFixed(0), statusLabel(o.Status))
		rows = append(rows, telegram.ButtonRow(
			telegram.InlineButton(label, fmt.Sprintf("ord_view_%d", o.ID)),
		))
	}
	telegram.SendMessage(ctx, b, chatID, "📋 *Мои заказы*", telegram.InlineKeyboard(rows...))
}

func (h *Handler) handleOrderView(ctx context.Context, b *bot.Bot, update *models.Update) {
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

	orderID, err := strconv.ParseInt(strings.TrimPrefix(cb.Data, "ord_view_"), 10, 64)
	if err != nil {
		return
	}

	order, err := h.orders.Get(ctx, orderID)
	if err != nil || (order.UserID != user.ID && !user.Role.Staff()) {
		telegram.SendMessage(ctx, b, chatID, "❌ Заказ не найден.", nil)
		return
	}

	text, markup := renderOrder(order, user)
	telegram.SendMessage(ctx, b, chatID, text, markup)
}

func renderOrder(order domain.Order, viewer *domain.User) (string, models.ReplyMarkup) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📦 *Заказ* `%s`\n%s\n", order.PublicID, statusLabel(order.Status)))
	for _, l := range order.Lines {
		label := l.Title
		if l.Size != "" {
			label += " " + l.Size
		}
		if l.Color != "" {
			label += " " + l.Color
		}
		sb.WriteString(fmt.Sprintf("\n%s — %d × %s ₽", label, l.Quantity, l.UnitPrice.StringFixed(0)))
	}
	sb.WriteString(fmt.Sprintf("\n\n*Итого: %s ₽*", order.TotalAmount.StringFixed(0)))
	if order.PromoCode != "" {
		sb.WriteString(fmt.Sprintf("\nПромокод: `%s`", order.PromoCode))
	}
	sb.WriteString(fmt.Sprintf("\nАдрес: %s", order.DeliveryAddress))

	var rows [][]models.InlineKeyboardButton
	if domain.CanAttachProof(order.Status) && order.UserID == viewer.ID {
		label := "🧾 Отправить чек"
		if order.HasProof() {
			label = "🧾 Заменить чек"
		}
		rows = append(rows, telegram.ButtonRow(
			telegram.InlineButton(label, fmt.Sprintf("ord_proof_%d", order.ID)),
		))
	}
	if order.Status == domain.OrderStatusDelivered && order.UserID == viewer.ID {
		rows = append(rows, telegram.ButtonRow(
			telegram.InlineButton("✅ Подтвердить получение", fmt.Sprintf("ord_recv_%d", order.ID)),
		))
	}
	if viewer.Role.Staff() {
		rows = append(rows, staffTransitionRows(order)...)
	}
	if len(rows) == 0 {
		return sb.String(), nil
	}
	return sb.String(), telegram.InlineKeyboard(rows...)
}

func (h *Handler) handleProofStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil {
		return
	}
	user := middleware.GetUser(ctx)
	if user == nil || cb.Message.Message == nil {
		return
	}
	chatID := cb.Message.Message.Chat.ID

	orderID, err := strconv.ParseInt(strings.TrimPrefix(cb.Data, "ord_proof_"), 10, 64)
	if err != nil {
		return
	}

	order, err := h.orders.Get(ctx, orderID)
	if err != nil || order.UserID != user.ID {
		telegram.AnswerCallback(ctx, b, cb.ID, "Заказ не найден")
		return
	}
	if !domain.CanAttachProof(order.Status) {
		telegram.AnswerCallback(ctx, b, cb.ID, "Чек для этого заказа уже не нужен")
		return
	}

	telegram.AnswerCallback(ctx, b, cb.ID, "")
	h.setPendingProof(chatID, orderID)
	telegram.SendMessage(ctx, b, chatID, "📷 Отправьте скриншот чека одним фото.", nil)
}

// handleProofPhoto picks up the photo a shopper sends after handleProofStart.
// The Telegram file id of the largest size is stored as the proof reference.
func (h *Handler) handleProofPhoto(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil || update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	orderID, ok := h.takePendingProof(chatID)
	if !ok {
		return
	}

	photos := update.Message.Photo
	if len(photos) == 0 {
		return
	}
	fileID := photos[len(photos)-1].FileID

	order, err := h.orders.AttachProof(ctx, orderID, fileID, user)
	if err != nil {
		switch err {
		case domain.ErrProofNotAllowed:
			telegram.SendMessage(ctx, b, chatID, "Чек для этого заказа уже не нужен.", nil)
		case domain.ErrOrderNotFound:
			telegram.SendMessage(ctx, b, chatID, "❌ Заказ не найден.", nil)
		default:
			slog.Error("attach proof", "error", err, "order_id", orderID)
			telegram.SendMessage(ctx, b, chatID, "❌ Не удалось сохранить чек, попробуйте ещё раз.", nil)
			h.setPendingProof(chatID, orderID)
		}
		return
	}

	telegram.SendMessage(ctx, b, chatID,
		fmt.Sprintf("✅ Чек получен, заказ `%s` ожидает проверки оплаты.", order.PublicID), nil)
}

func (h *Handler) handleConfirmReceived(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil {
		return
	}
	user := middleware.GetUser(ctx)
	if user == nil || cb.Message.Message == nil {
		return
	}
	chatID := cb.Message.Message.Chat.ID

	orderID, err := strconv.ParseInt(strings.TrimPrefix(cb.Data, "ord_recv_"), 10, 64)
	if err != nil {
		return
	}

	order, err := h.orders.Transition(ctx, orderID, domain.OrderStatusReceived, user)
	if err != nil {
		var invalid *domain.InvalidTransitionError
		switch {
		case errors.As(err, &invalid):
			telegram.AnswerCallback(ctx, b, cb.ID,
				"Заказ сейчас в статусе: "+statusLabel(invalid.Current))
		case err == domain.ErrNotStaff, err == domain.ErrOrderNotFound:
			telegram.AnswerCallback(ctx, b, cb.ID, "Заказ не найден")
		default:
			slog.Error("confirm received", "error", err, "order_id", orderID)
			telegram.AnswerCallback(ctx, b, cb.ID, "Ошибка, попробуйте ещё раз")
		}
		return
	}

	telegram.AnswerCallback(ctx, b, cb.ID, "Спасибо!")
	telegram.SendMessage(ctx, b, chatID,
		fmt.Sprintf("🎉 Заказ `%s` получен. Спасибо за покупку!", order.PublicID), nil)
}
