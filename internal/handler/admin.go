package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/set-night/shopapp/internal/domain"
	"github.com/set-night/shopapp/internal/middleware"
	"github.com/set-night/shopapp/internal/service"
	"github.com/set-night/shopapp/internal/telegram"
)

func (h *Handler) handleAttention(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	user := middleware.GetUser(ctx)
	if user == nil || !user.Role.Staff() {
		return
	}
	chatID := update.Message.Chat.ID

	force := strings.Contains(update.Message.Text, "force")
	report, err := h.attention.Report(ctx, force)
	if err != nil {
		slog.Error("build attention report", "error", err)
		h.notifier.ReportError(err, "attention report")
		telegram.SendMessage(ctx, b, chatID, "❌ Не удалось построить отчёт.", nil)
		return
	}

	telegram.SendMessage(ctx, b, chatID, renderAttentionReport(report), nil)
}

func renderAttentionReport(report domain.OpsReport) string {
	if len(report.Items) == 0 {
		return "✨ Всё в порядке, задач нет."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔔 *Очередь задач* — важность %d\n", report.SeverityScore))
	sb.WriteString(fmt.Sprintf("Зависшие заказы: %d, карточки: %d, остатки: %d\n",
		report.StaleOrders, report.IncompleteProducts, report.LowStockVariants))

	for i, item := range report.Items {
		sb.WriteString(fmt.Sprintf("\n%d. *%s*", i+1, item.Title))
		if item.Subtitle != "" {
			sb.WriteString("\n   " + item.Subtitle)
		}
		sb.WriteString("\n   → " + item.RecommendedAction)
	}
	return sb.String()
}

// handleOrderLookup handles "/find <public_id>": staff paste the id from a
// channel notification to jump to the order.
func (h *Handler) handleOrderLookup(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	user := middleware.GetUser(ctx)
	if user == nil || !user.Role.Staff() {
		return
	}
	chatID := update.Message.Chat.ID

	raw := strings.TrimSpace(strings.TrimPrefix(update.Message.Text, "/find"))
	publicID, err := uuid.Parse(raw)
	if err != nil {
		telegram.SendMessage(ctx, b, chatID, "Использование: `/find <id заказа>`", nil)
		return
	}

	order, err := h.orders.GetByPublicID(ctx, publicID)
	if err != nil {
		telegram.SendMessage(ctx, b, chatID, "❌ Заказ не найден.", nil)
		return
	}

	text, markup := renderOrder(order, user)
	telegram.SendMessage(ctx, b, chatID, text, markup)
}

// handleActiveOrders shows staff the non-terminal orders as a work list.
func (h *Handler) handleActiveOrders(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	user := middleware.GetUser(ctx)
	if user == nil || !user.Role.Staff() {
		return
	}
	chatID := update.Message.Chat.ID

	orders, err := h.orders.ListActive(ctx, user, 30)
	if err != nil {
		slog.Error("list active orders", "error", err)
		telegram.SendMessage(ctx, b, chatID, "❌ Не удалось загрузить заказы.", nil)
		return
	}
	if len(orders) == 0 {
		telegram.SendMessage(ctx, b, chatID, "Активных заказов нет.", nil)
		return
	}

	var rows [][]models.InlineKeyboardButton
	for _, o := range orders {
		label := fmt.Sprintf("№%d — %s ₽ — %s", o.ID, o.TotalAmount.StringFixed(0), statusLabel(o.Status))
		rows = append(rows, telegram.ButtonRow(
			telegram.InlineButton(label, fmt.Sprintf("ord_view_%d", o.ID)),
		))
	}
	telegram.SendMessage(ctx, b, chatID, "📦 *Активные заказы*", telegram.InlineKeyboard(rows...))
}

// staffTransitionRows offers only the legal next steps for the order's
// current status, so a stale keyboard cannot suggest an impossible move.
func staffTransitionRows(order domain.Order) [][]models.InlineKeyboardButton {
	type action struct {
		to    domain.OrderStatus
		label string
		key   string
	}
	actions := []action{
		{domain.OrderStatusPaid, "🧾 Оплачен", "paid"},
		{domain.OrderStatusProcessing, "📦 В сборку", "proc"},
		{domain.OrderStatusSent, "🚚 Отправлен", "sent"},
		{domain.OrderStatusDelivered, "📬 Доставлен", "delv"},
		{domain.OrderStatusCancelled, "❌ Отменить", "cancel"},
	}

	var row []models.InlineKeyboardButton
	for _, a := range actions {
		if !domain.CanTransition(order.Status, a.to) {
			continue
		}
		row = append(row, telegram.InlineButton(a.label, fmt.Sprintf("adm_ord_%s_%d", a.key, order.ID)))
	}
	if len(row) == 0 {
		return nil
	}
	return [][]models.InlineKeyboardButton{row}
}

var staffActions = map[string]domain.OrderStatus{
	"paid":   domain.OrderStatusPaid,
	"proc":   domain.OrderStatusProcessing,
	"sent":   domain.OrderStatusSent,
	"delv":   domain.OrderStatusDelivered,
	"cancel": domain.OrderStatusCancelled,
}

// handleStaffTransition handles "adm_ord_<action>_<id>" callbacks.
func (h *Handler) handleStaffTransition(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil {
		return
	}
	user := middleware.GetUser(ctx)
	if user == nil || cb.Message.Message == nil {
		return
	}
	if !user.Role.Staff() {
		telegram.AnswerCallback(ctx, b, cb.ID, "Недостаточно прав")
		return
	}
	chatID := cb.Message.Message.Chat.ID

	rest := strings.TrimPrefix(cb.Data, "adm_ord_")
	key, idStr, ok := strings.Cut(rest, "_")
	if !ok {
		return
	}
	to, ok := staffActions[key]
	if !ok {
		return
	}
	orderID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return
	}

	order, err := h.orders.Transition(ctx, orderID, to, user)
	if err != nil {
		var invalid *domain.InvalidTransitionError
		switch {
		case errors.As(err, &invalid):
			// Another staff member moved the order first; show where it
			// actually is.
			telegram.AnswerCallback(ctx, b, cb.ID,
				"Заказ уже в статусе: "+statusLabel(invalid.Current))
		case err == domain.ErrOrderNotFound:
			telegram.AnswerCallback(ctx, b, cb.ID, "Заказ не найден")
		default:
			slog.Error("staff transition", "error", err, "order_id", orderID, "to", to)
			h.notifier.ReportError(err, "staff transition")
			telegram.AnswerCallback(ctx, b, cb.ID, "Ошибка, попробуйте ещё раз")
		}
		return
	}

	telegram.AnswerCallback(ctx, b, cb.ID, "Готово")
	text, markup := renderOrder(order, user)
	telegram.SendMessage(ctx, b, chatID, text, markup)
}

// handlePromoCreate handles
// "/promoCreate [КОД] <10% | 500> [uses=N] [days=N]".
func (h *Handler) handlePromoCreate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	user := middleware.GetUser(ctx)
	if user == nil || !user.Role.Staff() {
		return
	}
	chatID := update.Message.Chat.ID

	usage := "Использование: `/promoCreate [КОД] <10% | 500> [uses=N] [days=N]`\n\n" +
		"`10%` — скидка в процентах, `500` — в рублях.\n" +
		"Без КОДА он будет сгенерирован."

	args := strings.Fields(update.Message.Text)[1:]
	if len(args) == 0 {
		telegram.SendMessage(ctx, b, chatID, usage, nil)
		return
	}

	var opts service.CreateOptions
	for _, arg := range args {
		switch {
		case strings.HasSuffix(arg, "%"):
			pct, err := strconv.Atoi(strings.TrimSuffix(arg, "%"))
			if err != nil {
				telegram.SendMessage(ctx, b, chatID, usage, nil)
				return
			}
			opts.DiscountPercent = &pct
		case strings.HasPrefix(arg, "uses="):
			uses, err := strconv.Atoi(strings.TrimPrefix(arg, "uses="))
			if err != nil || uses < 1 {
				telegram.SendMessage(ctx, b, chatID, usage, nil)
				return
			}
			opts.UsageLimit = &uses
		case strings.HasPrefix(arg, "days="):
			days, err := strconv.Atoi(strings.TrimPrefix(arg, "days="))
			if err != nil || days < 1 {
				telegram.SendMessage(ctx, b, chatID, usage, nil)
				return
			}
			expires := time.Now().AddDate(0, 0, days)
			opts.ExpiresAt = &expires
		default:
			if amount, err := decimal.NewFromString(arg); err == nil {
				opts.DiscountAmount = &amount
			} else {
				opts.Code = arg
			}
		}
	}

	promo, err := h.promos.Create(ctx, user, opts)
	if err != nil {
		if err == domain.ErrNotStaff {
			return
		}
		telegram.SendMessage(ctx, b, chatID, "❌ "+err.Error()+"\n\n"+usage, nil)
		return
	}

	text := fmt.Sprintf("✅ Промокод `%s` создан.", promo.Code)
	if promo.DiscountPercent != nil {
		text += fmt.Sprintf("\nСкидка: %d%%", *promo.DiscountPercent)
	}
	if promo.DiscountAmount != nil {
		text += fmt.Sprintf("\nСкидка: %s ₽", promo.DiscountAmount.StringFixed(0))
	}
	if promo.UsageLimit != nil {
		text += fmt.Sprintf("\nЛимит: %d использований", *promo.UsageLimit)
	}
	if promo.ExpiresAt != nil {
		text += fmt.Sprintf("\nДействует до: %s", promo.ExpiresAt.Format("02.01.2006"))
	}
	telegram.SendMessage(ctx, b, chatID, text, nil)
}

// handleImport handles "/import <url>": scrape a supplier page and save the
// draft as a hidden product.
func (h *Handler) handleImport(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	user := middleware.GetUser(ctx)
	if user == nil || !user.Role.Staff() {
		return
	}
	chatID := update.Message.Chat.ID

	pageURL := strings.TrimSpace(strings.TrimPrefix(update.Message.Text, "/import"))
	if pageURL == "" {
		telegram.SendMessage(ctx, b, chatID, "Использование: `/import <url>`", nil)
		return
	}

	draft, err := h.importer.ImportProductCard(ctx, pageURL)
	if err != nil {
		slog.Error("import product card", "error", err, "url", pageURL)
		telegram.SendMessage(ctx, b, chatID, "❌ Не удалось разобрать страницу: "+err.Error(), nil)
		return
	}

	product, err := h.catalog.CreateFromDraft(ctx, user, draft)
	if err != nil {
		slog.Error("create product from draft", "error", err)
		telegram.SendMessage(ctx, b, chatID, "❌ Не удалось сохранить товар.", nil)
		return
	}

	text := fmt.Sprintf("✅ Черновик товара #%d создан (скрыт из каталога).\n\n*%s*", product.ID, product.Title)
	if product.Price != nil {
		text += fmt.Sprintf("\nЦена: %s ₽", product.Price.StringFixed(0))
	}
	if product.Description != "" {
		text += "\n\n" + product.Description
	}
	text += "\n\nДобавьте варианты и цены, затем откройте товар."
	telegram.SendMessage(ctx, b, chatID, text, nil)
}

// handlePromoteStaff handles "/staff <telegram_id> [assistant|manager]".
// Manager-only; the promoted user gets a referral code.
func (h *Handler) handlePromoteStaff(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	user := middleware.GetUser(ctx)
	if user == nil || user.Role != domain.RoleManager {
		return
	}
	chatID := update.Message.Chat.ID

	args := strings.Fields(update.Message.Text)[1:]
	if len(args) == 0 {
		telegram.SendMessage(ctx, b, chatID, "Использование: `/staff <telegram_id> [assistant|manager]`", nil)
		return
	}
	targetID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		telegram.SendMessage(ctx, b, chatID, "Использование: `/staff <telegram_id> [assistant|manager]`", nil)
		return
	}
	role := domain.RoleAssistant
	if len(args) > 1 {
		role = domain.Role(args[1])
	}

	target, err := h.users.PromoteToStaff(ctx, user, targetID, role)
	if err != nil {
		switch err {
		case domain.ErrUserNotFound:
			telegram.SendMessage(ctx, b, chatID, "❌ Пользователь не найден. Он должен сначала написать боту.", nil)
		case domain.ErrNotStaff:
		default:
			telegram.SendMessage(ctx, b, chatID, "❌ "+err.Error(), nil)
		}
		return
	}

	telegram.SendMessage(ctx, b, chatID,
		fmt.Sprintf("✅ %s теперь %s.\nРеферальный код: `%s`", target.FirstName, target.Role, target.ReferralCode), nil)
}
