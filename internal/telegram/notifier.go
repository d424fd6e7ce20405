package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"

	"github.com/set-night/shopapp/internal/config"
	"github.com/set-night/shopapp/internal/domain"
)

// StaffNotifier pushes order lifecycle events and attention digests into the
// staff supergroup, routed by topic. It is informed, never consulted: send
// failures are logged and never surface to the caller.
type StaffNotifier struct {
	bot *bot.Bot
	cfg *config.Config
}

func NewStaffNotifier(b *bot.Bot, cfg *config.Config) *StaffNotifier {
	return &StaffNotifier{bot: b, cfg: cfg}
}

type topic string

const (
	topicOrders    topic = "orders"
	topicPayments  topic = "payments"
	topicAttention topic = "attention"
	topicError     topic = "error"
)

func (n *StaffNotifier) send(t topic, message string) {
	if n.cfg.StaffChatID == 0 {
		return
	}

	if len([]rune(message)) > MaxMessageLen {
		message = string([]rune(message)[:MaxMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          n.cfg.StaffChatID,
		Text:            message,
		ParseMode:       "Markdown",
		MessageThreadID: n.topicID(t),
	})
	if err != nil {
		slog.Error("failed to send staff notification", "topic", t, "error", err)
	}
}

func (n *StaffNotifier) topicID(t topic) int {
	switch t {
	case topicOrders:
		return n.cfg.StaffTopicOrders
	case topicPayments:
		return n.cfg.StaffTopicPayments
	case topicAttention:
		return n.cfg.StaffTopicAttention
	case topicError:
		return n.cfg.StaffTopicError
	default:
		return 0
	}
}

func (n *StaffNotifier) OrderCreated(o domain.Order) {
	msg := fmt.Sprintf("🛒 *New Order* `%s`\n\n*Total:* %s\n*Name:* %s\n*Address:* %s\n*Lines:* %d",
		o.PublicID, o.TotalAmount.StringFixed(0), o.FIO, o.DeliveryAddress, len(o.Lines))
	if o.PromoCode != "" {
		msg += fmt.Sprintf("\n*Promo:* `%s`", o.PromoCode)
	}
	if o.ReferralCode != "" {
		msg += fmt.Sprintf("\n*Referral:* `%s`", o.ReferralCode)
	}
	n.send(topicOrders, msg)
}

func (n *StaffNotifier) ProofUploaded(o domain.Order) {
	msg := fmt.Sprintf("🧾 *Payment Proof* for order `%s`\n\n*Total:* %s\n%s",
		o.PublicID, o.TotalAmount.StringFixed(0), o.PaymentProofURL)
	n.send(topicPayments, msg)
}

func (n *StaffNotifier) OrderStatusChanged(o domain.Order, from domain.OrderStatus) {
	msg := fmt.Sprintf("📦 *Order* `%s`\n\n%s → *%s*", o.PublicID, from, o.Status)
	n.send(topicOrders, msg)
}

// AttentionDigest summarizes an ops report for the staff channel.
func (n *StaffNotifier) AttentionDigest(report domain.OpsReport) {
	if len(report.Items) == 0 {
		return
	}
	msg := fmt.Sprintf("🔔 *Attention Queue* (severity %d)\n", report.SeverityScore)
	for _, item := range report.Items {
		msg += fmt.Sprintf("\n• [%s] %s — %s", item.Type, item.Title, item.RecommendedAction)
	}
	n.send(topicAttention, msg)
}

// ReportError mirrors unexpected handler errors into the staff channel.
func (n *StaffNotifier) ReportError(err error, where string) {
	msg := fmt.Sprintf("❌ *Error*\n\n*Context:* %s\n*Error:* `%s`\n*Time:* %s",
		where, err.Error(), time.Now().Format("2006-01-02 15:04:05"))
	n.send(topicError, msg)
}
