package handler

import (
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/set-night/shopapp/internal/domain"
	"github.com/set-night/shopapp/internal/service"
)

func TestRenderCart(t *testing.T) {
	view := service.CartView{
		Cart: domain.Cart{
			Lines: []domain.CartLine{
				{VariantID: 1, Title: "Худи", Size: "M", Quantity: 2, UnitPrice: decimal.NewFromInt(2000), InStock: true},
				{VariantID: 2, Title: "Кепка", Quantity: 1, UnitPrice: decimal.NewFromInt(900), InStock: false},
			},
		},
		Totals: domain.Totals{
			Subtotal:     decimal.NewFromInt(4000),
			DeliveryFee:  decimal.NewFromInt(449),
			PayableTotal: decimal.NewFromInt(4449),
		},
	}

	text, markup := renderCart(view)

	assert.Contains(t, text, "Худи")
	assert.Contains(t, text, "2 × 2000 ₽ = 4000 ₽")
	assert.Contains(t, text, "нет в наличии")
	assert.Contains(t, text, "Доставка: 449 ₽")
	assert.Contains(t, text, "Итого: 4449 ₽")
	assert.NotNil(t, markup)
}

func TestRenderCartPromoError(t *testing.T) {
	view := service.CartView{
		Cart: domain.Cart{
			Lines: []domain.CartLine{
				{VariantID: 1, Title: "Худи", Quantity: 1, UnitPrice: decimal.NewFromInt(2000), InStock: true},
			},
		},
		Totals:   domain.Totals{Subtotal: decimal.NewFromInt(2000), PayableTotal: decimal.NewFromInt(2000)},
		PromoErr: domain.ErrPromoExpired,
	}

	text, _ := renderCart(view)
	assert.Contains(t, text, "Срок действия промокода истёк")
}

func TestPromoErrorMessages(t *testing.T) {
	known := []error{
		domain.ErrPromoNotFound,
		domain.ErrPromoExpired,
		domain.ErrPromoUsageExhausted,
		domain.ErrPromoSelfReferral,
	}
	seen := make(map[string]bool)
	for _, err := range known {
		msg := promoErrorMessage(err)
		assert.NotEmpty(t, msg)
		assert.False(t, seen[msg], "messages must be distinguishable: %s", msg)
		seen[msg] = true
	}
}

func TestStaffTransitionRows(t *testing.T) {
	tests := []struct {
		status domain.OrderStatus
		want   []string
	}{
		{domain.OrderStatusAwaitingPayment, []string{"adm_ord_paid_7", "adm_ord_cancel_7"}},
		{domain.OrderStatusPaid, []string{"adm_ord_proc_7", "adm_ord_cancel_7"}},
		{domain.OrderStatusProcessing, []string{"adm_ord_sent_7", "adm_ord_cancel_7"}},
		{domain.OrderStatusSent, []string{"adm_ord_delv_7"}},
		{domain.OrderStatusReceived, nil},
		{domain.OrderStatusCancelled, nil},
	}
	for _, tt := range tests {
		rows := staffTransitionRows(domain.Order{ID: 7, Status: tt.status})
		var got []string
		for _, row := range rows {
			for _, btn := range row {
				got = append(got, btn.CallbackData)
			}
		}
		assert.Equal(t, tt.want, got, "status %s", tt.status)
	}
}

func TestRenderOrderShopperButtons(t *testing.T) {
	shopper := &domain.User{ID: 1, Role: domain.RoleShopper}
	order := domain.Order{
		ID:          7,
		UserID:      1,
		Status:      domain.OrderStatusDelivered,
		TotalAmount: decimal.NewFromInt(4449),
	}

	text, markup := renderOrder(order, shopper)
	assert.Contains(t, text, "Доставлен")
	require.NotNil(t, markup)

	// A delivered order offers receipt confirmation, not a proof upload.
	kb, ok := markup.(*models.InlineKeyboardMarkup)
	require.True(t, ok)
	var callbacks []string
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			callbacks = append(callbacks, btn.CallbackData)
		}
	}
	assert.Contains(t, callbacks, "ord_recv_7")
	assert.NotContains(t, callbacks, "ord_proof_7")
}

func TestRenderAttentionReportEmpty(t *testing.T) {
	report := domain.OpsReport{}
	assert.Contains(t, renderAttentionReport(report), "задач нет")
}

func TestRenderAttentionReport(t *testing.T) {
	report := domain.OpsReport{
		SeverityScore: 5013,
		StaleOrders:   1,
		Items: []domain.OpsQueueItem{
			{
				Type:              domain.OpsItemStaleOrder,
				Title:             "Заказ №12 ждёт оплаты 30 ч",
				RecommendedAction: "Напомнить покупателю об оплате",
			},
		},
	}

	text := renderAttentionReport(report)
	assert.Contains(t, text, "важность 5013")
	assert.Contains(t, text, "Заказ №12")
	assert.Contains(t, text, "Напомнить покупателю об оплате")
}
