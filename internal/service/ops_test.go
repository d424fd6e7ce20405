package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/set-night/shopapp/internal/domain"
)

var opsNow = time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

func defaultThresholds() domain.OpsThresholds {
	return domain.OpsThresholds{
		LowStockThreshold: 2,
		StaleOrderHours:   24,
		IncludeLowStock:   false,
		Limit:             8,
	}
}

func staleOrder(id int64, status domain.OrderStatus, hoursAgo int, proof string) domain.Order {
	return domain.Order{
		ID:              id,
		Status:          status,
		PaymentProofURL: proof,
		CreatedAt:       opsNow.Add(-time.Duration(hoursAgo) * time.Hour),
	}
}

func completeProduct(id int64) domain.Product {
	price := decimal.NewFromInt(1000)
	return domain.Product{ID: id, Title: "tee", Category: "tops", ImageURL: "http://x/i.jpg", Price: &price, Visible: true}
}

func TestBuildAttentionQueue_StaleOrderDetection(t *testing.T) {
	orders := []domain.Order{
		staleOrder(1, domain.OrderStatusAwaitingPayment, 30, ""),
		staleOrder(2, domain.OrderStatusPaid, 30, "http://proof"),
		staleOrder(3, domain.OrderStatusAwaitingPayment, 10, ""), // not stale yet
		staleOrder(4, domain.OrderStatusProcessing, 100, ""),     // wrong status
	}

	report := BuildAttentionQueue(orders, nil, nil, defaultThresholds(), opsNow)

	require.Len(t, report.Items, 2)
	assert.Equal(t, 2, report.StaleOrders)
	assert.Equal(t, int64(1), report.Items[0].OrderID, "order without proof sorts first")
	assert.True(t, report.Items[0].WithoutProof)
	assert.Equal(t, int64(2), report.Items[1].OrderID)
	assert.False(t, report.Items[1].WithoutProof)
}

func TestBuildAttentionQueue_WithoutProofOutranksEqualHours(t *testing.T) {
	orders := []domain.Order{
		staleOrder(1, domain.OrderStatusPaid, 30, "http://proof"),
		staleOrder(2, domain.OrderStatusAwaitingPayment, 30, ""),
	}

	report := BuildAttentionQueue(orders, nil, nil, defaultThresholds(), opsNow)

	require.Len(t, report.Items, 2)
	assert.True(t, report.Items[0].WithoutProof)
	assert.Greater(t, report.Items[0].Priority, report.Items[1].Priority)
}

func TestBuildAttentionQueue_PriorityMonotonicInHoursWaited(t *testing.T) {
	orders := []domain.Order{
		staleOrder(1, domain.OrderStatusAwaitingPayment, 30, ""),
		staleOrder(2, domain.OrderStatusAwaitingPayment, 72, ""),
	}

	report := BuildAttentionQueue(orders, nil, nil, defaultThresholds(), opsNow)

	require.Len(t, report.Items, 2)
	assert.Equal(t, int64(2), report.Items[0].OrderID, "longer wait sorts first")
}

func TestBuildAttentionQueue_ProductCardReasons(t *testing.T) {
	products := []domain.Product{
		{ID: 1, Title: "bare", Visible: true}, // everything missing
		completeProduct(2),
	}
	variants := []domain.Variant{{ID: 10, ProductID: 2, StockQuantity: 5}}

	report := BuildAttentionQueue(nil, products, variants, defaultThresholds(), opsNow)

	require.Len(t, report.Items, 1)
	item := report.Items[0]
	assert.Equal(t, domain.OpsItemProductCard, item.Type)
	assert.Equal(t, int64(1), item.ProductID)
	assert.ElementsMatch(t, []string{"no price", "no image", "no category", "no size/color variants"}, item.Reasons)
	assert.Equal(t, 1, report.IncompleteProducts)
}

func TestBuildAttentionQueue_LowStockOnlyWhenEnabled(t *testing.T) {
	variants := []domain.Variant{
		{ID: 1, ProductID: 2, StockQuantity: 0},
		{ID: 2, ProductID: 2, StockQuantity: 2},
		{ID: 3, ProductID: 2, StockQuantity: 5},
	}
	products := []domain.Product{completeProduct(2)}

	th := defaultThresholds()
	report := BuildAttentionQueue(nil, products, variants, th, opsNow)
	assert.Empty(t, report.Items, "low stock is noise unless opted in")
	assert.Equal(t, 0, report.LowStockVariants)

	th.IncludeLowStock = true
	report = BuildAttentionQueue(nil, products, variants, th, opsNow)
	require.Len(t, report.Items, 2)
	assert.Equal(t, int64(1), report.Items[0].VariantID, "closer to zero sorts first")
	assert.True(t, report.Items[0].IsOut)
	assert.False(t, report.Items[1].IsOut)
	assert.Equal(t, 2, report.LowStockVariants)
}

func TestBuildAttentionQueue_ClassOrdering(t *testing.T) {
	orders := []domain.Order{staleOrder(1, domain.OrderStatusPaid, 30, "http://proof")}
	products := []domain.Product{{ID: 2, Title: "bare", Visible: true}}
	variants := []domain.Variant{{ID: 3, ProductID: 2, StockQuantity: 0}}

	th := defaultThresholds()
	th.IncludeLowStock = true
	report := BuildAttentionQueue(orders, products, variants, th, opsNow)

	require.Len(t, report.Items, 3)
	assert.Equal(t, domain.OpsItemStaleOrder, report.Items[0].Type)
	assert.Equal(t, domain.OpsItemProductCard, report.Items[1].Type)
	assert.Equal(t, domain.OpsItemLowStock, report.Items[2].Type)
}

func TestBuildAttentionQueue_LimitClamped(t *testing.T) {
	var orders []domain.Order
	for i := 0; i < 40; i++ {
		orders = append(orders, staleOrder(int64(i+1), domain.OrderStatusAwaitingPayment, 30+i, ""))
	}

	th := defaultThresholds()
	th.Limit = 100
	report := BuildAttentionQueue(orders, nil, nil, th, opsNow)
	assert.Len(t, report.Items, 20, "limit clamps to the upper bound")

	th.Limit = 1
	report = BuildAttentionQueue(orders, nil, nil, th, opsNow)
	assert.Len(t, report.Items, 3, "limit clamps to the lower bound")

	// Counts reflect everything detected, not just the returned page.
	assert.Equal(t, 40, report.StaleOrders)
}

func TestBuildAttentionQueue_SeverityMonotonic(t *testing.T) {
	orders := []domain.Order{staleOrder(1, domain.OrderStatusAwaitingPayment, 30, "")}

	before := BuildAttentionQueue(orders, nil, nil, defaultThresholds(), opsNow)

	orders = append(orders, staleOrder(2, domain.OrderStatusPaid, 40, "http://proof"))
	after := BuildAttentionQueue(orders, nil, nil, defaultThresholds(), opsNow)

	assert.Greater(t, after.SeverityScore, before.SeverityScore)
}

func TestBuildAttentionQueue_Empty(t *testing.T) {
	report := BuildAttentionQueue(nil, nil, nil, defaultThresholds(), opsNow)

	assert.Empty(t, report.Items)
	assert.Zero(t, report.SeverityScore)
	assert.Equal(t, opsNow, report.GeneratedAt)
}
