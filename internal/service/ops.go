package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/set-night/shopapp/internal/config"
	"github.com/set-night/shopapp/internal/domain"
)

// Priority bases keep the issue classes from interleaving: a stale order
// without proof always outranks one with proof, and both outrank catalog
// hygiene and stock warnings. Within a class the offset grows with urgency.
const (
	priorityStaleNoProof = 1000
	priorityStaleProof   = 500
	priorityProductCard  = 300
	priorityLowStockBase = 100
)

// BuildAttentionQueue scans already-fetched orders, products and variants and
// returns the prioritized action queue for staff. Read-only and pure: safe on
// any schedule without coordination.
func BuildAttentionQueue(orders []domain.Order, products []domain.Product, variants []domain.Variant, th domain.OpsThresholds, now time.Time) domain.OpsReport {
	if th.Limit < config.AttentionLimitMin {
		th.Limit = config.AttentionLimitMin
	}
	if th.Limit > config.AttentionLimitMax {
		th.Limit = config.AttentionLimitMax
	}

	report := domain.OpsReport{GeneratedAt: now}
	var items []domain.OpsQueueItem

	staleNoProof := 0
	for _, o := range orders {
		item, ok := staleOrderItem(o, th, now)
		if !ok {
			continue
		}
		report.StaleOrders++
		if item.WithoutProof {
			staleNoProof++
		}
		items = append(items, item)
	}

	variantCount := make(map[int64]int, len(products))
	for _, v := range variants {
		variantCount[v.ProductID]++
	}

	for _, p := range products {
		reasons := missingCardData(p, variantCount[p.ID])
		if len(reasons) == 0 {
			continue
		}
		report.IncompleteProducts++
		items = append(items, domain.OpsQueueItem{
			Type:              domain.OpsItemProductCard,
			Priority:          priorityProductCard + 25*len(reasons),
			Title:             p.Title,
			Subtitle:          fmt.Sprintf("card incomplete: %d issue(s)", len(reasons)),
			RecommendedAction: "fill in the missing product data",
			ProductID:         p.ID,
			Reasons:           reasons,
		})
	}

	if th.IncludeLowStock {
		for _, v := range variants {
			if v.StockQuantity > th.LowStockThreshold {
				continue
			}
			report.LowStockVariants++
			isOut := v.StockQuantity == 0
			action := "restock soon"
			if isOut {
				action = "restock or hide the variant"
			}
			items = append(items, domain.OpsQueueItem{
				Type:              domain.OpsItemLowStock,
				Priority:          priorityLowStockBase + 60*(th.LowStockThreshold-v.StockQuantity+1),
				Title:             fmt.Sprintf("variant #%d", v.ID),
				Subtitle:          fmt.Sprintf("%d left (%s %s)", v.StockQuantity, v.Size, v.Color),
				RecommendedAction: action,
				VariantID:         v.ID,
				StockQuantity:     v.StockQuantity,
				IsOut:             isOut,
			})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Priority > items[j].Priority
	})
	if len(items) > th.Limit {
		items = items[:th.Limit]
	}

	report.Items = items
	report.SeverityScore = 5*staleNoProof +
		3*(report.StaleOrders-staleNoProof) +
		2*report.IncompleteProducts +
		report.LowStockVariants
	return report
}

// staleOrderItem flags orders stuck in an early status past the threshold.
// Orders without a proof rank higher: staff cannot act on them at all.
func staleOrderItem(o domain.Order, th domain.OpsThresholds, now time.Time) (domain.OpsQueueItem, bool) {
	if o.Status != domain.OrderStatusAwaitingPayment && o.Status != domain.OrderStatusPaid {
		return domain.OpsQueueItem{}, false
	}
	age := now.Sub(o.CreatedAt)
	if age <= time.Duration(th.StaleOrderHours)*time.Hour {
		return domain.OpsQueueItem{}, false
	}

	hours := int(age.Hours())
	withoutProof := !o.HasProof()
	base := priorityStaleProof
	action := "confirm or reject the payment"
	if withoutProof {
		base = priorityStaleNoProof
		action = "remind the shopper to send a payment proof"
	}

	return domain.OpsQueueItem{
		Type:              domain.OpsItemStaleOrder,
		Priority:          base + hours,
		Title:             fmt.Sprintf("order %s", o.PublicID),
		Subtitle:          fmt.Sprintf("%s for %dh", o.Status, hours),
		RecommendedAction: action,
		OrderID:           o.ID,
		HoursWaited:       hours,
		WithoutProof:      withoutProof,
	}, true
}

// missingCardData lists everything wrong with a visible product card; a card
// can be incomplete in several ways at once.
func missingCardData(p domain.Product, variantCount int) []string {
	var reasons []string
	if p.Price == nil {
		reasons = append(reasons, "no price")
	}
	if p.ImageURL == "" {
		reasons = append(reasons, "no image")
	}
	if p.Category == "" {
		reasons = append(reasons, "no category")
	}
	if variantCount == 0 {
		reasons = append(reasons, "no size/color variants")
	}
	return reasons
}
