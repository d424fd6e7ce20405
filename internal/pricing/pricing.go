// Package pricing computes cart totals. Everything here is a pure function of
// its inputs so the checkout and order-success screens always agree on the
// same figures.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/set-night/shopapp/internal/domain"
)

// Params carries the delivery tunables. They come from configuration, not
// hardcoded business logic.
type Params struct {
	DeliveryFee           decimal.Decimal
	FreeDeliveryThreshold decimal.Decimal
}

// Compute prices a set of cart lines with an optional resolved promo. Only
// in-stock lines participate in the subtotal; out-of-stock lines contribute
// nothing. The delivery fee applies iff at least one in-stock line exists,
// a delivery address has been entered, and the subtotal is below the
// free-delivery threshold.
func Compute(lines []domain.CartLine, promo *domain.PromoApplication, hasDeliveryAddress bool, p Params) domain.Totals {
	subtotal := decimal.Zero
	inStock := 0
	for _, l := range lines {
		if !l.InStock {
			continue
		}
		inStock++
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	discount := Discount(subtotal, promo)

	deliveryFee := decimal.Zero
	if inStock > 0 && hasDeliveryAddress && subtotal.LessThan(p.FreeDeliveryThreshold) {
		deliveryFee = p.DeliveryFee
	}

	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return domain.Totals{
		Subtotal:     subtotal,
		Discount:     discount,
		DeliveryFee:  deliveryFee,
		Total:        total,
		PayableTotal: total.Add(deliveryFee),
	}
}

// Discount resolves the monetary discount a promo application grants against
// a subtotal, clamped to [0, subtotal]. A nil promo grants nothing.
func Discount(subtotal decimal.Decimal, promo *domain.PromoApplication) decimal.Decimal {
	if promo == nil {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch {
	case promo.DiscountPercent != nil:
		pct := decimal.NewFromInt(int64(*promo.DiscountPercent))
		discount = subtotal.Mul(pct).Div(decimal.NewFromInt(100)).Round(0)
	case promo.DiscountAmount != nil:
		discount = *promo.DiscountAmount
	default:
		return decimal.Zero
	}

	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount
}
