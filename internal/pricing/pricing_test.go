package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/set-night/shopapp/internal/domain"
)

var testParams = Params{
	DeliveryFee:           decimal.NewFromInt(449),
	FreeDeliveryThreshold: decimal.NewFromInt(5000),
}

func line(price int64, qty int, inStock bool) domain.CartLine {
	return domain.CartLine{
		VariantID: 1,
		Quantity:  qty,
		UnitPrice: decimal.NewFromInt(price),
		InStock:   inStock,
	}
}

func percentPromo(pct int) *domain.PromoApplication {
	return &domain.PromoApplication{Code: "TEST", Kind: domain.PromoKindSpecial, DiscountPercent: &pct}
}

func amountPromo(amount int64) *domain.PromoApplication {
	d := decimal.NewFromInt(amount)
	return &domain.PromoApplication{Code: "TEST", Kind: domain.PromoKindSpecial, DiscountAmount: &d}
}

func TestCompute_NoPromoNoAddress(t *testing.T) {
	lines := []domain.CartLine{line(3000, 1, true), line(2500, 2, true)}

	totals := Compute(lines, nil, false, testParams)

	assert.True(t, totals.Subtotal.Equal(decimal.NewFromInt(8000)), "subtotal %s", totals.Subtotal)
	assert.True(t, totals.Discount.IsZero())
	assert.True(t, totals.DeliveryFee.IsZero())
	assert.True(t, totals.PayableTotal.Equal(decimal.NewFromInt(8000)))
}

func TestCompute_DeliveryFeeBelowThreshold(t *testing.T) {
	lines := []domain.CartLine{line(4000, 1, true)}

	totals := Compute(lines, nil, true, testParams)

	assert.True(t, totals.DeliveryFee.Equal(decimal.NewFromInt(449)))
	assert.True(t, totals.PayableTotal.Equal(decimal.NewFromInt(4449)))
}

func TestCompute_FreeDeliveryAtThreshold(t *testing.T) {
	lines := []domain.CartLine{line(5000, 1, true)}

	totals := Compute(lines, nil, true, testParams)

	assert.True(t, totals.DeliveryFee.IsZero(), "fee must be zero at threshold regardless of address")
}

func TestCompute_NoDeliveryFeeWithoutAddress(t *testing.T) {
	lines := []domain.CartLine{line(1000, 1, true)}

	totals := Compute(lines, nil, false, testParams)

	assert.True(t, totals.DeliveryFee.IsZero())
}

func TestCompute_NoDeliveryFeeWithoutInStockLines(t *testing.T) {
	lines := []domain.CartLine{line(1000, 1, false)}

	totals := Compute(lines, nil, true, testParams)

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.DeliveryFee.IsZero())
	assert.True(t, totals.PayableTotal.IsZero())
}

func TestCompute_OutOfStockLinesExcluded(t *testing.T) {
	lines := []domain.CartLine{line(3000, 1, true), line(9999, 3, false)}

	totals := Compute(lines, nil, false, testParams)

	assert.True(t, totals.Subtotal.Equal(decimal.NewFromInt(3000)))
}

func TestCompute_PercentPromo(t *testing.T) {
	lines := []domain.CartLine{line(4000, 1, true)}

	totals := Compute(lines, percentPromo(10), false, testParams)

	assert.True(t, totals.Discount.Equal(decimal.NewFromInt(400)), "discount %s", totals.Discount)
	assert.True(t, totals.Total.Equal(decimal.NewFromInt(3600)))
}

func TestCompute_PercentPromoRounds(t *testing.T) {
	lines := []domain.CartLine{line(333, 1, true)}

	totals := Compute(lines, percentPromo(10), false, testParams)

	// 33.3 rounds to 33
	assert.True(t, totals.Discount.Equal(decimal.NewFromInt(33)), "discount %s", totals.Discount)
}

func TestCompute_AmountPromoClampedToSubtotal(t *testing.T) {
	lines := []domain.CartLine{line(500, 1, true)}

	totals := Compute(lines, amountPromo(2000), false, testParams)

	assert.True(t, totals.Discount.Equal(decimal.NewFromInt(500)))
	assert.True(t, totals.Total.IsZero())
	assert.False(t, totals.Total.IsNegative())
}

func TestCompute_DiscountNeverExceedsSubtotal(t *testing.T) {
	cases := []struct {
		name  string
		promo *domain.PromoApplication
	}{
		{"full percent", percentPromo(100)},
		{"huge amount", amountPromo(1_000_000)},
		{"nil promo", nil},
	}
	lines := []domain.CartLine{line(1234, 2, true)}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			totals := Compute(lines, tc.promo, true, testParams)
			require.False(t, totals.Discount.IsNegative())
			require.True(t, totals.Discount.LessThanOrEqual(totals.Subtotal))
		})
	}
}

func TestCompute_Deterministic(t *testing.T) {
	lines := []domain.CartLine{line(3000, 1, true), line(2500, 2, true), line(100, 5, false)}
	promo := percentPromo(15)

	first := Compute(lines, promo, true, testParams)
	second := Compute(lines, promo, true, testParams)

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.Discount.Equal(second.Discount))
	assert.True(t, first.DeliveryFee.Equal(second.DeliveryFee))
	assert.True(t, first.PayableTotal.Equal(second.PayableTotal))
}

func TestCompute_EmptyCart(t *testing.T) {
	totals := Compute(nil, percentPromo(50), true, testParams)

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Discount.IsZero())
	assert.True(t, totals.DeliveryFee.IsZero())
	assert.True(t, totals.PayableTotal.IsZero())
}
