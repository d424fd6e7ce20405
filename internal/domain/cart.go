package domain

import (
	"github.com/shopspring/decimal"
)

// CartLine is one variant in a shopper's cart. InStock reflects the
// authoritative stock level at read time; out-of-stock lines stay visible
// but never participate in totals or checkout.
type CartLine struct {
	VariantID int64
	ProductID int64
	Title     string
	Size      string
	Color     string
	Quantity  int
	UnitPrice decimal.Decimal
	InStock   bool
}

type Cart struct {
	Lines []CartLine
	Promo *PromoApplication
}

// Totals is the derived monetary view of a cart. It is recomputed on every
// read and never stored.
type Totals struct {
	Subtotal     decimal.Decimal
	Discount     decimal.Decimal
	DeliveryFee  decimal.Decimal
	Total        decimal.Decimal
	PayableTotal decimal.Decimal
}

// InStockLines returns only the lines eligible for pricing and checkout.
func (c *Cart) InStockLines() []CartLine {
	lines := make([]CartLine, 0, len(c.Lines))
	for _, l := range c.Lines {
		if l.InStock {
			lines = append(lines, l)
		}
	}
	return lines
}
