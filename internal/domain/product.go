package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64
	Title       string
	Description string
	Category    string
	ImageURL    string
	Price       *decimal.Decimal
	Visible     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Variant is a specific size/color combination of a product with its own
// stock count and price.
type Variant struct {
	ID            int64
	ProductID     int64
	Size          string
	Color         string
	Price         decimal.Decimal
	StockQuantity int
}

func (v *Variant) InStock() bool {
	return v.StockQuantity > 0
}
