package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PromoKind string

const (
	PromoKindSpecial  PromoKind = "special"
	PromoKindReferral PromoKind = "referral"
)

// PromoCode is an admin-created discount code. Exactly one of
// DiscountPercent/DiscountAmount is set.
type PromoCode struct {
	ID              int64
	Code            string
	DiscountPercent *int
	DiscountAmount  *decimal.Decimal
	ExpiresAt       *time.Time
	UsageLimit      *int
	UsedCount       int
	CreatedBy       int64
	CreatedAt       time.Time
}

// Exhausted reports whether the usage limit has been reached.
func (p *PromoCode) Exhausted() bool {
	return p.UsageLimit != nil && p.UsedCount >= *p.UsageLimit
}

// Expired reports whether the code's expiry has passed at the given instant.
func (p *PromoCode) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}

// PromoApplication is the resolved, cart-agnostic discount descriptor the
// pricing calculator consumes. Referral applications carry a fixed percent
// and no usage accounting.
type PromoApplication struct {
	Code            string
	Kind            PromoKind
	DiscountPercent *int
	DiscountAmount  *decimal.Decimal
	ExpiresAt       *time.Time
}
