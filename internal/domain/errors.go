package domain

import (
	"errors"
	"fmt"
)

var (
	ErrPromoNotFound          = errors.New("promo not found")
	ErrPromoExpired           = errors.New("promo expired")
	ErrPromoUsageExhausted    = errors.New("promo usage limit reached")
	ErrPromoSelfReferral      = errors.New("own referral code cannot be applied")
	ErrOutOfStock             = errors.New("variant out of stock")
	ErrCartEmpty              = errors.New("cart has no in-stock lines")
	ErrOrderNotFound          = errors.New("order not found")
	ErrProductNotFound        = errors.New("product not found")
	ErrVariantNotFound        = errors.New("variant not found")
	ErrUserNotFound           = errors.New("user not found")
	ErrNotStaff               = errors.New("operation requires a staff role")
	ErrProofNotAllowed        = errors.New("payment proof cannot be attached in this status")
	ErrConcurrentModification = errors.New("concurrent modification, retry with fresh state")
)

// InvalidTransitionError reports a refused lifecycle transition. It carries
// the canonical current status so the caller can resynchronize.
type InvalidTransitionError struct {
	Current   OrderStatus
	Requested OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.Current, e.Requested)
}
