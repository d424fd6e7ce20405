package repository

import (
	"context"
	"fmt"

	"github.com/set-night/shopapp/internal/domain"
)

const promoColumns = `id, code, discount_percent, discount_amount, expires_at, usage_limit, used_count, created_by, created_at`

func scanPromo(row interface{ Scan(dest ...any) error }) (domain.PromoCode, error) {
	var p domain.PromoCode
	err := row.Scan(&p.ID, &p.Code, &p.DiscountPercent, &p.DiscountAmount,
		&p.ExpiresAt, &p.UsageLimit, &p.UsedCount, &p.CreatedBy, &p.CreatedAt)
	return p, err
}

func (s *Store) GetPromoByCode(ctx context.Context, code string) (domain.PromoCode, error) {
	row := s.db.QueryRow(ctx, `SELECT `+promoColumns+` FROM promo_codes WHERE code = $1`, code)
	return scanPromo(row)
}

func (s *Store) CreatePromo(ctx context.Context, p domain.PromoCode) (domain.PromoCode, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO promo_codes (code, discount_percent, discount_amount, expires_at, usage_limit, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+promoColumns,
		p.Code, p.DiscountPercent, p.DiscountAmount, p.ExpiresAt, p.UsageLimit, p.CreatedBy)
	return scanPromo(row)
}

// RedeemPromo increments used_count under a compare-and-swap against the usage
// limit and records the redemption keyed by order id. Returns false when the
// limit guard fails, which means a concurrent checkout exhausted the code.
// Callers run this inside the order-creation transaction so a promo is never
// redeemed without a corresponding order.
func (s *Store) RedeemPromo(ctx context.Context, promoID, orderID int64) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE promo_codes SET used_count = used_count + 1
		WHERE id = $1 AND (usage_limit IS NULL OR used_count < usage_limit)`,
		promoID)
	if err != nil {
		return false, fmt.Errorf("increment used count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	// The unique (promo_id, order_id) constraint makes redemption idempotent
	// per order.
	_, err = s.db.Exec(ctx, `
		INSERT INTO promo_redemptions (promo_id, order_id)
		VALUES ($1, $2)
		ON CONFLICT (promo_id, order_id) DO NOTHING`,
		promoID, orderID)
	if err != nil {
		return false, fmt.Errorf("record redemption: %w", err)
	}
	return true, nil
}
