package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/set-night/shopapp/internal/domain"
)

// ListCartLines returns the shopper's cart joined against the catalog so each
// line carries the current price and stock truth at read time.
func (s *Store) ListCartLines(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	rows, err := s.db.Query(ctx, `
		SELECT cl.variant_id, v.product_id, p.title, v.size, v.color,
		       cl.quantity, v.price, v.stock_quantity >= cl.quantity
		FROM cart_lines cl
		JOIN variants v ON v.id = cl.variant_id
		JOIN products p ON p.id = v.product_id
		WHERE cl.user_id = $1
		ORDER BY cl.created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(&l.VariantID, &l.ProductID, &l.Title, &l.Size, &l.Color,
			&l.Quantity, &l.UnitPrice, &l.InStock); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// AddCartLine inserts a line or bumps the quantity of an existing one.
func (s *Store) AddCartLine(ctx context.Context, userID, variantID int64, qty int) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO cart_lines (user_id, variant_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, variant_id) DO UPDATE SET quantity = cart_lines.quantity + $3`,
		userID, variantID, qty)
	if err != nil {
		return fmt.Errorf("add cart line: %w", err)
	}
	return nil
}

// SetCartLineQuantity sets an absolute quantity; zero removes the line.
func (s *Store) SetCartLineQuantity(ctx context.Context, userID, variantID int64, qty int) error {
	if qty <= 0 {
		return s.DeleteCartLine(ctx, userID, variantID)
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO cart_lines (user_id, variant_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, variant_id) DO UPDATE SET quantity = $3`,
		userID, variantID, qty)
	if err != nil {
		return fmt.Errorf("set cart line quantity: %w", err)
	}
	return nil
}

func (s *Store) DeleteCartLine(ctx context.Context, userID, variantID int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM cart_lines WHERE user_id = $1 AND variant_id = $2`, userID, variantID)
	if err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}
	return nil
}

func (s *Store) ClearCart(ctx context.Context, userID int64) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM cart_lines WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear cart lines: %w", err)
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM cart_promos WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear cart promo: %w", err)
	}
	return nil
}

// GetCartPromoCode returns the code currently applied to the cart, or "".
func (s *Store) GetCartPromoCode(ctx context.Context, userID int64) (string, error) {
	var code string
	err := s.db.QueryRow(ctx, `SELECT code FROM cart_promos WHERE user_id = $1`, userID).Scan(&code)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get cart promo: %w", err)
	}
	return code, nil
}

func (s *Store) SetCartPromoCode(ctx context.Context, userID int64, code string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO cart_promos (user_id, code)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET code = $2, applied_at = now()`,
		userID, code)
	if err != nil {
		return fmt.Errorf("set cart promo: %w", err)
	}
	return nil
}

// ClearCartPromoCode removes the applied promo. Apply-time is only a preview,
// so no usage counter is touched.
func (s *Store) ClearCartPromoCode(ctx context.Context, userID int64) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM cart_promos WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear cart promo: %w", err)
	}
	return nil
}
