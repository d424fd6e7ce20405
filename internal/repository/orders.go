package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/set-night/shopapp/internal/domain"
)

const orderColumns = `id, public_id, user_id, status, total_amount, promo_code, referral_code,
	fio, phone, delivery_address, payment_proof_url, created_at, updated_at`

func scanOrder(row interface{ Scan(dest ...any) error }) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.PublicID, &o.UserID, &o.Status, &o.TotalAmount,
		&o.PromoCode, &o.ReferralCode, &o.FIO, &o.Phone, &o.DeliveryAddress,
		&o.PaymentProofURL, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (s *Store) CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO orders (public_id, user_id, status, total_amount, promo_code, referral_code,
		                    fio, phone, delivery_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+orderColumns,
		o.PublicID, o.UserID, o.Status, o.TotalAmount, o.PromoCode, o.ReferralCode,
		o.FIO, o.Phone, o.DeliveryAddress)
	created, err := scanOrder(row)
	if err != nil {
		return domain.Order{}, err
	}

	for _, l := range o.Lines {
		_, err := s.db.Exec(ctx, `
			INSERT INTO order_lines (order_id, variant_id, product_id, title, size, color, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			created.ID, l.VariantID, l.ProductID, l.Title, l.Size, l.Color, l.Quantity, l.UnitPrice)
		if err != nil {
			return domain.Order{}, fmt.Errorf("insert order line: %w", err)
		}
	}
	created.Lines = o.Lines
	return created, nil
}

func (s *Store) listOrderLines(ctx context.Context, orderID int64) ([]domain.OrderLine, error) {
	rows, err := s.db.Query(ctx, `
		SELECT variant_id, product_id, title, size, color, quantity, unit_price
		FROM order_lines WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.VariantID, &l.ProductID, &l.Title, &l.Size, &l.Color,
			&l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (s *Store) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	row := s.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err != nil {
		return domain.Order{}, err
	}
	o.Lines, err = s.listOrderLines(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (s *Store) GetOrderByPublicID(ctx context.Context, publicID uuid.UUID) (domain.Order, error) {
	row := s.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE public_id = $1`, publicID)
	o, err := scanOrder(row)
	if err != nil {
		return domain.Order{}, err
	}
	o.Lines, err = s.listOrderLines(ctx, o.ID)
	if err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

// GetOrderForUpdate locks the order row for the rest of the transaction.
// Status transitions re-read under this lock so concurrent staff actions
// serialize at the database as well as in process.
func (s *Store) GetOrderForUpdate(ctx context.Context, id int64) (domain.Order, error) {
	row := s.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
	return scanOrder(row)
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	_, err := s.db.Exec(ctx, `
		UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`,
		id, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}

func (s *Store) UpdateOrderProof(ctx context.Context, id int64, proofURL string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE orders SET payment_proof_url = $2, updated_at = now() WHERE id = $1`,
		id, proofURL)
	if err != nil {
		return fmt.Errorf("update order proof: %w", err)
	}
	return nil
}

func (s *Store) ListOrdersByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Order, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders by user: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ListActiveOrders returns non-terminal orders, newest first, bounded by limit.
// The attention scan reads these rather than the full historical table.
func (s *Store) ListActiveOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE status NOT IN ('received', 'cancelled')
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list active orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
