package repository

import (
	"context"
	"fmt"

	"github.com/set-night/shopapp/internal/domain"
)

const productColumns = `id, title, description, category, image_url, price, visible, created_at, updated_at`

func scanProduct(row interface{ Scan(dest ...any) error }) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Category, &p.ImageURL,
		&p.Price, &p.Visible, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *Store) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	row := s.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return scanProduct(row)
}

func (s *Store) ListVisibleProducts(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE visible
		ORDER BY id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Store) CountVisibleProducts(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM products WHERE visible`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

// ListAllVisibleProducts returns every visible product, for the attention scan.
func (s *Store) ListAllVisibleProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE visible ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list all products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Store) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO products (title, description, category, image_url, price, visible)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+productColumns,
		p.Title, p.Description, p.Category, p.ImageURL, p.Price, p.Visible)
	return scanProduct(row)
}

const variantColumns = `id, product_id, size, color, price, stock_quantity`

func scanVariant(row interface{ Scan(dest ...any) error }) (domain.Variant, error) {
	var v domain.Variant
	err := row.Scan(&v.ID, &v.ProductID, &v.Size, &v.Color, &v.Price, &v.StockQuantity)
	return v, err
}

func (s *Store) GetVariant(ctx context.Context, id int64) (domain.Variant, error) {
	row := s.db.QueryRow(ctx, `SELECT `+variantColumns+` FROM variants WHERE id = $1`, id)
	return scanVariant(row)
}

func (s *Store) ListVariantsByProduct(ctx context.Context, productID int64) ([]domain.Variant, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+variantColumns+` FROM variants
		WHERE product_id = $1
		ORDER BY id`, productID)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	var variants []domain.Variant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

// ListAllVariants returns every variant of visible products, for the attention scan.
func (s *Store) ListAllVariants(ctx context.Context) ([]domain.Variant, error) {
	rows, err := s.db.Query(ctx, `
		SELECT v.id, v.product_id, v.size, v.color, v.price, v.stock_quantity
		FROM variants v
		JOIN products p ON p.id = v.product_id AND p.visible
		ORDER BY v.id`)
	if err != nil {
		return nil, fmt.Errorf("list all variants: %w", err)
	}
	defer rows.Close()

	var variants []domain.Variant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

func (s *Store) CreateVariant(ctx context.Context, v domain.Variant) (domain.Variant, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO variants (product_id, size, color, price, stock_quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+variantColumns,
		v.ProductID, v.Size, v.Color, v.Price, v.StockQuantity)
	return scanVariant(row)
}

// DecrementVariantStock reduces stock by qty only if enough remains. Returns
// false when the guard fails, so checkout can surface an out-of-stock error
// instead of going negative.
func (s *Store) DecrementVariantStock(ctx context.Context, variantID int64, qty int) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE variants SET stock_quantity = stock_quantity - $2
		WHERE id = $1 AND stock_quantity >= $2`,
		variantID, qty)
	if err != nil {
		return false, fmt.Errorf("decrement stock: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
