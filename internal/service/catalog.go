package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/set-night/shopapp/internal/config"
	"github.com/set-night/shopapp/internal/domain"
	"github.com/set-night/shopapp/internal/repository"
)

type CatalogService struct {
	store *repository.Store
}

func NewCatalogService(store *repository.Store) *CatalogService {
	return &CatalogService{store: store}
}

// Page returns one page of visible products and the total count.
func (s *CatalogService) Page(ctx context.Context, page int) ([]domain.Product, int, error) {
	if page < 0 {
		page = 0
	}
	products, err := s.store.ListVisibleProducts(ctx, config.ProductsPerPage, page*config.ProductsPerPage)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.CountVisibleProducts(ctx)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// ProductCard returns a product with its variants.
func (s *CatalogService) ProductCard(ctx context.Context, productID int64) (domain.Product, []domain.Variant, error) {
	product, err := s.store.GetProduct(ctx, productID)
	if err == pgx.ErrNoRows {
		return domain.Product{}, nil, domain.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, nil, fmt.Errorf("get product: %w", err)
	}
	variants, err := s.store.ListVariantsByProduct(ctx, productID)
	if err != nil {
		return domain.Product{}, nil, err
	}
	return product, variants, nil
}

// CreateFromDraft stores a scraped product card as a hidden product for staff
// to review and fill in.
func (s *CatalogService) CreateFromDraft(ctx context.Context, actor *domain.User, draft *ProductDraft) (domain.Product, error) {
	if !actor.Role.Staff() {
		return domain.Product{}, domain.ErrNotStaff
	}
	product, err := s.store.CreateProduct(ctx, domain.Product{
		Title:       draft.Title,
		Description: draft.Description,
		ImageURL:    draft.ImageURL,
		Price:       draft.Price,
		Visible:     false,
	})
	if err != nil {
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}
