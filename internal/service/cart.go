package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/set-night/shopapp/internal/config"
	"github.com/set-night/shopapp/internal/domain"
	"github.com/set-night/shopapp/internal/pricing"
	"github.com/set-night/shopapp/internal/repository"
)

type CartService struct {
	db     *pgxpool.Pool
	store  *repository.Store
	promos *PromoService
	params pricing.Params
}

func NewCartService(db *pgxpool.Pool, store *repository.Store, promos *PromoService, cfg *config.Config) *CartService {
	return &CartService{
		db:     db,
		store:  store,
		promos: promos,
		params: pricing.Params{
			DeliveryFee:           cfg.DeliveryFee,
			FreeDeliveryThreshold: cfg.FreeDeliveryThreshold,
		},
	}
}

// CartView is a priced snapshot of the shopper's cart. PromoErr carries the
// rejection reason when an applied code no longer resolves; totals are then
// computed without a discount, but the reason is never swallowed.
type CartView struct {
	Cart     domain.Cart
	Totals   domain.Totals
	PromoErr error
}

// View loads the cart and recomputes the derived totals. Nothing monetary is
// ever stored, so a price or stock change in the catalog shows up on the next
// read.
func (s *CartService) View(ctx context.Context, user *domain.User, hasDeliveryAddress bool) (CartView, error) {
	lines, err := s.store.ListCartLines(ctx, user.ID)
	if err != nil {
		return CartView{}, fmt.Errorf("load cart: %w", err)
	}

	cart := domain.Cart{Lines: lines}

	var promoErr error
	code, err := s.store.GetCartPromoCode(ctx, user.ID)
	if err != nil {
		return CartView{}, fmt.Errorf("load cart promo: %w", err)
	}
	if code != "" {
		app, err := s.promos.Resolve(ctx, code, user.ID)
		if err == nil {
			cart.Promo = app
		} else {
			promoErr = err
		}
	}

	totals := pricing.Compute(cart.Lines, cart.Promo, hasDeliveryAddress, s.params)
	return CartView{Cart: cart, Totals: totals, PromoErr: promoErr}, nil
}

// Add puts qty units of a variant into the cart after checking the variant
// exists and currently has stock.
func (s *CartService) Add(ctx context.Context, user *domain.User, variantID int64, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", qty)
	}
	variant, err := s.store.GetVariant(ctx, variantID)
	if err == pgx.ErrNoRows {
		return domain.ErrVariantNotFound
	}
	if err != nil {
		return fmt.Errorf("get variant: %w", err)
	}
	if !variant.InStock() {
		return domain.ErrOutOfStock
	}
	return s.store.AddCartLine(ctx, user.ID, variantID, qty)
}

// SetQuantity sets an absolute quantity; zero removes the line.
func (s *CartService) SetQuantity(ctx context.Context, user *domain.User, variantID int64, qty int) error {
	if qty < 0 {
		return fmt.Errorf("quantity must not be negative, got %d", qty)
	}
	return s.store.SetCartLineQuantity(ctx, user.ID, variantID, qty)
}

func (s *CartService) Remove(ctx context.Context, user *domain.User, variantID int64) error {
	return s.store.DeleteCartLine(ctx, user.ID, variantID)
}

func (s *CartService) Clear(ctx context.Context, user *domain.User) error {
	return s.store.ClearCart(ctx, user.ID)
}

// ApplyPromo previews a code against the cart and stores it on success.
// No usage counter moves until checkout.
func (s *CartService) ApplyPromo(ctx context.Context, user *domain.User, code string) (*domain.PromoApplication, error) {
	app, err := s.promos.Resolve(ctx, code, user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetCartPromoCode(ctx, user.ID, app.Code); err != nil {
		return nil, fmt.Errorf("store cart promo: %w", err)
	}
	return app, nil
}

func (s *CartService) ClearPromo(ctx context.Context, user *domain.User) error {
	return s.store.ClearCartPromoCode(ctx, user.ID)
}
