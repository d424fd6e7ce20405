package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/set-night/shopapp/internal/config"
	"github.com/set-night/shopapp/internal/domain"
	"github.com/set-night/shopapp/internal/pricing"
	"github.com/set-night/shopapp/internal/repository"
)

type OrderService struct {
	db       *pgxpool.Pool
	store    *repository.Store
	promos   *PromoService
	notifier Notifier
	params   pricing.Params

	// Per-order serialization for transitions and per-code serialization for
	// redemptions, so concurrent staff clicks and checkouts lose cleanly
	// instead of overwriting each other.
	locks *keyedLocks
}

func NewOrderService(db *pgxpool.Pool, store *repository.Store, promos *PromoService, notifier Notifier, cfg *config.Config) *OrderService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &OrderService{
		db:       db,
		store:    store,
		promos:   promos,
		notifier: notifier,
		params: pricing.Params{
			DeliveryFee:           cfg.DeliveryFee,
			FreeDeliveryThreshold: cfg.FreeDeliveryThreshold,
		},
		locks: newKeyedLocks(),
	}
}

// CheckoutInput carries the delivery details collected in the checkout
// conversation.
type CheckoutInput struct {
	FIO             string
	Phone           string
	DeliveryAddress string
}

// Checkout turns the shopper's cart into an order in one transaction:
// snapshot the in-stock lines at today's prices, decrement stock, redeem the
// promo (if special), attribute the referral (if referral), clear the cart.
// A promo is never redeemed without a corresponding order.
func (s *OrderService) Checkout(ctx context.Context, user *domain.User, in CheckoutInput) (domain.Order, error) {
	if in.FIO == "" || in.DeliveryAddress == "" {
		return domain.Order{}, fmt.Errorf("fio and delivery address are required")
	}

	lines, err := s.store.ListCartLines(ctx, user.ID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("load cart: %w", err)
	}

	inStock := make([]domain.CartLine, 0, len(lines))
	for _, l := range lines {
		if l.InStock {
			inStock = append(inStock, l)
		}
	}
	if len(inStock) == 0 {
		return domain.Order{}, domain.ErrCartEmpty
	}

	var promo *domain.PromoApplication
	code, err := s.store.GetCartPromoCode(ctx, user.ID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("load cart promo: %w", err)
	}
	if code != "" {
		promo, err = s.promos.Resolve(ctx, code, user.ID)
		if err != nil {
			// The applied code stopped resolving since it was previewed. The
			// typed reason goes back to the caller, who clears the code and
			// retries; checkout without the code stays available.
			return domain.Order{}, err
		}
		if promo.Kind == domain.PromoKindSpecial {
			s.locks.Lock("promo:" + promo.Code)
			defer s.locks.Unlock("promo:" + promo.Code)
		}
	}

	totals := pricing.Compute(inStock, promo, true, s.params)

	order := domain.Order{
		PublicID:        uuid.New(),
		UserID:          user.ID,
		Status:          domain.OrderStatusAwaitingPayment,
		TotalAmount:     totals.PayableTotal,
		FIO:             in.FIO,
		Phone:           in.Phone,
		DeliveryAddress: in.DeliveryAddress,
	}
	for _, l := range inStock {
		order.Lines = append(order.Lines, domain.OrderLine{
			VariantID: l.VariantID,
			ProductID: l.ProductID,
			Title:     l.Title,
			Size:      l.Size,
			Color:     l.Color,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	if promo != nil {
		if promo.Kind == domain.PromoKindSpecial {
			order.PromoCode = promo.Code
		} else {
			order.ReferralCode = promo.Code
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	qtx := s.store.WithTx(tx)

	for _, l := range inStock {
		ok, err := qtx.DecrementVariantStock(ctx, l.VariantID, l.Quantity)
		if err != nil {
			return domain.Order{}, err
		}
		if !ok {
			// Stock dropped between cart view and submission.
			return domain.Order{}, domain.ErrOutOfStock
		}
	}

	created, err := qtx.CreateOrder(ctx, order)
	if err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	if promo != nil {
		switch promo.Kind {
		case domain.PromoKindSpecial:
			promoRow, err := qtx.GetPromoByCode(ctx, promo.Code)
			if err != nil {
				return domain.Order{}, fmt.Errorf("reload promo: %w", err)
			}
			ok, err := qtx.RedeemPromo(ctx, promoRow.ID, created.ID)
			if err != nil {
				return domain.Order{}, err
			}
			if !ok {
				// Another instance exhausted the code between resolve and
				// redeem. The caller retries against fresh state.
				return domain.Order{}, domain.ErrConcurrentModification
			}
		case domain.PromoKindReferral:
			owner, err := qtx.GetUserByReferralCode(ctx, promo.Code)
			if err != nil {
				return domain.Order{}, fmt.Errorf("reload referral owner: %w", err)
			}
			if err := qtx.IncrementReferralSales(ctx, owner.ID); err != nil {
				return domain.Order{}, err
			}
		}
	}

	if err := qtx.ClearCart(ctx, user.ID); err != nil {
		return domain.Order{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Order{}, fmt.Errorf("commit: %w", err)
	}

	s.notifier.OrderCreated(created)
	return created, nil
}

// Transition moves an order along the lifecycle graph. Shoppers may only
// confirm receipt of their own delivered order; everything else is staff.
// An illegal edge fails with InvalidTransitionError carrying the canonical
// current status and mutates nothing.
func (s *OrderService) Transition(ctx context.Context, orderID int64, to domain.OrderStatus, actor *domain.User) (domain.Order, error) {
	key := fmt.Sprintf("order:%d", orderID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	qtx := s.store.WithTx(tx)

	order, err := qtx.GetOrderForUpdate(ctx, orderID)
	if err == pgx.ErrNoRows {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("lock order: %w", err)
	}

	if !actor.Role.Staff() {
		shopperConfirmsReceipt := to == domain.OrderStatusReceived && order.UserID == actor.ID
		if !shopperConfirmsReceipt {
			return domain.Order{}, domain.ErrNotStaff
		}
	}

	if !domain.CanTransition(order.Status, to) {
		return domain.Order{}, &domain.InvalidTransitionError{Current: order.Status, Requested: to}
	}

	if err := qtx.UpdateOrderStatus(ctx, orderID, to); err != nil {
		return domain.Order{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Order{}, fmt.Errorf("commit: %w", err)
	}

	from := order.Status
	order.Status = to
	s.notifier.OrderStatusChanged(order, from)
	return order, nil
}

// AttachProof stores or replaces the payment proof. Allowed while the order
// is awaiting payment or already marked paid (covers replacing a rejected
// screenshot); the first proof moves the order to paid.
func (s *OrderService) AttachProof(ctx context.Context, orderID int64, proofURL string, actor *domain.User) (domain.Order, error) {
	key := fmt.Sprintf("order:%d", orderID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	qtx := s.store.WithTx(tx)

	order, err := qtx.GetOrderForUpdate(ctx, orderID)
	if err == pgx.ErrNoRows {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("lock order: %w", err)
	}

	if order.UserID != actor.ID && !actor.Role.Staff() {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if !domain.CanAttachProof(order.Status) {
		return domain.Order{}, domain.ErrProofNotAllowed
	}

	if err := qtx.UpdateOrderProof(ctx, orderID, proofURL); err != nil {
		return domain.Order{}, err
	}
	if order.Status == domain.OrderStatusAwaitingPayment {
		if err := qtx.UpdateOrderStatus(ctx, orderID, domain.OrderStatusPaid); err != nil {
			return domain.Order{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Order{}, fmt.Errorf("commit: %w", err)
	}

	order.PaymentProofURL = proofURL
	if order.Status == domain.OrderStatusAwaitingPayment {
		order.Status = domain.OrderStatusPaid
	}
	s.notifier.ProofUploaded(order)
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, orderID int64) (domain.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err == pgx.ErrNoRows {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

func (s *OrderService) GetByPublicID(ctx context.Context, publicID uuid.UUID) (domain.Order, error) {
	order, err := s.store.GetOrderByPublicID(ctx, publicID)
	if err == pgx.ErrNoRows {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

func (s *OrderService) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Order, error) {
	return s.store.ListOrdersByUser(ctx, userID, limit, offset)
}

// ListActive returns non-terminal orders for the staff work list.
func (s *OrderService) ListActive(ctx context.Context, actor *domain.User, limit int) ([]domain.Order, error) {
	if !actor.Role.Staff() {
		return nil, domain.ErrNotStaff
	}
	return s.store.ListActiveOrders(ctx, limit)
}
