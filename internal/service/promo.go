package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/set-night/shopapp/internal/config"
	"github.com/set-night/shopapp/internal/domain"
	"github.com/set-night/shopapp/internal/repository"
)

type PromoService struct {
	db          *pgxpool.Pool
	store       *repository.Store
	referralPct int
}

func NewPromoService(db *pgxpool.Pool, store *repository.Store, cfg *config.Config) *PromoService {
	return &PromoService{db: db, store: store, referralPct: cfg.ReferralDiscountPct}
}

// NormalizeCode trims and upper-cases a promo code for case-insensitive lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Resolve validates a code and produces the discount descriptor the pricing
// calculator consumes. Special promos win over referral codes on collision.
// Resolution is a preview: no counters change here, redemption happens only
// at checkout.
func (s *PromoService) Resolve(ctx context.Context, code string, shopperID int64) (*domain.PromoApplication, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, domain.ErrPromoNotFound
	}

	promo, err := s.store.GetPromoByCode(ctx, code)
	if err == nil {
		return buildSpecialApplication(promo, time.Now())
	}
	if err != pgx.ErrNoRows {
		return nil, fmt.Errorf("get promo: %w", err)
	}

	owner, err := s.store.GetUserByReferralCode(ctx, code)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrPromoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get referral owner: %w", err)
	}
	return s.buildReferralApplication(owner, shopperID)
}

// buildSpecialApplication applies the expiry and usage guards of an admin
// promo at the given instant.
func buildSpecialApplication(promo domain.PromoCode, now time.Time) (*domain.PromoApplication, error) {
	if promo.Expired(now) {
		return nil, domain.ErrPromoExpired
	}
	if promo.Exhausted() {
		return nil, domain.ErrPromoUsageExhausted
	}
	return &domain.PromoApplication{
		Code:            promo.Code,
		Kind:            domain.PromoKindSpecial,
		DiscountPercent: promo.DiscountPercent,
		DiscountAmount:  promo.DiscountAmount,
		ExpiresAt:       promo.ExpiresAt,
	}, nil
}

// buildReferralApplication rejects self-referral: a staff member cannot apply
// their own code to their own cart. Ownership by user id is the rule; there is
// no broader identity graph to check against.
func (s *PromoService) buildReferralApplication(owner domain.User, shopperID int64) (*domain.PromoApplication, error) {
	if owner.ID == shopperID {
		return nil, domain.ErrPromoSelfReferral
	}
	pct := s.referralPct
	return &domain.PromoApplication{
		Code:            owner.ReferralCode,
		Kind:            domain.PromoKindReferral,
		DiscountPercent: &pct,
	}, nil
}

// CreateOptions describes an admin-created special promo. Exactly one of
// DiscountPercent/DiscountAmount must be set.
type CreateOptions struct {
	Code            string // empty means generate
	DiscountPercent *int
	DiscountAmount  *decimal.Decimal
	ExpiresAt       *time.Time
	UsageLimit      *int
}

func (s *PromoService) Create(ctx context.Context, actor *domain.User, opts CreateOptions) (domain.PromoCode, error) {
	if !actor.Role.Staff() {
		return domain.PromoCode{}, domain.ErrNotStaff
	}
	if (opts.DiscountPercent == nil) == (opts.DiscountAmount == nil) {
		return domain.PromoCode{}, fmt.Errorf("exactly one of percent or amount must be set")
	}
	if opts.DiscountPercent != nil && (*opts.DiscountPercent < 1 || *opts.DiscountPercent > 100) {
		return domain.PromoCode{}, fmt.Errorf("discount percent out of range: %d", *opts.DiscountPercent)
	}

	code := NormalizeCode(opts.Code)
	if code == "" {
		generated, err := generatePromoCode(config.PromoCodeLength)
		if err != nil {
			return domain.PromoCode{}, fmt.Errorf("generate promo code: %w", err)
		}
		code = generated
	}

	promo, err := s.store.CreatePromo(ctx, domain.PromoCode{
		Code:            code,
		DiscountPercent: opts.DiscountPercent,
		DiscountAmount:  opts.DiscountAmount,
		ExpiresAt:       opts.ExpiresAt,
		UsageLimit:      opts.UsageLimit,
		CreatedBy:       actor.ID,
	})
	if err != nil {
		return domain.PromoCode{}, fmt.Errorf("create promo: %w", err)
	}
	return promo, nil
}

const promoCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generatePromoCode(length int) (string, error) {
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(promoCodeCharset))))
		if err != nil {
			return "", err
		}
		code[i] = promoCodeCharset[n.Int64()]
	}
	return string(code), nil
}

// generateUniqueReferralCode retries generation until the code is free.
func generateUniqueReferralCode(ctx context.Context, store *repository.Store) (string, error) {
	for i := 0; i < 10; i++ {
		code, err := generatePromoCode(config.PromoCodeLength)
		if err != nil {
			return "", err
		}
		_, err = store.GetUserByReferralCode(ctx, code)
		if err == pgx.ErrNoRows {
			if _, err := store.GetPromoByCode(ctx, code); err == pgx.ErrNoRows {
				return code, nil
			} else if err != nil {
				return "", fmt.Errorf("check promo collision: %w", err)
			}
			continue
		}
		if err != nil {
			return "", fmt.Errorf("check referral code: %w", err)
		}
	}
	return "", fmt.Errorf("failed to generate unique referral code after 10 attempts")
}
