package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/set-night/shopapp/internal/domain"
)

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "SALE10", NormalizeCode("  sale10 "))
	assert.Equal(t, "SALE10", NormalizeCode("SALE10"))
	assert.Equal(t, "", NormalizeCode("   "))
}

func TestBuildSpecialApplication_Valid(t *testing.T) {
	pct := 10
	limit := 100
	promo := domain.PromoCode{
		Code:            "SALE10",
		DiscountPercent: &pct,
		UsageLimit:      &limit,
		UsedCount:       99,
	}

	app, err := buildSpecialApplication(promo, time.Now())

	require.NoError(t, err)
	assert.Equal(t, domain.PromoKindSpecial, app.Kind)
	assert.Equal(t, "SALE10", app.Code)
	require.NotNil(t, app.DiscountPercent)
	assert.Equal(t, 10, *app.DiscountPercent)
}

func TestBuildSpecialApplication_Expired(t *testing.T) {
	pct := 10
	expiry := time.Now().Add(-time.Hour)
	promo := domain.PromoCode{Code: "OLD", DiscountPercent: &pct, ExpiresAt: &expiry}

	_, err := buildSpecialApplication(promo, time.Now())

	assert.ErrorIs(t, err, domain.ErrPromoExpired)
}

func TestBuildSpecialApplication_Exhausted(t *testing.T) {
	amount := decimal.NewFromInt(500)
	limit := 100
	promo := domain.PromoCode{Code: "FULL", DiscountAmount: &amount, UsageLimit: &limit, UsedCount: 100}

	_, err := buildSpecialApplication(promo, time.Now())

	assert.ErrorIs(t, err, domain.ErrPromoUsageExhausted)
}

func TestBuildSpecialApplication_ExpiryWinsOverExhaustion(t *testing.T) {
	// Resolution order: expiry check first, matching the reject reasons staff
	// see in the admin flow.
	pct := 20
	expiry := time.Now().Add(-time.Minute)
	limit := 1
	promo := domain.PromoCode{Code: "BOTH", DiscountPercent: &pct, ExpiresAt: &expiry, UsageLimit: &limit, UsedCount: 1}

	_, err := buildSpecialApplication(promo, time.Now())

	assert.ErrorIs(t, err, domain.ErrPromoExpired)
}

func TestBuildSpecialApplication_NoLimitNeverExhausts(t *testing.T) {
	pct := 5
	promo := domain.PromoCode{Code: "EVERGREEN", DiscountPercent: &pct, UsedCount: 100000}

	_, err := buildSpecialApplication(promo, time.Now())

	require.NoError(t, err)
}

func TestBuildReferralApplication_SelfReferralRejected(t *testing.T) {
	s := &PromoService{referralPct: 5}
	owner := domain.User{ID: 42, Role: domain.RoleManager, ReferralCode: "REF42"}

	_, err := s.buildReferralApplication(owner, 42)

	assert.ErrorIs(t, err, domain.ErrPromoSelfReferral)
}

func TestBuildReferralApplication_OtherShopper(t *testing.T) {
	s := &PromoService{referralPct: 5}
	owner := domain.User{ID: 42, Role: domain.RoleAssistant, ReferralCode: "REF42"}

	app, err := s.buildReferralApplication(owner, 7)

	require.NoError(t, err)
	assert.Equal(t, domain.PromoKindReferral, app.Kind)
	assert.Equal(t, "REF42", app.Code)
	require.NotNil(t, app.DiscountPercent)
	assert.Equal(t, 5, *app.DiscountPercent)
	assert.Nil(t, app.DiscountAmount)
}

func TestCreateOptions_Validation(t *testing.T) {
	s := &PromoService{}
	staff := &domain.User{ID: 1, Role: domain.RoleManager}
	shopper := &domain.User{ID: 2, Role: domain.RoleShopper}
	pct := 10
	amount := decimal.NewFromInt(100)

	_, err := s.Create(context.Background(), shopper, CreateOptions{DiscountPercent: &pct})
	assert.ErrorIs(t, err, domain.ErrNotStaff)

	_, err = s.Create(context.Background(), staff, CreateOptions{})
	assert.Error(t, err, "neither percent nor amount set")

	_, err = s.Create(context.Background(), staff, CreateOptions{DiscountPercent: &pct, DiscountAmount: &amount})
	assert.Error(t, err, "both percent and amount set")

	bad := 150
	_, err = s.Create(context.Background(), staff, CreateOptions{DiscountPercent: &bad})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNotStaff))
}

func TestGeneratePromoCode(t *testing.T) {
	code, err := generatePromoCode(8)

	require.NoError(t, err)
	assert.Len(t, code, 8)
	for _, r := range code {
		assert.Contains(t, promoCodeCharset, string(r))
	}
}
