package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/set-night/shopapp/internal/domain"
	"github.com/set-night/shopapp/internal/repository"
)

type UserService struct {
	db    *pgxpool.Pool
	store *repository.Store
}

func NewUserService(db *pgxpool.Pool, store *repository.Store) *UserService {
	return &UserService{db: db, store: store}
}

// FindOrCreate resolves the Telegram account to a shop user, creating a
// shopper record on first contact. Admin-configured accounts come in as
// managers so the role travels explicitly with every call.
func (s *UserService) FindOrCreate(ctx context.Context, telegramID int64, firstName, username string, isAdmin bool) (*domain.User, bool, error) {
	row, err := s.store.GetUserByTelegramID(ctx, telegramID)
	if err == nil {
		if isAdmin && !row.Role.Staff() {
			if err := s.promote(ctx, &row, domain.RoleManager); err != nil {
				return nil, false, err
			}
		}
		return &row, false, nil
	}
	if err != pgx.ErrNoRows {
		return nil, false, fmt.Errorf("get user: %w", err)
	}

	role := domain.RoleShopper
	if isAdmin {
		role = domain.RoleManager
	}
	created, err := s.store.CreateUser(ctx, telegramID, firstName, username, role)
	if err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	if role.Staff() {
		if err := s.promote(ctx, &created, role); err != nil {
			return nil, false, err
		}
	}
	return &created, true, nil
}

// promote assigns a staff role and the referral code used for attribution.
func (s *UserService) promote(ctx context.Context, u *domain.User, role domain.Role) error {
	code := u.ReferralCode
	if code == "" {
		generated, err := generateUniqueReferralCode(ctx, s.store)
		if err != nil {
			return fmt.Errorf("generate referral code: %w", err)
		}
		code = generated
	}
	if err := s.store.PromoteUserToStaff(ctx, u.ID, role, code); err != nil {
		return fmt.Errorf("promote user: %w", err)
	}
	u.Role = role
	u.ReferralCode = code
	return nil
}

// PromoteToStaff makes a user an assistant or manager. Manager-only.
func (s *UserService) PromoteToStaff(ctx context.Context, actor *domain.User, targetTelegramID int64, role domain.Role) (*domain.User, error) {
	if actor.Role != domain.RoleManager {
		return nil, domain.ErrNotStaff
	}
	if !role.Staff() {
		return nil, fmt.Errorf("role %s is not a staff role", role)
	}
	target, err := s.store.GetUserByTelegramID(ctx, targetTelegramID)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get target user: %w", err)
	}
	if err := s.promote(ctx, &target, role); err != nil {
		return nil, err
	}
	return &target, nil
}

func (s *UserService) UpdateInfo(ctx context.Context, userID int64, firstName, username string) error {
	return s.store.UpdateUserInfo(ctx, userID, firstName, username)
}
