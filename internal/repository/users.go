package repository

import (
	"context"
	"fmt"

	"github.com/set-night/shopapp/internal/domain"
)

const userColumns = `id, telegram_id, first_name, username, role, COALESCE(referral_code, ''), referral_sales_count, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...any) error }) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.TelegramID, &u.FirstName, &u.Username, &u.Role,
		&u.ReferralCode, &u.ReferralSalesCount, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (s *Store) GetUserByTelegramID(ctx context.Context, telegramID int64) (domain.User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID)
	return scanUser(row)
}

func (s *Store) GetUserByReferralCode(ctx context.Context, code string) (domain.User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE referral_code = $1`, code)
	return scanUser(row)
}

func (s *Store) CreateUser(ctx context.Context, telegramID int64, firstName, username string, role domain.Role) (domain.User, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO users (telegram_id, first_name, username, role)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		telegramID, firstName, username, role)
	return scanUser(row)
}

func (s *Store) UpdateUserInfo(ctx context.Context, id int64, firstName, username string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE users SET first_name = $2, username = $3, updated_at = now()
		WHERE id = $1`,
		id, firstName, username)
	if err != nil {
		return fmt.Errorf("update user info: %w", err)
	}
	return nil
}

// PromoteUserToStaff sets a staff role and assigns the referral code used for
// sale attribution.
func (s *Store) PromoteUserToStaff(ctx context.Context, id int64, role domain.Role, referralCode string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE users SET role = $2, referral_code = $3, updated_at = now()
		WHERE id = $1`,
		id, role, referralCode)
	if err != nil {
		return fmt.Errorf("promote user: %w", err)
	}
	return nil
}

func (s *Store) IncrementReferralSales(ctx context.Context, id int64) error {
	_, err := s.db.Exec(ctx, `
		UPDATE users SET referral_sales_count = referral_sales_count + 1, updated_at = now()
		WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment referral sales: %w", err)
	}
	return nil
}
