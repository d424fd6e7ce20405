package repository

import (
	"context"
	"fmt"
)

// CheckAndIncrementRateLimit bumps the counter for the current minute window
// and returns the new count. Old windows are cleaned opportunistically.
func (s *Store) CheckAndIncrementRateLimit(ctx context.Context, chatID int64) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `
		INSERT INTO rate_limits (chat_id, window_start, count)
		VALUES ($1, date_trunc('minute', now()), 1)
		ON CONFLICT (chat_id, window_start) DO UPDATE SET count = rate_limits.count + 1
		RETURNING count`, chatID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("increment rate limit: %w", err)
	}
	return count, nil
}

// CleanupRateLimits drops windows older than an hour.
func (s *Store) CleanupRateLimits(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM rate_limits WHERE window_start < now() - interval '1 hour'`); err != nil {
		return fmt.Errorf("cleanup rate limits: %w", err)
	}
	return nil
}
