package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/streax-app/streax/internal/domain"
)

// ─── User Stats Operations ──────────────────────────────────────────────────

// CreateStats provisions a stats row at level 1 with zero XP and streak.
// Returns false when the user was already provisioned.
func (q queries) CreateStats(ctx context.Context, userID string) (bool, error) {
	res, err := q.q.ExecContext(ctx, `
		INSERT OR IGNORE INTO user_stats (user_id, level) VALUES (?, 1)
	`, userID)
	if err != nil {
		return false, fmt.Errorf("stats insert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("stats insert: %w", err)
	}
	return n > 0, nil
}

// GetStats returns a user's stats, or nil when the user was never
// provisioned.
func (q queries) GetStats(ctx context.Context, userID string) (*domain.Stats, error) {
	row := q.q.QueryRowContext(ctx, `
		SELECT user_id, level, xp, streak_days, consecutive_misses, last_processed_day
		FROM user_stats WHERE user_id = ?
	`, userID)

	var s domain.Stats
	var lastDay sql.NullString
	if err := row.Scan(&s.UserID, &s.Level, &s.XP, &s.StreakDays, &s.ConsecutiveMisses, &lastDay); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("stats get: %w", err)
	}
	if lastDay.Valid && lastDay.String != "" {
		d, err := domain.ParseDate(lastDay.String)
		if err != nil {
			return nil, fmt.Errorf("stats get: %w", err)
		}
		s.LastProcessedDay = d
	}
	return &s, nil
}

// UpdateStats writes back the full aggregate.
func (q queries) UpdateStats(ctx context.Context, s domain.Stats) error {
	var lastDay any
	if !s.LastProcessedDay.IsZero() {
		lastDay = s.LastProcessedDay.String()
	}
	_, err := q.q.ExecContext(ctx, `
		UPDATE user_stats
		SET level = ?, xp = ?, streak_days = ?, consecutive_misses = ?, last_processed_day = ?
		WHERE user_id = ?
	`, s.Level, s.XP, s.StreakDays, s.ConsecutiveMisses, lastDay, s.UserID)
	if err != nil {
		return fmt.Errorf("stats update: %w", err)
	}
	return nil
}
