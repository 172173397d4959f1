package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/streax-app/streax/internal/domain"
)

// ─── Completion Log Operations ──────────────────────────────────────────────
// Rows are only ever appended, never mutated. The UNIQUE(user_id, task_id,
// day) constraint is the hard backstop for the one-entry-per-day invariant.

// InsertLog appends one completion record and fills in its row id.
func (q queries) InsertLog(ctx context.Context, e *domain.LogEntry) error {
	res, err := q.q.ExecContext(ctx, `
		INSERT INTO task_logs (user_id, task_id, task_name, day, xp_awarded, counted, streak_at_time)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.UserID, e.TaskID, e.TaskName, e.Day.String(), e.XPAwarded, boolInt(e.Counted), e.StreakAtTime)
	if err != nil {
		return fmt.Errorf("log insert: %w", err)
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("log insert id: %w", err)
	}
	return nil
}

// HasLog reports whether an entry already exists for (user, task, day).
func (q queries) HasLog(ctx context.Context, userID, taskID string, day domain.Date) (bool, error) {
	var n int
	err := q.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM task_logs WHERE user_id = ? AND task_id = ? AND day = ?
	`, userID, taskID, day.String()).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("log exists: %w", err)
	}
	return n > 0, nil
}

// ListLogs returns a user's entries most-recent-first.
// limit ≤ 0 means no limit.
func (q queries) ListLogs(ctx context.Context, userID string, limit int) ([]domain.LogEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := q.q.QueryContext(ctx, `
		SELECT id, user_id, task_id, task_name, day, xp_awarded, counted, streak_at_time, created_at
		FROM task_logs
		WHERE user_id = ?
		ORDER BY day DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("log list: %w", err)
	}
	defer rows.Close()

	var entries []domain.LogEntry
	for rows.Next() {
		var e domain.LogEntry
		var dayStr, createdStr string
		var counted int
		if err := rows.Scan(&e.ID, &e.UserID, &e.TaskID, &e.TaskName, &dayStr,
			&e.XPAwarded, &counted, &e.StreakAtTime, &createdStr); err != nil {
			return nil, fmt.Errorf("log list: %w", err)
		}
		e.Day, err = domain.ParseDate(dayStr)
		if err != nil {
			return nil, fmt.Errorf("log list: %w", err)
		}
		e.Counted = counted == 1
		e.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ActivityCounts aggregates the log into the day → completion-count map.
// This is the authoritative rebuild path for the streak grid.
func (q queries) ActivityCounts(ctx context.Context, userID string) (domain.ActivityMap, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT day, COUNT(*) FROM task_logs WHERE user_id = ? GROUP BY day
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("activity counts: %w", err)
	}
	defer rows.Close()

	m := make(domain.ActivityMap)
	for rows.Next() {
		var day string
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			return nil, fmt.Errorf("activity counts: %w", err)
		}
		m[day] = n
	}
	return m, rows.Err()
}
