package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/streax-app/streax/internal/domain"
)

// ─── Task Registry Operations ───────────────────────────────────────────────

const taskColumns = `id, user_id, name, type, base_xp, required_daily, created_at`

// InsertTask stores a new task.
func (q queries) InsertTask(ctx context.Context, t domain.Task) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, name, type, base_xp, required_daily)
		VALUES (?, ?, ?, ?, ?, ?)
	`, t.ID, t.UserID, t.Name, string(t.Type), t.BaseXP, boolInt(t.RequiredDaily))
	if err != nil {
		return fmt.Errorf("task insert: %w", err)
	}
	return nil
}

// GetTask returns a live (non-deleted) task, or nil when unknown.
func (q queries) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	row := q.q.QueryRowContext(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE id = ? AND deleted = 0
	`, id)
	t, err := scanTask(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("task get: %w", err)
	}
	return t, nil
}

// TaskIDTaken reports whether a row with the id exists at all, deleted
// rows included. Soft-deleted ids stay reserved for log resolution and
// must never be re-registered.
func (q queries) TaskIDTaken(ctx context.Context, id string) (bool, error) {
	var n int
	err := q.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tasks WHERE id = ?
	`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("task id check: %w", err)
	}
	return n > 0, nil
}

// ListTasks returns a user's live tasks in stable insertion order.
// limit ≤ 0 means no limit.
func (q queries) ListTasks(ctx context.Context, userID string, limit int) ([]domain.Task, error) {
	if limit <= 0 {
		limit = -1 // SQLite: LIMIT -1 is unbounded
	}
	rows, err := q.q.QueryContext(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE user_id = ? AND deleted = 0
		ORDER BY rowid
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("task list: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("task list: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// UpdateTask applies a patch to a live task and returns the updated row,
// or nil when the id is unknown. Historical log snapshots are untouched.
func (q queries) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	cur, err := q.GetTask(ctx, id)
	if err != nil || cur == nil {
		return nil, err
	}

	if patch.Name != nil {
		cur.Name = *patch.Name
	}
	if patch.Type != nil {
		cur.Type = *patch.Type
	}
	if patch.BaseXP != nil {
		cur.BaseXP = *patch.BaseXP
	}
	if patch.RequiredDaily != nil {
		cur.RequiredDaily = *patch.RequiredDaily
	}

	_, err = q.q.ExecContext(ctx, `
		UPDATE tasks SET name = ?, type = ?, base_xp = ?, required_daily = ?
		WHERE id = ? AND deleted = 0
	`, cur.Name, string(cur.Type), cur.BaseXP, boolInt(cur.RequiredDaily), id)
	if err != nil {
		return nil, fmt.Errorf("task update: %w", err)
	}
	return cur, nil
}

// SoftDeleteTask hides a task from listings and future processing while
// keeping the row for historical log resolution. Returns false when the
// id is unknown or already deleted.
func (q queries) SoftDeleteTask(ctx context.Context, id string) (bool, error) {
	res, err := q.q.ExecContext(ctx, `
		UPDATE tasks SET deleted = 1 WHERE id = ? AND deleted = 0
	`, id)
	if err != nil {
		return false, fmt.Errorf("task delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("task delete: %w", err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	var typ string
	var required int
	var createdStr string
	if err := row.Scan(&t.ID, &t.UserID, &t.Name, &typ, &t.BaseXP, &required, &createdStr); err != nil {
		return nil, err
	}
	t.Type = domain.TaskType(typ)
	t.RequiredDaily = required == 1
	t.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", createdStr)
	return &t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
