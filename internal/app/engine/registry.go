package engine

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/streax-app/streax/internal/domain"
)

// ─── Task Registry ──────────────────────────────────────────────────────────

func validateTaskFields(name string, typ domain.TaskType, baseXP int) error {
	if strings.TrimSpace(name) == "" {
		return domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if !typ.IsValid() {
		return domain.ValidationError{Field: "type", Reason: "must be small, medium, or large"}
	}
	if baseXP <= 0 {
		return domain.ValidationError{Field: "base_xp", Reason: "must be positive"}
	}
	return nil
}

// CreateTask registers a task for a user.
func (s *Service) CreateTask(ctx context.Context, userID, name string, typ domain.TaskType, baseXP int, requiredDaily bool) (domain.Task, error) {
	if typ == "" {
		typ = domain.TaskSmall
	}
	if err := validateTaskFields(name, typ, baseXP); err != nil {
		return domain.Task{}, err
	}

	task := domain.Task{
		ID:            uuid.NewString(),
		UserID:        userID,
		Name:          strings.TrimSpace(name),
		Type:          typ,
		BaseXP:        baseXP,
		RequiredDaily: requiredDaily,
		CreatedAt:     time.Now(),
	}
	if err := s.db.InsertTask(ctx, task); err != nil {
		return domain.Task{}, domain.StorageError("create task", err)
	}
	return task, nil
}

// ListTasks returns a user's tasks in stable insertion order.
func (s *Service) ListTasks(ctx context.Context, userID string, limit int) ([]domain.Task, error) {
	tasks, err := s.db.ListTasks(ctx, userID, limit)
	if err != nil {
		return nil, domain.StorageError("list tasks", err)
	}
	return tasks, nil
}

// UpdateTask patches display fields or the XP value of a task. Changing
// base XP only affects future awards; history keeps its frozen snapshots.
func (s *Service) UpdateTask(ctx context.Context, taskID string, patch domain.TaskPatch) (domain.Task, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return domain.Task{}, domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if patch.Type != nil && !patch.Type.IsValid() {
		return domain.Task{}, domain.ValidationError{Field: "type", Reason: "must be small, medium, or large"}
	}
	if patch.BaseXP != nil && *patch.BaseXP <= 0 {
		return domain.Task{}, domain.ValidationError{Field: "base_xp", Reason: "must be positive"}
	}

	task, err := s.db.UpdateTask(ctx, taskID, patch)
	if err != nil {
		return domain.Task{}, domain.StorageError("update task", err)
	}
	if task == nil {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	return *task, nil
}

// DeleteTask removes a task from listings and future processing. Log
// history survives: entries reference frozen snapshots, not live rows.
func (s *Service) DeleteTask(ctx context.Context, taskID string) error {
	ok, err := s.db.SoftDeleteTask(ctx, taskID)
	if err != nil {
		return domain.StorageError("delete task", err)
	}
	if !ok {
		return domain.ErrTaskNotFound
	}
	return nil
}
