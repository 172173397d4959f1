package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streax-app/streax/internal/domain"
)

func TestCreateTask_Validation(t *testing.T) {
	s := newTestService(t, domain.DefaultBonus())
	ctx := context.Background()

	tests := []struct {
		name   string
		task   string
		typ    domain.TaskType
		baseXP int
	}{
		{"empty name", "", domain.TaskSmall, 10},
		{"whitespace name", "   ", domain.TaskSmall, 10},
		{"zero xp", "run", domain.TaskSmall, 0},
		{"negative xp", "run", domain.TaskSmall, -5},
		{"unknown type", "run", domain.TaskType("epic"), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateTask(ctx, "u1", tt.task, tt.typ, tt.baseXP, false)
			assert.True(t, domain.IsValidation(err), "got %v", err)
		})
	}
}

func TestCreateTask_DefaultsTypeToSmall(t *testing.T) {
	s := newTestService(t, domain.DefaultBonus())
	task, err := s.CreateTask(context.Background(), "u1", "run", "", 10, false)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskSmall, task.Type)
	assert.NotEmpty(t, task.ID)
}

func TestUpdateTask_NotFound(t *testing.T) {
	s := newTestService(t, domain.DefaultBonus())
	name := "jog"
	_, err := s.UpdateTask(context.Background(), "ghost", domain.TaskPatch{Name: &name})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestDeleteTask_NotFound(t *testing.T) {
	s := newTestService(t, domain.DefaultBonus())
	err := s.DeleteTask(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestUpdateTask_NeverRewritesAwardedXP(t *testing.T) {
	s := newTestService(t, domain.DefaultBonus())
	ctx := context.Background()
	provision(t, s, "u1")
	run := addTask(t, s, "u1", "run", 50, true)

	_, err := s.Process(ctx, "u1", date(t, "2026-03-01"), []TaskMark{{TaskID: run.ID, Completed: true}})
	require.NoError(t, err)

	bigger := 500
	_, err = s.UpdateTask(ctx, run.ID, domain.TaskPatch{BaseXP: &bigger})
	require.NoError(t, err)

	logs, err := s.Logs(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 50, logs[0].XPAwarded, "historical award must stay frozen")

	// Future awards use the new value.
	res, err := s.Process(ctx, "u1", date(t, "2026-03-02"), []TaskMark{{TaskID: run.ID, Completed: true}})
	require.NoError(t, err)
	assert.Equal(t, 500, res.TotalXP)
}

func TestDeleteTask_ExcludedFromFutureProcessing(t *testing.T) {
	s := newTestService(t, domain.DefaultBonus())
	ctx := context.Background()
	provision(t, s, "u1")
	run := addTask(t, s, "u1", "run", 50, true)

	_, err := s.Process(ctx, "u1", date(t, "2026-03-01"), []TaskMark{{TaskID: run.ID, Completed: true}})
	require.NoError(t, err)
	require.NoError(t, s.DeleteTask(ctx, run.ID))

	// The mark now references a task the registry no longer serves;
	// rejected per item.
	res, err := s.Process(ctx, "u1", date(t, "2026-03-02"), []TaskMark{{TaskID: run.ID, Completed: true}})
	require.NoError(t, err)
	require.Len(t, res.Outcomes, 1)
	assert.NotEmpty(t, res.Outcomes[0].Rejected)
	assert.Equal(t, 0, res.TotalXP)

	// History survives the delete.
	logs, err := s.Logs(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestProvisionUser(t *testing.T) {
	s := newTestService(t, domain.DefaultBonus())
	ctx := context.Background()

	view, created, err := s.ProvisionUser(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 1, view.Level)
	assert.Equal(t, domain.NextLevelThreshold(1), view.NextLevelThreshold)

	_, again, err := s.ProvisionUser(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, again)

	_, _, err = s.ProvisionUser(ctx, "")
	assert.True(t, domain.IsValidation(err))
}

func TestGetStats_UnknownUser(t *testing.T) {
	s := newTestService(t, domain.DefaultBonus())
	_, err := s.GetStats(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrUnknownUser)
}
