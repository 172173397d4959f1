package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streax-app/streax/internal/domain"
	"github.com/streax-app/streax/internal/infra/sqlite"
)

func newTestService(t *testing.T, bonus domain.Bonus) *Service {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "streax.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, bonus)
}

func date(t *testing.T, s string) domain.Date {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return d
}

func provision(t *testing.T, s *Service, userID string) {
	t.Helper()
	_, _, err := s.ProvisionUser(context.Background(), userID)
	require.NoError(t, err)
}

func addTask(t *testing.T, s *Service, userID, name string, xp int, required bool) domain.Task {
	t.Helper()
	task, err := s.CreateTask(context.Background(), userID, name, domain.TaskSmall, xp, required)
	require.NoError(t, err)
	return task
}

func TestProcess_UnknownUser(t *testing.T) {
	s := newTestService(t, domain.DefaultBonus())
	_, err := s.Process(context.Background(), "ghost", date(t, "2026-03-01"), nil)
	assert.ErrorIs(t, err, domain.ErrUnknownUser)
}

func TestProcess_FirstDayAwardsAndStartsStreak(t *testing.T) {
	s := newTestService(t, domain.DefaultBonus())
	ctx := context.Background()
	provision(t, s, "u1")
	run := addTask(t, s, "u1", "run", 50, true)
	read := addTask(t, s, "u1", "read", 30, false)

	res, err := s.Process(ctx, "u1", date(t, "2026-03-01"), []TaskMark{
		{TaskID: run.ID, Completed: true},
		{TaskID: read.ID, Completed: true},
	})
	require.NoError(t, err)

	assert.Equal(t, 80, res.TotalXP)
	assert.Equal(t, 1, res.StreakDays)
	assert.Equal(t, 1, res.NewLevel)
	assert.Equal(t, 80, res.NewXP)
	assert.False(t, res.LevelUp)

	stats, err := s.GetStats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 80, stats.XP)
	assert.Equal(t, 1, stats.StreakDays)
	assert.Equal(t, "2026-03-01", stats.LastProcessedDay.String())

	logs, err := s.Logs(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	for _, e := range logs {
		assert.Equal(t, 1, e.StreakAtTime)
	}
}

func TestProcess_FirstDayWithoutRequiredLeavesStreakZero(t *testing.T) {
	s := newTestService(t, domain.DefaultBonus())
	provision(t, s, "u1")
	read := addTask(t, s, "u1", "read", 30, false)

	res, err := s.Process(context.Background(), "u1", date(t, "2026-03-01"), []TaskMark{
		{TaskID: read.ID, Completed: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 30, res.TotalXP)
	assert.Equal(t, 0, res.StreakDays)
}

func TestProcess_IdempotentReprocessing(t *testing.T) {
	s := newTestService(t, domain.DefaultBonus())
	ctx := context.Background()
	provision(t, s, "u1")
	run := addTask(t, s, "u1", "run", 50, true)
	day := date(t, "2026-03-01")
	marks := []TaskMark{{TaskID: run.ID, Completed: true}}

	first, err := s.Process(ctx, "u1", day, marks)
	require.NoError(t, err)
	require.Equal(t, 50, first.TotalXP)

	// Same (user, day, tasks) again: a successful no-op, not an error.
	second, err := s.Process(ctx, "u1", day, marks)
	require.NoError(t, err)
	assert.Equal(t, 0, second.TotalXP)
	require.Len(t, second.Outcomes, 1)
	assert.True(t, second.Outcomes[0].Duplicate)
	assert.Equal(t, first.StreakDays, second.StreakDays)
	assert.Equal(t, first.NewLevel, second.NewLevel)
	assert.Equal(t, first.NewXP, second.NewXP)

	logs, err := s.Logs(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestProcess_SameDayNewTaskStillAwards(t *testing.T) {
	s := newTestService(t, domain.DefaultBonus())
	ctx := context.Background()
	provision(t, s, "u1")
	run := addTask(t, s, "u1", "run", 50, true)
	day := date(t, "2026-03-01")

	_, err := s.Process(ctx, "u1", day, []TaskMark{{TaskID: run.ID, Completed: true}})
	require.NoError(t, err)

	read := addTask(t, s, "u1", "read", 30, false)
	res, err := s.Process(ctx, "u1", day, []TaskMark{
		{TaskID: run.ID, Completed: true},
		{TaskID: read.ID, Completed: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 30, res.TotalXP, "only the new task earns XP")
	assert.Equal(t, 1, res.StreakDays, "same-day streak untouched")
}

func TestProcess_ConflictOnEarlierDay(t *testing.T) {
	s := newTestService(t, domain.DefaultBonus())
	ctx := context.Background()
	provision(t, s, "u1")
	run := addTask(t, s, "u1", "run", 50, true)

	_, err := s.Process(ctx, "u1", date(t, "2026-03-05"), []TaskMark{{TaskID: run.ID, Completed: true}})
	require.NoError(t, err)

	_, err = s.Process(ctx, "u1", date(t, "2026-03-04"), []TaskMark{{TaskID: run.ID, Completed: true}})
	assert.ErrorIs(t, err, domain.ErrDayConflict)
}

func TestProcess_StreakAcrossDays(t *testing.T) {
	s := newTestService(t, domain.DefaultBonus())
	ctx := context.Background()
	provision(t, s, "u1")
	run := addTask(t, s, "u1", "run", 10, true)

	type step struct {
		day        string
		complete   bool
		wantStreak int
	}
	steps := []step{
		{"2026-03-01", true, 1},
		{"2026-03-02", true, 2},
		{"2026-03-03", true, 3},
		// required task missed on the 4th; a two-day gap before the 8th
		{"2026-03-04", false, 0},
		{"2026-03-05", true, 1},
		{"2026-03-08", true, 0},
		{"2026-03-09", true, 1},
	}
	for _, st := range steps {
		res, err := s.Process(ctx, "u1", date(t, st.day), []TaskMark{
			{TaskID: run.ID, Completed: st.complete},
		})
		require.NoError(t, err, st.day)
		assert.Equal(t, st.wantStreak, res.StreakDays, "day %s", st.day)
	}
}

func TestProcess_RejectsMalformedMarksIndividually(t *testing.T) {
	s := newTestService(t, domain.DefaultBonus())
	ctx := context.Background()
	provision(t, s, "u1")
	run := addTask(t, s, "u1", "run", 50, true)

	res, err := s.Process(ctx, "u1", date(t, "2026-03-01"), []TaskMark{
		{TaskID: "unknown-1", Name: "stretch", BaseXP: -5, Completed: true},
		{TaskID: "unknown-2", Name: "", BaseXP: 10, Completed: true},
		{TaskID: run.ID, Completed: true},
	})
	require.NoError(t, err, "one bad mark must not sink the batch")

	require.Len(t, res.Outcomes, 3)
	assert.NotEmpty(t, res.Outcomes[0].Rejected, "negative XP")
	assert.NotEmpty(t, res.Outcomes[1].Rejected, "missing name")
	assert.Empty(t, res.Outcomes[2].Rejected)
	assert.Equal(t, 50, res.TotalXP)
}

func TestProcess_RepeatedMarkAwardsOnce(t *testing.T) {
	s := newTestService(t, domain.DefaultBonus())
	ctx := context.Background()
	provision(t, s, "u1")
	run := addTask(t, s, "u1", "run", 50, true)
	read := addTask(t, s, "u1", "read", 30, false)

	// The same task named twice in one batch earns exactly once; the
	// repeat is a duplicate, and the rest of the batch still processes.
	res, err := s.Process(ctx, "u1", date(t, "2026-03-01"), []TaskMark{
		{TaskID: run.ID, Completed: true},
		{TaskID: run.ID, Completed: true},
		{TaskID: read.ID, Completed: true},
	})
	require.NoError(t, err)

	require.Len(t, res.Outcomes, 3)
	assert.Equal(t, 50, res.Outcomes[0].XPAwarded)
	assert.True(t, res.Outcomes[1].Duplicate)
	assert.Equal(t, 0, res.Outcomes[1].XPAwarded)
	assert.Equal(t, 30, res.Outcomes[2].XPAwarded)
	assert.Equal(t, 80, res.TotalXP)
	assert.Equal(t, 1, res.StreakDays)

	logs, err := s.Logs(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestProcess_DeletedTaskMarkWithInlineFields(t *testing.T) {
	s := newTestService(t, domain.DefaultBonus())
	ctx := context.Background()
	provision(t, s, "u1")
	run := addTask(t, s, "u1", "run", 50, true)
	read := addTask(t, s, "u1", "read", 30, false)

	_, err := s.Process(ctx, "u1", date(t, "2026-03-01"), []TaskMark{{TaskID: run.ID, Completed: true}})
	require.NoError(t, err)
	require.NoError(t, s.DeleteTask(ctx, run.ID))

	// Inline fields on a removed task's id must not resurrect it; the
	// mark is rejected per item and the live task still earns.
	res, err := s.Process(ctx, "u1", date(t, "2026-03-02"), []TaskMark{
		{TaskID: run.ID, Name: "run", BaseXP: 50, RequiredDaily: true, Completed: true},
		{TaskID: read.ID, Completed: true},
	})
	require.NoError(t, err)

	require.Len(t, res.Outcomes, 2)
	assert.NotEmpty(t, res.Outcomes[0].Rejected)
	assert.Equal(t, 30, res.Outcomes[1].XPAwarded)
	assert.Equal(t, 30, res.TotalXP)

	tasks, err := s.ListTasks(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, read.ID, tasks[0].ID)
}

func TestProcess_InlineMarkRegistersTask(t *testing.T) {
	s := newTestService(t, domain.DefaultBonus())
	ctx := context.Background()
	provision(t, s, "u1")

	res, err := s.Process(ctx, "u1", date(t, "2026-03-01"), []TaskMark{
		{Name: "meditate", Type: domain.TaskMedium, BaseXP: 40, RequiredDaily: true, Completed: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 40, res.TotalXP)
	assert.Equal(t, 1, res.StreakDays)

	tasks, err := s.ListTasks(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "meditate", tasks[0].Name)
	assert.Equal(t, res.Outcomes[0].TaskID, tasks[0].ID)
}

func TestProcess_LargeAwardSpansLevels(t *testing.T) {
	s := newTestService(t, domain.DefaultBonus())
	ctx := context.Background()
	provision(t, s, "u1")

	// Derive the award from the curve: enough to clear two thresholds
	// with 17 XP left over.
	award := domain.NextLevelThreshold(1) + domain.NextLevelThreshold(2) + 17
	epic := addTask(t, s, "u1", "ship the release", award, false)

	res, err := s.Process(ctx, "u1", date(t, "2026-03-01"), []TaskMark{{TaskID: epic.ID, Completed: true}})
	require.NoError(t, err)
	assert.Equal(t, 3, res.NewLevel)
	assert.Equal(t, 17, res.NewXP)
	assert.Equal(t, 2, res.LevelsGained)
	assert.True(t, res.LevelUp)
}

func TestProcess_XPInvariantAcrossSequence(t *testing.T) {
	s := newTestService(t, domain.DefaultBonus())
	ctx := context.Background()
	provision(t, s, "u1")

	day := date(t, "2026-03-01")
	prevLevel := 1
	for i, xp := range []int{50, 60, 283, 999, 1, 5000} {
		task := addTask(t, s, "u1", "task", xp, true)
		res, err := s.Process(ctx, "u1", day, []TaskMark{{TaskID: task.ID, Completed: true}})
		require.NoError(t, err)

		assert.GreaterOrEqual(t, res.NewXP, 0, "step %d", i)
		assert.Less(t, res.NewXP, res.NextLevelThreshold, "step %d", i)
		assert.GreaterOrEqual(t, res.NewLevel, prevLevel, "level never decreases")
		prevLevel = res.NewLevel
		day = day.Next()
	}
}

func TestProcess_ActivityMatchesRebuiltLog(t *testing.T) {
	s := newTestService(t, domain.DefaultBonus())
	ctx := context.Background()
	provision(t, s, "u1")
	run := addTask(t, s, "u1", "run", 10, true)
	read := addTask(t, s, "u1", "read", 5, false)

	for _, d := range []string{"2026-03-01", "2026-03-02", "2026-03-03"} {
		_, err := s.Process(ctx, "u1", date(t, d), []TaskMark{
			{TaskID: run.ID, Completed: true},
			{TaskID: read.ID, Completed: d != "2026-03-02"},
		})
		require.NoError(t, err)
	}

	activity, err := s.Activity(ctx, "u1")
	require.NoError(t, err)
	logs, err := s.Logs(ctx, "u1", 0)
	require.NoError(t, err)

	assert.Equal(t, domain.RebuildActivity(logs), activity)
	assert.Equal(t, 2, activity.Count(date(t, "2026-03-01")))
	assert.Equal(t, 1, activity.Count(date(t, "2026-03-02")))
}

func TestProcess_BonusMultipliersFreezeIntoLog(t *testing.T) {
	bonus := domain.DefaultBonus()
	bonus.Enabled = true
	bonus.DailyTarget = 1
	s := newTestService(t, bonus)
	ctx := context.Background()
	provision(t, s, "u1")
	run := addTask(t, s, "u1", "run", 100, true)

	// Day 1: streak 0 before processing, full day → ×1.10.
	res, err := s.Process(ctx, "u1", date(t, "2026-03-01"), []TaskMark{{TaskID: run.ID, Completed: true}})
	require.NoError(t, err)
	assert.True(t, res.FullDay)
	assert.Equal(t, 110, res.TotalXP)

	// Day 2: streak 1 before processing → ×1.05 × 1.10.
	res, err = s.Process(ctx, "u1", date(t, "2026-03-02"), []TaskMark{{TaskID: run.ID, Completed: true}})
	require.NoError(t, err)
	assert.Equal(t, 116, res.TotalXP) // round(100 * 1.05 * 1.10)

	// The scaled values are frozen in the log.
	logs, err := s.Logs(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, 116, logs[0].XPAwarded)
	assert.Equal(t, 110, logs[1].XPAwarded)
}

type captureHub struct {
	results []domain.DayResult
}

func (h *captureHub) Broadcast(r domain.DayResult) { h.results = append(h.results, r) }

func TestProcess_BroadcastsResultEvent(t *testing.T) {
	s := newTestService(t, domain.DefaultBonus())
	hub := &captureHub{}
	s.SetBroadcaster(hub)
	ctx := context.Background()
	provision(t, s, "u1")
	run := addTask(t, s, "u1", "run", 50, true)

	_, err := s.Process(ctx, "u1", date(t, "2026-03-01"), []TaskMark{{TaskID: run.ID, Completed: true}})
	require.NoError(t, err)

	require.Len(t, hub.results, 1)
	assert.Equal(t, "u1", hub.results[0].UserID)
	assert.Equal(t, 50, hub.results[0].TotalXP)
}
