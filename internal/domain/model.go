// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of clean architecture — it depends on nothing.
package domain

import "time"

// ─── User Stats ─────────────────────────────────────────────────────────────

// Stats is the per-user progression aggregate. It is mutated exclusively by
// the day processor; every other consumer reads it.
type Stats struct {
	UserID            string `json:"user_id"`
	Level             int    `json:"level"`     // ≥ 1
	XP                int    `json:"xp"`        // XP into the current level, < NextLevelThreshold(Level)
	StreakDays        int    `json:"streak_days"`
	ConsecutiveMisses int    `json:"consecutive_misses"`
	LastProcessedDay  Date   `json:"last_processed_day"` // zero until first processing
}

// NewStats seeds the aggregate for a freshly provisioned user.
func NewStats(userID string) Stats {
	return Stats{UserID: userID, Level: 1}
}

// ─── Tasks ──────────────────────────────────────────────────────────────────

// TaskType classifies a task's weight. Closed set.
type TaskType string

const (
	TaskSmall  TaskType = "small"
	TaskMedium TaskType = "medium"
	TaskLarge  TaskType = "large"
)

// IsValid reports whether t names a known task type.
func (t TaskType) IsValid() bool {
	switch t {
	case TaskSmall, TaskMedium, TaskLarge:
		return true
	default:
		return false
	}
}

// Task is a user-defined obligation or bonus activity. XP edits never
// rewrite history: log entries snapshot the value awarded at the time.
type Task struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	Type          TaskType  `json:"type"`
	BaseXP        int       `json:"base_xp"` // > 0
	RequiredDaily bool      `json:"required_daily"`
	CreatedAt     time.Time `json:"created_at"`
}

// TaskPatch carries optional field updates for the registry.
// Nil fields are left untouched.
type TaskPatch struct {
	Name          *string   `json:"name,omitempty"`
	Type          *TaskType `json:"type,omitempty"`
	BaseXP        *int      `json:"base_xp,omitempty"`
	RequiredDaily *bool     `json:"required_daily,omitempty"`
}

// ─── Completion Log ─────────────────────────────────────────────────────────

// LogEntry is one appended completion record. The calendar day is the
// authoritative key: at most one entry exists per (user, task, day).
// TaskName and XPAwarded are frozen snapshots, not live references.
type LogEntry struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	TaskID       string    `json:"task_id"`
	TaskName     string    `json:"task_name"`
	Day          Date      `json:"date"`
	XPAwarded    int       `json:"xp_awarded"`
	Counted      bool      `json:"counted"` // counted toward the streak
	StreakAtTime int       `json:"streak_at_time"`
	CreatedAt    time.Time `json:"created_at"`
}

// ─── Day-Processing Result ──────────────────────────────────────────────────

// TaskOutcome reports what happened to a single candidate task during
// day processing.
type TaskOutcome struct {
	TaskID    string `json:"task_id"`
	Completed bool   `json:"completed"`
	XPAwarded int    `json:"xp_awarded"`
	Duplicate bool   `json:"duplicate,omitempty"` // already logged for this day
	Rejected  string `json:"rejected,omitempty"`  // per-item validation failure, batch continued
}

// DayResult is the ephemeral event emitted by one Process call. It is
// derivable from the log and stats; it is never itself persisted.
type DayResult struct {
	UserID             string        `json:"user_id"`
	Day                Date          `json:"date"`
	Outcomes           []TaskOutcome `json:"outcomes"`
	TotalXP            int           `json:"total_xp_awarded"`
	LevelUp            bool          `json:"level_up"`
	LevelsGained       int           `json:"levels_gained,omitempty"`
	NewLevel           int           `json:"new_level"`
	NewXP              int           `json:"new_xp"`
	NextLevelThreshold int           `json:"next_level_threshold"`
	StreakDays         int           `json:"streak_days"`
	FullDay            bool          `json:"full_day,omitempty"`
}
