package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/streax-app/streax/internal/domain"
	"github.com/streax-app/streax/internal/infra/observability"
	"github.com/streax-app/streax/internal/infra/sqlite"
)

// TaskMark is one candidate task outcome supplied by the caller.
// Completion detection is the client's concern; the engine only scores.
//
// A mark may reference a registered task by id, or carry an inline
// definition (name, type, base XP) for a task the registry has not seen
// yet — in that case the task is registered as part of the same
// transaction, mirroring how the day used to be submitted wholesale.
type TaskMark struct {
	TaskID        string          `json:"task_id,omitempty"`
	Name          string          `json:"name,omitempty"`
	Type          domain.TaskType `json:"type,omitempty"`
	BaseXP        int             `json:"base_xp,omitempty"`
	RequiredDaily bool            `json:"required_daily,omitempty"`
	Completed     bool            `json:"completed"`
}

// Process scores one calendar day for a user: awards XP for completed
// tasks not yet logged for that day, folds XP through the leveling curve,
// applies the streak rule once, and commits stats plus log entries in a
// single transaction. Reprocessing an already-processed day is a
// successful no-op, not an error.
func (s *Service) Process(ctx context.Context, userID string, day domain.Date, marks []TaskMark) (domain.DayResult, error) {
	start := time.Now()
	result, err := s.process(ctx, userID, day, marks)
	observability.ProcessDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		observability.ProcessErrors.WithLabelValues(errorKind(err)).Inc()
		return domain.DayResult{}, err
	}

	observability.DaysProcessed.Inc()
	observability.XPAwarded.Add(float64(result.TotalXP))
	observability.LevelUps.Add(float64(result.LevelsGained))
	if s.hub != nil {
		s.hub.Broadcast(result)
	}
	return result, nil
}

func (s *Service) process(ctx context.Context, userID string, day domain.Date, marks []TaskMark) (domain.DayResult, error) {
	if userID == "" {
		return domain.DayResult{}, domain.ValidationError{Field: "user_id", Reason: "must not be empty"}
	}
	if day.IsZero() {
		day = domain.Today()
	}

	// Single writer per user: stats mutations and log appends for one
	// user are strictly serialized.
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	var result domain.DayResult
	err := s.db.WithTx(ctx, func(tx *sqlite.Tx) error {
		stats, err := tx.GetStats(ctx, userID)
		if err != nil {
			return domain.StorageError("process day", err)
		}
		if stats == nil {
			return domain.ErrUnknownUser
		}
		if !stats.LastProcessedDay.IsZero() && day.Before(stats.LastProcessedDay) {
			return domain.ErrDayConflict
		}

		registered, err := tx.ListTasks(ctx, userID, 0)
		if err != nil {
			return domain.StorageError("process day", err)
		}
		byID := make(map[string]domain.Task, len(registered))
		for _, t := range registered {
			byID[t.ID] = t
		}

		// Resolve every mark to a concrete task first: the day's
		// required-completion count decides the streak and any full-day
		// bonus before a single entry is written. Malformed marks are
		// rejected individually; the batch continues.
		type candidate struct {
			outcome domain.TaskOutcome
			task    domain.Task
			award   bool
		}
		candidates := make([]candidate, 0, len(marks))
		completedRequired := 0
		awarding := make(map[string]bool, len(marks))

		for _, m := range marks {
			c := candidate{outcome: domain.TaskOutcome{TaskID: m.TaskID, Completed: m.Completed}}

			task, ok := byID[m.TaskID]
			if !ok {
				// The id may belong to a soft-deleted task (or another
				// user's): those are rejected per item, never
				// re-registered over the existing row.
				if m.TaskID != "" {
					taken, err := tx.TaskIDTaken(ctx, m.TaskID)
					if err != nil {
						return domain.StorageError("process day", err)
					}
					if taken {
						c.outcome.Rejected = "task is not active for this user"
						candidates = append(candidates, c)
						continue
					}
				}

				// Unregistered task: accept an inline definition the
				// way day submissions always carried full payloads.
				typ := m.Type
				if typ == "" {
					typ = domain.TaskSmall
				}
				if err := validateTaskFields(m.Name, typ, m.BaseXP); err != nil {
					c.outcome.Rejected = err.Error()
					candidates = append(candidates, c)
					continue
				}
				task = domain.Task{
					ID:            m.TaskID,
					UserID:        userID,
					Name:          strings.TrimSpace(m.Name),
					Type:          typ,
					BaseXP:        m.BaseXP,
					RequiredDaily: m.RequiredDaily,
				}
				if task.ID == "" {
					task.ID = uuid.NewString()
				}
				if err := tx.InsertTask(ctx, task); err != nil {
					return domain.StorageError("process day", err)
				}
				byID[task.ID] = task
				c.outcome.TaskID = task.ID
			}
			c.task = task

			if !m.Completed {
				candidates = append(candidates, c)
				continue
			}

			logged, err := tx.HasLog(ctx, userID, task.ID, day)
			if err != nil {
				return domain.StorageError("process day", err)
			}
			if logged || awarding[task.ID] {
				// Already awarded for this day, or repeated earlier in
				// this same batch; never duplicated.
				c.outcome.Duplicate = true
				candidates = append(candidates, c)
				continue
			}

			awarding[task.ID] = true
			c.award = true
			if task.RequiredDaily {
				completedRequired++
			}
			candidates = append(candidates, c)
		}

		fullDay := s.bonus.DailyTarget > 0 && completedRequired >= s.bonus.DailyTarget
		requiredDone := completedRequired > 0

		// Fold XP level by level; one large day can span several levels.
		level, xp := stats.Level, stats.XP
		totalXP, levelsGained := 0, 0
		for i := range candidates {
			if !candidates[i].award {
				continue
			}
			awarded := s.bonus.Apply(candidates[i].task.BaseXP, stats.StreakDays, fullDay)
			prog := domain.ApplyXP(level, xp, awarded)
			level, xp = prog.Level, prog.XP
			levelsGained += prog.LevelsGained
			totalXP += awarded
			candidates[i].outcome.XPAwarded = awarded
		}

		// One streak decision per processed day, never per task.
		upd := domain.AdvanceStreak(stats.StreakDays, stats.ConsecutiveMisses, stats.LastProcessedDay, day, requiredDone)
		if !upd.NoOp {
			if stats.StreakDays > 0 && upd.Days == 0 {
				observability.StreakResets.Inc()
			}
			stats.StreakDays = upd.Days
			stats.ConsecutiveMisses = upd.Misses
		}

		outcomes := make([]domain.TaskOutcome, 0, len(candidates))
		for i := range candidates {
			if candidates[i].award {
				entry := domain.LogEntry{
					UserID:       userID,
					TaskID:       candidates[i].task.ID,
					TaskName:     candidates[i].task.Name,
					Day:          day,
					XPAwarded:    candidates[i].outcome.XPAwarded,
					Counted:      candidates[i].task.RequiredDaily,
					StreakAtTime: stats.StreakDays,
				}
				if err := tx.InsertLog(ctx, &entry); err != nil {
					return domain.StorageError("process day", err)
				}
			}
			outcomes = append(outcomes, candidates[i].outcome)
		}

		stats.Level = level
		stats.XP = xp
		stats.LastProcessedDay = day
		if err := tx.UpdateStats(ctx, *stats); err != nil {
			return domain.StorageError("process day", err)
		}

		result = domain.DayResult{
			UserID:             userID,
			Day:                day,
			Outcomes:           outcomes,
			TotalXP:            totalXP,
			LevelUp:            levelsGained > 0,
			LevelsGained:       levelsGained,
			NewLevel:           level,
			NewXP:              xp,
			NextLevelThreshold: domain.NextLevelThreshold(level),
			StreakDays:         stats.StreakDays,
			FullDay:            fullDay,
		}
		return nil
	})
	if err != nil {
		return domain.DayResult{}, err
	}
	return result, nil
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnknownUser):
		return "unknown_user"
	case errors.Is(err, domain.ErrDayConflict):
		return "conflict"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return "storage"
	case domain.IsValidation(err):
		return "validation"
	default:
		return "internal"
	}
}
