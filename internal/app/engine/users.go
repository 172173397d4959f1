package engine

import (
	"context"

	"github.com/streax-app/streax/internal/domain"
)

// StatsView is the read model served to clients: the stored aggregate plus
// the derived next-level threshold.
type StatsView struct {
	domain.Stats
	NextLevelThreshold int `json:"next_level_threshold"`
}

func viewOf(s domain.Stats) StatsView {
	return StatsView{Stats: s, NextLevelThreshold: domain.NextLevelThreshold(s.Level)}
}

// ProvisionUser seeds a stats row at level 1, zero XP, zero streak.
// Provisioning an existing user is a no-op returning the current stats.
func (s *Service) ProvisionUser(ctx context.Context, userID string) (StatsView, bool, error) {
	if userID == "" {
		return StatsView{}, false, domain.ValidationError{Field: "user_id", Reason: "must not be empty"}
	}

	created, err := s.db.CreateStats(ctx, userID)
	if err != nil {
		return StatsView{}, false, domain.StorageError("provision user", err)
	}
	stats, err := s.db.GetStats(ctx, userID)
	if err != nil {
		return StatsView{}, false, domain.StorageError("provision user", err)
	}
	return viewOf(*stats), created, nil
}

// GetStats returns the current aggregate for a user.
func (s *Service) GetStats(ctx context.Context, userID string) (StatsView, error) {
	stats, err := s.db.GetStats(ctx, userID)
	if err != nil {
		return StatsView{}, domain.StorageError("get stats", err)
	}
	if stats == nil {
		return StatsView{}, domain.ErrUnknownUser
	}
	return viewOf(*stats), nil
}

// Logs returns a user's completion history, most recent first.
func (s *Service) Logs(ctx context.Context, userID string, limit int) ([]domain.LogEntry, error) {
	entries, err := s.db.ListLogs(ctx, userID, limit)
	if err != nil {
		return nil, domain.StorageError("list logs", err)
	}
	return entries, nil
}

// Activity rebuilds the day → completion-count map from the log. The log
// is the sole source of truth here; nothing incremental is consulted.
func (s *Service) Activity(ctx context.Context, userID string) (domain.ActivityMap, error) {
	m, err := s.db.ActivityCounts(ctx, userID)
	if err != nil {
		return nil, domain.StorageError("activity map", err)
	}
	return m, nil
}
