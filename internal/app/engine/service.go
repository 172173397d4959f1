// Package engine is the day-processing core: it scores a day's task
// completions and folds the results into level, streak, and log state.
//
// The engine is logically single-writer per user. Every stats mutation and
// log append for a user runs under that user's lock and inside one SQLite
// transaction; processing for different users proceeds in parallel.
package engine

import (
	"sync"

	"github.com/streax-app/streax/internal/domain"
	"github.com/streax-app/streax/internal/infra/sqlite"
)

// Broadcaster receives the result event of each processed day.
// The SSE hub in the API layer implements it.
type Broadcaster interface {
	Broadcast(result domain.DayResult)
}

// Service orchestrates the task registry, leveling engine, streak rule,
// and completion log over the SQLite store.
type Service struct {
	db    *sqlite.DB
	bonus domain.Bonus

	hub Broadcaster // nil when no live feed is attached

	mu    sync.Mutex
	users map[string]*sync.Mutex
}

// New creates the engine service.
func New(db *sqlite.DB, bonus domain.Bonus) *Service {
	return &Service{
		db:    db,
		bonus: bonus,
		users: make(map[string]*sync.Mutex),
	}
}

// SetBroadcaster attaches a live result feed.
func (s *Service) SetBroadcaster(b Broadcaster) { s.hub = b }

// userLock returns the serialization lock for one user.
func (s *Service) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.users[userID]
	if !ok {
		l = &sync.Mutex{}
		s.users[userID] = l
	}
	return l
}
