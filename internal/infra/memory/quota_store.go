package memory

import (
	"context"
	"sync"
	"time"

	"github.com/adameda/revisia/internal/domain"
)

// QuotaStore tracks per-user daily generation allowances in memory. Usage
// resets when the calendar day changes.
type QuotaStore struct {
	limit int
	clock func() time.Time

	mu   sync.Mutex
	day  string
	used map[string]int
}

func NewQuotaStore(limit int) *QuotaStore {
	return NewQuotaStoreWithClock(limit, time.Now)
}

// NewQuotaStoreWithClock is test-only for deterministic day rollovers.
func NewQuotaStoreWithClock(limit int, clock func() time.Time) *QuotaStore {
	return &QuotaStore{
		limit: limit,
		clock: clock,
		used:  make(map[string]int),
	}
}

func (s *QuotaStore) Consume(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := s.clock().Format("2006-01-02")
	if day != s.day {
		s.day = day
		s.used = make(map[string]int)
	}

	if s.used[userID] >= s.limit {
		return 0, domain.ErrQuotaExceeded
	}
	s.used[userID]++
	return s.limit - s.used[userID], nil
}
