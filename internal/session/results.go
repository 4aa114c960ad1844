package session

import (
	"context"
	"sort"
	"sync"
)

// ResultStore archives finished games.
type ResultStore interface {
	SaveResult(ctx context.Context, r Result) error
	RecentResults(ctx context.Context, limit int) ([]Result, error)
	Close() error
}

var (
	_ ResultStore = (*MemoryResults)(nil)
	_ ResultStore = (*PostgresResults)(nil)
)

// MemoryResults is the in-process store used when no database is configured.
type MemoryResults struct {
	mu     sync.RWMutex
	byGame map[resultKey]Result
}

type resultKey struct {
	gameID string
	round  int
}

func NewMemoryResults() *MemoryResults {
	return &MemoryResults{byGame: make(map[resultKey]Result)}
}

// SaveResult upserts by game id and round.
func (s *MemoryResults) SaveResult(ctx context.Context, r Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byGame[resultKey{r.GameID, r.Round}] = r
	return nil
}

// RecentResults returns results newest first. limit <= 0 means all.
func (s *MemoryResults) RecentResults(ctx context.Context, limit int) ([]Result, error) {
	s.mu.RLock()
	items := make([]Result, 0, len(s.byGame))
	for _, r := range s.byGame {
		items = append(items, r)
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if !items[i].EndedAt.Equal(items[j].EndedAt) {
			return items[i].EndedAt.After(items[j].EndedAt)
		}
		if items[i].GameID != items[j].GameID {
			return items[i].GameID < items[j].GameID
		}
		return items[i].Round > items[j].Round
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *MemoryResults) Close() error { return nil }
