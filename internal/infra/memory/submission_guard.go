package memory

import (
	"context"
	"sync"

	"dugod-content-service/internal/domain"
)

// SubmissionGuard is an in-memory implementation of app.SubmissionGuard.
type SubmissionGuard struct {
	mu      sync.Mutex
	holders map[string]struct{}
}

func NewSubmissionGuard() *SubmissionGuard {
	return &SubmissionGuard{
		holders: make(map[string]struct{}),
	}
}

func (g *SubmissionGuard) Acquire(_ context.Context, userID string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, held := g.holders[userID]; held {
		return nil, domain.ErrSubmissionInProgress
	}
	g.holders[userID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.holders, userID)
			g.mu.Unlock()
		})
	}, nil
}
