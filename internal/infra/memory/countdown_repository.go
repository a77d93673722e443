package memory

import (
	"context"
	"sort"
	"sync"

	"dugod-content-service/internal/domain"
)

// CountdownRepository keeps countdowns in a map (useful for tests/demos).
type CountdownRepository struct {
	mu         sync.RWMutex
	countdowns map[string]domain.Countdown
}

func NewCountdownRepository(seed ...domain.Countdown) *CountdownRepository {
	r := &CountdownRepository{countdowns: make(map[string]domain.Countdown)}
	for _, c := range seed {
		_ = r.Save(context.Background(), c)
	}
	return r
}

func (r *CountdownRepository) List(_ context.Context) ([]domain.Countdown, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Countdown, 0, len(r.countdowns))
	for _, c := range r.countdowns {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *CountdownRepository) Get(_ context.Context, id string) (domain.Countdown, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.countdowns[id]
	if !ok {
		return domain.Countdown{}, domain.ErrCountdownNotFound
	}
	return c, nil
}

func (r *CountdownRepository) Active(_ context.Context) (*domain.Countdown, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.countdowns {
		if c.IsActive {
			active := c
			return &active, nil
		}
	}
	return nil, nil
}

func (r *CountdownRepository) Save(_ context.Context, c domain.Countdown) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.IsActive {
		for id, other := range r.countdowns {
			if id != c.ID && other.IsActive {
				other.IsActive = false
				other.UpdatedAt = c.UpdatedAt
				r.countdowns[id] = other
			}
		}
	}
	r.countdowns[c.ID] = c
	return nil
}

func (r *CountdownRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.countdowns[id]; !ok {
		return domain.ErrCountdownNotFound
	}
	delete(r.countdowns, id)
	return nil
}
