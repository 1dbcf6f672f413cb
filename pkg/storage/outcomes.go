package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/yurykabanov/s3duplicity-backup/pkg/domain"
)

// OutcomeRepository keeps the latest outcome of every operation in memory.
// Nothing survives a restart.
type OutcomeRepository struct {
	mu     sync.RWMutex
	latest map[domain.Operation]domain.Outcome
}

func NewOutcomeRepository() *OutcomeRepository {
	return &OutcomeRepository{
		latest: make(map[domain.Operation]domain.Outcome),
	}
}

func (r *OutcomeRepository) Save(ctx context.Context, outcome domain.Outcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.latest[outcome.Operation] = outcome

	return nil
}

func (r *OutcomeRepository) FindLatest(ctx context.Context) ([]domain.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	outcomes := make([]domain.Outcome, 0, len(r.latest))
	for _, o := range r.latest {
		outcomes = append(outcomes, o)
	}

	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].Operation < outcomes[j].Operation
	})

	return outcomes, nil
}
