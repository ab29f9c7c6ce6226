package memory

import (
	"context"
	"sync"

	"github.com/mca-deal-ledger/internal/domain/participant"
)

// ParticipantRepository is an insertion-ordered set of participant names
type ParticipantRepository struct {
	mu    sync.RWMutex
	names []string
	seen  map[string]struct{}
}

func NewParticipantRepository() participant.Repository {
	return &ParticipantRepository{seen: make(map[string]struct{})}
}

func (r *ParticipantRepository) Add(ctx context.Context, name string) error {
	n, err := participant.Normalize(name)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.seen[n]; ok {
		return nil
	}
	r.seen[n] = struct{}{}
	r.names = append(r.names, n)
	return nil
}

func (r *ParticipantRepository) List(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.names...), nil
}

func (r *ParticipantRepository) Exists(ctx context.Context, name string) (bool, error) {
	n, err := participant.Normalize(name)
	if err != nil {
		return false, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.seen[n]
	return ok, nil
}
