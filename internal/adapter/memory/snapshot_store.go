package memory

import (
	"context"
	"sync"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
)

// SnapshotStore keeps snapshots in process memory. It survives store
// reloads within one process only.
type SnapshotStore struct {
	mu     sync.RWMutex
	values map[string]string
	writes int
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{values: make(map[string]string)}
}

func (s *SnapshotStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.values[key]
	if !ok {
		return "", repository.ErrNotFound
	}
	return val, nil
}

func (s *SnapshotStore) Set(_ context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	s.writes++
	return nil
}

func (s *SnapshotStore) Ping(context.Context) error {
	return nil
}

// Writes reports how many Set calls the store has served.
func (s *SnapshotStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
