package state

import (
	"context"
	"sync"

	"github.com/aetherhq/prdgen/pkg/prd"
)

// MemoryStore is an in-memory Store for local development and tests.
// It additionally retains the full per-run snapshot history so tests can
// assert on revision sequences.
type MemoryStore struct {
	mu      sync.RWMutex
	latest  map[string]prd.Snapshot
	history map[string][]prd.Snapshot
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		latest:  make(map[string]prd.Snapshot),
		history: make(map[string][]prd.Snapshot),
	}
}

// SaveSnapshot stores a copy of the snapshot as the run's latest state and
// appends it to the run's history.
func (s *MemoryStore) SaveSnapshot(ctx context.Context, snap *prd.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[snap.RunID] = *snap
	s.history[snap.RunID] = append(s.history[snap.RunID], *snap)
	return nil
}

// GetSnapshot returns the most recently saved snapshot for the run.
func (s *MemoryStore) GetSnapshot(ctx context.Context, runID string) (*prd.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.latest[runID]
	if !ok {
		return nil, prd.NewErrorf(prd.ErrCodeNotFound, "run %q not found", runID).WithRun(runID)
	}
	return &snap, nil
}

// History returns copies of every snapshot saved for the run, in save order.
func (s *MemoryStore) History(runID string) []prd.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hist := s.history[runID]
	out := make([]prd.Snapshot, len(hist))
	copy(out, hist)
	return out
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
