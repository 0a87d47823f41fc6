// Package state persists run snapshots keyed by run identifier.
package state

import (
	"context"

	"github.com/aetherhq/prdgen/pkg/prd"
)

// Store defines the persistence contract for run snapshots.
// SaveSnapshot is last-write-wins per run for the latest pointer, which is
// sound because each run is a single sequential writer. GetSnapshot resolves
// to the most recently saved snapshot for the run.
// All implementations must be safe for concurrent use by independent runs.
type Store interface {
	SaveSnapshot(ctx context.Context, snap *prd.Snapshot) error
	GetSnapshot(ctx context.Context, runID string) (*prd.Snapshot, error)
	Close() error
}
