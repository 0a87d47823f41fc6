// Package streaming fans out run snapshots to live subscribers.
package streaming

import (
	"context"

	"github.com/aetherhq/prdgen/pkg/prd"
)

// SnapshotHub provides pub/sub for run state updates. Delivery is
// best-effort and non-durable: pipeline correctness depends on persistence,
// never on a subscriber seeing every snapshot. Missed events are not
// replayed to late subscribers.
type SnapshotHub interface {
	Publish(ctx context.Context, snap *prd.Snapshot) error
	Subscribe(ctx context.Context, runID string) (<-chan prd.Snapshot, func(), error)
}
