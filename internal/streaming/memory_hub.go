package streaming

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/aetherhq/prdgen/pkg/prd"
)

const defaultChannelBuffer = 64

// subscriber holds a channel and the run it watches.
type subscriber struct {
	ch    chan prd.Snapshot
	runID string
}

// MemoryHub is an in-memory SnapshotHub implementation using channels.
type MemoryHub struct {
	mu   sync.RWMutex
	subs map[uint64]*subscriber
	seq  atomic.Uint64
}

// NewMemoryHub creates a new MemoryHub.
func NewMemoryHub() *MemoryHub {
	return &MemoryHub{
		subs: make(map[uint64]*subscriber),
	}
}

// Publish sends a copy of the snapshot to all subscribers of its run.
// Delivery is FIFO per subscriber as long as the subscriber keeps up.
// Non-blocking: if a subscriber's channel is full the snapshot is dropped.
func (h *MemoryHub) Publish(ctx context.Context, snap *prd.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if sub.runID != snap.RunID {
			continue
		}
		select {
		case sub.ch <- *snap:
		default:
			// backpressure: drop snapshot for slow subscriber
		}
	}
	return nil
}

// Subscribe creates a new subscription for the given run.
// Returns a receive-only channel, a cancel function, and any error.
func (h *MemoryHub) Subscribe(ctx context.Context, runID string) (<-chan prd.Snapshot, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	id := h.seq.Add(1)
	ch := make(chan prd.Snapshot, defaultChannelBuffer)

	h.mu.Lock()
	h.subs[id] = &subscriber{ch: ch, runID: runID}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}

	return ch, cancel, nil
}

// SubscriberCount reports the number of active subscriptions.
func (h *MemoryHub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
