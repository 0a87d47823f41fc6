package streaming

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aetherhq/prdgen/pkg/prd"
)

func TestPublishSubscribe(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, "run-1")
	require.NoError(t, err)
	defer cancel()

	snap := prd.NewInitial("run-1", "idea")
	require.NoError(t, hub.Publish(ctx, snap))

	select {
	case got := <-ch:
		assert.Equal(t, "run-1", got.RunID)
		assert.Equal(t, prd.StepOutline, got.Step)
		assert.Equal(t, 0, got.Revision)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
}

func TestSubscribeFiltersByRunID(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, "run-1")
	require.NoError(t, err)
	defer cancel()

	// Should be dropped (different run)
	require.NoError(t, hub.Publish(ctx, prd.NewInitial("run-2", "idea")))
	// Should be received
	require.NoError(t, hub.Publish(ctx, prd.NewInitial("run-1", "idea")))

	select {
	case got := <-ch:
		assert.Equal(t, "run-1", got.RunID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
	}

	// Channel should be empty -- the run-2 snapshot was filtered out.
	select {
	case snap := <-ch:
		t.Fatalf("unexpected snapshot: %+v", snap)
	case <-time.After(50 * time.Millisecond):
		// expected
	}
}

func TestDeliveryOrderIsFIFO(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, "run-1")
	require.NoError(t, err)
	defer cancel()

	cur := prd.NewInitial("run-1", "idea")
	require.NoError(t, hub.Publish(ctx, cur))
	for i := 0; i < 5; i++ {
		cur = cur.Next(prd.StepCritique, "content", "")
		require.NoError(t, hub.Publish(ctx, cur))
	}

	for want := 0; want <= 5; want++ {
		select {
		case got := <-ch:
			assert.Equal(t, want, got.Revision)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for snapshot")
		}
	}
}

func TestMultipleSubscribers(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	ch1, cancel1, err := hub.Subscribe(ctx, "run-1")
	require.NoError(t, err)
	defer cancel1()

	ch2, cancel2, err := hub.Subscribe(ctx, "run-1")
	require.NoError(t, err)
	defer cancel2()

	require.NoError(t, hub.Publish(ctx, prd.NewInitial("run-1", "idea")))

	for _, ch := range []<-chan prd.Snapshot{ch1, ch2} {
		select {
		case got := <-ch:
			assert.Equal(t, "run-1", got.RunID)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for snapshot")
		}
	}
}

func TestCancelSubscription(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, "run-1")
	require.NoError(t, err)

	cancel()

	require.NoError(t, hub.Publish(ctx, prd.NewInitial("run-1", "idea")))

	select {
	case snap := <-ch:
		t.Fatalf("unexpected snapshot after cancel: %+v", snap)
	case <-time.After(50 * time.Millisecond):
		// expected: subscriber was removed
	}

	hub.mu.RLock()
	assert.Empty(t, hub.subs)
	hub.mu.RUnlock()
}

func TestBackpressureDropsForSlowSubscriber(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, "run-1")
	require.NoError(t, err)
	defer cancel()

	// Fill the channel buffer then publish more. None of these should block.
	snap := prd.NewInitial("run-1", "idea")
	for i := 0; i < defaultChannelBuffer+10; i++ {
		require.NoError(t, hub.Publish(ctx, snap))
	}

	drained := 0
	for {
		select {
		case <-ch:
			drained++
		default:
			goto done
		}
	}
done:
	assert.Equal(t, defaultChannelBuffer, drained)
}

func TestConcurrentPublishers(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()
	const goroutines = 20

	ch, cancel, err := hub.Subscribe(ctx, "run-shared")
	require.NoError(t, err)
	defer cancel()
	go func() {
		for range ch {
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = hub.Publish(ctx, prd.NewInitial("run-shared", "idea"))
			}
		}()
	}
	wg.Wait()
}

func TestPublishCancelledContext(t *testing.T) {
	hub := NewMemoryHub()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := hub.Publish(ctx, prd.NewInitial("run-1", "idea"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSubscribeCancelledContext(t *testing.T) {
	hub := NewMemoryHub()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := hub.Subscribe(ctx, "run-1")
	assert.ErrorIs(t, err, context.Canceled)
}
