package state

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aetherhq/prdgen/pkg/prd"
)

func TestMemoryStoreSaveGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	snap := prd.NewInitial("run-1", "idea")
	require.NoError(t, store.SaveSnapshot(ctx, snap))

	got, err := store.GetSnapshot(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, snap.Content, got.Content)
	assert.Equal(t, 0, got.Revision)
}

func TestMemoryStoreLatestWins(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	initial := prd.NewInitial("run-1", "idea")
	require.NoError(t, store.SaveSnapshot(ctx, initial))
	next := initial.Next(prd.StepDraft, "outline text", "d")
	require.NoError(t, store.SaveSnapshot(ctx, next))

	got, err := store.GetSnapshot(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Revision)
	assert.Equal(t, prd.StepDraft, got.Step)

	hist := store.History("run-1")
	require.Len(t, hist, 2)
	assert.Equal(t, 0, hist[0].Revision)
	assert.Equal(t, 1, hist[1].Revision)
}

func TestMemoryStoreNotFound(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.GetSnapshot(context.Background(), "missing")
	require.Error(t, err)

	var perr *prd.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, prd.ErrCodeNotFound, perr.Code)
}

func TestMemoryStoreConcurrentRuns(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	const runs = 20
	const snapsPerRun = 10

	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			runID := string(rune('a'+n%26)) + "-run"
			cur := prd.NewInitial(runID, "idea")
			_ = store.SaveSnapshot(ctx, cur)
			for j := 0; j < snapsPerRun; j++ {
				cur = cur.Next(prd.StepCritique, "content", "")
				_ = store.SaveSnapshot(ctx, cur)
			}
		}(i)
	}
	wg.Wait()
}

func TestMemoryStoreSnapshotIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	snap := prd.NewInitial("run-1", "idea")
	require.NoError(t, store.SaveSnapshot(ctx, snap))

	got, err := store.GetSnapshot(ctx, "run-1")
	require.NoError(t, err)
	got.Content = "mutated by reader"

	again, err := store.GetSnapshot(ctx, "run-1")
	require.NoError(t, err)
	assert.NotEqual(t, "mutated by reader", again.Content)
}
