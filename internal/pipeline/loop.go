package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/aetherhq/prdgen/internal/diff"
	"github.com/aetherhq/prdgen/internal/prompt"
	"github.com/aetherhq/prdgen/pkg/prd"
)

// DefaultMaxRevisions bounds the critique/revise loop.
const DefaultMaxRevisions = 3

// runCritiqueLoop drives critique→revise cycles until the critique contains
// the approval sentinel or the revision budget is exhausted, whichever comes
// first. Each iteration produces two snapshots: the draft with the critique
// appended, then the revised draft. Both are persisted and broadcast as they
// occur. On approval the current snapshot is returned unchanged, with no
// additional revision for that iteration.
//
// On failure the returned snapshot is the last durably persisted one, so the
// Runner can stamp the Error record at the next gapless revision.
func (r *Runner) runCritiqueLoop(ctx context.Context, cur *prd.Snapshot) (*prd.Snapshot, error) {
	for i := 1; i <= r.maxRevisions; i++ {
		draft, _ := splitDraftCritique(cur.Content)

		critique, err := r.generate(ctx, prompt.Critique(draft))
		if err != nil {
			return cur, err
		}

		// Exact-substring match keeps the termination oracle auditable;
		// the critique template instructs this precise phrase.
		if strings.Contains(critique, prompt.ApprovalSentinel) {
			r.logger.InfoContext(ctx, "critique approved draft",
				"iteration", i, "revision", cur.Revision)
			return cur, nil
		}

		appended := draft + CritiqueDelimiter + critique
		withCritique := cur.Next(prd.StepCritique, appended, diff.Compute(cur.Content, appended))
		if err := r.persist(ctx, withCritique); err != nil {
			return cur, err
		}
		r.broadcast(ctx, withCritique)

		revised, err := r.generate(ctx, prompt.Revise(draft, critique))
		if err != nil {
			return withCritique, err
		}

		next := withCritique.Next(prd.StepCritique, revised, diff.Compute(withCritique.Content, revised))
		if err := r.persist(ctx, next); err != nil {
			return withCritique, err
		}
		r.broadcast(ctx, next)
		cur = next

		// Politeness throttle between iterations, not a correctness
		// requirement. Context-aware so shutdown is not delayed.
		if i < r.maxRevisions {
			select {
			case <-ctx.Done():
				return cur, ctx.Err()
			case <-time.After(r.loopDelay):
			}
		}
	}
	return cur, nil
}
