// Package pipeline drives the PRD generation workflow: the fixed Outline and
// Draft stages, the bounded critique/revise convergence loop, and the Runner
// that sequences them, persisting and broadcasting every snapshot.
package pipeline

import (
	"context"
	"strings"

	"github.com/aetherhq/prdgen/internal/diff"
	"github.com/aetherhq/prdgen/internal/prompt"
	"github.com/aetherhq/prdgen/pkg/prd"
)

// CritiqueDelimiter separates the draft body from an appended critique
// section inside a Critique-step snapshot's content.
const CritiqueDelimiter = "\n\n---\n\n## Critique\n\n"

// errorDelimiter introduces the failure description appended to an Error
// terminal snapshot's content.
const errorDelimiter = "\n\n---\n\n## Error\n\n"

// outlineStage turns the seed content into a PRD outline.
// One LLM call, no internal retries; failures propagate to the Runner.
func (r *Runner) outlineStage(ctx context.Context, cur *prd.Snapshot) (*prd.Snapshot, error) {
	idea := prd.IdeaFromSeed(cur.Content)
	out, err := r.generate(ctx, prompt.Outline(idea))
	if err != nil {
		return nil, err
	}
	next := cur.Next(prd.StepDraft, out, diff.Compute(cur.Content, out))
	if err := r.persist(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// draftStage expands the outline into a full first draft.
func (r *Runner) draftStage(ctx context.Context, cur *prd.Snapshot) (*prd.Snapshot, error) {
	out, err := r.generate(ctx, prompt.Draft(cur.Content))
	if err != nil {
		return nil, err
	}
	next := cur.Next(prd.StepCritique, out, diff.Compute(cur.Content, out))
	if err := r.persist(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// splitDraftCritique separates a snapshot's content into the draft body and
// any critique section appended to it. Content without the delimiter is
// treated as all draft with an empty critique, so malformed intermediate
// content degrades instead of crashing the run.
func splitDraftCritique(content string) (draft, critique string) {
	draft, critique, found := strings.Cut(content, CritiqueDelimiter)
	if !found {
		return content, ""
	}
	return draft, critique
}
