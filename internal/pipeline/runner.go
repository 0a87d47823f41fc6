package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/aetherhq/prdgen/internal/diff"
	"github.com/aetherhq/prdgen/internal/llm"
	"github.com/aetherhq/prdgen/internal/logging"
	"github.com/aetherhq/prdgen/internal/state"
	"github.com/aetherhq/prdgen/internal/streaming"
	"github.com/aetherhq/prdgen/pkg/prd"
)

const (
	defaultLoopDelay   = time.Second
	defaultCallTimeout = 2 * time.Minute
)

// Options tunes Runner behavior. The zero value gets sensible defaults.
type Options struct {
	MaxRevisions int           // critique/revise budget, default 3
	LoopDelay    time.Duration // pause between loop iterations, default 1s
	CallTimeout  time.Duration // per-LLM-call timeout, default 2m
	Logger       *slog.Logger
}

// Runner sequences one run end to end: fixed stages, convergence loop,
// terminal snapshot. It exclusively owns snapshot construction; the store
// and hub only ever receive finished values.
type Runner struct {
	store  state.Store
	client llm.Client
	hub    streaming.SnapshotHub // nil is a valid no-streaming mode

	maxRevisions int
	loopDelay    time.Duration
	callTimeout  time.Duration
	logger       *slog.Logger
}

// NewRunner wires a Runner from its collaborators.
func NewRunner(store state.Store, client llm.Client, hub streaming.SnapshotHub, opts Options) *Runner {
	if opts.MaxRevisions <= 0 {
		opts.MaxRevisions = DefaultMaxRevisions
	}
	if opts.LoopDelay <= 0 {
		opts.LoopDelay = defaultLoopDelay
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = defaultCallTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Runner{
		store:        store,
		client:       client,
		hub:          hub,
		maxRevisions: opts.MaxRevisions,
		loopDelay:    opts.LoopDelay,
		callTimeout:  opts.CallTimeout,
		logger:       opts.Logger,
	}
}

// Run executes the full pipeline for one run. The initial snapshot must
// already be persisted by the caller; Run broadcasts it, executes the fixed
// stages and the convergence loop, then stamps exactly one terminal snapshot
// (Complete or Error). Run has no return value: results surface only through
// the store and the hub. Failure is contained to this run.
func (r *Runner) Run(ctx context.Context, initial *prd.Snapshot) {
	ctx = logging.WithRunID(ctx, initial.RunID)
	r.logger.InfoContext(ctx, "pipeline started", "revision", initial.Revision)

	r.broadcast(ctx, initial)

	final, err := r.execute(ctx, initial)
	if err != nil {
		r.fail(ctx, final, err)
		return
	}

	terminal := final.Next(prd.StepComplete, final.Content, diff.Compute(final.Content, final.Content))
	if err := r.persist(ctx, terminal); err != nil {
		r.fail(ctx, final, err)
		return
	}
	r.broadcast(ctx, terminal)
	r.logger.InfoContext(ctx, "pipeline complete", "revision", terminal.Revision)
}

// execute runs the linear stages and the loop, returning the last good
// snapshot alongside any error so the caller can stamp the terminal record.
func (r *Runner) execute(ctx context.Context, cur *prd.Snapshot) (*prd.Snapshot, error) {
	type stage struct {
		step prd.Step
		fn   func(context.Context, *prd.Snapshot) (*prd.Snapshot, error)
	}
	stages := []stage{
		{prd.StepOutline, r.outlineStage},
		{prd.StepDraft, r.draftStage},
	}

	for _, st := range stages {
		stepCtx := logging.WithStep(ctx, string(st.step))
		next, err := st.fn(stepCtx, cur)
		if err != nil {
			return cur, prd.NewError(prd.ErrCodeInternal, "stage failed").
				WithRun(cur.RunID).WithStep(st.step).WithCause(err)
		}
		r.broadcast(stepCtx, next)
		cur = next
	}

	loopCtx := logging.WithStep(ctx, string(prd.StepCritique))
	final, err := r.runCritiqueLoop(loopCtx, cur)
	if err != nil {
		return final, prd.NewError(prd.ErrCodeInternal, "critique loop failed").
			WithRun(cur.RunID).WithStep(prd.StepCritique).WithCause(err)
	}
	return final, nil
}

// fail stamps the single Error terminal snapshot for the run. The failure
// description is appended to the last good content, never replacing it, and
// the diff carries the error sentinel. A store failure while writing the
// Error snapshot itself is logged and abandoned; the run produces at most
// one terminal record either way.
func (r *Runner) fail(ctx context.Context, last *prd.Snapshot, cause error) {
	r.logger.ErrorContext(ctx, "pipeline failed", "error", cause.Error(), "revision", last.Revision)

	content := last.Content + errorDelimiter + cause.Error()
	terminal := last.Next(prd.StepError, content, diff.ErrorSentinel)
	if err := r.store.SaveSnapshot(ctx, terminal); err != nil {
		r.logger.ErrorContext(ctx, "failed to persist error snapshot", "error", err.Error())
	}
	r.broadcast(ctx, terminal)
}

// generate issues one LLM call under the per-call timeout.
func (r *Runner) generate(ctx context.Context, p string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	text, err := r.client.Generate(callCtx, p)
	if err != nil {
		return "", prd.NewError(prd.ErrCodeLLM, "llm call failed").WithCause(err)
	}
	return text, nil
}

// persist saves a snapshot; a persistence failure is fatal to the run since
// progress that is not durably recorded did not reliably happen.
func (r *Runner) persist(ctx context.Context, snap *prd.Snapshot) error {
	if err := r.store.SaveSnapshot(ctx, snap); err != nil {
		return prd.NewError(prd.ErrCodeStore, "persist snapshot").
			WithRun(snap.RunID).WithStep(snap.Step).WithCause(err)
	}
	return nil
}

// broadcast pushes a snapshot to the hub, fire and forget. Streaming is
// best-effort; a delivery problem never affects the run.
func (r *Runner) broadcast(ctx context.Context, snap *prd.Snapshot) {
	if r.hub == nil {
		return
	}
	if err := r.hub.Publish(ctx, snap); err != nil {
		r.logger.WarnContext(ctx, "snapshot broadcast failed", "error", err.Error())
	}
}
