// Package bulk applies a single logical mutation to a set of tasks as
// a unit, with batching, bounded concurrency, retry, rollback, and
// progress reporting.
package bulk

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/planweave/planweave/internal/domain"
	"github.com/planweave/planweave/internal/graph"
)

// Options carries the optional collaborators of an Engine.
type Options struct {
	Graph      *graph.DependencyGraph // Required when cascading to dependents
	Classifier domain.ErrorClassifier // Overrides the default transient/permanent heuristic
	Sink       domain.ProgressSink    // Receives progress snapshots (optional)
	Logger     domain.Logger          // Defaults to a no-op logger
}

// Engine executes bulk operations against an injected persistence
// collaborator. The engine itself is stateless across operations;
// each started operation owns its progress and result.
type Engine struct {
	mutator  domain.TaskMutator
	graph    *graph.DependencyGraph
	classify domain.ErrorClassifier
	sink     domain.ProgressSink
	logger   domain.Logger
	cfg      domain.EngineConfig
}

// New creates an Engine. The configuration is validated up front so a
// zero batch size or worker count never reaches execution.
func New(mutator domain.TaskMutator, cfg domain.EngineConfig, opts Options) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &Engine{
		mutator:  mutator,
		graph:    opts.Graph,
		classify: opts.Classifier,
		sink:     opts.Sink,
		logger:   logger,
		cfg:      cfg,
	}, nil
}

// Operation is one in-flight or finished bulk operation. Progress may
// be polled concurrently while the operation runs.
type Operation struct {
	progress *Progress
	done     chan struct{}
	result   *domain.BulkOperationResult
}

// Progress returns a point-in-time progress snapshot.
func (o *Operation) Progress() domain.ProgressSnapshot {
	return o.progress.Snapshot()
}

// Wait blocks until the operation reaches a terminal state and
// returns its result.
func (o *Operation) Wait() *domain.BulkOperationResult {
	<-o.done
	return o.result
}

// Run executes the operation synchronously.
func (e *Engine) Run(ctx context.Context, taskIDs []string, op domain.BulkOperation) (*domain.BulkOperationResult, error) {
	o, err := e.Start(ctx, taskIDs, op)
	if err != nil {
		return nil, err
	}
	return o.Wait(), nil
}

// Start validates the operation, expands the batch plan, and launches
// execution. Pre-flight failures (invalid operation, cycle in the
// graph when cascading) are returned here; per-unit failures are
// aggregated into the result instead.
func (e *Engine) Start(ctx context.Context, taskIDs []string, op domain.BulkOperation) (*Operation, error) {
	if err := op.Validate(); err != nil {
		return nil, err
	}
	plan, err := e.expandPlan(taskIDs)
	if err != nil {
		return nil, err
	}

	o := &Operation{
		progress: newProgress(len(plan)),
		done:     make(chan struct{}),
	}
	go e.execute(ctx, o, plan, op)
	return o, nil
}

// expandPlan deduplicates the requested identifiers and, when
// cascading, folds in the transitive dependents of every task so each
// task is mutated exactly once. Cascade resolution requires an
// acyclic-validated graph.
func (e *Engine) expandPlan(taskIDs []string) ([]string, error) {
	set := make(map[string]bool, len(taskIDs))
	for _, id := range taskIDs {
		set[id] = true
	}

	if e.cfg.Cascade {
		if e.graph == nil {
			return nil, errors.New("cascade requires a dependency graph")
		}
		if !e.graph.Validated() {
			if err := e.graph.Validate(); err != nil {
				return nil, err
			}
		}
		for _, id := range taskIDs {
			dependents, err := e.graph.DependentsOf(id)
			if err != nil {
				return nil, fmt.Errorf("resolve dependents of %s: %w", id, err)
			}
			for _, d := range dependents {
				set[d] = true
			}
		}
	}

	plan := make([]string, 0, len(set))
	for id := range set {
		plan = append(plan, id)
	}
	sort.Strings(plan)
	return plan, nil
}

// execState is the shared mutable state of one executing operation.
// Fields are ordered to minimize memory padding.
type execState struct {
	snapshots []*domain.TaskRecord
	failures  []domain.UnitFailure
	mu        sync.Mutex
	retried   int
	committed int
	stop      bool // Set on failure when rollback is requested
}

func (s *execState) stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop
}

// execute runs the batch plan and finalizes the operation result.
func (e *Engine) execute(ctx context.Context, o *Operation, plan []string, op domain.BulkOperation) {
	defer close(o.done)

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	o.progress.start()
	e.publish(o)

	st := &execState{}
	sem := make(chan struct{}, e.cfg.MaxWorkers)
	var wg sync.WaitGroup

	for _, batch := range chunk(plan, e.cfg.BatchSize) {
		// Cooperative cancellation: stop scheduling new batches, let
		// in-flight batches finish.
		if ctx.Err() != nil || st.stopped() {
			break
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(batch []string) {
			defer wg.Done()
			defer func() { <-sem }()
			e.runBatch(ctx, o, st, batch, op)
		}(batch)
	}
	wg.Wait()

	e.finalize(ctx, o, st, len(plan))
}

// runBatch mutates each task in one batch. The cancellation signal is
// checked between individual task mutations; units skipped after
// cancellation are counted as failed.
func (e *Engine) runBatch(ctx context.Context, o *Operation, st *execState, batch []string, op domain.BulkOperation) {
	for _, id := range batch {
		if err := ctx.Err(); err != nil {
			st.mu.Lock()
			st.failures = append(st.failures, domain.UnitFailure{TaskID: id, Err: err})
			st.mu.Unlock()
			o.progress.fail()
			e.publish(o)
			continue
		}
		if st.stopped() {
			o.progress.fail()
			e.publish(o)
			continue
		}
		e.mutateOne(ctx, o, st, id, op)
	}
}

// mutateOne applies the operation to a single task with bounded retry.
func (e *Engine) mutateOne(ctx context.Context, o *Operation, st *execState, id string, op domain.BulkOperation) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		prev, err := e.mutator.Apply(ctx, id, op)
		if err == nil {
			st.mu.Lock()
			st.snapshots = append(st.snapshots, prev)
			st.committed++
			st.mu.Unlock()
			o.progress.commit()
			e.publish(o)
			return
		}
		lastErr = err

		if !e.transient(err) || attempt >= e.cfg.RetryMaxAttempts {
			break
		}
		st.mu.Lock()
		st.retried++
		st.mu.Unlock()
		e.logger.Warn("bulk", fmt.Sprintf("task %s attempt %d failed, retrying: %v", id, attempt+1, err))

		select {
		case <-time.After(e.backoff(attempt)):
		case <-ctx.Done():
			lastErr = ctx.Err()
		}
		if ctx.Err() != nil {
			break
		}
	}

	e.logger.Error("bulk", fmt.Sprintf("task %s failed: %v", id, lastErr))
	st.mu.Lock()
	st.failures = append(st.failures, domain.UnitFailure{TaskID: id, Err: lastErr})
	if e.cfg.RollbackOnError {
		st.stop = true
	}
	st.mu.Unlock()
	o.progress.fail()
	e.publish(o)
}

// finalize computes the terminal state, performing rollback when
// requested, and publishes the final progress snapshot.
func (e *Engine) finalize(ctx context.Context, o *Operation, st *execState, total int) {
	result := &domain.BulkOperationResult{
		Total:             total,
		Processed:         st.committed,
		Failed:            total - st.committed,
		Retried:           st.retried,
		Failures:          st.failures,
		RollbackRequested: e.cfg.RollbackOnError,
	}

	switch {
	case st.committed == total:
		result.Status = domain.OpCompleted
	case e.cfg.RollbackOnError:
		result.RollbackAttempted = true
		result.RollbackFailures = e.rollback(ctx, st.snapshots)
		if len(result.RollbackFailures) == 0 {
			result.Status = domain.OpRolledBack
			result.RollbackSucceeded = true
		} else {
			result.Status = domain.OpPartiallyFailed
		}
	default:
		result.Status = domain.OpPartiallyFailed
	}

	o.result = result
	o.progress.finalize(result.Status)
	e.publish(o)
	e.logger.Info("bulk", fmt.Sprintf("operation %s: %d/%d committed, %d failed, %d retries",
		result.Status, result.Processed, result.Total, result.Failed, result.Retried))
}

// rollback restores committed snapshots in reverse order. It runs even
// if the operation context was cancelled: abandoning a half-applied
// operation would leave data in a mixed state.
func (e *Engine) rollback(ctx context.Context, snapshots []*domain.TaskRecord) []domain.UnitFailure {
	ctx = context.WithoutCancel(ctx)
	var failures []domain.UnitFailure
	for i := len(snapshots) - 1; i >= 0; i-- {
		prev := snapshots[i]
		if err := e.mutator.Restore(ctx, prev); err != nil {
			e.logger.Error("rollback", fmt.Sprintf("restore task %s: %v", prev.ID, err))
			failures = append(failures, domain.UnitFailure{TaskID: prev.ID, Err: err})
		}
	}
	return failures
}

// transient reports whether a mutation failure is retryable, using the
// configured classifier or the default heuristic. Unclassified errors
// are permanent.
func (e *Engine) transient(err error) bool {
	if e.classify != nil {
		return e.classify(err)
	}
	var merr *domain.MutationError
	if errors.As(err, &merr) {
		return merr.Transient
	}
	return false
}

// backoff returns the delay before retry number attempt (0-based).
func (e *Engine) backoff(attempt int) time.Duration {
	if e.cfg.RetryStrategy == domain.BackoffFixed {
		return e.cfg.RetryBackoff
	}
	return e.cfg.RetryBackoff * time.Duration(1<<attempt)
}

// publish pushes a progress snapshot to the sink, if one is attached.
func (e *Engine) publish(o *Operation) {
	if e.sink != nil {
		e.sink.Publish(o.progress.Snapshot())
	}
}

// chunk partitions ids into batches of at most size elements.
func chunk(ids []string, size int) [][]string {
	var batches [][]string
	for len(ids) > size {
		batches = append(batches, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		batches = append(batches, ids)
	}
	return batches
}
