package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/planweave/planweave/internal/bulk"
	"github.com/planweave/planweave/internal/domain"
	"github.com/planweave/planweave/internal/graph"
)

// BulkUpdateInput contains the parameters for a bulk operation.
type BulkUpdateInput struct {
	Op      domain.BulkOperation
	Sink    domain.ProgressSink // Receives progress snapshots (optional)
	TaskIDs []string            // Explicitly requested tasks (required)
	Config  domain.EngineConfig
}

// BulkUpdateOutput contains the final accounting of the operation.
type BulkUpdateOutput struct {
	Result *domain.BulkOperationResult
}

// BulkUpdate is the use case for applying one logical mutation to a
// set of tasks with batching, retry, and rollback. An instance runs at
// most one operation.
type BulkUpdate struct {
	tasks   domain.TaskSource
	mutator domain.TaskMutator
	logger  domain.Logger
	mu      sync.Mutex
	started bool
}

// NewBulkUpdate creates a new BulkUpdate use case.
func NewBulkUpdate(tasks domain.TaskSource, mutator domain.TaskMutator, logger domain.Logger) *BulkUpdate {
	return &BulkUpdate{
		tasks:   tasks,
		mutator: mutator,
		logger:  logger,
	}
}

// Execute runs the operation to completion.
func (uc *BulkUpdate) Execute(ctx context.Context, in BulkUpdateInput) (*BulkUpdateOutput, error) {
	op, err := uc.Start(ctx, in)
	if err != nil {
		return nil, err
	}
	return &BulkUpdateOutput{Result: op.Wait()}, nil
}

// Start launches the operation and returns a handle whose progress can
// be polled while it runs. A second Start on the same instance fails
// with domain.ErrOperationRunning.
func (uc *BulkUpdate) Start(ctx context.Context, in BulkUpdateInput) (*bulk.Operation, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.started {
		return nil, domain.ErrOperationRunning
	}
	if len(in.TaskIDs) == 0 {
		return nil, fmt.Errorf("%w: no tasks selected", domain.ErrInvalidOperation)
	}

	// Cascade expansion resolves dependents against the full population.
	var g *graph.DependencyGraph
	if in.Config.Cascade {
		all, err := uc.tasks.List(domain.TaskFilter{})
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		g, err = graph.Build(all)
		if err != nil {
			return nil, fmt.Errorf("build graph: %w", err)
		}
	}

	engine, err := bulk.New(uc.mutator, in.Config, bulk.Options{
		Graph:  g,
		Sink:   in.Sink,
		Logger: uc.logger,
	})
	if err != nil {
		return nil, err
	}
	handle, err := engine.Start(ctx, in.TaskIDs, in.Op)
	if err != nil {
		return nil, err
	}
	uc.started = true
	return handle, nil
}
