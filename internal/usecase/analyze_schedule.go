package usecase

import (
	"context"
	"fmt"

	"github.com/planweave/planweave/internal/domain"
	"github.com/planweave/planweave/internal/graph"
	"github.com/planweave/planweave/internal/schedule"
)

// AnalyzeScheduleInput contains the parameters for schedule analysis.
type AnalyzeScheduleInput struct {
	Filter domain.TaskFilter // Population selector
}

// AnalyzeScheduleOutput contains the analysis result.
type AnalyzeScheduleOutput struct {
	Result *domain.ScheduleResult
	Graph  *graph.DependencyGraph
	Tasks  []*domain.TaskRecord
}

// AnalyzeSchedule is the use case for critical-path analysis over the
// selected task population.
type AnalyzeSchedule struct {
	tasks  domain.TaskSource
	logger domain.Logger
}

// NewAnalyzeSchedule creates a new AnalyzeSchedule use case.
func NewAnalyzeSchedule(tasks domain.TaskSource, logger domain.Logger) *AnalyzeSchedule {
	return &AnalyzeSchedule{
		tasks:  tasks,
		logger: logger,
	}
}

// Execute builds the dependency graph for the selected population,
// validates it, and runs the forward/backward analysis. A cyclic
// population fails with *domain.CycleError listing every cycle.
func (uc *AnalyzeSchedule) Execute(_ context.Context, in AnalyzeScheduleInput) (*AnalyzeScheduleOutput, error) {
	tasks, err := uc.tasks.List(in.Filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	g, err := graph.Build(tasks)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	result, err := schedule.Analyze(g)
	if err != nil {
		return nil, err
	}
	for _, w := range result.Warnings {
		uc.logger.Warn("analyze", w.String())
	}
	uc.logger.Info("analyze", fmt.Sprintf("analyzed %d tasks, critical path length %d, total duration %d mins",
		len(tasks), len(result.CriticalPath), result.TotalDurationMins))

	return &AnalyzeScheduleOutput{Result: result, Graph: g, Tasks: tasks}, nil
}
