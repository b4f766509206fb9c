package usecase

import (
	"context"
	"fmt"

	"github.com/planweave/planweave/internal/domain"
	"github.com/planweave/planweave/internal/level"
)

// LevelScheduleInput contains the parameters for resource leveling.
type LevelScheduleInput struct {
	Filter   domain.TaskFilter
	Config   domain.LevelingConfig
	Baseline *domain.LevelingResult // Prior leveling output to continue from (optional)
}

// LevelScheduleOutput contains the leveling result alongside the
// schedule it was derived from.
type LevelScheduleOutput struct {
	Schedule *domain.ScheduleResult
	Leveling *domain.LevelingResult
	Tasks    []*domain.TaskRecord
}

// LevelSchedule is the use case for resolving resource over-allocation
// on top of an analyzed schedule.
type LevelSchedule struct {
	analyze   *AnalyzeSchedule
	resources domain.ResourceRepository
	logger    domain.Logger
}

// NewLevelSchedule creates a new LevelSchedule use case.
func NewLevelSchedule(analyze *AnalyzeSchedule, resources domain.ResourceRepository, logger domain.Logger) *LevelSchedule {
	return &LevelSchedule{
		analyze:   analyze,
		resources: resources,
		logger:    logger,
	}
}

// Execute analyzes the population, then shifts tasks until no capacity
// window is over-allocated or the iteration budget runs out.
func (uc *LevelSchedule) Execute(ctx context.Context, in LevelScheduleInput) (*LevelScheduleOutput, error) {
	analyzed, err := uc.analyze.Execute(ctx, AnalyzeScheduleInput{Filter: in.Filter})
	if err != nil {
		return nil, err
	}

	resources, err := uc.resources.ListResources()
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	assignments, err := uc.resources.ListAssignments()
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}

	leveler := level.New(in.Config)
	result, err := leveler.Level(level.Input{
		Schedule: analyzed.Result,
		Baseline: in.Baseline,
		Tasks:    analyzed.Tasks,
		Pool: domain.ResourcePool{
			Resources:   resources,
			Assignments: assignments,
		},
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("level", fmt.Sprintf("leveled in %d iterations, %d unresolved, extension %d mins",
		result.Iterations, len(result.Unresolved), result.ExtensionMins))

	return &LevelScheduleOutput{
		Schedule: analyzed.Result,
		Leveling: result,
		Tasks:    analyzed.Tasks,
	}, nil
}
