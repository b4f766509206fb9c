package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/planweave/planweave/internal/domain"
	"github.com/planweave/planweave/internal/infra/taskfile"
)

// ImportTasksInput contains the parameters for importing a plan file.
type ImportTasksInput struct {
	Path string // Plan file path (required)
}

// ImportTasksOutput contains the result of an import.
type ImportTasksOutput struct {
	ProjectID   string
	Imported    int
	Resources   int
	Assignments int
}

// ImportTasks is the use case for importing tasks, resources, and
// assignments from a YAML plan file.
type ImportTasks struct {
	tasks     domain.TaskRepository
	resources domain.ResourceRepository
	clock     domain.Clock
	logger    domain.Logger
}

// NewImportTasks creates a new ImportTasks use case.
func NewImportTasks(tasks domain.TaskRepository, resources domain.ResourceRepository, clock domain.Clock, logger domain.Logger) *ImportTasks {
	return &ImportTasks{
		tasks:     tasks,
		resources: resources,
		clock:     clock,
		logger:    logger,
	}
}

// Execute imports a plan file. Tasks without an ID are assigned a
// generated one; a task whose ID already exists in the store is
// rejected rather than overwritten.
func (uc *ImportTasks) Execute(_ context.Context, in ImportTasksInput) (*ImportTasksOutput, error) {
	f, err := taskfile.Load(in.Path)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	for _, task := range f.Tasks {
		if task.ID == "" {
			task.ID = uuid.NewString()
		}
		existing, err := uc.tasks.Get(task.ID)
		if err != nil {
			return nil, fmt.Errorf("get task: %w", err)
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateTaskID, task.ID)
		}
		task.Created = now
		if err := uc.tasks.Save(task); err != nil {
			return nil, fmt.Errorf("save task: %w", err)
		}
	}

	for _, r := range f.Resources {
		if err := uc.resources.SaveResource(r); err != nil {
			return nil, fmt.Errorf("save resource: %w", err)
		}
	}
	for _, a := range f.Assignments {
		if err := uc.resources.SaveAssignment(a); err != nil {
			return nil, fmt.Errorf("save assignment: %w", err)
		}
	}

	uc.logger.Info("import", fmt.Sprintf("imported %d tasks, %d resources, %d assignments from %s",
		len(f.Tasks), len(f.Resources), len(f.Assignments), in.Path))

	return &ImportTasksOutput{
		ProjectID:   f.Project,
		Imported:    len(f.Tasks),
		Resources:   len(f.Resources),
		Assignments: len(f.Assignments),
	}, nil
}
