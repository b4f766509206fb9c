// Package app provides the dependency injection container for the application.
package app

import (
	"path/filepath"

	"github.com/planweave/planweave/internal/domain"
	"github.com/planweave/planweave/internal/infra/config"
	"github.com/planweave/planweave/internal/infra/jsonstore"
	"github.com/planweave/planweave/internal/infra/logging"
	"github.com/planweave/planweave/internal/usecase"
)

// WorkspaceDirName is the planweave directory inside a project.
const WorkspaceDirName = ".planweave"

// Paths holds the application file locations.
type Paths struct {
	Root         string // Project root directory
	WorkspaceDir string // Path to the .planweave directory
	StorePath    string // Path to plan.json
}

// newPaths derives the application paths from the project root.
func newPaths(root string) Paths {
	workspaceDir := filepath.Join(root, WorkspaceDirName)
	return Paths{
		Root:         root,
		WorkspaceDir: workspaceDir,
		StorePath:    filepath.Join(workspaceDir, "plan.json"),
	}
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Tasks            domain.TaskRepository
	Resources        domain.ResourceRepository
	Mutator          domain.TaskMutator
	StoreInitializer domain.StoreInitializer
	ConfigLoader     domain.ConfigLoader
	Clock            domain.Clock
	Logger           domain.Logger

	// Configuration
	Paths Paths
}

// New creates a new Container rooted at the given project directory.
func New(root string) (*Container, error) {
	paths := newPaths(root)

	store := jsonstore.New(paths.StorePath)
	configLoader := config.NewLoader(paths.WorkspaceDir)

	// Log level comes from config; fall back to defaults when the
	// workspace is not initialized yet.
	cfg, err := configLoader.Load()
	if err != nil {
		cfg = domain.NewDefaultConfig()
	}
	logger := logging.New(paths.WorkspaceDir, logging.ParseLevel(cfg.Log.Level))

	return &Container{
		Tasks:            store,
		Resources:        store,
		Mutator:          store,
		StoreInitializer: store,
		ConfigLoader:     configLoader,
		Clock:            domain.RealClock{},
		Logger:           logger,
		Paths:            paths,
	}, nil
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(paths Paths, tasks domain.TaskRepository, resources domain.ResourceRepository, mutator domain.TaskMutator, storeInit domain.StoreInitializer, loader domain.ConfigLoader, clock domain.Clock, logger domain.Logger) *Container {
	return &Container{
		Tasks:            tasks,
		Resources:        resources,
		Mutator:          mutator,
		StoreInitializer: storeInit,
		ConfigLoader:     loader,
		Clock:            clock,
		Logger:           logger,
		Paths:            paths,
	}
}

// UseCase factory methods

// InitUseCase returns a new Init use case.
func (c *Container) InitUseCase() *usecase.Init {
	return usecase.NewInit(c.StoreInitializer)
}

// ImportTasksUseCase returns a new ImportTasks use case.
func (c *Container) ImportTasksUseCase() *usecase.ImportTasks {
	return usecase.NewImportTasks(c.Tasks, c.Resources, c.Clock, c.Logger)
}

// ListTasksUseCase returns a new ListTasks use case.
func (c *Container) ListTasksUseCase() *usecase.ListTasks {
	return usecase.NewListTasks(c.Tasks)
}

// AnalyzeScheduleUseCase returns a new AnalyzeSchedule use case.
func (c *Container) AnalyzeScheduleUseCase() *usecase.AnalyzeSchedule {
	return usecase.NewAnalyzeSchedule(c.Tasks, c.Logger)
}

// LevelScheduleUseCase returns a new LevelSchedule use case.
func (c *Container) LevelScheduleUseCase() *usecase.LevelSchedule {
	return usecase.NewLevelSchedule(c.AnalyzeScheduleUseCase(), c.Resources, c.Logger)
}

// BulkUpdateUseCase returns a new BulkUpdate use case.
func (c *Container) BulkUpdateUseCase() *usecase.BulkUpdate {
	return usecase.NewBulkUpdate(c.Tasks, c.Mutator, c.Logger)
}
