package domain

import (
	"context"
	"time"
)

// StoreInitializer initializes the data store.
type StoreInitializer interface {
	// Initialize creates the store if it doesn't exist.
	Initialize() error
}

// TaskFilter specifies criteria for listing tasks.
type TaskFilter struct {
	ProjectID string   // Empty = all projects
	Statuses  []Status // Empty = all statuses
	Tags      []string // Filter by tags (AND condition)
}

// TaskSource is the read boundary for the analysis population.
// Analysis never writes through this interface.
type TaskSource interface {
	// List retrieves tasks matching the filter.
	List(filter TaskFilter) ([]*TaskRecord, error)
}

// TaskRepository manages task persistence.
type TaskRepository interface {
	TaskSource

	// Get retrieves a task by ID. Returns nil if not found.
	Get(id string) (*TaskRecord, error)

	// Save creates or updates a task.
	Save(task *TaskRecord) error

	// Delete removes a task by ID.
	Delete(id string) error
}

// TaskMutator is the injected persistence collaborator for bulk
// operations. Apply returns the pre-mutation snapshot of the task so
// the engine can restore it if the operation rolls back. Failures are
// reported as *MutationError where the collaborator can classify them.
type TaskMutator interface {
	// Apply performs the operation on one task and returns its prior state.
	Apply(ctx context.Context, taskID string, op BulkOperation) (*TaskRecord, error)

	// Restore writes a previously returned snapshot back.
	Restore(ctx context.Context, prev *TaskRecord) error
}

// ResourceRepository manages resource and assignment persistence.
type ResourceRepository interface {
	// ListResources retrieves all resources.
	ListResources() ([]Resource, error)

	// SaveResource creates or updates a resource.
	SaveResource(r Resource) error

	// ListAssignments retrieves all assignments.
	ListAssignments() ([]Assignment, error)

	// SaveAssignment records an effort allocation.
	SaveAssignment(a Assignment) error
}

// ErrorClassifier reports whether a mutation failure is transient
// (retryable). Unclassified errors must be treated as permanent.
type ErrorClassifier func(err error) bool

// ProgressSink receives progress snapshots from a running bulk
// operation. Absence of a sink must not change mutation behavior.
type ProgressSink interface {
	// Publish delivers one snapshot. Implementations must not block.
	Publish(ProgressSnapshot)
}

// Logger is the logging port used by the engine and use cases.
type Logger interface {
	Debug(category, msg string)
	Info(category, msg string)
	Warn(category, msg string)
	Error(category, msg string)
}

// NopLogger is a Logger that discards everything.
type NopLogger struct{}

// Debug discards the message.
func (NopLogger) Debug(_, _ string) {}

// Info discards the message.
func (NopLogger) Info(_, _ string) {}

// Warn discards the message.
func (NopLogger) Warn(_, _ string) {}

// Error discards the message.
func (NopLogger) Error(_, _ string) {}

// ConfigLoader loads configuration from files.
type ConfigLoader interface {
	// Load returns the merged configuration (workspace + global).
	Load() (*Config, error)
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}
