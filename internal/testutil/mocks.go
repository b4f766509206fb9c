// Package testutil provides mock implementations of domain ports for testing.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/planweave/planweave/internal/domain"
)

// Compile-time interface checks.
var (
	_ domain.TaskRepository     = (*MockTaskRepository)(nil)
	_ domain.ResourceRepository = (*MockResourceRepository)(nil)
	_ domain.TaskMutator        = (*MockMutator)(nil)
	_ domain.ProgressSink       = (*MockSink)(nil)
	_ domain.Logger             = (*MockLogger)(nil)
	_ domain.Clock              = (*MockClock)(nil)
	_ domain.StoreInitializer   = (*MockInitializer)(nil)
)

// MockTaskRepository is a mock implementation of domain.TaskRepository.
type MockTaskRepository struct {
	Tasks map[string]*domain.TaskRecord

	ListErr   error
	GetErr    error
	SaveErr   error
	DeleteErr error

	Saved   []*domain.TaskRecord
	Deleted []string
}

// NewMockTaskRepository creates an empty mock repository.
func NewMockTaskRepository() *MockTaskRepository {
	return &MockTaskRepository{Tasks: make(map[string]*domain.TaskRecord)}
}

// Add stores tasks keyed by their IDs.
func (m *MockTaskRepository) Add(tasks ...*domain.TaskRecord) {
	for _, t := range tasks {
		m.Tasks[t.ID] = t
	}
}

// List returns tasks matching the filter, in map iteration order.
func (m *MockTaskRepository) List(filter domain.TaskFilter) ([]*domain.TaskRecord, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var out []*domain.TaskRecord
	for _, t := range m.Tasks {
		if filter.ProjectID != "" && t.ProjectID != filter.ProjectID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, t.Status) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// Get returns the stored task, or nil if absent.
func (m *MockTaskRepository) Get(id string) (*domain.TaskRecord, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.Tasks[id], nil
}

// Save records the task.
func (m *MockTaskRepository) Save(task *domain.TaskRecord) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Tasks[task.ID] = task
	m.Saved = append(m.Saved, task)
	return nil
}

// Delete removes the task.
func (m *MockTaskRepository) Delete(id string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.Tasks, id)
	m.Deleted = append(m.Deleted, id)
	return nil
}

func containsStatus(statuses []domain.Status, s domain.Status) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}

// MockResourceRepository is a mock implementation of domain.ResourceRepository.
type MockResourceRepository struct {
	Resources   []domain.Resource
	Assignments []domain.Assignment

	ListResourcesErr   error
	SaveResourceErr    error
	ListAssignmentsErr error
	SaveAssignmentErr  error
}

// ListResources returns the stored resources.
func (m *MockResourceRepository) ListResources() ([]domain.Resource, error) {
	if m.ListResourcesErr != nil {
		return nil, m.ListResourcesErr
	}
	return m.Resources, nil
}

// SaveResource records the resource.
func (m *MockResourceRepository) SaveResource(r domain.Resource) error {
	if m.SaveResourceErr != nil {
		return m.SaveResourceErr
	}
	m.Resources = append(m.Resources, r)
	return nil
}

// ListAssignments returns the stored assignments.
func (m *MockResourceRepository) ListAssignments() ([]domain.Assignment, error) {
	if m.ListAssignmentsErr != nil {
		return nil, m.ListAssignmentsErr
	}
	return m.Assignments, nil
}

// SaveAssignment records the assignment.
func (m *MockResourceRepository) SaveAssignment(a domain.Assignment) error {
	if m.SaveAssignmentErr != nil {
		return m.SaveAssignmentErr
	}
	m.Assignments = append(m.Assignments, a)
	return nil
}

// MockMutator is a mock implementation of domain.TaskMutator with
// configurable failure injection. It is safe for concurrent use.
type MockMutator struct {
	mu sync.Mutex

	// Tasks is the mutable store the mock applies operations to.
	Tasks map[string]*domain.TaskRecord

	// ApplyErrs maps task IDs to errors returned on every Apply.
	ApplyErrs map[string]error

	// TransientFailures maps task IDs to the number of leading Apply
	// calls that fail with a transient error before succeeding.
	TransientFailures map[string]int

	// RestoreErr, when set, is returned by every Restore call.
	RestoreErr error

	Applied  []string
	Restored []string
	attempts map[string]int
}

// NewMockMutator creates a mock mutator seeded with the given tasks.
func NewMockMutator(tasks ...*domain.TaskRecord) *MockMutator {
	m := &MockMutator{
		Tasks:             make(map[string]*domain.TaskRecord),
		ApplyErrs:         make(map[string]error),
		TransientFailures: make(map[string]int),
		attempts:          make(map[string]int),
	}
	for _, t := range tasks {
		m.Tasks[t.ID] = t
	}
	return m
}

// Apply applies the operation to the stored task, honoring the
// configured failure injections.
func (m *MockMutator) Apply(_ context.Context, taskID string, op domain.BulkOperation) (*domain.TaskRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts[taskID]++
	if n, ok := m.TransientFailures[taskID]; ok && m.attempts[taskID] <= n {
		return nil, domain.NewTransientMutationError(taskID, errTransient)
	}
	if err, ok := m.ApplyErrs[taskID]; ok {
		return nil, err
	}

	task, ok := m.Tasks[taskID]
	if !ok {
		return nil, domain.NewPermanentMutationError(taskID, domain.ErrTaskNotFound)
	}
	prev := task.Clone()

	switch op.Kind {
	case domain.OpKindFieldUpdate:
		if op.Field.Priority != nil {
			task.Priority = *op.Field.Priority
		}
		if op.Field.DurationMins != nil {
			task.DurationMins = *op.Field.DurationMins
		}
		if op.Field.DueMins != nil {
			v := *op.Field.DueMins
			task.DueMins = &v
		}
		if op.Field.ResourceID != nil {
			task.ResourceID = *op.Field.ResourceID
		}
	case domain.OpKindStatusTransition:
		task.Status = op.Status.To
	case domain.OpKindTagMutation:
		task.Tags = append(task.Tags, op.Tags.Add...)
	case domain.OpKindProjectMigration:
		task.ProjectID = op.Migrate.ToProjectID
	}

	m.Applied = append(m.Applied, taskID)
	return prev, nil
}

// Restore writes the snapshot back into the store.
func (m *MockMutator) Restore(_ context.Context, prev *domain.TaskRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.RestoreErr != nil {
		return m.RestoreErr
	}
	m.Tasks[prev.ID] = prev.Clone()
	m.Restored = append(m.Restored, prev.ID)
	return nil
}

// Attempts returns the number of Apply calls seen for a task.
func (m *MockMutator) Attempts(taskID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts[taskID]
}

// AppliedIDs returns a copy of the applied task IDs.
func (m *MockMutator) AppliedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.Applied...)
}

// RestoredIDs returns a copy of the restored task IDs.
func (m *MockMutator) RestoredIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.Restored...)
}

type transientError struct{}

func (transientError) Error() string { return "transient store failure" }

var errTransient = transientError{}

// MockSink is a mock implementation of domain.ProgressSink that
// records every published snapshot.
type MockSink struct {
	mu        sync.Mutex
	Snapshots []domain.ProgressSnapshot
}

// Publish records the snapshot.
func (m *MockSink) Publish(s domain.ProgressSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Snapshots = append(m.Snapshots, s)
}

// All returns a copy of the recorded snapshots.
func (m *MockSink) All() []domain.ProgressSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ProgressSnapshot{}, m.Snapshots...)
}

// MockLogger is a mock implementation of domain.Logger that records
// formatted entries.
type MockLogger struct {
	mu      sync.Mutex
	Entries []string
}

func (m *MockLogger) log(level, category, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, level+" ["+category+"] "+msg)
}

// Debug records a debug entry.
func (m *MockLogger) Debug(category, msg string) { m.log("DEBUG", category, msg) }

// Info records an info entry.
func (m *MockLogger) Info(category, msg string) { m.log("INFO", category, msg) }

// Warn records a warn entry.
func (m *MockLogger) Warn(category, msg string) { m.log("WARN", category, msg) }

// Error records an error entry.
func (m *MockLogger) Error(category, msg string) { m.log("ERROR", category, msg) }

// MockClock is a mock implementation of domain.Clock returning a fixed time.
type MockClock struct {
	Time time.Time
}

// Now returns the fixed time.
func (m *MockClock) Now() time.Time {
	return m.Time
}

// MockInitializer is a mock implementation of domain.StoreInitializer.
type MockInitializer struct {
	InitErr     error
	Initialized bool
}

// Initialize records the call.
func (m *MockInitializer) Initialize() error {
	if m.InitErr != nil {
		return m.InitErr
	}
	m.Initialized = true
	return nil
}
