package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors.
var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrResourceNotFound   = errors.New("resource not found")
	ErrSelfDependency     = errors.New("task depends on itself")
	ErrGraphNotValidated  = errors.New("graph has not passed cycle validation")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidPriority    = errors.New("invalid priority")
	ErrInvalidEdgeType    = errors.New("invalid dependency type")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrNegativeDuration   = errors.New("duration cannot be negative")
	ErrEmptyTitle         = errors.New("title cannot be empty")
	ErrDuplicateTaskID    = errors.New("duplicate task ID")
	ErrInvalidOperation   = errors.New("invalid bulk operation")
	ErrOperationRunning   = errors.New("operation already started")
	ErrNotInitialized     = errors.New("workspace not initialized (run 'planweave init' first)")
	ErrAlreadyInitialized = errors.New("workspace already initialized")
)

// CycleError reports one or more circular dependency chains.
// It is fatal to critical-path analysis and to cascade resolution.
type CycleError struct {
	Cycles [][]string // Each cycle as an ordered sequence of task IDs
}

// Error returns a description listing every detected cycle.
func (e *CycleError) Error() string {
	var b strings.Builder
	b.WriteString("dependency cycle detected")
	for _, c := range e.Cycles {
		b.WriteString(": ")
		b.WriteString(strings.Join(c, " -> "))
	}
	return b.String()
}

// MutationError is a per-unit failure surfaced by the mutation
// collaborator. Transient errors drive retry; permanent errors count
// as failures immediately. Unclassified errors are treated as permanent.
type MutationError struct {
	Err       error  // Underlying cause
	TaskID    string // Unit that failed
	Transient bool   // True if a retry may succeed
}

// Error returns the failure description.
func (e *MutationError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("mutation failed for task %s (%s): %v", e.TaskID, kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *MutationError) Unwrap() error {
	return e.Err
}

// NewTransientMutationError wraps err as a retryable mutation failure.
func NewTransientMutationError(taskID string, err error) *MutationError {
	return &MutationError{TaskID: taskID, Transient: true, Err: err}
}

// NewPermanentMutationError wraps err as a non-retryable mutation failure.
func NewPermanentMutationError(taskID string, err error) *MutationError {
	return &MutationError{TaskID: taskID, Transient: false, Err: err}
}

// RollbackError reports that reverting a partially-applied bulk
// operation itself failed. Data may be in a mixed state and manual
// reconciliation may be needed.
type RollbackError struct {
	Failures []UnitFailure // Units whose restore failed
}

// Error returns the failure description.
func (e *RollbackError) Error() string {
	return fmt.Sprintf("rollback failed for %d task(s); manual reconciliation may be needed", len(e.Failures))
}
