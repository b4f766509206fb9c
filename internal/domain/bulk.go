package domain

import "fmt"

// OperationKind discriminates the closed set of bulk operation kinds.
type OperationKind string

const (
	OpKindFieldUpdate      OperationKind = "field_update"
	OpKindStatusTransition OperationKind = "status_transition"
	OpKindTagMutation      OperationKind = "tag_mutation"
	OpKindProjectMigration OperationKind = "project_migration"
)

// BulkOperation is a tagged-variant describing one logical mutation
// applied to every task in a bulk operation. Exactly the payload for
// Kind is set; the engine and collaborators switch on Kind so the
// contract stays exhaustively checkable.
type BulkOperation struct {
	Field   *FieldUpdate      // Kind == OpKindFieldUpdate
	Status  *StatusTransition // Kind == OpKindStatusTransition
	Tags    *TagMutation      // Kind == OpKindTagMutation
	Migrate *ProjectMigration // Kind == OpKindProjectMigration
	Kind    OperationKind
}

// FieldUpdate changes one or more scalar fields. Nil fields are left
// unchanged; at least one must be set.
type FieldUpdate struct {
	Priority     *Priority
	DurationMins *int64
	DueMins      *int64
	ResourceID   *string
}

// StatusTransition moves tasks to a new lifecycle state. The
// collaborator rejects transitions the status machine does not allow.
type StatusTransition struct {
	To Status
}

// TagMutation adds and removes tags.
type TagMutation struct {
	Add    []string
	Remove []string
}

// ProjectMigration moves tasks to another project.
type ProjectMigration struct {
	ToProjectID string
}

// Validate checks that the operation carries exactly the payload its
// kind requires and that the payload is well formed.
func (op BulkOperation) Validate() error {
	switch op.Kind {
	case OpKindFieldUpdate:
		if op.Field == nil {
			return fmt.Errorf("%w: missing field payload", ErrInvalidOperation)
		}
		f := op.Field
		if f.Priority == nil && f.DurationMins == nil && f.DueMins == nil && f.ResourceID == nil {
			return fmt.Errorf("%w: field update changes nothing", ErrInvalidOperation)
		}
		if f.Priority != nil && !f.Priority.IsValid() {
			return fmt.Errorf("%w: %s", ErrInvalidPriority, *f.Priority)
		}
		if f.DurationMins != nil && *f.DurationMins < 0 {
			return ErrNegativeDuration
		}
		return nil
	case OpKindStatusTransition:
		if op.Status == nil {
			return fmt.Errorf("%w: missing status payload", ErrInvalidOperation)
		}
		if !op.Status.To.IsValid() {
			return fmt.Errorf("%w: %s", ErrInvalidStatus, op.Status.To)
		}
		return nil
	case OpKindTagMutation:
		if op.Tags == nil {
			return fmt.Errorf("%w: missing tags payload", ErrInvalidOperation)
		}
		if len(op.Tags.Add) == 0 && len(op.Tags.Remove) == 0 {
			return fmt.Errorf("%w: tag mutation changes nothing", ErrInvalidOperation)
		}
		return nil
	case OpKindProjectMigration:
		if op.Migrate == nil {
			return fmt.Errorf("%w: missing migration payload", ErrInvalidOperation)
		}
		if op.Migrate.ToProjectID == "" {
			return fmt.Errorf("%w: migration target project is empty", ErrInvalidOperation)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidOperation, op.Kind)
	}
}

// OperationState is the lifecycle state of a bulk operation.
type OperationState string

const (
	OpPending         OperationState = "pending"
	OpRunning         OperationState = "running"
	OpCompleted       OperationState = "completed"
	OpPartiallyFailed OperationState = "partially_failed"
	OpRolledBack      OperationState = "rolled_back"
)

// IsTerminal returns true if the state is a terminal state.
func (s OperationState) IsTerminal() bool {
	return s == OpCompleted || s == OpPartiallyFailed || s == OpRolledBack
}

// UnitFailure records the final error for one task that could not be
// mutated (or, during rollback, could not be restored).
type UnitFailure struct {
	Err    error
	TaskID string
}

// BulkOperationResult is the complete accounting of one bulk operation.
// Invariant: Processed + Failed == Total on any terminal state.
// Fields are ordered to minimize memory padding.
type BulkOperationResult struct {
	Failures          []UnitFailure  // Per-unit errors for attempted-and-failed tasks
	RollbackFailures  []UnitFailure  // Restores that failed (data may be in a mixed state)
	Status            OperationState // Terminal state
	Total             int            // Tasks requested (after cascade expansion and dedup)
	Processed         int            // Tasks successfully committed
	Failed            int            // Total - Processed (attempted failures plus never-attempted)
	Retried           int            // Individual retry attempts across all tasks
	RollbackRequested bool
	RollbackAttempted bool
	RollbackSucceeded bool
}

// ProgressSnapshot is a point-in-time view of a bulk operation.
// Fraction is monotone and reaches exactly 1.0 only in a terminal state.
type ProgressSnapshot struct {
	State     OperationState
	Total     int
	Committed int
	Failed    int
	Fraction  float64
}
