package domain

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"     // Created, awaiting start
	StatusInProgress Status = "in_progress" // Work underway
	StatusCompleted  Status = "completed"   // Finished
	StatusCancelled  Status = "cancelled"   // Abandoned
)

// AllStatuses returns all valid status values.
func AllStatuses() []Status {
	return []Status{
		StatusPending,
		StatusInProgress,
		StatusCompleted,
		StatusCancelled,
	}
}

// transitions defines the allowed status transitions.
// Flow: pending → in_progress → completed
//
//	└──────────┴────→ cancelled
var transitions = map[Status][]Status{
	StatusPending:    {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled, StatusPending},
	StatusCompleted:  {},
	StatusCancelled:  {StatusPending},
}

// CanTransitionTo returns true if the status can transition to the target status.
// A transition to the same status is always allowed.
func (s Status) CanTransitionTo(target Status) bool {
	if s == target {
		return true
	}
	allowed, ok := transitions[s]
	if !ok {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if the status is a terminal state.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// IsValid returns true if the status is a known valid value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Display returns a human-readable representation of the status.
func (s Status) Display() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}
