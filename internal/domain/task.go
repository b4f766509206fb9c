// Package domain contains core business entities and interfaces.
package domain

import "time"

// TaskRecord is the persisted unit of work with scheduling-relevant fields.
// All time quantities are expressed in minutes; durations are non-negative.
// Fields are ordered to minimize memory padding.
type TaskRecord struct {
	Created      time.Time    `json:"created"`              // Creation time
	StartMins    *int64       `json:"startMins,omitempty"`  // Earliest-allowed start (minutes from project origin)
	DueMins      *int64       `json:"dueMins,omitempty"`    // Target finish (minutes from project origin)
	ID           string       `json:"-"`                    // Task ID (stored as map key, not in value)
	Title        string       `json:"title"`                // Title (required)
	ProjectID    string       `json:"projectID,omitempty"`  // Owning project (empty = unassigned)
	ResourceID   string       `json:"resourceID,omitempty"` // Assigned resource (empty = unassigned)
	Status       Status       `json:"status"`               // Current status
	Priority     Priority     `json:"priority"`             // Scheduling priority
	Depends      []Dependency `json:"depends,omitempty"`    // Tasks that must precede this one
	Tags         []string     `json:"tags,omitempty"`       // Tags
	DurationMins int64        `json:"durationMins"`         // Estimated duration (0 = milestone)
}

// IsMilestone returns true if the task has zero estimated duration.
func (t *TaskRecord) IsMilestone() bool {
	return t.DurationMins == 0
}

// DependsOn returns true if the task declares a dependency on the given ID.
func (t *TaskRecord) DependsOn(id string) bool {
	for _, d := range t.Depends {
		if d.OnID == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the task record.
// Used to snapshot pre-mutation state for rollback.
func (t *TaskRecord) Clone() *TaskRecord {
	c := *t
	if t.StartMins != nil {
		v := *t.StartMins
		c.StartMins = &v
	}
	if t.DueMins != nil {
		v := *t.DueMins
		c.DueMins = &v
	}
	if t.Depends != nil {
		c.Depends = make([]Dependency, len(t.Depends))
		copy(c.Depends, t.Depends)
	}
	if t.Tags != nil {
		c.Tags = make([]string, len(t.Tags))
		copy(c.Tags, t.Tags)
	}
	return &c
}

// Dependency declares that another task must precede this one,
// per the edge type, with a signed lag offset between the reference
// events. Negative lag represents lead time.
// Fields are ordered to minimize memory padding.
type Dependency struct {
	OnID    string   `json:"on"`                // Predecessor task ID
	Type    EdgeType `json:"type,omitempty"`    // Relation type (empty = finish_to_start)
	LagMins int64    `json:"lagMins,omitempty"` // Signed offset in minutes
}

// EdgeType identifies the precedence relation between two tasks.
type EdgeType string

const (
	EdgeFinishToStart  EdgeType = "finish_to_start"  // Predecessor finishes before successor starts
	EdgeStartToStart   EdgeType = "start_to_start"   // Predecessor starts before successor starts
	EdgeFinishToFinish EdgeType = "finish_to_finish" // Predecessor finishes before successor finishes
	EdgeStartToFinish  EdgeType = "start_to_finish"  // Predecessor starts before successor finishes
)

// Normalize returns the edge type with the empty value defaulted to finish_to_start.
func (e EdgeType) Normalize() EdgeType {
	if e == "" {
		return EdgeFinishToStart
	}
	return e
}

// IsValid returns true if the edge type is a known valid value.
// The empty value is valid and means finish_to_start.
func (e EdgeType) IsValid() bool {
	switch e {
	case "", EdgeFinishToStart, EdgeStartToStart, EdgeFinishToFinish, EdgeStartToFinish:
		return true
	default:
		return false
	}
}

// UnresolvedDependency records a dependency identifier that did not
// resolve to any task in the analysis population. The edge is omitted;
// this is a warning, not a failure.
type UnresolvedDependency struct {
	TaskID    string // Task declaring the dependency
	MissingID string // Identifier that did not resolve
}

// String returns a human-readable description of the warning.
func (u UnresolvedDependency) String() string {
	return "task " + u.TaskID + ": dependency " + u.MissingID + " not found in population, edge omitted"
}
