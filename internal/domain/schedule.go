package domain

// TaskSchedule holds the per-task output of critical-path analysis.
// All times are minutes from the project origin.
// Fields are ordered to minimize memory padding.
type TaskSchedule struct {
	TaskID          string `json:"taskID"`
	EarlyStartMins  int64  `json:"earlyStartMins"`
	EarlyFinishMins int64  `json:"earlyFinishMins"`
	LateStartMins   int64  `json:"lateStartMins"`
	LateFinishMins  int64  `json:"lateFinishMins"`
	TotalSlackMins  int64  `json:"totalSlackMins"`
	FreeSlackMins   int64  `json:"freeSlackMins"`
	OnCriticalPath  bool   `json:"onCriticalPath"`
}

// ScheduleResult is the output of critical-path analysis over an
// acyclic-validated dependency graph.
type ScheduleResult struct {
	Tasks             map[string]*TaskSchedule `json:"tasks"`
	Order             []string                 `json:"order"`             // Topological order used by the passes
	CriticalPath      []string                 `json:"criticalPath"`      // One reconstructed source-to-sink chain
	Warnings          []UnresolvedDependency   `json:"-"`                 // Unresolved dependencies, edges omitted
	TotalDurationMins int64                    `json:"totalDurationMins"` // Finish time of the last critical-path task
}

// Schedule returns the per-task schedule, or nil if the task is unknown.
func (r *ScheduleResult) Schedule(taskID string) *TaskSchedule {
	return r.Tasks[taskID]
}

// Overallocation identifies a resource and time window whose aggregate
// allocated effort exceeded capacity and could not be resolved within
// the leveling iteration budget.
type Overallocation struct {
	ResourceID      string `json:"resourceID"`
	WindowStartMins int64  `json:"windowStartMins"`
}

// LevelingResult is the output of resource leveling: the adjusted
// per-task start/finish times plus the total schedule extension
// relative to the unleveled critical-path duration.
type LevelingResult struct {
	StartMins     map[string]int64 `json:"startMins"`
	FinishMins    map[string]int64 `json:"finishMins"`
	Unresolved    []Overallocation `json:"unresolved,omitempty"`
	ExtensionMins int64            `json:"extensionMins"`
	Iterations    int              `json:"iterations"`
}

// Resolved returns true if leveling eliminated every overallocation
// within the iteration budget.
func (r *LevelingResult) Resolved() bool {
	return len(r.Unresolved) == 0
}
