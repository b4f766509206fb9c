// Package level resolves resource over-allocation by delaying tasks
// within a bounded iteration budget.
package level

import (
	"fmt"
	"slices"
	"sort"

	"github.com/planweave/planweave/internal/domain"
)

// Input is the read-only snapshot consumed by one leveling call.
type Input struct {
	Schedule *domain.ScheduleResult // Analyzed schedule (required)
	Baseline *domain.LevelingResult // Prior leveling output to continue from (optional)
	Tasks    []*domain.TaskRecord   // Task snapshots, for priorities
	Pool     domain.ResourcePool    // Resources and effort assignments
}

// Leveler detects windows where aggregate allocated effort exceeds a
// resource's capacity and delays tasks until no window is over
// capacity or the iteration budget is exhausted.
type Leveler struct {
	cfg domain.LevelingConfig
}

// New creates a Leveler with the given configuration.
func New(cfg domain.LevelingConfig) *Leveler {
	return &Leveler{cfg: cfg}
}

// conflict identifies one over-capacity resource window.
type conflict struct {
	resourceID string
	window     int64
}

// Level resolves over-allocation by delaying tasks in descending order
// of slack-then-priority: higher-priority, lower-slack tasks keep
// their earliest slot; the lowest-priority, highest-slack competitor
// shifts to the next window. Ties fall back to stable ascending task
// ID, delaying the later ID. Tasks are only ever delayed, never
// un-scheduled. Leveling an already-leveled schedule with unchanged
// inputs produces no further shift.
func (l *Leveler) Level(in Input) (*domain.LevelingResult, error) {
	if err := l.cfg.Validate(); err != nil {
		return nil, err
	}
	if in.Schedule == nil {
		return nil, fmt.Errorf("leveling requires an analyzed schedule")
	}

	start := make(map[string]int64, len(in.Schedule.Tasks))
	finish := make(map[string]int64, len(in.Schedule.Tasks))
	for id, ts := range in.Schedule.Tasks {
		start[id] = ts.EarlyStartMins
		finish[id] = ts.EarlyFinishMins
	}
	if in.Baseline != nil {
		for id := range start {
			if s, ok := in.Baseline.StartMins[id]; ok {
				start[id] = s
				finish[id] = in.Baseline.FinishMins[id]
			}
		}
	}

	priorities := make(map[string]domain.Priority, len(in.Tasks))
	for _, t := range in.Tasks {
		priorities[t.ID] = t.Priority.Normalize()
	}

	// Effort allocations per resource, restricted to scheduled tasks.
	type allocation struct {
		taskID string
		effort int64
	}
	byResource := make(map[string][]allocation)
	for _, a := range in.Pool.Assignments {
		if _, ok := start[a.TaskID]; !ok {
			continue
		}
		if in.Pool.Resource(a.ResourceID) == nil {
			continue
		}
		byResource[a.ResourceID] = append(byResource[a.ResourceID], allocation{taskID: a.TaskID, effort: a.EffortPerWindow})
	}
	resourceIDs := make([]string, 0, len(byResource))
	for id := range byResource {
		resourceIDs = append(resourceIDs, id)
	}
	sort.Strings(resourceIDs)

	w := l.cfg.WindowMins
	skipped := make(map[conflict]bool)

	// earliestConflict scans windows chronologically and returns the
	// first over-capacity window not already reported as unresolved.
	earliestConflict := func() (conflict, bool) {
		found := false
		var best conflict
		for _, rid := range resourceIDs {
			capacity := in.Pool.Resource(rid).CapacityPerWindow
			load := make(map[int64]int64)
			for _, a := range byResource[rid] {
				for _, win := range occupiedWindows(start[a.taskID], finish[a.taskID], w) {
					load[win] += a.effort
				}
			}
			for win, effort := range load {
				c := conflict{resourceID: rid, window: win}
				if effort <= capacity || skipped[c] {
					continue
				}
				if !found || win < best.window || (win == best.window && rid < best.resourceID) {
					best = c
					found = true
				}
			}
		}
		return best, found
	}

	result := &domain.LevelingResult{}
	for result.Iterations < l.cfg.MaxIterations {
		c, found := earliestConflict()
		if !found {
			break
		}
		result.Iterations++

		// Competitors in the conflicted window, keep-order first:
		// lower slack, then higher priority, then smaller ID.
		var candidates []string
		for _, a := range byResource[c.resourceID] {
			if slices.Contains(occupiedWindows(start[a.taskID], finish[a.taskID], w), c.window) {
				candidates = append(candidates, a.taskID)
			}
		}
		sort.Slice(candidates, func(i, j int) bool {
			a, b := candidates[i], candidates[j]
			sa, sb := in.Schedule.Tasks[a].TotalSlackMins, in.Schedule.Tasks[b].TotalSlackMins
			if sa != sb {
				return sa < sb
			}
			ra, rb := priorities[a].Rank(), priorities[b].Rank()
			if ra != rb {
				return ra > rb
			}
			return a < b
		})

		if len(candidates) < 2 {
			// A single task exceeds capacity on its own; delaying it
			// cannot help.
			skipped[c] = true
			result.Unresolved = append(result.Unresolved, domain.Overallocation{ResourceID: c.resourceID, WindowStartMins: c.window * w})
			continue
		}

		victim := candidates[len(candidates)-1]
		newStart := (c.window + 1) * w
		if newStart <= start[victim] {
			skipped[c] = true
			result.Unresolved = append(result.Unresolved, domain.Overallocation{ResourceID: c.resourceID, WindowStartMins: c.window * w})
			continue
		}
		delta := newStart - start[victim]
		start[victim] += delta
		finish[victim] += delta
	}

	// Budget exhausted with a conflict still open.
	if c, found := earliestConflict(); found {
		result.Unresolved = append(result.Unresolved, domain.Overallocation{ResourceID: c.resourceID, WindowStartMins: c.window * w})
	}

	result.StartMins = start
	result.FinishMins = finish
	var maxFinish int64
	for _, f := range finish {
		if f > maxFinish {
			maxFinish = f
		}
	}
	if ext := maxFinish - in.Schedule.TotalDurationMins; ext > 0 {
		result.ExtensionMins = ext
	}
	sort.Slice(result.Unresolved, func(i, j int) bool {
		a, b := result.Unresolved[i], result.Unresolved[j]
		if a.WindowStartMins != b.WindowStartMins {
			return a.WindowStartMins < b.WindowStartMins
		}
		return a.ResourceID < b.ResourceID
	})
	return result, nil
}

// occupiedWindows returns the window indices the interval [start,
// finish) overlaps. A zero-duration task occupies no window.
func occupiedWindows(start, finish, windowMins int64) []int64 {
	if finish <= start {
		return nil
	}
	first := floorDiv(start, windowMins)
	last := floorDiv(finish-1, windowMins)
	wins := make([]int64, 0, last-first+1)
	for w := first; w <= last; w++ {
		wins = append(wins, w)
	}
	return wins
}

// floorDiv divides rounding toward negative infinity, so negative
// start times (from negative lag) land in the correct window.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
