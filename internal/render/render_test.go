package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planweave/planweave/internal/domain"
	"github.com/planweave/planweave/internal/graph"
	"github.com/planweave/planweave/internal/schedule"
)

func analyzed(t *testing.T) *domain.ScheduleResult {
	t.Helper()
	g, err := graph.Build([]*domain.TaskRecord{
		{ID: "a", Title: "A", Status: domain.StatusPending, DurationMins: 120},
		{ID: "b", Title: "B", Status: domain.StatusPending, DurationMins: 60,
			Depends: []domain.Dependency{{OnID: "a", Type: domain.EdgeFinishToStart}}},
	})
	require.NoError(t, err)
	require.NoError(t, g.Validate())
	result, err := schedule.Analyze(g)
	require.NoError(t, err)
	return result
}

func TestScheduleTable(t *testing.T) {
	out := ScheduleTable(analyzed(t))
	assert.Contains(t, out, "a")
	assert.Contains(t, out, "b")
	assert.Contains(t, out, "Critical path: a -> b")
	assert.Contains(t, out, "Total duration: 180 mins")
}

func TestScheduleTableWarnings(t *testing.T) {
	result := analyzed(t)
	result.Warnings = append(result.Warnings, domain.UnresolvedDependency{TaskID: "b", MissingID: "ghost"})

	out := ScheduleTable(result)
	assert.Contains(t, out, "Warning:")
	assert.Contains(t, out, "dependency ghost not found")
}

func TestGantt(t *testing.T) {
	out := Gantt(analyzed(t))
	assert.Contains(t, out, "a")
	assert.Contains(t, out, "█")

	empty := Gantt(&domain.ScheduleResult{})
	assert.Contains(t, empty, "empty schedule")
}

func TestLevelingReport(t *testing.T) {
	sched := analyzed(t)
	leveling := &domain.LevelingResult{
		StartMins:  map[string]int64{"a": 0, "b": 1440},
		FinishMins: map[string]int64{"a": 120, "b": 1500},
		Iterations: 1,
	}

	out := LevelingReport(sched, leveling)
	assert.Contains(t, out, "delayed")
	assert.Contains(t, out, "All over-allocations resolved.")

	leveling.Unresolved = []domain.Overallocation{{ResourceID: "r1", WindowStartMins: 0}}
	out = LevelingReport(sched, leveling)
	assert.Contains(t, out, "Unresolved: resource r1")
}

func TestTaskList(t *testing.T) {
	out := TaskList([]*domain.TaskRecord{
		{ID: "a", Title: "Ship it", Status: domain.StatusPending, Priority: domain.PriorityHigh, DurationMins: 60, Tags: []string{"api"}},
	})
	assert.Contains(t, out, "Ship it")
	assert.Contains(t, out, "#api")

	assert.Contains(t, TaskList(nil), "no tasks")
}

func TestBulkResult(t *testing.T) {
	out := BulkResult(&domain.BulkOperationResult{
		Status:    domain.OpRolledBack,
		Total:     10,
		Processed: 4,
		Failed:    6,
		Retried:   2,
		Failures:  []domain.UnitFailure{{TaskID: "t5", Err: assert.AnError}},

		RollbackRequested: true,
		RollbackAttempted: true,
		RollbackSucceeded: true,
	})
	assert.Contains(t, out, "rolled_back")
	assert.Contains(t, out, "Committed 4/10")
	assert.Contains(t, out, "t5")
	assert.Contains(t, out, "Rollback succeeded")
}
