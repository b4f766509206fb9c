package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planweave/planweave/internal/domain"
	"github.com/planweave/planweave/internal/graph"
)

// task builds a minimal record for analysis tests.
func task(id string, duration int64, deps ...domain.Dependency) *domain.TaskRecord {
	return &domain.TaskRecord{
		ID:           id,
		Title:        "Task " + id,
		Status:       domain.StatusPending,
		DurationMins: duration,
		Depends:      deps,
	}
}

func dep(onID string) domain.Dependency {
	return domain.Dependency{OnID: onID, Type: domain.EdgeFinishToStart}
}

func typedDep(onID string, typ domain.EdgeType, lag int64) domain.Dependency {
	return domain.Dependency{OnID: onID, Type: typ, LagMins: lag}
}

// analyze builds, validates, and analyzes the population.
func analyze(t *testing.T, tasks ...*domain.TaskRecord) *domain.ScheduleResult {
	t.Helper()
	g, err := graph.Build(tasks)
	require.NoError(t, err)
	require.NoError(t, g.Validate())
	result, err := Analyze(g)
	require.NoError(t, err)
	return result
}

func TestAnalyzeChain(t *testing.T) {
	// a(2) -> b(3) -> c(1)
	result := analyze(t,
		task("a", 2),
		task("b", 3, dep("a")),
		task("c", 1, dep("b")),
	)

	assert.Equal(t, int64(2), result.Tasks["a"].EarlyFinishMins)
	assert.Equal(t, int64(5), result.Tasks["b"].EarlyFinishMins)
	assert.Equal(t, int64(6), result.Tasks["c"].EarlyFinishMins)
	assert.Equal(t, int64(6), result.TotalDurationMins)
	assert.Equal(t, []string{"a", "b", "c"}, result.CriticalPath)

	for _, id := range []string{"a", "b", "c"} {
		assert.Equal(t, int64(0), result.Tasks[id].TotalSlackMins, "task %s", id)
		assert.True(t, result.Tasks[id].OnCriticalPath, "task %s", id)
	}
}

func TestAnalyzeDiamond(t *testing.T) {
	// a(4) and b(2) both feed c(1); the longer branch wins.
	result := analyze(t,
		task("a", 4),
		task("b", 2),
		task("c", 1, dep("a"), dep("b")),
	)

	assert.Equal(t, int64(4), result.Tasks["c"].EarlyStartMins)
	assert.Equal(t, []string{"a", "c"}, result.CriticalPath)

	b := result.Tasks["b"]
	assert.Equal(t, int64(2), b.TotalSlackMins)
	assert.Equal(t, int64(2), b.FreeSlackMins)
	assert.False(t, b.OnCriticalPath)
}

func TestAnalyzeEdgeTypes(t *testing.T) {
	t.Run("start_to_start with lag", func(t *testing.T) {
		result := analyze(t,
			task("a", 10),
			task("b", 4, typedDep("a", domain.EdgeStartToStart, 5)),
		)
		assert.Equal(t, int64(5), result.Tasks["b"].EarlyStartMins)
		assert.Equal(t, int64(9), result.Tasks["b"].EarlyFinishMins)
	})

	t.Run("finish_to_finish aligns finishes", func(t *testing.T) {
		result := analyze(t,
			task("a", 10),
			task("b", 3, typedDep("a", domain.EdgeFinishToFinish, 0)),
		)
		assert.Equal(t, int64(7), result.Tasks["b"].EarlyStartMins)
		assert.Equal(t, int64(10), result.Tasks["b"].EarlyFinishMins)
	})

	t.Run("start_to_finish", func(t *testing.T) {
		result := analyze(t,
			task("a", 10),
			task("b", 4, typedDep("a", domain.EdgeStartToFinish, 6)),
		)
		assert.Equal(t, int64(6), result.Tasks["b"].EarlyFinishMins)
		assert.Equal(t, int64(2), result.Tasks["b"].EarlyStartMins)
	})

	t.Run("negative lag pulls the successor earlier", func(t *testing.T) {
		result := analyze(t,
			task("a", 10),
			task("b", 4, typedDep("a", domain.EdgeFinishToStart, -5)),
		)
		assert.Equal(t, int64(5), result.Tasks["b"].EarlyStartMins)
	})

	t.Run("negative lag may produce a negative start", func(t *testing.T) {
		result := analyze(t,
			task("a", 2),
			task("b", 1, typedDep("a", domain.EdgeFinishToStart, -5)),
		)
		assert.Equal(t, int64(-3), result.Tasks["b"].EarlyStartMins)
		assert.Equal(t, int64(-2), result.Tasks["b"].EarlyFinishMins)
	})
}

func TestAnalyzeMilestone(t *testing.T) {
	result := analyze(t,
		task("a", 5),
		task("m", 0, dep("a")),
		task("b", 3, dep("m")),
	)

	m := result.Tasks["m"]
	assert.Equal(t, int64(5), m.EarlyStartMins)
	assert.Equal(t, int64(5), m.EarlyFinishMins)
	assert.Equal(t, int64(8), result.TotalDurationMins)
	assert.Equal(t, []string{"a", "m", "b"}, result.CriticalPath)
}

func TestAnalyzeStartConstraint(t *testing.T) {
	start := int64(100)
	tk := task("a", 2)
	tk.StartMins = &start

	result := analyze(t, tk, task("b", 3, dep("a")))

	assert.Equal(t, int64(100), result.Tasks["a"].EarlyStartMins)
	assert.Equal(t, int64(102), result.Tasks["b"].EarlyStartMins)
	assert.Equal(t, int64(105), result.TotalDurationMins)
}

func TestAnalyzeSlackNonNegative(t *testing.T) {
	result := analyze(t,
		task("a", 4),
		task("b", 2),
		task("c", 7),
		task("d", 1, dep("a"), dep("b")),
		task("e", 2, dep("c"), dep("d")),
	)

	for id, ts := range result.Tasks {
		assert.GreaterOrEqual(t, ts.TotalSlackMins, int64(0), "task %s", id)
		assert.GreaterOrEqual(t, ts.FreeSlackMins, int64(0), "task %s", id)
		assert.LessOrEqual(t, ts.FreeSlackMins, ts.TotalSlackMins, "task %s", id)
	}
}

func TestAnalyzeRefusesUnvalidatedGraph(t *testing.T) {
	g, err := graph.Build([]*domain.TaskRecord{task("a", 10)})
	require.NoError(t, err)

	_, err = Analyze(g)
	assert.ErrorIs(t, err, domain.ErrGraphNotValidated)
}

func TestAnalyzeEmptyPopulation(t *testing.T) {
	result := analyze(t)
	assert.Empty(t, result.Tasks)
	assert.Empty(t, result.Order)
	assert.Empty(t, result.CriticalPath)
	assert.Equal(t, int64(0), result.TotalDurationMins)
}

func TestAnalyzeWarningsCarriedThrough(t *testing.T) {
	result := analyze(t,
		task("a", 2),
		task("b", 3, dep("ghost")),
	)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "ghost", result.Warnings[0].MissingID)
	// The dangling dependency does not constrain b.
	assert.Equal(t, int64(0), result.Tasks["b"].EarlyStartMins)
}
