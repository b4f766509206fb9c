package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planweave/planweave/internal/domain"
)

// task builds a minimal record for graph tests.
func task(id string, duration int64, deps ...domain.Dependency) *domain.TaskRecord {
	return &domain.TaskRecord{
		ID:           id,
		Title:        "Task " + id,
		Status:       domain.StatusPending,
		DurationMins: duration,
		Depends:      deps,
	}
}

// dep declares a finish-to-start dependency with no lag.
func dep(onID string) domain.Dependency {
	return domain.Dependency{OnID: onID, Type: domain.EdgeFinishToStart}
}

func TestBuild(t *testing.T) {
	t.Run("resolves edges between declared tasks", func(t *testing.T) {
		g, err := Build([]*domain.TaskRecord{
			task("a", 10),
			task("b", 20, dep("a")),
		})
		require.NoError(t, err)

		assert.Equal(t, 2, g.Len())
		out := g.OutEdges("a")
		require.Len(t, out, 1)
		assert.Equal(t, "b", out[0].To)
		assert.Equal(t, domain.EdgeFinishToStart, out[0].Type)

		in := g.InEdges("b")
		require.Len(t, in, 1)
		assert.Equal(t, "a", in[0].From)
	})

	t.Run("duplicate task IDs are rejected", func(t *testing.T) {
		_, err := Build([]*domain.TaskRecord{task("a", 10), task("a", 20)})
		assert.ErrorIs(t, err, domain.ErrDuplicateTaskID)
	})

	t.Run("self dependency is rejected", func(t *testing.T) {
		_, err := Build([]*domain.TaskRecord{task("a", 10, dep("a"))})
		assert.ErrorIs(t, err, domain.ErrSelfDependency)
	})

	t.Run("unknown edge type is rejected", func(t *testing.T) {
		_, err := Build([]*domain.TaskRecord{
			task("a", 10),
			task("b", 20, domain.Dependency{OnID: "a", Type: "sideways"}),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidEdgeType)
	})

	t.Run("dangling dependency becomes a warning, not an edge", func(t *testing.T) {
		g, err := Build([]*domain.TaskRecord{
			task("a", 10),
			task("b", 20, dep("ghost")),
		})
		require.NoError(t, err)

		require.Len(t, g.Warnings(), 1)
		assert.Equal(t, "b", g.Warnings()[0].TaskID)
		assert.Equal(t, "ghost", g.Warnings()[0].MissingID)
		assert.Empty(t, g.InEdges("b"))
	})

	t.Run("duplicate declared edges collapse to one", func(t *testing.T) {
		g, err := Build([]*domain.TaskRecord{
			task("a", 10),
			task("b", 20, dep("a"), dep("a")),
		})
		require.NoError(t, err)
		assert.Len(t, g.InEdges("b"), 1)
	})

	t.Run("empty edge type normalizes to finish_to_start", func(t *testing.T) {
		g, err := Build([]*domain.TaskRecord{
			task("a", 10),
			task("b", 20, domain.Dependency{OnID: "a"}),
		})
		require.NoError(t, err)
		require.Len(t, g.InEdges("b"), 1)
		assert.Equal(t, domain.EdgeFinishToStart, g.InEdges("b")[0].Type)
	})
}

func TestValidate(t *testing.T) {
	t.Run("acyclic graph validates", func(t *testing.T) {
		g, err := Build([]*domain.TaskRecord{task("a", 10), task("b", 20, dep("a"))})
		require.NoError(t, err)

		assert.False(t, g.Validated())
		require.NoError(t, g.Validate())
		assert.True(t, g.Validated())
	})

	t.Run("cyclic graph fails with a typed error", func(t *testing.T) {
		g, err := Build([]*domain.TaskRecord{
			task("a", 10, dep("b")),
			task("b", 20, dep("a")),
		})
		require.NoError(t, err)

		err = g.Validate()
		var cerr *domain.CycleError
		require.True(t, errors.As(err, &cerr))
		assert.False(t, g.Validated())
	})
}

func TestTopologicalOrder(t *testing.T) {
	t.Run("every task comes after its dependencies", func(t *testing.T) {
		g, err := Build([]*domain.TaskRecord{
			task("d", 5, dep("b"), dep("c")),
			task("b", 10, dep("a")),
			task("c", 15, dep("a")),
			task("a", 20),
		})
		require.NoError(t, err)

		order, err := g.TopologicalOrder()
		require.NoError(t, err)
		require.Len(t, order, 4)

		pos := make(map[string]int, len(order))
		for i, id := range order {
			pos[id] = i
		}
		for _, tk := range g.Tasks() {
			for _, d := range tk.Depends {
				assert.Less(t, pos[d.OnID], pos[tk.ID], "%s must precede %s", d.OnID, tk.ID)
			}
		}
	})

	t.Run("ties break by task ID ascending", func(t *testing.T) {
		g, err := Build([]*domain.TaskRecord{
			task("c", 10),
			task("a", 10),
			task("b", 10),
		})
		require.NoError(t, err)

		order, err := g.TopologicalOrder()
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, order)
	})

	t.Run("identical populations order identically", func(t *testing.T) {
		build := func() []string {
			g, err := Build([]*domain.TaskRecord{
				task("b", 10, dep("a")),
				task("a", 10),
				task("d", 10, dep("a")),
				task("c", 10, dep("b"), dep("d")),
			})
			require.NoError(t, err)
			order, err := g.TopologicalOrder()
			require.NoError(t, err)
			return order
		}

		first := build()
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, build())
		}
	})

	t.Run("cyclic graph returns the cycle error", func(t *testing.T) {
		g, err := Build([]*domain.TaskRecord{
			task("a", 10, dep("b")),
			task("b", 20, dep("a")),
		})
		require.NoError(t, err)

		_, err = g.TopologicalOrder()
		var cerr *domain.CycleError
		assert.True(t, errors.As(err, &cerr))
	})
}

func TestDependentsOf(t *testing.T) {
	g, err := Build([]*domain.TaskRecord{
		task("a", 10),
		task("b", 10, dep("a")),
		task("c", 10, dep("b")),
		task("d", 10, dep("a")),
		task("e", 10),
	})
	require.NoError(t, err)

	t.Run("returns the transitive closure", func(t *testing.T) {
		deps, err := g.DependentsOf("a")
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "c", "d"}, deps)
	})

	t.Run("leaf task has no dependents", func(t *testing.T) {
		deps, err := g.DependentsOf("c")
		require.NoError(t, err)
		assert.Empty(t, deps)
	})

	t.Run("unknown task fails", func(t *testing.T) {
		_, err := g.DependentsOf("ghost")
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})
}
