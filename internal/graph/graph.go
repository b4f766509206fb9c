// Package graph builds and validates the directed dependency graph of
// task records. A graph is an immutable snapshot: any change to the
// task population requires rebuilding.
package graph

import (
	"fmt"
	"slices"
	"sort"

	"github.com/planweave/planweave/internal/domain"
)

// Edge is a resolved, typed dependency edge From -> To ("To depends on From").
// Fields are ordered to minimize memory padding.
type Edge struct {
	From    string
	To      string
	Type    domain.EdgeType
	LagMins int64
}

// edgeRef is the internal index-addressed form of an edge endpoint.
type edgeRef struct {
	node    int
	typ     domain.EdgeType
	lagMins int64
}

// DependencyGraph owns the node set and the edge set derived from the
// task population. Nodes are index-addressed; adjacency lists hold
// indices so the structure carries no cyclic references.
type DependencyGraph struct {
	tasks     []*domain.TaskRecord
	index     map[string]int
	out       [][]edgeRef // out[i] = successors of i (tasks depending on i)
	in        [][]edgeRef // in[i] = predecessors of i
	warnings  []domain.UnresolvedDependency
	validated bool
}

// Build constructs a graph with nodes 1:1 with the input tasks and
// edges resolved from each task's declared dependencies. Unresolvable
// dependency identifiers are recorded as warnings and excluded from
// edges; a self-dependency is a typed failure.
func Build(tasks []*domain.TaskRecord) (*DependencyGraph, error) {
	sorted := make([]*domain.TaskRecord, len(tasks))
	copy(sorted, tasks)
	slices.SortFunc(sorted, func(a, b *domain.TaskRecord) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})

	g := &DependencyGraph{
		tasks: sorted,
		index: make(map[string]int, len(sorted)),
		out:   make([][]edgeRef, len(sorted)),
		in:    make([][]edgeRef, len(sorted)),
	}
	for i, t := range sorted {
		if _, ok := g.index[t.ID]; ok {
			return nil, fmt.Errorf("task %s: %w", t.ID, domain.ErrDuplicateTaskID)
		}
		g.index[t.ID] = i
	}

	seen := make(map[[2]int]bool)
	for i, t := range sorted {
		for _, dep := range t.Depends {
			if dep.OnID == t.ID {
				return nil, fmt.Errorf("task %s: %w", t.ID, domain.ErrSelfDependency)
			}
			if !dep.Type.IsValid() {
				return nil, fmt.Errorf("task %s depends on %s: %w: %q", t.ID, dep.OnID, domain.ErrInvalidEdgeType, dep.Type)
			}
			from, ok := g.index[dep.OnID]
			if !ok {
				g.warnings = append(g.warnings, domain.UnresolvedDependency{TaskID: t.ID, MissingID: dep.OnID})
				continue
			}
			key := [2]int{from, i}
			if seen[key] {
				continue
			}
			seen[key] = true
			g.out[from] = append(g.out[from], edgeRef{node: i, typ: dep.Type.Normalize(), lagMins: dep.LagMins})
			g.in[i] = append(g.in[i], edgeRef{node: from, typ: dep.Type.Normalize(), lagMins: dep.LagMins})
		}
	}

	// Adjacency lists are already ordered by node index because tasks
	// are sorted by ID and edges are added in node order for `in`;
	// sort `out` explicitly since it is filled in declaration order.
	for i := range g.out {
		slices.SortFunc(g.out[i], func(a, b edgeRef) int { return a.node - b.node })
	}
	return g, nil
}

// Len returns the number of nodes.
func (g *DependencyGraph) Len() int {
	return len(g.tasks)
}

// Tasks returns the task snapshots in ID order.
func (g *DependencyGraph) Tasks() []*domain.TaskRecord {
	return g.tasks
}

// Task returns the task with the given ID, or nil.
func (g *DependencyGraph) Task(id string) *domain.TaskRecord {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	return g.tasks[i]
}

// Warnings returns the unresolved-dependency warnings recorded during Build.
func (g *DependencyGraph) Warnings() []domain.UnresolvedDependency {
	return g.warnings
}

// Validated returns true if the graph passed cycle validation.
func (g *DependencyGraph) Validated() bool {
	return g.validated
}

// Validate runs cycle detection and marks the graph acyclic-validated
// on success. On failure it returns a *domain.CycleError listing every
// detected cycle.
func (g *DependencyGraph) Validate() error {
	cycles := DetectCycles(g)
	if len(cycles) > 0 {
		return &domain.CycleError{Cycles: cycles}
	}
	g.validated = true
	return nil
}

// InEdges returns the resolved incoming edges of the given task
// (its predecessors).
func (g *DependencyGraph) InEdges(id string) []Edge {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	edges := make([]Edge, 0, len(g.in[i]))
	for _, r := range g.in[i] {
		edges = append(edges, Edge{From: g.tasks[r.node].ID, To: id, Type: r.typ, LagMins: r.lagMins})
	}
	return edges
}

// OutEdges returns the resolved outgoing edges of the given task
// (toward its dependents).
func (g *DependencyGraph) OutEdges(id string) []Edge {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	edges := make([]Edge, 0, len(g.out[i]))
	for _, r := range g.out[i] {
		edges = append(edges, Edge{From: id, To: g.tasks[r.node].ID, Type: r.typ, LagMins: r.lagMins})
	}
	return edges
}

// TopologicalOrder returns a deterministic ordering of task IDs that
// places every task after all of its resolved dependencies. Ties are
// broken by task ID ascending. Returns a *domain.CycleError if the
// graph is cyclic.
func (g *DependencyGraph) TopologicalOrder() ([]string, error) {
	inDegree := make([]int, len(g.tasks))
	for i := range g.tasks {
		inDegree[i] = len(g.in[i])
	}

	// Nodes are stored in ID order, so picking the smallest ready
	// index always yields the smallest ready task ID.
	var ready []int
	for i := range g.tasks {
		if inDegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]string, 0, len(g.tasks))
	for len(ready) > 0 {
		min := 0
		for j := 1; j < len(ready); j++ {
			if ready[j] < ready[min] {
				min = j
			}
		}
		node := ready[min]
		ready = append(ready[:min], ready[min+1:]...)
		order = append(order, g.tasks[node].ID)

		for _, succ := range g.out[node] {
			inDegree[succ.node]--
			if inDegree[succ.node] == 0 {
				ready = append(ready, succ.node)
			}
		}
	}

	if len(order) != len(g.tasks) {
		return nil, &domain.CycleError{Cycles: DetectCycles(g)}
	}
	return order, nil
}

// DependentsOf returns the transitive closure of tasks that directly
// or indirectly depend on the given task, sorted by ID ascending.
// Visited nodes are memoized so the traversal stays linear in edge
// count and terminates even on a graph with residual cycles.
func (g *DependencyGraph) DependentsOf(taskID string) ([]string, error) {
	start, ok := g.index[taskID]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", taskID, domain.ErrTaskNotFound)
	}

	visited := make([]bool, len(g.tasks))
	stack := []int{start}
	visited[start] = true
	var dependents []string
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, succ := range g.out[node] {
			if visited[succ.node] {
				continue
			}
			visited[succ.node] = true
			dependents = append(dependents, g.tasks[succ.node].ID)
			stack = append(stack, succ.node)
		}
	}
	sort.Strings(dependents)
	return dependents, nil
}
