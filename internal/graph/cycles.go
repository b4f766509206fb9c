package graph

// DFS coloring states for cycle detection.
const (
	white = 0 // unvisited
	gray  = 1 // in progress
	black = 2 // done
)

// DetectCycles finds every circular dependency chain in one pass.
// Each cycle is returned as the ordered sequence of task IDs closing
// the loop. A depth-first traversal maintains three-coloring so that
// encountering an in-progress node yields exactly the back-edge that
// closes a cycle; traversal continues afterwards so independent cycles
// are all reported. Running time is linear in nodes plus edges.
func DetectCycles(g *DependencyGraph) [][]string {
	color := make([]int, len(g.tasks))
	parent := make([]int, len(g.tasks))
	for i := range parent {
		parent[i] = -1
	}

	var cycles [][]string

	var dfs func(node int)
	dfs = func(node int) {
		color[node] = gray
		for _, succ := range g.out[node] {
			next := succ.node
			switch color[next] {
			case gray:
				// Back-edge: reconstruct the cycle from the parent chain.
				cycle := []string{g.tasks[node].ID}
				for cur := node; cur != next; {
					cur = parent[cur]
					cycle = append(cycle, g.tasks[cur].ID)
				}
				// Reverse into forward order.
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				cycles = append(cycles, cycle)
			case white:
				parent[next] = node
				dfs(next)
			}
		}
		color[node] = black
	}

	// Nodes are stored in ID order, so detection order is deterministic.
	for i := range g.tasks {
		if color[i] == white {
			dfs(i)
		}
	}
	return cycles
}
