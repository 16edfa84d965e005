package network

// Graph is a directed multigraph over sewer nodes. It carries one
// adjacency table per trace direction so a single build serves both
// upstream and downstream traces.
//
// The graph is built once per trace invocation and immutable afterwards;
// concurrent traces over the same Graph are safe because nothing mutates
// it after Build returns.
//
// Adjacency slices preserve pipe insertion order. Traversal determinism
// depends on this: callers supply pipes in a stable sequence and get
// reproducible results regardless of map iteration order.
type Graph struct {
	pipes map[PipeID]Pipe
	order []PipeID // insertion order of registered pipes

	down map[NodeID][]HalfEdge // start node -> (pipe, end node)
	up   map[NodeID][]HalfEdge // end node -> (pipe, start node)

	branches    map[PipeID][]Branch
	branchCount int
	sourceName  string
}

// PipeCount returns the number of registered pipes.
func (g *Graph) PipeCount() int {
	return len(g.order)
}

// NodeCount returns the number of distinct nodes referenced by pipes.
func (g *Graph) NodeCount() int {
	seen := make(map[NodeID]struct{}, len(g.down)+len(g.up))
	for n := range g.down {
		seen[n] = struct{}{}
	}
	for n := range g.up {
		seen[n] = struct{}{}
	}
	return len(seen)
}

// BranchCount returns the number of attached branch records.
func (g *Graph) BranchCount() int {
	return g.branchCount
}

// SourceName returns the label of the layer or file the graph was built
// from. Used as the snapshot cache key.
func (g *Graph) SourceName() string {
	return g.sourceName
}

// Pipe looks up a pipe by id.
func (g *Graph) Pipe(id PipeID) (Pipe, bool) {
	p, ok := g.pipes[id]
	return p, ok
}

// Pipes returns all pipes in insertion order.
func (g *Graph) Pipes() []Pipe {
	out := make([]Pipe, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.pipes[id])
	}
	return out
}

// Adjacent returns the adjacency entries leaving node in the given
// direction, in pipe insertion order. The returned slice must not be
// modified.
func (g *Graph) Adjacent(node NodeID, dir Direction) []HalfEdge {
	if dir == Upstream {
		return g.up[node]
	}
	return g.down[node]
}

// Branches returns the branch records attached to a pipe, in insertion
// order. Nil if the pipe has no branches.
func (g *Graph) Branches(id PipeID) []Branch {
	return g.branches[id]
}

// AllBranches returns every attached branch in insertion order of the
// owning pipe, then branch insertion order.
func (g *Graph) AllBranches() []Branch {
	out := make([]Branch, 0, g.branchCount)
	for _, id := range g.order {
		out = append(out, g.branches[id]...)
	}
	return out
}
