package network

// Builder accumulates pipe and branch records into a Graph.
//
// Registration is O(1) per pipe: each pipe lands in both adjacency
// tables (downstream start->end, upstream end->start). Duplicate pipe
// ids are not silently overwritten; the second registration is skipped
// and reported as a DuplicatePipeID warning.
type Builder struct {
	g        *Graph
	warnings []Warning
}

// NewBuilder creates a Builder for the named source layer or file.
func NewBuilder(sourceName string) *Builder {
	return &Builder{
		g: &Graph{
			pipes:      make(map[PipeID]Pipe),
			down:       make(map[NodeID][]HalfEdge),
			up:         make(map[NodeID][]HalfEdge),
			branches:   make(map[PipeID][]Branch),
			sourceName: sourceName,
		},
	}
}

// AddPipe registers one pipe as a directed edge in both adjacency tables.
// Pipes with an empty node reference are rejected with a
// MalformedPipeRecord warning; normally the record adapter has already
// filtered these, but the builder is the durability boundary.
func (b *Builder) AddPipe(p Pipe) {
	if p.ID == "" || p.StartNode == "" || p.EndNode == "" {
		b.warnings = append(b.warnings, Warning{
			Kind:   WarnMalformedPipeRecord,
			ID:     string(p.ID),
			Detail: "empty node or pipe reference",
		})
		return
	}
	if _, exists := b.g.pipes[p.ID]; exists {
		b.warnings = append(b.warnings, Warning{
			Kind: WarnDuplicatePipeID,
			ID:   string(p.ID),
		})
		return
	}

	b.g.pipes[p.ID] = p
	b.g.order = append(b.g.order, p.ID)
	b.g.down[p.StartNode] = append(b.g.down[p.StartNode], HalfEdge{Pipe: p.ID, Neighbor: p.EndNode})
	b.g.up[p.EndNode] = append(b.g.up[p.EndNode], HalfEdge{Pipe: p.ID, Neighbor: p.StartNode})
}

// AddBranch attaches a lateral to its owning pipe. Branches referencing
// a pipe that never registers simply never resolve during aggregation;
// they are not an error at build time because layer extracts are merged
// from separate files and partial overlap is normal.
func (b *Builder) AddBranch(br Branch) {
	if br.ID == "" || br.PipeID == "" {
		b.warnings = append(b.warnings, Warning{
			Kind:   WarnMalformedBranchRecord,
			ID:     string(br.ID),
			Detail: "empty branch or pipe reference",
		})
		return
	}
	b.g.branches[br.PipeID] = append(b.g.branches[br.PipeID], br)
	b.g.branchCount++
}

// Build finalizes and returns the graph along with any warnings
// collected during registration. The Builder must not be reused.
func (b *Builder) Build() (*Graph, []Warning) {
	return b.g, b.warnings
}

// Build constructs a graph from pipe and branch records in one call.
func Build(sourceName string, pipes []Pipe, branches []Branch) (*Graph, []Warning) {
	b := NewBuilder(sourceName)
	for _, p := range pipes {
		b.AddPipe(p)
	}
	for _, br := range branches {
		b.AddBranch(br)
	}
	return b.Build()
}
