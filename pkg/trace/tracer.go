package trace

import (
	"time"

	"github.com/google/uuid"

	"github.com/tmh-gis/sewertrace/pkg/logging"
	"github.com/tmh-gis/sewertrace/pkg/network"
)

// Options configures one trace invocation.
type Options struct {
	// Direction of the walk relative to pipe flow.
	Direction network.Direction

	// Budget caps the number of pipes the walk may visit. Zero means
	// unbounded; the walk always terminates anyway because each pipe is
	// expanded at most once. Exceeding the budget is fatal
	// (network.ErrTraceBudgetExceeded).
	Budget int

	// StopNode, if set, halts expansion at nodes for which it returns
	// true. Stopped nodes are recorded as end-of-path. Used to cut a
	// trace at treatment plant inlets or pump stations.
	StopNode func(network.NodeID) bool

	// Name labels the trace in its summary. Optional.
	Name string

	// Logger receives per-trace progress events. Defaults to a no-op.
	Logger logging.Logger

	// Instrument, if set, receives a completion callback for metric
	// collection. The engine itself performs no I/O.
	Instrument Instrumentation
}

// DefaultOptions returns an upstream trace with no budget, matching the
// plugin's historical default.
func DefaultOptions() Options {
	return Options{Direction: network.Upstream}
}

// Instrumentation receives completion callbacks for metric collection.
// Implemented by pkg/metrics.
type Instrumentation interface {
	TraceCompleted(direction, status string, pipesVisited int, elapsed time.Duration)
}

// Run walks the graph from the given seed pipes and returns the set of
// connected pipes (plus linked branches and parcels) reachable in the
// requested direction.
//
// The walk is breadth-first over nodes, but bookkeeping is per EDGE:
// each pipe id is added to the result and expanded at most once. A node
// may be reached again through a parallel pipe or a self-loop that has
// not been traversed yet; that pipe is still reported, but expansion
// beyond an already-expanded node adds nothing new, so cycles of any
// length terminate.
//
// Seeds are traced independently and unioned, so seeds in disconnected
// subnetworks do not interfere. A seed absent from the graph contributes
// a SeedNotFound warning and nothing else.
func Run(g *network.Graph, seeds []network.PipeID, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	if g == nil || g.PipeCount() == 0 {
		if opts.Instrument != nil {
			opts.Instrument.TraceCompleted(opts.Direction.String(), "empty_graph", 0, 0)
		}
		return nil, &network.TraceError{Op: "Trace", Cause: network.ErrEmptyGraph}
	}

	start := time.Now()
	w := &walker{
		g:        g,
		opts:     opts,
		visited:  make(map[network.PipeID]struct{}),
		seenNode: make(map[network.NodeID]struct{}),
		expanded: make(map[network.NodeID]struct{}),
		stopped:  make(map[network.NodeID]struct{}),
	}

	var warnings []network.Warning
	for _, seed := range seeds {
		pipe, ok := g.Pipe(seed)
		if !ok {
			warnings = append(warnings, network.Warning{Kind: network.WarnSeedNotFound, ID: string(seed)})
			logger.Warn("seed pipe not in graph", logging.PipeID(string(seed)))
			continue
		}
		if err := w.runFrom(pipe); err != nil {
			if opts.Instrument != nil {
				opts.Instrument.TraceCompleted(opts.Direction.String(), "budget_exceeded", len(w.pipeOrder), time.Since(start))
			}
			return nil, err
		}
	}

	pipes, branches, parcels := aggregate(g, w.pipeOrder)
	elapsed := time.Since(start)

	res := &Result{
		Pipes:     pipes,
		Branches:  branches,
		Parcels:   parcels,
		Nodes:     w.nodeOrder,
		EndOfPath: w.endOfPath,
		Warnings:  warnings,
		Summary: Summary{
			TraceID:    uuid.NewString(),
			Name:       opts.Name,
			Direction:  opts.Direction.String(),
			Seeds:      append([]network.PipeID(nil), seeds...),
			GraphPipes: g.PipeCount(),
			GraphNodes: g.NodeCount(),
			Elapsed:    elapsed,
		},
	}

	if opts.Instrument != nil {
		opts.Instrument.TraceCompleted(res.Summary.Direction, "ok", len(res.Pipes), elapsed)
	}
	logger.Info("trace complete",
		logging.TraceID(res.Summary.TraceID),
		logging.Direction(res.Summary.Direction),
		logging.Count(len(res.Pipes)),
		logging.Latency(elapsed),
	)
	return res, nil
}

// walker holds the visited-edge and visited-node bookkeeping for one
// invocation. State is per-call; nothing survives the trace.
type walker struct {
	g    *network.Graph
	opts Options

	visited   map[network.PipeID]struct{} // pipes traversed, the termination guarantee
	pipeOrder []network.PipeID            // discovery order

	seenNode  map[network.NodeID]struct{} // nodes recorded in nodeOrder
	expanded  map[network.NodeID]struct{} // nodes whose adjacency was enumerated
	stopped   map[network.NodeID]struct{} // nodes recorded in endOfPath
	nodeOrder []network.NodeID
	endOfPath []network.NodeID
}

// runFrom traces one seed pipe: the seed itself is reported first, then
// the walk expands from its frontier node (end node downstream, start
// node upstream).
func (w *walker) runFrom(seed network.Pipe) error {
	if err := w.visitPipe(seed.ID); err != nil {
		return err
	}

	frontier := seed.EndNode
	if w.opts.Direction == network.Upstream {
		frontier = seed.StartNode
	}

	queue := []network.NodeID{frontier}
	w.noteNode(frontier)

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		if w.opts.StopNode != nil && w.opts.StopNode(node) {
			w.noteEndOfPath(node)
			continue
		}
		if _, done := w.expanded[node]; done {
			continue
		}
		w.expanded[node] = struct{}{}

		adj := w.g.Adjacent(node, w.opts.Direction)
		if len(adj) == 0 {
			w.noteEndOfPath(node)
			continue
		}

		for _, he := range adj {
			if _, dup := w.visited[he.Pipe]; dup {
				continue
			}
			if err := w.visitPipe(he.Pipe); err != nil {
				return err
			}
			w.noteNode(he.Neighbor)
			queue = append(queue, he.Neighbor)
		}
	}
	return nil
}

func (w *walker) visitPipe(id network.PipeID) error {
	if _, dup := w.visited[id]; dup {
		return nil
	}
	if w.opts.Budget > 0 && len(w.pipeOrder) >= w.opts.Budget {
		return &network.TraceError{
			Op:    "Trace",
			Cause: network.ErrTraceBudgetExceeded,
			Count: len(w.pipeOrder),
		}
	}
	w.visited[id] = struct{}{}
	w.pipeOrder = append(w.pipeOrder, id)
	return nil
}

func (w *walker) noteNode(n network.NodeID) {
	if _, dup := w.seenNode[n]; dup {
		return
	}
	w.seenNode[n] = struct{}{}
	w.nodeOrder = append(w.nodeOrder, n)
}

func (w *walker) noteEndOfPath(n network.NodeID) {
	if _, dup := w.stopped[n]; dup {
		return
	}
	w.stopped[n] = struct{}{}
	w.endOfPath = append(w.endOfPath, n)
}
