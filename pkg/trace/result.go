package trace

import (
	"time"

	"github.com/tmh-gis/sewertrace/pkg/network"
)

// Summary describes one trace invocation for logging and audit.
type Summary struct {
	TraceID    string           `json:"trace_id"`
	Name       string           `json:"name,omitempty"`
	Direction  string           `json:"direction"`
	Seeds      []network.PipeID `json:"seeds"`
	GraphPipes int              `json:"graph_pipes"`
	GraphNodes int              `json:"graph_nodes"`
	Elapsed    time.Duration    `json:"elapsed_ns"`
}

// Result is the outcome of one trace: pipes, then the branches hanging
// off those pipes, then the parcels those branches serve. All sequences
// are deduplicated and ordered by first visit (BFS discovery order), so
// identical input yields an identical result.
type Result struct {
	Pipes    []network.PipeID    `json:"pipes"`
	Branches []network.BranchID  `json:"branches"`
	Parcels  []network.ParcelGID `json:"parcels"`

	// Nodes visited during the walk, and the subset where expansion
	// ended (no onward pipes, or a stop predicate fired).
	Nodes     []network.NodeID `json:"nodes"`
	EndOfPath []network.NodeID `json:"end_of_path"`

	Warnings []network.Warning `json:"warnings,omitempty"`
	Summary  Summary           `json:"summary"`
}

// WarningStrings renders warnings for display, in collection order.
func (r *Result) WarningStrings() []string {
	out := make([]string, 0, len(r.Warnings))
	for _, w := range r.Warnings {
		out = append(out, w.String())
	}
	return out
}

// aggregate resolves the branches attached to each visited pipe and the
// parcels attached to each resolved branch. Order follows pipe discovery
// order; duplicates (a parcel served via two branches) collapse to the
// first visit. Pipe dedup is already guaranteed by the tracer, but the
// aggregator re-checks so compound or merged seed sets stay safe.
func aggregate(g *network.Graph, pipes []network.PipeID) (pipeIDs []network.PipeID, branches []network.BranchID, parcels []network.ParcelGID) {
	seenPipe := make(map[network.PipeID]struct{}, len(pipes))
	seenBranch := make(map[network.BranchID]struct{})
	seenParcel := make(map[network.ParcelGID]struct{})

	pipeIDs = make([]network.PipeID, 0, len(pipes))
	branches = make([]network.BranchID, 0)
	parcels = make([]network.ParcelGID, 0)

	for _, p := range pipes {
		if _, dup := seenPipe[p]; dup {
			continue
		}
		seenPipe[p] = struct{}{}
		pipeIDs = append(pipeIDs, p)

		for _, br := range g.Branches(p) {
			if _, dup := seenBranch[br.ID]; dup {
				continue
			}
			seenBranch[br.ID] = struct{}{}
			branches = append(branches, br.ID)

			if br.ParcelGID == "" {
				continue
			}
			if _, dup := seenParcel[br.ParcelGID]; dup {
				continue
			}
			seenParcel[br.ParcelGID] = struct{}{}
			parcels = append(parcels, br.ParcelGID)
		}
	}
	return pipeIDs, branches, parcels
}
