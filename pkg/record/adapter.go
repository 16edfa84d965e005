package record

import (
	"strings"

	"github.com/tmh-gis/sewertrace/pkg/logging"
	"github.com/tmh-gis/sewertrace/pkg/network"
)

// Row is one raw attribute row keyed by field name. Values arrive as
// strings regardless of the underlying column type; the host GIS
// toolkit (or the CSV/Postgres sources in this package) is responsible
// for rendering them.
type Row map[string]string

// FieldMap names the attribute fields carrying each identifier. Merged
// utility extracts disagree on column names, so every lookup is
// remappable via config.
type FieldMap struct {
	PipeID    string `yaml:"pipe_id"`
	StartNode string `yaml:"start_node"`
	EndNode   string `yaml:"end_node"`
	BranchID  string `yaml:"branch_id"`
	ParcelGID string `yaml:"parcel_gid"` // on branch rows
	GID       string `yaml:"gid"`        // on parcel rows
}

// DefaultFieldMap returns the column names used by the merged sewer
// layers this tool was built for.
func DefaultFieldMap() FieldMap {
	return FieldMap{
		PipeID:    "PIPE_ID",
		StartNode: "START_NODE",
		EndNode:   "END_NODE",
		BranchID:  "BRANCH_ID",
		ParcelGID: "PRCL_GID",
		GID:       "GID",
	}
}

// Adapter normalizes heterogeneous layer rows into the plain records the
// graph builder consumes, decoupling the core from any feature-access
// API. One bad row produces a warning, not a failed build.
type Adapter struct {
	fields    FieldMap
	nullNodes map[string]struct{}
	swapNodes map[network.PipeID]struct{}
	logger    logging.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithFieldMap overrides the default attribute column names.
func WithFieldMap(fm FieldMap) Option {
	return func(a *Adapter) { a.fields = fm }
}

// WithNullNodeSentinels registers values that mean "no node reference"
// besides the empty string. Merged extracts carry placeholder node ids
// like "0_CWW" for pipes whose connectivity was never surveyed.
func WithNullNodeSentinels(values ...string) Option {
	return func(a *Adapter) {
		for _, v := range values {
			a.nullNodes[v] = struct{}{}
		}
	}
}

// WithSwapCorrections registers pipe ids whose start and end nodes are
// known to be reversed in the source data and must be swapped on the
// way in.
func WithSwapCorrections(ids ...network.PipeID) Option {
	return func(a *Adapter) {
		for _, id := range ids {
			a.swapNodes[id] = struct{}{}
		}
	}
}

// WithLogger sets the adapter's logger.
func WithLogger(l logging.Logger) Option {
	return func(a *Adapter) { a.logger = l }
}

// NewAdapter creates an Adapter with the default field map.
func NewAdapter(opts ...Option) *Adapter {
	a := &Adapter{
		fields:    DefaultFieldMap(),
		nullNodes: make(map[string]struct{}),
		swapNodes: make(map[network.PipeID]struct{}),
		logger:    logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// nodeValue normalizes one node reference. Returns "" if missing or a
// registered null sentinel.
func (a *Adapter) nodeValue(row Row, field string) network.NodeID {
	v := strings.TrimSpace(row[field])
	if v == "" {
		return ""
	}
	if _, isNull := a.nullNodes[v]; isNull {
		return ""
	}
	return network.NodeID(v)
}

// Pipes normalizes raw pipe rows. Rows missing a pipe id or either node
// reference are dropped with a MalformedPipeRecord warning naming the
// absent field.
func (a *Adapter) Pipes(rows []Row) ([]network.Pipe, []network.Warning) {
	pipes := make([]network.Pipe, 0, len(rows))
	var warnings []network.Warning

	for _, row := range rows {
		id := network.PipeID(strings.TrimSpace(row[a.fields.PipeID]))
		start := a.nodeValue(row, a.fields.StartNode)
		end := a.nodeValue(row, a.fields.EndNode)

		var missing string
		switch {
		case id == "":
			missing = a.fields.PipeID
		case start == "":
			missing = a.fields.StartNode
		case end == "":
			missing = a.fields.EndNode
		}
		if missing != "" {
			w := network.Warning{
				Kind:   network.WarnMalformedPipeRecord,
				ID:     string(id),
				Detail: "missing " + missing,
			}
			warnings = append(warnings, w)
			a.logger.Warn("dropping malformed pipe row", logging.PipeID(string(id)), logging.String("missing", missing))
			continue
		}

		if _, swap := a.swapNodes[id]; swap {
			start, end = end, start
		}
		pipes = append(pipes, network.Pipe{ID: id, StartNode: start, EndNode: end})
	}
	return pipes, warnings
}

// Branches normalizes raw branch rows. A branch without its own id or
// its pipe reference is dropped with a warning; a missing parcel
// reference is fine (not every lateral serves a rated parcel).
func (a *Adapter) Branches(rows []Row) ([]network.Branch, []network.Warning) {
	branches := make([]network.Branch, 0, len(rows))
	var warnings []network.Warning

	for _, row := range rows {
		id := network.BranchID(strings.TrimSpace(row[a.fields.BranchID]))
		pipeID := network.PipeID(strings.TrimSpace(row[a.fields.PipeID]))
		parcel := network.ParcelGID(strings.TrimSpace(row[a.fields.ParcelGID]))

		if id == "" || pipeID == "" {
			warnings = append(warnings, network.Warning{
				Kind:   network.WarnMalformedBranchRecord,
				ID:     string(id),
				Detail: "missing branch or pipe reference",
			})
			continue
		}
		branches = append(branches, network.Branch{ID: id, PipeID: pipeID, ParcelGID: parcel})
	}
	return branches, warnings
}

// Parcels normalizes raw parcel rows to their GIDs, dropping blanks.
func (a *Adapter) Parcels(rows []Row) []network.ParcelGID {
	out := make([]network.ParcelGID, 0, len(rows))
	for _, row := range rows {
		gid := strings.TrimSpace(row[a.fields.GID])
		if gid == "" {
			continue
		}
		out = append(out, network.ParcelGID(gid))
	}
	return out
}

// ClassifyParcels partitions parcels into served (referenced by at least
// one branch) and unserved, preserving input order within each class.
func ClassifyParcels(parcels []network.ParcelGID, branches []network.Branch) (served, unserved []network.ParcelGID) {
	referenced := make(map[network.ParcelGID]struct{}, len(branches))
	for _, br := range branches {
		if br.ParcelGID != "" {
			referenced[br.ParcelGID] = struct{}{}
		}
	}
	for _, p := range parcels {
		if _, ok := referenced[p]; ok {
			served = append(served, p)
		} else {
			unserved = append(unserved, p)
		}
	}
	return served, unserved
}
