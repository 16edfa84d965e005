package network

import "fmt"

// NodeID identifies a junction in the sewer network (maintenance hole,
// chamber, fitting). Nodes have no independent lifecycle: one exists iff
// at least one pipe references it as a start or end node.
type NodeID string

// PipeID identifies a pipe asset. Unique within one graph build.
type PipeID string

// BranchID identifies a lateral (property connection) off a main pipe.
type BranchID string

// ParcelGID identifies a land parcel, referenced only via branches.
type ParcelGID string

// Direction selects which adjacency table a trace follows.
type Direction int

const (
	// Downstream follows pipe flow, start node toward end node.
	Downstream Direction = iota
	// Upstream runs against pipe flow, end node toward start node.
	Upstream
)

// String returns the lowercase name used in config files and CLI flags.
func (d Direction) String() string {
	switch d {
	case Downstream:
		return "downstream"
	case Upstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// ParseDirection converts a string to a Direction.
// Accepts full names and the single-letter forms used in legacy layer data.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "downstream", "DOWNSTREAM", "d", "D":
		return Downstream, nil
	case "upstream", "UPSTREAM", "u", "U":
		return Upstream, nil
	default:
		return Downstream, fmt.Errorf("invalid direction %q (want upstream or downstream)", s)
	}
}

// Pipe is a directed edge in the network. Flow runs StartNode -> EndNode.
type Pipe struct {
	ID        PipeID
	StartNode NodeID
	EndNode   NodeID
}

// SelfLoop reports whether the pipe starts and ends at the same node.
// Valid in real data (metering chambers); the tracer must not spin on it.
func (p Pipe) SelfLoop() bool {
	return p.StartNode == p.EndNode
}

// Branch is a lateral connection linking a pipe to a parcel.
type Branch struct {
	ID        BranchID
	PipeID    PipeID
	ParcelGID ParcelGID
}

// HalfEdge is one adjacency entry: the pipe that was followed and the
// node it arrives at in the direction of the table it sits in.
type HalfEdge struct {
	Pipe     PipeID
	Neighbor NodeID
}
