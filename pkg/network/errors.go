package network

import (
	"errors"
	"fmt"
)

// Fatal conditions. Everything else surfaces as a Warning on the result.
var (
	// ErrEmptyGraph means no valid pipes survived the build; there is nothing to trace.
	ErrEmptyGraph = errors.New("empty graph: no valid pipes")
	// ErrTraceBudgetExceeded means a configured step budget was hit mid-trace.
	ErrTraceBudgetExceeded = errors.New("trace budget exceeded")
)

// WarningKind classifies a recoverable data problem.
type WarningKind string

const (
	// WarnMalformedPipeRecord marks a pipe row with a missing or null node
	// reference. The row is dropped; the rest of the network still traces.
	WarnMalformedPipeRecord WarningKind = "MalformedPipeRecord"
	// WarnMalformedBranchRecord marks a branch row missing its own id or
	// its pipe reference.
	WarnMalformedBranchRecord WarningKind = "MalformedBranchRecord"
	// WarnDuplicatePipeID marks a pipe id seen more than once in one build.
	// The later registration is skipped.
	WarnDuplicatePipeID WarningKind = "DuplicatePipeID"
	// WarnSeedNotFound marks a seed pipe id absent from the graph.
	// That seed contributes nothing to the trace.
	WarnSeedNotFound WarningKind = "SeedNotFound"
)

// Warning records one recoverable problem encountered while building or
// tracing. Production GIS extracts routinely contain a small fraction of
// bad rows, so warnings are collected and returned rather than aborting.
type Warning struct {
	Kind   WarningKind
	ID     string // offending pipe, branch, or seed id
	Detail string // optional context, e.g. the missing field name
}

// String renders the warning as "Kind: id (detail)".
func (w Warning) String() string {
	if w.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", w.Kind, w.ID, w.Detail)
	}
	return fmt.Sprintf("%s: %s", w.Kind, w.ID)
}

// TraceError provides structured error information for graph operations.
type TraceError struct {
	Op    string // operation that failed, e.g. "Build", "Trace"
	Cause error
	Count int // pipes processed before failure, if applicable
}

func (e *TraceError) Error() string {
	if e.Count > 0 {
		return fmt.Sprintf("%s after %d pipes: %v", e.Op, e.Count, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *TraceError) Unwrap() error {
	return e.Cause
}
