package network

import (
	"testing"
)

func TestBuild_RegistersBothDirections(t *testing.T) {
	g, warnings := Build("test", []Pipe{
		{ID: "A", StartNode: "1", EndNode: "2"},
	}, nil)

	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	down := g.Adjacent("1", Downstream)
	if len(down) != 1 || down[0].Pipe != "A" || down[0].Neighbor != "2" {
		t.Errorf("downstream adjacency wrong: %v", down)
	}

	up := g.Adjacent("2", Upstream)
	if len(up) != 1 || up[0].Pipe != "A" || up[0].Neighbor != "1" {
		t.Errorf("upstream adjacency wrong: %v", up)
	}
}

func TestBuild_DuplicatePipeIDSkipped(t *testing.T) {
	g, warnings := Build("test", []Pipe{
		{ID: "A", StartNode: "1", EndNode: "2"},
		{ID: "A", StartNode: "3", EndNode: "4"},
	}, nil)

	if g.PipeCount() != 1 {
		t.Errorf("expected 1 pipe, got %d", g.PipeCount())
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}
	if warnings[0].Kind != WarnDuplicatePipeID || warnings[0].ID != "A" {
		t.Errorf("wrong warning: %v", warnings[0])
	}

	// The first registration wins
	p, ok := g.Pipe("A")
	if !ok || p.StartNode != "1" || p.EndNode != "2" {
		t.Errorf("expected original pipe retained, got %+v", p)
	}
	if len(g.Adjacent("3", Downstream)) != 0 {
		t.Error("duplicate registration leaked into adjacency")
	}
}

func TestBuild_MalformedPipeRejected(t *testing.T) {
	g, warnings := Build("test", []Pipe{
		{ID: "A", StartNode: "1", EndNode: ""},
		{ID: "B", StartNode: "1", EndNode: "2"},
	}, nil)

	if g.PipeCount() != 1 {
		t.Errorf("expected 1 pipe, got %d", g.PipeCount())
	}
	if len(warnings) != 1 || warnings[0].Kind != WarnMalformedPipeRecord {
		t.Errorf("expected MalformedPipeRecord warning, got %v", warnings)
	}
}

func TestBuild_SelfLoopStored(t *testing.T) {
	g, warnings := Build("test", []Pipe{
		{ID: "L", StartNode: "1", EndNode: "1"},
	}, nil)

	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	p, ok := g.Pipe("L")
	if !ok || !p.SelfLoop() {
		t.Fatalf("self-loop not stored: %+v", p)
	}
	if len(g.Adjacent("1", Downstream)) != 1 || len(g.Adjacent("1", Upstream)) != 1 {
		t.Error("self-loop missing from adjacency tables")
	}
}

func TestBuild_ParallelEdgesKept(t *testing.T) {
	g, _ := Build("test", []Pipe{
		{ID: "A", StartNode: "1", EndNode: "2"},
		{ID: "B", StartNode: "1", EndNode: "2"},
	}, nil)

	down := g.Adjacent("1", Downstream)
	if len(down) != 2 {
		t.Fatalf("expected 2 parallel edges, got %d", len(down))
	}
	if down[0].Pipe != "A" || down[1].Pipe != "B" {
		t.Errorf("insertion order not preserved: %v", down)
	}
}

func TestBuild_InsertionOrderPreserved(t *testing.T) {
	pipes := []Pipe{
		{ID: "C", StartNode: "1", EndNode: "2"},
		{ID: "A", StartNode: "2", EndNode: "3"},
		{ID: "B", StartNode: "2", EndNode: "4"},
	}
	g, _ := Build("test", pipes, nil)

	got := g.Pipes()
	for i, p := range pipes {
		if got[i].ID != p.ID {
			t.Fatalf("order broken at %d: want %s got %s", i, p.ID, got[i].ID)
		}
	}

	adj := g.Adjacent("2", Downstream)
	if len(adj) != 2 || adj[0].Pipe != "A" || adj[1].Pipe != "B" {
		t.Errorf("adjacency order wrong: %v", adj)
	}
}

func TestBuild_BranchesAttach(t *testing.T) {
	g, warnings := Build("test",
		[]Pipe{{ID: "A", StartNode: "1", EndNode: "2"}},
		[]Branch{
			{ID: "BR1", PipeID: "A", ParcelGID: "P1"},
			{ID: "BR2", PipeID: "A", ParcelGID: "P2"},
			{ID: "BR3", PipeID: "missing", ParcelGID: "P3"},
		},
	)

	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if got := g.Branches("A"); len(got) != 2 {
		t.Errorf("expected 2 branches on A, got %d", len(got))
	}
	if g.BranchCount() != 3 {
		t.Errorf("expected 3 branches total, got %d", g.BranchCount())
	}
}

func TestBuild_MalformedBranchWarned(t *testing.T) {
	_, warnings := Build("test",
		[]Pipe{{ID: "A", StartNode: "1", EndNode: "2"}},
		[]Branch{{ID: "", PipeID: "A"}},
	)
	if len(warnings) != 1 || warnings[0].Kind != WarnMalformedBranchRecord {
		t.Errorf("expected MalformedBranchRecord warning, got %v", warnings)
	}
}

func TestNodeCount(t *testing.T) {
	g, _ := Build("test", []Pipe{
		{ID: "A", StartNode: "1", EndNode: "2"},
		{ID: "B", StartNode: "2", EndNode: "3"},
		{ID: "L", StartNode: "4", EndNode: "4"},
	}, nil)

	if got := g.NodeCount(); got != 4 {
		t.Errorf("expected 4 nodes, got %d", got)
	}
}

func TestParseDirection(t *testing.T) {
	cases := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"upstream", Upstream, false},
		{"U", Upstream, false},
		{"downstream", Downstream, false},
		{"d", Downstream, false},
		{"sideways", Downstream, true},
		{"", Downstream, true},
	}
	for _, c := range cases {
		got, err := ParseDirection(c.in)
		if (err != nil) != c.wantErr {
			t.Errorf("ParseDirection(%q) err = %v, wantErr %v", c.in, err, c.wantErr)
			continue
		}
		if err == nil && got != c.want {
			t.Errorf("ParseDirection(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestWarningString(t *testing.T) {
	w := Warning{Kind: WarnSeedNotFound, ID: "Z"}
	if got := w.String(); got != "SeedNotFound: Z" {
		t.Errorf("unexpected rendering: %q", got)
	}

	w = Warning{Kind: WarnMalformedPipeRecord, ID: "A", Detail: "missing END_NODE"}
	if got := w.String(); got != "MalformedPipeRecord: A (missing END_NODE)" {
		t.Errorf("unexpected rendering: %q", got)
	}
}
