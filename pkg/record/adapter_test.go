package record

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmh-gis/sewertrace/pkg/network"
)

func TestAdapter_Pipes(t *testing.T) {
	a := NewAdapter()

	pipes, warnings := a.Pipes([]Row{
		{"PIPE_ID": "A", "START_NODE": "1", "END_NODE": "2"},
		{"PIPE_ID": "B", "START_NODE": " 2 ", "END_NODE": "3"}, // whitespace trimmed
	})

	require.Empty(t, warnings)
	require.Len(t, pipes, 2)
	assert.Equal(t, network.Pipe{ID: "A", StartNode: "1", EndNode: "2"}, pipes[0])
	assert.Equal(t, network.NodeID("2"), pipes[1].StartNode)
}

func TestAdapter_MalformedPipeRows(t *testing.T) {
	a := NewAdapter()

	pipes, warnings := a.Pipes([]Row{
		{"PIPE_ID": "A", "START_NODE": "1"}, // no END_NODE
		{"PIPE_ID": "", "START_NODE": "1", "END_NODE": "2"},
		{"PIPE_ID": "C", "START_NODE": "1", "END_NODE": "2"},
	})

	require.Len(t, pipes, 1)
	assert.Equal(t, network.PipeID("C"), pipes[0].ID)

	require.Len(t, warnings, 2)
	assert.Equal(t, network.WarnMalformedPipeRecord, warnings[0].Kind)
	assert.Equal(t, "MalformedPipeRecord: A (missing END_NODE)", warnings[0].String())
	assert.Equal(t, network.WarnMalformedPipeRecord, warnings[1].Kind)
}

func TestAdapter_NullNodeSentinels(t *testing.T) {
	a := NewAdapter(WithNullNodeSentinels("0_CWW", "0_WW"))

	pipes, warnings := a.Pipes([]Row{
		{"PIPE_ID": "A", "START_NODE": "0_CWW", "END_NODE": "2"},
		{"PIPE_ID": "B", "START_NODE": "1", "END_NODE": "2"},
	})

	require.Len(t, pipes, 1)
	assert.Equal(t, network.PipeID("B"), pipes[0].ID)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Detail, "START_NODE")
}

func TestAdapter_SwapCorrections(t *testing.T) {
	a := NewAdapter(WithSwapCorrections("A"))

	pipes, warnings := a.Pipes([]Row{
		{"PIPE_ID": "A", "START_NODE": "2", "END_NODE": "1"},
		{"PIPE_ID": "B", "START_NODE": "2", "END_NODE": "3"},
	})

	require.Empty(t, warnings)
	assert.Equal(t, network.NodeID("1"), pipes[0].StartNode)
	assert.Equal(t, network.NodeID("2"), pipes[0].EndNode)
	// Uncorrected pipe untouched
	assert.Equal(t, network.NodeID("2"), pipes[1].StartNode)
}

func TestAdapter_CustomFieldMap(t *testing.T) {
	fm := DefaultFieldMap()
	fm.PipeID = "ASSET_ID"
	fm.StartNode = "US_NODE"
	fm.EndNode = "DS_NODE"
	a := NewAdapter(WithFieldMap(fm))

	pipes, warnings := a.Pipes([]Row{
		{"ASSET_ID": "A", "US_NODE": "1", "DS_NODE": "2"},
	})

	require.Empty(t, warnings)
	require.Len(t, pipes, 1)
	assert.Equal(t, network.PipeID("A"), pipes[0].ID)
}

func TestAdapter_Branches(t *testing.T) {
	a := NewAdapter()

	branches, warnings := a.Branches([]Row{
		{"BRANCH_ID": "BR1", "PIPE_ID": "A", "PRCL_GID": "P1"},
		{"BRANCH_ID": "BR2", "PIPE_ID": "A"}, // no parcel is fine
		{"BRANCH_ID": "", "PIPE_ID": "A"},    // no branch id is not
	})

	require.Len(t, branches, 2)
	assert.Equal(t, network.Branch{ID: "BR1", PipeID: "A", ParcelGID: "P1"}, branches[0])
	assert.Empty(t, branches[1].ParcelGID)

	require.Len(t, warnings, 1)
	assert.Equal(t, network.WarnMalformedBranchRecord, warnings[0].Kind)
}

func TestAdapter_Parcels(t *testing.T) {
	a := NewAdapter()

	parcels := a.Parcels([]Row{
		{"GID": "P1"},
		{"GID": ""},
		{"GID": "P2"},
	})
	assert.Equal(t, []network.ParcelGID{"P1", "P2"}, parcels)
}

func TestClassifyParcels(t *testing.T) {
	parcels := []network.ParcelGID{"P1", "P2", "P3"}
	branches := []network.Branch{
		{ID: "BR1", PipeID: "A", ParcelGID: "P2"},
	}

	served, unserved := ClassifyParcels(parcels, branches)
	assert.Equal(t, []network.ParcelGID{"P2"}, served)
	assert.Equal(t, []network.ParcelGID{"P1", "P3"}, unserved)
}

func TestReadCSV(t *testing.T) {
	data := "PIPE_ID,START_NODE,END_NODE\nA,1,2\nB,2,3\n"

	rows, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{"PIPE_ID": "A", "START_NODE": "1", "END_NODE": "2"}, rows[0])
}

func TestReadCSV_ShortRecords(t *testing.T) {
	data := "PIPE_ID,START_NODE,END_NODE\nA,1\n"

	rows, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "A", rows[0]["PIPE_ID"])
	assert.Equal(t, "1", rows[0]["START_NODE"])
	_, present := rows[0]["END_NODE"]
	assert.False(t, present)
}

func TestReadCSV_EmptyInput(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestAdapterThenBuild_MalformedRowTolerance(t *testing.T) {
	// A bad row is excluded but the rest of the network still traces
	a := NewAdapter()
	pipes, warnings := a.Pipes([]Row{
		{"PIPE_ID": "A", "START_NODE": "1", "END_NODE": "2"},
		{"PIPE_ID": "BAD", "START_NODE": "2"},
		{"PIPE_ID": "B", "START_NODE": "2", "END_NODE": "3"},
	})
	require.Len(t, warnings, 1)

	g, buildWarnings := network.Build("test", pipes, nil)
	require.Empty(t, buildWarnings)
	assert.Equal(t, 2, g.PipeCount())
	assert.Len(t, g.Adjacent("2", network.Downstream), 1)
}
