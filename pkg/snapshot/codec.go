package snapshot

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/golang/snappy"

	"github.com/tmh-gis/sewertrace/pkg/network"
)

// Snapshot file format:
//   [magic:4 "SWTR"][version:1][checksum:4][payload:N]
// where payload is a snappy-compressed JSON document. The checksum
// covers the compressed payload. A graph rebuild is cheap, so any
// decode problem surfaces as ErrCorruptSnapshot and the caller falls
// back to rebuilding from source rows.

var magic = [4]byte{'S', 'W', 'T', 'R'}

const formatVersion = 1

// ErrCorruptSnapshot means the snapshot failed its checksum or decode.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

// document is the serialized graph. Pipe and branch order is the
// original insertion order, so a reloaded graph traces identically.
type document struct {
	Version  int              `json:"version"`
	Source   string           `json:"source"`
	Pipes    []network.Pipe   `json:"pipes"`
	Branches []network.Branch `json:"branches"`
}

// Encode serializes a graph to the snapshot wire format.
func Encode(g *network.Graph) ([]byte, error) {
	doc := document{
		Version:  formatVersion,
		Source:   g.SourceName(),
		Pipes:    g.Pipes(),
		Branches: g.AllBranches(),
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	payload := snappy.Encode(nil, raw)

	out := make([]byte, 0, 9+len(payload))
	out = append(out, magic[:]...)
	out = append(out, formatVersion)
	out = binary.BigEndian.AppendUint32(out, crc32.ChecksumIEEE(payload))
	out = append(out, payload...)
	return out, nil
}

// Decode rebuilds a graph from snapshot bytes. The graph is
// reconstructed through the regular builder, so validation still
// applies; builder warnings on a snapshot indicate the file was
// tampered with and are folded into ErrCorruptSnapshot.
func Decode(data []byte) (*network.Graph, error) {
	if len(data) < 9 {
		return nil, fmt.Errorf("%w: truncated header", ErrCorruptSnapshot)
	}
	if [4]byte(data[:4]) != magic {
		return nil, fmt.Errorf("%w: bad magic", ErrCorruptSnapshot)
	}
	if data[4] != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptSnapshot, data[4])
	}

	sum := binary.BigEndian.Uint32(data[5:9])
	payload := data[9:]
	if crc32.ChecksumIEEE(payload) != sum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptSnapshot)
	}

	raw, err := snappy.Decode(nil, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	g, warnings := network.Build(doc.Source, doc.Pipes, doc.Branches)
	if len(warnings) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrCorruptSnapshot, warnings[0])
	}
	return g, nil
}
