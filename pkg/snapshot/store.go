package snapshot

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tmh-gis/sewertrace/pkg/network"
)

// ErrSnapshotNotFound means no snapshot exists for the requested key.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Store persists encoded snapshots by key.
type Store interface {
	Save(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
}

// Key derives a stable snapshot key from a source name. The source path
// itself may contain separators or be unreasonably long, so it is
// hashed the same way for every backend.
func Key(sourceName string) string {
	h := fnv.New64a()
	h.Write([]byte(sourceName))
	return fmt.Sprintf("%x.snap", h.Sum64())
}

// Save encodes and stores a snapshot of the graph.
func Save(ctx context.Context, store Store, g *network.Graph) error {
	data, err := Encode(g)
	if err != nil {
		return err
	}
	return store.Save(ctx, Key(g.SourceName()), data)
}

// Load fetches and decodes the snapshot for a source name.
func Load(ctx context.Context, store Store, sourceName string) (*network.Graph, error) {
	data, err := store.Load(ctx, Key(sourceName))
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// FileStore keeps snapshots in a local directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save writes atomically via a temp file rename so a crashed writer
// never leaves a half-written snapshot behind.
func (s *FileStore) Save(_ context.Context, key string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	return os.Rename(tmp.Name(), filepath.Join(s.dir, key))
}

func (s *FileStore) Load(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return data, nil
}
