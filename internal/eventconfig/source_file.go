package eventconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// FileSource reads the snapshot from a JSON file on every fetch, so edits to
// the file apply on the next request without a restart. Intended for
// single-node deployments and local development.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Fetch(_ context.Context) (Snapshot, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read configuration file: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode configuration file: %w", err)
	}
	return snap, nil
}

// StaticSource serves a fixed snapshot. Test use only.
type StaticSource struct {
	Snap Snapshot
	Err  error
}

func (s *StaticSource) Fetch(_ context.Context) (Snapshot, error) {
	return s.Snap, s.Err
}
