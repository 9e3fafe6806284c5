// Package concurrency contains the bounded worker pool, subprocess log
// drain, and scoped scratch directory shared by the pipeline components.
package concurrency

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/noaa-goesvfi/goesvfi/internal/vfierrors"
)

// ScratchDir is a per-pipeline temporary directory, removed on every exit
// path including cancellation and failure.
type ScratchDir struct {
	Path string
}

// NewScratchDir creates a uniquely-named directory under base (the system
// temp dir when base is empty).
func NewScratchDir(base string) (*ScratchDir, error) {
	if base == "" {
		base = os.TempDir()
	}
	path := filepath.Join(base, "goesvfi-"+uuid.NewString())
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, vfierrors.IOErrorErr("creating scratch directory", err)
	}
	return &ScratchDir{Path: path}, nil
}

// Join returns a path under the scratch directory.
func (s *ScratchDir) Join(name string) string {
	return filepath.Join(s.Path, name)
}

// Close recursively removes the scratch directory. Safe to call more than
// once and safe to call when the directory was already removed.
func (s *ScratchDir) Close() error {
	if err := os.RemoveAll(s.Path); err != nil {
		return vfierrors.IOErrorErr("removing scratch directory", err)
	}
	return nil
}
