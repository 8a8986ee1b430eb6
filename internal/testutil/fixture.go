// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/spf13/afero"
)

// Tree maps slash-separated relative paths to file contents.
type Tree map[string]string

// Paths returns the tree's paths in sorted order.
func (tr Tree) Paths() []string {
	paths := make([]string, 0, len(tr))
	for p := range tr {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// WriteTree writes every file of tr under root on fs.
func WriteTree(t testing.TB, fs afero.Fs, root string, tr Tree) {
	t.Helper()
	for _, rel := range tr.Paths() {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", path, err)
		}
		if err := afero.WriteFile(fs, path, []byte(tr[rel]), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
}

// MemTree returns an in-memory filesystem holding tr under root.
func MemTree(t testing.TB, root string, tr Tree) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	WriteTree(t, fs, root, tr)
	return fs
}

// WriteDirTree writes tr into a fresh temporary directory and returns it.
func WriteDirTree(t testing.TB, tr Tree) string {
	t.Helper()
	dir := t.TempDir()
	WriteTree(t, afero.NewOsFs(), dir, tr)
	return dir
}

// RecordingFs wraps an afero.Fs and records every path opened for reading.
type RecordingFs struct {
	afero.Fs
	opened []string
}

// NewRecordingFs wraps fs.
func NewRecordingFs(fs afero.Fs) *RecordingFs {
	return &RecordingFs{Fs: fs}
}

// Open records name and delegates to the wrapped filesystem.
func (r *RecordingFs) Open(name string) (afero.File, error) {
	r.opened = append(r.opened, filepath.ToSlash(name))
	return r.Fs.Open(name)
}

// OpenFile records name when opened read-only and delegates.
func (r *RecordingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag == os.O_RDONLY {
		r.opened = append(r.opened, filepath.ToSlash(name))
	}
	return r.Fs.OpenFile(name, flag, perm)
}

// Opened returns the distinct opened paths in sorted order.
func (r *RecordingFs) Opened() []string {
	out := slices.Clone(r.opened)
	slices.Sort(out)
	return slices.Compact(out)
}
