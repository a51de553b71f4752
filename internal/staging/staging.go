// Package staging implements the mutable file tree a build is assembled in
// before final packaging. The tree is created empty per run and discarded
// afterwards; it is never shared between runs.
package staging

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// Tree is a writable staging file store. It may be backed by an in-memory
// filesystem or a fresh temporary directory; callers see the same interface
// either way. Paths are slash-separated and relative to the tree root.
type Tree struct {
	fs  afero.Fs
	dir string // non-empty when backed by a temporary directory
}

// NewMem returns a tree backed entirely by memory. Used by tests and small
// builds; nothing touches disk.
func NewMem() *Tree {
	return &Tree{fs: afero.NewMemMapFs()}
}

// NewTempDir returns a tree backed by a fresh temporary directory. Close
// removes the directory.
func NewTempDir() (*Tree, error) {
	dir, err := os.MkdirTemp("", "uberpack-")
	if err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}
	return &Tree{fs: afero.NewBasePathFs(afero.NewOsFs(), dir), dir: dir}, nil
}

// Close discards the backing store. Safe to call on memory-backed trees.
func (t *Tree) Close() error {
	if t.dir == "" {
		return nil
	}
	return os.RemoveAll(t.dir)
}

func (t *Tree) Exists(name string) (bool, error) {
	return afero.Exists(t.fs, abs(name))
}

func (t *Tree) MkdirAll(name string) error {
	return t.fs.MkdirAll(abs(name), 0o755)
}

// Open opens a staged file for reading.
func (t *Tree) Open(name string) (io.ReadCloser, error) {
	return t.fs.Open(abs(name))
}

// Create opens a staged file for writing, truncating any previous content and
// creating parent directories as needed.
func (t *Tree) Create(name string) (io.WriteCloser, error) {
	name = abs(name)
	if dir := path.Dir(name); dir != "/" {
		if err := t.fs.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return t.fs.Create(name)
}

// SetModTime pins the last-modified time of a staged file so the final
// archive can preserve it.
func (t *Tree) SetModTime(name string, mtime time.Time) error {
	return t.fs.Chtimes(abs(name), mtime, mtime)
}

// Walk traverses the tree depth-first in lexical order. The root is visited
// as "."; all other paths are relative, slash-separated.
func (t *Tree) Walk(fn func(path string, info os.FileInfo) error) error {
	return afero.Walk(t.fs, "/", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		return fn(rel(p), info)
	})
}

func abs(name string) string {
	return path.Clean("/" + strings.TrimPrefix(name, "/"))
}

func rel(name string) string {
	name = strings.TrimPrefix(path.Clean(name), "/")
	if name == "" {
		return "."
	}
	return name
}
