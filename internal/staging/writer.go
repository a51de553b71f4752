package staging

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/uberpack/uberpack/internal/exclude"
	"github.com/uberpack/uberpack/internal/logging"
	"github.com/uberpack/uberpack/internal/merge"
	"github.com/uberpack/uberpack/internal/metrics"
	"github.com/uberpack/uberpack/internal/strategy"
)

// Writer copies named files into a staging tree, dropping excluded names and
// resolving collisions with already-staged files. All staging for a run goes
// through a single Writer, serialized by the orchestrator.
type Writer struct {
	tree  *Tree
	excl  *exclude.List
	log   *logging.Logger
	debug bool
}

func NewWriter(tree *Tree, excl *exclude.List, log *logging.Logger, debug bool) *Writer {
	return &Writer{tree: tree, excl: excl, log: log, debug: debug}
}

// Tree returns the tree this writer stages into.
func (w *Writer) Tree() *Tree {
	return w.tree
}

// MkdirAll pre-creates a directory in the staging tree so empty directories
// survive into the output archive.
func (w *Writer) MkdirAll(name string) error {
	return w.tree.MkdirAll(name)
}

// Stage copies the named file into the staging tree. Excluded names are
// discarded. If the path is already staged, the collision is resolved with
// the strategy for that filename and the staged file is rewritten in place.
// A nil modTime leaves the timestamp to the backing store.
func (w *Writer) Stage(name string, r io.Reader, modTime *time.Time) error {
	if w.excl.Excluded(name) {
		if w.debug {
			w.log.Debugf("excluded %q", name)
		}
		metrics.FilesExcluded.Inc()
		return nil
	}

	exists, err := w.tree.Exists(name)
	if err != nil {
		return fmt.Errorf("stage %q: %w", name, err)
	}
	if !exists {
		return w.copy(name, r, modTime)
	}

	s := strategy.For(name)
	w.log.Warnf("collision on %q, resolving with %v", name, s)
	metrics.CollisionsResolved.WithLabelValues(s.String()).Inc()

	if s == strategy.KeepFirst {
		// First classpath entry wins; drain nothing, discard the incoming copy.
		return nil
	}

	incoming, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("stage %q: %w", name, err)
	}

	staged, err := w.tree.Open(name)
	if err != nil {
		return fmt.Errorf("stage %q: %w", name, err)
	}
	merged, err := merge.Apply(s, name, staged, incoming)
	staged.Close()
	if err != nil {
		return err
	}

	// The merge result completely replaces the staged bytes.
	return w.copy(name, bytes.NewReader(merged), modTime)
}

func (w *Writer) copy(name string, r io.Reader, modTime *time.Time) error {
	f, err := w.tree.Create(name)
	if err != nil {
		return fmt.Errorf("stage %q: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("stage %q: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("stage %q: %w", name, err)
	}
	if modTime != nil {
		if err := w.tree.SetModTime(name, *modTime); err != nil {
			return fmt.Errorf("stage %q: %w", name, err)
		}
	}
	return nil
}
