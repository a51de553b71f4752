// Package builder drives an uberjar build: it classifies each classpath
// entry, feeds its files through the staging writer, then serializes the
// staging tree into the output archive. Entries are processed one at a time
// and in classpath order, which is what makes the "first entry wins"
// collision policy deterministic.
package builder

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/uberpack/uberpack/internal/classpath"
	"github.com/uberpack/uberpack/internal/config"
	"github.com/uberpack/uberpack/internal/exclude"
	"github.com/uberpack/uberpack/internal/jar"
	"github.com/uberpack/uberpack/internal/logging"
	"github.com/uberpack/uberpack/internal/metrics"
	"github.com/uberpack/uberpack/internal/progress"
	"github.com/uberpack/uberpack/internal/staging"
)

type Builder struct {
	entries  []string
	mode     config.Mode
	excluded []string
	output   io.Writer
	tree     *staging.Tree
	log      *logging.Logger
	debug    bool
	bar      *progress.Bar
}

func New() *Builder {
	return &Builder{}
}

func (b *Builder) WithEntries(entries []string) *Builder {
	b.entries = entries
	return b
}

func (b *Builder) WithMode(mode config.Mode) *Builder {
	b.mode = mode
	return b
}

// WithExcluded appends extra exclusion globs to the built-in set.
func (b *Builder) WithExcluded(excluded []string) *Builder {
	b.excluded = excluded
	return b
}

func (b *Builder) WithOutput(w io.Writer) *Builder {
	b.output = w
	return b
}

// WithTree overrides the staging tree backing store. Tests use an in-memory
// tree; by default Build stages into a fresh temporary directory.
func (b *Builder) WithTree(tree *staging.Tree) *Builder {
	b.tree = tree
	return b
}

func (b *Builder) WithLogger(log *logging.Logger) *Builder {
	b.log = log
	return b
}

func (b *Builder) WithDebug(debug bool) *Builder {
	b.debug = debug
	return b
}

func (b *Builder) WithProgress(bar *progress.Bar) *Builder {
	b.bar = bar
	return b
}

// Build runs the pipeline to completion. Any error other than a missing
// classpath entry aborts the run; the output is not valid unless Build
// returns nil.
func (b *Builder) Build(ctx context.Context) error {
	start := time.Now()

	if err := b.build(ctx); err != nil {
		metrics.BuildFailed()
		return err
	}

	metrics.BuildSucceeded(start)
	return nil
}

func (b *Builder) build(ctx context.Context) error {
	if b.log == nil {
		b.log = logging.NewLogger(logging.Config{Level: logging.LogLevelInfo})
	}

	excl, err := exclude.New(b.excluded...)
	if err != nil {
		return err
	}

	tree := b.tree
	if tree == nil {
		tree, err = staging.NewTempDir()
		if err != nil {
			return err
		}
		defer tree.Close()
	}

	w := staging.NewWriter(tree, excl, b.log, b.debug)

	for _, entry := range b.entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		kind := classpath.Classify(entry)
		metrics.EntriesProcessed.WithLabelValues(kind.String()).Inc()

		switch kind {
		case classpath.Directory:
			if err := walkDir(entry, w); err != nil {
				return err
			}
		case classpath.NestedArchive:
			if b.mode == config.Thin {
				b.log.Debugf("thin mode, skipping archive %q", entry)
				break
			}
			if err := jar.Extract(entry, w); err != nil {
				return err
			}
		case classpath.Missing:
			b.log.Warnf("classpath entry %q not found, skipping", entry)
		case classpath.Unknown:
			b.log.Warnf("classpath entry %q is neither a directory nor a jar, skipping", entry)
		}

		b.bar.Add(1)
	}

	return jar.Build(tree, b.output)
}

// walkDir feeds every regular file under dir to the staging writer, with its
// path relative to dir. Directories are pre-created before their children are
// visited so empty directories survive into the output. Any traversal failure
// is fatal for the run.
func walkDir(dir string, w *staging.Writer) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk %q: %w", dir, err)
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("walk %q: %w", dir, err)
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			return w.MkdirAll(rel)
		}
		if !d.Type().IsRegular() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("walk %q: %w", dir, err)
		}
		defer f.Close()

		return w.Stage(rel, f, nil)
	})
}
