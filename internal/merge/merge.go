// Package merge produces the replacement content for a staged file when a
// later classpath entry contributes a file at the same relative path.
package merge

import (
	"bytes"
	"fmt"
	"io"

	"olympos.io/encoding/edn"

	"github.com/uberpack/uberpack/internal/strategy"
)

// ParseError reports a malformed structured document encountered during a
// MergeStructured collision. It is fatal for the whole run: overlay semantics
// on malformed input are undefined.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed structured document %q: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Apply resolves a collision at path. existing is the currently-staged
// content, incoming the content arriving from a later classpath entry. The
// returned bytes completely replace the staged file.
func Apply(s strategy.Strategy, path string, existing io.Reader, incoming []byte) ([]byte, error) {
	switch s {
	case strategy.MergeStructured:
		return mergeStructured(path, existing, incoming)
	case strategy.ConcatenateLines:
		return concatenate(existing, incoming)
	default:
		// KeepFirst: caller leaves the staged file untouched; nothing to do
		// here, but consume nothing and return the staged content unchanged.
		return io.ReadAll(existing)
	}
}

// mergeStructured reads both sides as EDN maps and overlays the staged map on
// top of the incoming one, so the earlier classpath entry's keys win.
func mergeStructured(path string, existing io.Reader, incoming []byte) ([]byte, error) {
	staged, err := io.ReadAll(existing)
	if err != nil {
		return nil, err
	}

	var stagedDoc, incomingDoc map[any]any
	if err := edn.Unmarshal(staged, &stagedDoc); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if err := edn.Unmarshal(incoming, &incomingDoc); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	merged := make(map[any]any, len(stagedDoc)+len(incomingDoc))
	for k, v := range incomingDoc {
		merged[k] = v
	}
	for k, v := range stagedDoc {
		merged[k] = v
	}

	return edn.Marshal(merged)
}

// concatenate emits the staged lines first, a single newline separator, then
// the incoming lines, preserving the order within each side.
func concatenate(existing io.Reader, incoming []byte) ([]byte, error) {
	staged, err := io.ReadAll(existing)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(staged) + 1 + len(incoming))
	buf.Write(staged)
	buf.WriteByte('\n')
	buf.Write(incoming)
	return buf.Bytes(), nil
}
