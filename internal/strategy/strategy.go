// Package strategy maps a relative filename to the policy used to resolve a
// naming collision between two classpath entries contributing that file.
package strategy

import "strings"

// Strategy enumerates the fixed set of collision policies. The set is closed;
// dispatch is a pure function of the filename.
type Strategy int

const (
	// KeepFirst leaves the already-staged file untouched; the incoming copy
	// is discarded. Since classpath entries are processed in order, this
	// encodes "first classpath entry wins".
	KeepFirst Strategy = iota

	// MergeStructured overlays two data-reader maps, with the already-staged
	// side winning on key conflict.
	MergeStructured

	// ConcatenateLines appends the incoming lines after the staged lines,
	// separated by a single newline.
	ConcatenateLines
)

const servicesPrefix = "META-INF/services/"

func (s Strategy) String() string {
	switch s {
	case MergeStructured:
		return "merge-structured"
	case ConcatenateLines:
		return "concatenate-lines"
	default:
		return "keep-first"
	}
}

// For returns the collision strategy for the given relative path.
func For(path string) Strategy {
	switch {
	case path == "data_readers.clj":
		return MergeStructured
	case strings.HasPrefix(path, servicesPrefix):
		return ConcatenateLines
	default:
		return KeepFirst
	}
}
