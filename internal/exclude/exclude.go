// Package exclude decides which staged filenames are dropped from the output
// archive entirely. Patterns are matched against the full relative path, never
// just the basename.
package exclude

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// defaultPatterns covers build-tool descriptors, license files, Maven poms,
// module descriptors and jar signing metadata. Matching is done against the
// lowercased path, which makes every pattern effectively case-insensitive.
var defaultPatterns = []string{
	"project.clj",
	"**.pom",
	"module-info.class",
	"{license,licence,copyright,notice}",
	"{license,licence,copyright,notice}.txt",
	"**/{license,licence,copyright,notice}",
	"**/{license,licence,copyright,notice}.txt",
	"meta-inf/**.{mf,sf,rsa,dsa}",
}

// A List is a compiled, ordered set of exclusion patterns. The zero value is
// not usable; construct with New.
type List struct {
	globs []glob.Glob
}

// New compiles the default exclusion set plus any extra user-supplied
// patterns. An invalid extra pattern is a configuration error.
func New(extra ...string) (*List, error) {
	patterns := make([]string, 0, len(defaultPatterns)+len(extra))
	patterns = append(patterns, defaultPatterns...)
	patterns = append(patterns, extra...)

	l := &List{globs: make([]glob.Glob, 0, len(patterns))}
	for _, p := range patterns {
		g, err := glob.Compile(strings.ToLower(p), '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclusion pattern %q: %w", p, err)
		}
		l.globs = append(l.globs, g)
	}
	return l, nil
}

// Excluded reports whether the relative path should be dropped from the
// output. The first matching pattern short-circuits.
func (l *List) Excluded(path string) bool {
	path = strings.ToLower(path)
	for _, g := range l.globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}
