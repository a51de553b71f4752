// Package classpath enumerates and classifies the entries contributing files
// to an uberjar build.
package classpath

import (
	"os"
	"strings"
)

// Kind classifies a single classpath entry.
type Kind int

const (
	Directory Kind = iota
	NestedArchive
	Missing
	Unknown
)

func (k Kind) String() string {
	switch k {
	case Directory:
		return "directory"
	case NestedArchive:
		return "jar"
	case Missing:
		return "missing"
	default:
		return "unknown"
	}
}

const archiveSuffix = ".jar"

// Entries splits a classpath string into its ordered entry paths, dropping
// empty segments and any entry whose path contains marker. The marker filter
// keeps the tool's own installation jar out of its output.
func Entries(cp string, marker string) []string {
	var out []string
	for _, e := range strings.Split(cp, string(os.PathListSeparator)) {
		if e == "" {
			continue
		}
		if marker != "" && strings.Contains(e, marker) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Classify inspects a classpath entry on the filesystem.
func Classify(path string) Kind {
	info, err := os.Stat(path)
	if err != nil {
		return Missing
	}
	switch {
	case info.IsDir():
		return Directory
	case info.Mode().IsRegular() && strings.HasSuffix(strings.ToLower(path), archiveSuffix):
		return NestedArchive
	default:
		return Unknown
	}
}
