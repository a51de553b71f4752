// Package config holds the run configuration for an uberjar build. Values
// come from an optional YAML file with command-line flags taking precedence;
// the resolved Root is passed explicitly into the pipeline so that runs stay
// independently testable.
package config

import (
	"fmt"
	"os"

	"github.com/gobwas/glob"
	"github.com/goccy/go-yaml"
)

// Mode selects what nested archives contribute to the output.
type Mode int

const (
	// Full extracts nested archive contents into the output (the default).
	Full Mode = iota
	// Thin skips nested archive contents; only directory entries are merged.
	Thin
)

func (m Mode) String() string {
	if m == Thin {
		return "thin"
	}
	return "full"
}

// ParseMode maps a user-supplied mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "full":
		return Full, nil
	case "thin":
		return Thin, nil
	}
	return Full, fmt.Errorf("invalid packaging mode %q (expected \"full\" or \"thin\")", s)
}

// Root is the top-level configuration for a build.
type Root struct {
	Output  string         `yaml:"output"`
	Mode    string         `yaml:"mode"`
	Debug   bool           `yaml:"debug"`
	Marker  string         `yaml:"marker"`  // substring excluding the tool's own jar from the classpath
	Exclude []string       `yaml:"exclude"` // extra exclusion globs, appended to the built-in set
	Storage *ObjectStorage `yaml:"storage,omitempty"`
}

// ObjectStorage configures an optional post-build upload of the archive.
type ObjectStorage struct {
	AmazonS3 *AmazonS3 `yaml:"aws,omitempty"`
}

// AmazonS3 holds the S3-compatible upload target. URL overrides the endpoint
// for S3-compatible services (path-style addressing is used when set).
type AmazonS3 struct {
	Bucket string `yaml:"bucket"`
	Key    string `yaml:"key"`
	Region string `yaml:"region,omitempty"`
	URL    string `yaml:"url,omitempty"`
}

// DefaultMarker is the substring identifying the tool's own installation path
// within the classpath.
const DefaultMarker = "uberpack"

// Parse loads a Root from YAML and validates it.
func Parse(bs []byte) (*Root, error) {
	var root Root
	if err := yaml.Unmarshal(bs, &root); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := root.Validate(); err != nil {
		return nil, err
	}
	return &root, nil
}

// ParseFile loads a Root from the YAML file at path.
func ParseFile(path string) (*Root, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %v: %w", path, err)
	}
	root, err := Parse(bs)
	if err != nil {
		return nil, fmt.Errorf("configuration file %v: %w", path, err)
	}
	return root, nil
}

// Validate checks fields that cannot be verified later without losing the
// offending context: the mode name, exclusion globs and the storage target.
func (r *Root) Validate() error {
	if _, err := ParseMode(r.Mode); err != nil {
		return err
	}
	for _, pattern := range r.Exclude {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return fmt.Errorf("invalid exclusion pattern %q: %w", pattern, err)
		}
	}
	if r.Storage != nil {
		if r.Storage.AmazonS3 == nil {
			return fmt.Errorf("storage configured without a backend")
		}
		if r.Storage.AmazonS3.Bucket == "" || r.Storage.AmazonS3.Key == "" {
			return fmt.Errorf("storage requires both bucket and key")
		}
	}
	return nil
}
