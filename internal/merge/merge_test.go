package merge_test

import (
	"errors"
	"strings"
	"testing"

	"olympos.io/encoding/edn"

	"github.com/uberpack/uberpack/internal/merge"
	"github.com/uberpack/uberpack/internal/strategy"
)

func TestConcatenateLines(t *testing.T) {
	staged := "com.example.FirstImpl\ncom.example.SecondImpl"
	incoming := "org.other.ThirdImpl"

	got, err := merge.Apply(strategy.ConcatenateLines, "META-INF/services/com.example.Api",
		strings.NewReader(staged), []byte(incoming))
	if err != nil {
		t.Fatal(err)
	}

	exp := "com.example.FirstImpl\ncom.example.SecondImpl\norg.other.ThirdImpl"
	if string(got) != exp {
		t.Errorf("got %q, want %q", got, exp)
	}
}

func TestMergeStructured(t *testing.T) {
	// Staged earlier, so its value for y must win.
	staged := `{x/tag one.ns/x, y/tag one.ns/y}`
	incoming := `{y/tag two.ns/y, z/tag two.ns/z}`

	got, err := merge.Apply(strategy.MergeStructured, "data_readers.clj",
		strings.NewReader(staged), []byte(incoming))
	if err != nil {
		t.Fatal(err)
	}

	var doc map[any]any
	if err := edn.Unmarshal(got, &doc); err != nil {
		t.Fatalf("result is not well-formed edn: %v", err)
	}

	exp := map[edn.Symbol]edn.Symbol{
		"x/tag": "one.ns/x",
		"y/tag": "one.ns/y",
		"z/tag": "two.ns/z",
	}
	if len(doc) != len(exp) {
		t.Fatalf("got %d keys, want %d: %v", len(doc), len(exp), doc)
	}
	for k, v := range exp {
		if doc[k] != v {
			t.Errorf("key %v = %v, want %v", k, doc[k], v)
		}
	}
}

func TestMergeStructuredMalformed(t *testing.T) {
	cases := []struct {
		note     string
		staged   string
		incoming string
	}{
		{note: "malformed staged", staged: `{x/tag`, incoming: `{y/tag a.b/y}`},
		{note: "malformed incoming", staged: `{x/tag a.b/x}`, incoming: `"not a map"`},
	}

	for _, tc := range cases {
		t.Run(tc.note, func(t *testing.T) {
			_, err := merge.Apply(strategy.MergeStructured, "data_readers.clj",
				strings.NewReader(tc.staged), []byte(tc.incoming))
			if err == nil {
				t.Fatal("expected parse error")
			}
			var parseErr *merge.ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected *merge.ParseError, got %T: %v", err, err)
			}
			if parseErr.Path != "data_readers.clj" {
				t.Errorf("error path = %q", parseErr.Path)
			}
		})
	}
}

func TestKeepFirstReturnsStaged(t *testing.T) {
	got, err := merge.Apply(strategy.KeepFirst, "a.class",
		strings.NewReader("first"), []byte("second"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "first" {
		t.Errorf("got %q, want staged content", got)
	}
}
