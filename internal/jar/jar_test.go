package jar_test

import (
	"archive/zip"
	"bytes"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/uberpack/uberpack/internal/exclude"
	"github.com/uberpack/uberpack/internal/jar"
	"github.com/uberpack/uberpack/internal/logging"
	"github.com/uberpack/uberpack/internal/staging"
)

func newWriter(t *testing.T) (*staging.Writer, *staging.Tree) {
	t.Helper()
	tree := staging.NewMem()
	excl, err := exclude.New()
	if err != nil {
		t.Fatal(err)
	}
	log := logging.NewLoggerWithWriter(logging.Config{Level: logging.LogLevelDebug}, io.Discard)
	return staging.NewWriter(tree, excl, log, false), tree
}

// writeTestJar creates a jar on disk with the given entries. A name ending in
// "/" becomes a directory entry.
func writeTestJar(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, name := range slices.Sorted(maps.Keys(files)) {
		if strings.HasSuffix(name, "/") {
			if _, err := zw.CreateHeader(&zip.FileHeader{Name: name}); err != nil {
				t.Fatal(err)
			}
			continue
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: time.Date(2021, 3, 4, 5, 6, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(files[name])); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

func readArchive(t *testing.T, bs []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(bs), int64(len(bs)))
	if err != nil {
		t.Fatal(err)
	}
	out := map[string]string{}
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			out[f.Name] = ""
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		out[f.Name] = string(content)
	}
	return out
}

func TestExtract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.jar")
	writeTestJar(t, path, map[string]string{
		"org/":               "",
		"org/lib/":           "",
		"org/lib/Impl.class": "bytecode",
		"config.edn":         "{:a 1}",
	})

	w, tree := newWriter(t)
	if err := jar.Extract(path, w); err != nil {
		t.Fatal(err)
	}

	f, err := tree.Open("org/lib/Impl.class")
	if err != nil {
		t.Fatal(err)
	}
	bs, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		t.Fatal(err)
	}
	if string(bs) != "bytecode" {
		t.Errorf("extracted content = %q", bs)
	}
}

func TestExtractMissingArchive(t *testing.T) {
	w, _ := newWriter(t)
	if err := jar.Extract(filepath.Join(t.TempDir(), "nope.jar"), w); err == nil {
		t.Fatal("expected error for missing archive")
	}
}

func TestBuildRoundTrip(t *testing.T) {
	w, tree := newWriter(t)
	if err := w.Stage("a/b/file.txt", strings.NewReader("content"), nil); err != nil {
		t.Fatal(err)
	}
	// Empty directory must survive as an explicit entry.
	if err := tree.MkdirAll("a/empty"); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := jar.Build(tree, &buf); err != nil {
		t.Fatal(err)
	}

	exp := map[string]string{
		"a/":           "",
		"a/b/":         "",
		"a/b/file.txt": "content",
		"a/empty/":     "",
	}
	if diff := cmp.Diff(exp, readArchive(t, buf.Bytes())); diff != "" {
		t.Errorf("unexpected archive layout (-want +got):\n%s", diff)
	}
}

func TestBuildPreservesModTime(t *testing.T) {
	w, tree := newWriter(t)
	mtime := time.Date(2021, 3, 4, 5, 6, 0, 0, time.UTC)
	if err := w.Stage("file.txt", strings.NewReader("x"), &mtime); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := jar.Build(tree, &buf); err != nil {
		t.Fatal(err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range zr.File {
		if f.Name != "file.txt" {
			continue
		}
		// Zip timestamps have two-second resolution.
		if d := f.Modified.Sub(mtime); d < -2*time.Second || d > 2*time.Second {
			t.Errorf("modified = %v, want %v", f.Modified, mtime)
		}
		return
	}
	t.Fatal("file.txt not found in archive")
}

func TestExtractThenBuildRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.jar")
	writeTestJar(t, path, map[string]string{
		"x/":      "",
		"x/a.txt": "A",
		"empty/":  "",
	})

	w, tree := newWriter(t)
	if err := jar.Extract(path, w); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := jar.Build(tree, &buf); err != nil {
		t.Fatal(err)
	}

	got := readArchive(t, buf.Bytes())
	if _, ok := got["empty/"]; !ok {
		t.Errorf("empty directory lost: %v", got)
	}
	if got["x/a.txt"] != "A" {
		t.Errorf("x/a.txt = %q", got["x/a.txt"])
	}
}
