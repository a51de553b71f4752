// Package jar reads nested archives into the staging tree and serializes the
// finished tree into the output archive. Archives use standard ZIP layout:
// directory entries end in "/" and files carry explicit modification times.
package jar

import (
	"archive/zip"
	"fmt"
	"strings"

	"github.com/uberpack/uberpack/internal/staging"
)

// Extract streams the entries of the archive at path into the staging writer,
// in archive order. Entries within one archive must be read sequentially; the
// reader is never re-entered while an entry is open.
func Extract(path string, dst *staging.Writer) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("open archive %q: %w", path, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") || f.FileInfo().IsDir() {
			if err := dst.MkdirAll(strings.TrimSuffix(f.Name, "/")); err != nil {
				return fmt.Errorf("extract %q from %q: %w", f.Name, path, err)
			}
			continue
		}
		if err := extractFile(f, dst); err != nil {
			return fmt.Errorf("extract %q from %q: %w", f.Name, path, err)
		}
	}
	return nil
}

func extractFile(f *zip.File, dst *staging.Writer) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	mtime := f.Modified
	return dst.Stage(f.Name, rc, &mtime)
}
