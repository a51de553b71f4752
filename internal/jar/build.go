package jar

import (
	"archive/zip"
	"fmt"
	"io"
	"os"

	"github.com/uberpack/uberpack/internal/staging"
)

// Build serializes the fully-populated staging tree into out. Every directory
// except the root is written as an explicit entry ending in "/" so extractors
// recreate the hierarchy even for otherwise-empty directories; files carry
// the staging tree's modification times.
func Build(tree *staging.Tree, out io.Writer) error {
	zw := zip.NewWriter(out)

	err := tree.Walk(func(path string, info os.FileInfo) error {
		if path == "." {
			return nil
		}
		if info.IsDir() {
			_, err := zw.CreateHeader(&zip.FileHeader{
				Name:     path + "/",
				Modified: info.ModTime(),
			})
			if err != nil {
				return fmt.Errorf("write directory entry %q: %w", path, err)
			}
			return nil
		}

		hdr := &zip.FileHeader{
			Name:     path,
			Method:   zip.Deflate,
			Modified: info.ModTime(),
		}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("write entry %q: %w", path, err)
		}
		f, err := tree.Open(path)
		if err != nil {
			return fmt.Errorf("read staged file %q: %w", path, err)
		}
		_, err = io.Copy(w, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("write entry %q: %w", path, err)
		}
		return nil
	})
	if err != nil {
		zw.Close()
		return err
	}

	return zw.Close()
}
