// Package bundle packages an output directory into a reproducible zip for
// hand-off: meta.json, checkpoint.txt and the patch chain of the current
// epoch, with fixed timestamps and sorted entries so identical histories
// produce byte-identical archives.
package bundle

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"nano-sync/internal/artifact"
)

// fixedZipTime ensures byte-for-byte reproducible archives.
// (ZIP epoch start: 1980-01-01)
var fixedZipTime = time.Unix(315532800, 0).UTC()

// Export writes a zip archive of the public artifacts in outputDir.
// The archive contains exactly meta.json, checkpoint.txt and every
// numbered patch, ordered meta first, checkpoint second, patches by
// chain position.
func Export(outputDir, zipPath string) error {
	dir, err := artifact.Open(outputDir)
	if err != nil {
		return err
	}
	m, err := dir.ReadMeta()
	if err != nil {
		return fmt.Errorf("export %s: %w", outputDir, err)
	}

	names := []string{artifact.MetaFileName, artifact.CheckpointFileName}
	patches := make([]string, 0, m.Span())
	for k := 1; k <= m.Span(); k++ {
		patches = append(patches, artifact.PatchName(k))
	}
	names = append(names, patches...)

	if err := os.MkdirAll(filepath.Dir(zipPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, name := range names {
		if err := writeEntry(zw, outputDir, name); err != nil {
			_ = zw.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return f.Sync()
}

func writeEntry(zw *zip.Writer, outputDir, name string) error {
	src, err := os.Open(filepath.Join(outputDir, name))
	if err != nil {
		return fmt.Errorf("export entry %s: %w", name, err)
	}
	defer src.Close()

	hdr := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: fixedZipTime,
	}
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}
