package bundle

import (
	"archive/zip"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"nano-sync/internal/artifact"
	"nano-sync/internal/store"
)

func TestExportArchivesCurrentEpoch(t *testing.T) {
	outDir := t.TempDir()
	d, err := artifact.Open(outDir)
	require.NoError(t, err)
	require.NoError(t, d.WriteCheckpoint([]byte("A\n"), store.Meta{Checkpoint: 0, Latest: 0}))
	require.NoError(t, d.WritePatch(1, "patch-one", store.Meta{Checkpoint: 0, Latest: 1}))
	require.NoError(t, d.WritePatch(2, "patch-two", store.Meta{Checkpoint: 0, Latest: 2}))

	zipPath := filepath.Join(t.TempDir(), "history.zip")
	require.NoError(t, Export(outDir, zipPath))

	zr, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
		require.Equal(t, fixedZipTime.Unix(), f.Modified.Unix(), "timestamps must be fixed for reproducibility")
	}
	require.Equal(t, []string{"meta.json", "checkpoint.txt", "1.patch", "2.patch"}, names)

	rc, err := zr.File[2].Open()
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, "patch-one", string(b))
}

func TestExportBrokenDirFails(t *testing.T) {
	require.Error(t, Export(t.TempDir(), filepath.Join(t.TempDir(), "x.zip")))
}
