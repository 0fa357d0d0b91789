package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StagingPrefix marks temporary files that belong to an in-flight write.
// Leftovers with this prefix are swept when a directory is opened again
// after an interrupted commit.
const StagingPrefix = ".staging-"

// WriteFileAtomic writes data to path via a staging file in the same
// directory followed by a rename, so a crash never leaves a truncated
// document behind.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, StagingPrefix+filepath.Base(path)+"-")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// SweepStaging removes leftover staging files from dir. Called when a
// directory is opened, before any read, so an interrupted commit cannot be
// mistaken for real artifacts. Missing directory is not an error.
func SweepStaging(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, StagingPrefix) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("sweep staging file %s: %w", name, err)
		}
	}
	return nil
}
