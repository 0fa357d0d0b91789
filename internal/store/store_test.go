package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)

	name := "0b0f1d3e.txt"
	cfg := GlobalConfig{
		"lists/easylist.txt": {LastFile: &name, LastVersion: 4},
		"lists/fresh.txt":    NewTracker(),
	}
	require.NoError(t, s.Save(cfg))

	got := NewFileStore(dir).Load()
	require.Len(t, got, 2)
	require.Equal(t, 4, got["lists/easylist.txt"].LastVersion)
	require.NotNil(t, got["lists/easylist.txt"].LastFile)
	require.Equal(t, name, *got["lists/easylist.txt"].LastFile)
	require.Nil(t, got["lists/fresh.txt"].LastFile)
	require.Equal(t, NeverBuilt, got["lists/fresh.txt"].LastVersion)
}

func TestFileStoreLoadMissingIsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nope"))
	require.Empty(t, s.Load())
}

func TestFileStoreLoadCorruptIsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{not json"), 0o644))
	require.Empty(t, NewFileStore(dir).Load())
}

func TestFileStoreLoadWrongTypesIsEmpty(t *testing.T) {
	dir := t.TempDir()
	doc := []byte(`{"a.txt": {"lastFile": 12, "lastVersion": "zero"}}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), doc, 0o644))
	require.Empty(t, NewFileStore(dir).Load())
}

func TestMemStore(t *testing.T) {
	s := NewMemStore()
	cfg := s.Load()
	cfg["x.txt"] = NewTracker()
	require.NoError(t, s.Save(cfg))
	require.Len(t, s.Load(), 1)
}

func TestTrackerConsistent(t *testing.T) {
	require.True(t, NewTracker().Consistent())

	name := "cache.txt"
	require.True(t, (&Tracker{LastFile: &name, LastVersion: 0}).Consistent())
	require.False(t, (&Tracker{LastFile: &name, LastVersion: NeverBuilt}).Consistent())
	require.False(t, (&Tracker{LastFile: nil, LastVersion: 3}).Consistent())
}

func TestMetaValidate(t *testing.T) {
	require.NoError(t, Meta{Checkpoint: 0, Latest: 0}.Validate())
	require.NoError(t, Meta{Checkpoint: 3, Latest: 7}.Validate())
	require.ErrorIs(t, Meta{Checkpoint: -1, Latest: 0}.Validate(), ErrMetaInvalid)
	require.ErrorIs(t, Meta{Checkpoint: 5, Latest: 4}.Validate(), ErrMetaInvalid)
	require.Equal(t, 4, Meta{Checkpoint: 3, Latest: 7}.Span())
}

func TestWriteFileAtomicAndSweep(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	require.NoError(t, WriteFileAtomic(path, []byte("one")))
	require.NoError(t, WriteFileAtomic(path, []byte("two")))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "two", string(b))

	// A leftover staging file from an interrupted commit is swept.
	leftover := filepath.Join(dir, StagingPrefix+"doc.json-123456")
	require.NoError(t, os.WriteFile(leftover, []byte("partial"), 0o644))
	require.NoError(t, SweepStaging(dir))
	_, err = os.Stat(leftover)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, SweepStaging(filepath.Join(dir, "missing")))
}
