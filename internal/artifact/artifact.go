// Package artifact reads and writes the consumer-facing output directory:
// checkpoint.txt, meta.json and the numbered patch chain. Writes follow a
// staging discipline: every artifact lands under a staging name first and
// is renamed into place in a fixed order, with meta.json renamed last so
// the meta document is the commit point of the operation. Opening a
// directory sweeps staging leftovers from an interrupted commit.
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"nano-sync/internal/store"
)

const (
	// CheckpointFileName is the full snapshot artifact.
	CheckpointFileName = "checkpoint.txt"

	// MetaFileName is the version record artifact.
	MetaFileName = "meta.json"
)

var (
	// ErrMetaMissing is returned when meta.json does not exist.
	ErrMetaMissing = errors.New("version meta is missing")

	// ErrMetaMalformed is returned when meta.json is not a valid document
	// of the expected shape.
	ErrMetaMalformed = errors.New("version meta is malformed")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var patchNameRe = regexp.MustCompile(`^([0-9]+)\.patch$`)

// Dir is one output directory.
type Dir struct {
	path string
}

// Open prepares an output directory for use: the directory must already
// exist; staging leftovers from an interrupted commit are removed before
// anything is read.
func Open(path string) (*Dir, error) {
	if err := store.SweepStaging(path); err != nil {
		return nil, err
	}
	return &Dir{path: path}, nil
}

// Path returns the directory path.
func (d *Dir) Path() string {
	return d.path
}

// PatchName renders the artifact name of patch n within the current epoch.
func PatchName(n int) string {
	return strconv.Itoa(n) + ".patch"
}

// ReadMeta loads and validates meta.json. Failures are classified so the
// engine can distinguish a missing history from a corrupted one when it
// reports why it reset the chain.
func (d *Dir) ReadMeta() (store.Meta, error) {
	b, err := os.ReadFile(filepath.Join(d.path, MetaFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return store.Meta{}, ErrMetaMissing
		}
		return store.Meta{}, err
	}
	var m store.Meta
	if err := json.Unmarshal(b, &m); err != nil {
		return store.Meta{}, fmt.Errorf("%w: %v", ErrMetaMalformed, err)
	}
	if err := m.Validate(); err != nil {
		return store.Meta{}, err
	}
	return m, nil
}

// ReadCheckpoint returns the checkpoint content.
func (d *Dir) ReadCheckpoint() ([]byte, error) {
	return os.ReadFile(filepath.Join(d.path, CheckpointFileName))
}

// ReadPatch returns the body of patch n.
func (d *Dir) ReadPatch(n int) (string, error) {
	b, err := os.ReadFile(filepath.Join(d.path, PatchName(n)))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteCheckpoint commits a fresh checkpoint: content and meta are staged,
// then renamed into place (checkpoint first, meta last). Patch files from
// the previous epoch are deleted afterwards so the directory always
// describes exactly one epoch.
func (d *Dir) WriteCheckpoint(content []byte, m store.Meta) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := store.WriteFileAtomic(filepath.Join(d.path, CheckpointFileName), content); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := d.writeMeta(m); err != nil {
		return err
	}
	return d.removeStalePatches()
}

// WritePatch commits patch n of the current epoch together with the
// updated meta. The patch is renamed into place before meta.json, so an
// interrupted commit leaves the old meta pointing at a complete chain.
func (d *Dir) WritePatch(n int, body string, m store.Meta) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if n < 1 {
		return fmt.Errorf("patch number %d out of range", n)
	}
	if err := store.WriteFileAtomic(filepath.Join(d.path, PatchName(n)), []byte(body)); err != nil {
		return fmt.Errorf("write patch %d: %w", n, err)
	}
	return d.writeMeta(m)
}

func (d *Dir) writeMeta(m store.Meta) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := store.WriteFileAtomic(filepath.Join(d.path, MetaFileName), append(b, '\n')); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return nil
}

// PatchCount returns how many numbered patch files are present.
func (d *Dir) PatchCount() (int, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, e := range entries {
		if !e.IsDir() && patchNameRe.MatchString(e.Name()) {
			count++
		}
	}
	return count, nil
}

// removeStalePatches deletes every numbered patch file. Called after a
// checkpoint commit; patches of the previous epoch are unreachable from
// the new meta and would only confuse consumers.
func (d *Dir) removeStalePatches() error {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !patchNameRe.MatchString(e.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(d.path, e.Name())); err != nil {
			return fmt.Errorf("remove stale patch %s: %w", e.Name(), err)
		}
	}
	return nil
}
