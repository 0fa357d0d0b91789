// Package cache is the private snapshot cache: the most recent raw copy of
// each tracked filter, stored in the config directory under an opaque
// generated filename. It exists only so the next patch can be computed
// against the previous content; downstream consumers never read it.
package cache

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"nano-sync/internal/store"
)

// Cache stores snapshot files in a single directory.
type Cache struct {
	dir string
}

// New returns a cache rooted at dir (normally the config directory).
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// NewName mints an opaque, globally-unique cache filename. The name carries
// no information about the tracked filter.
func NewName() string {
	return uuid.NewString() + ".txt"
}

// Put replaces the cached snapshot under name with content. The write is
// atomic so a crash cannot leave a truncated snapshot that would later be
// diffed against.
func (c *Cache) Put(name string, content []byte) error {
	return store.WriteFileAtomic(filepath.Join(c.dir, name), content)
}

// Get reads the cached snapshot under name.
func (c *Cache) Get(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(c.dir, name))
}

// Has reports whether a snapshot exists under name.
func (c *Cache) Has(name string) bool {
	fi, err := os.Stat(filepath.Join(c.dir, name))
	return err == nil && !fi.IsDir()
}

// Remove drops the snapshot under name. Removing a missing entry is not an
// error; the engine re-bootstraps from current content either way.
func (c *Cache) Remove(name string) error {
	err := os.Remove(filepath.Join(c.dir, name))
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
