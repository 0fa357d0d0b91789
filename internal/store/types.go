// Package store holds the version metadata documents and their persistence:
// the global tracking config (one entry per filter path) and the per-output
// directory version meta. Both are small JSON documents; the engine follows
// a load -> validate -> mutate -> persist discipline against an injectable
// ConfigStore so the whole decision logic is testable in memory.
package store

import (
	"errors"
	"fmt"
)

// NeverBuilt is the lastVersion sentinel for a filter that has no
// checkpoint yet.
const NeverBuilt = -1

var (
	// ErrMetaInvalid is returned when a meta document violates the
	// latest >= checkpoint >= 0 invariant or carries wrong field types.
	ErrMetaInvalid = errors.New("version meta is not valid")
)

// Tracker is the per-filter tracking state kept in the global config.
// LastFile is nil until the first checkpoint assigns an opaque snapshot
// cache name; LastVersion is -1 exactly as long as LastFile is nil.
type Tracker struct {
	LastFile    *string `json:"lastFile"`
	LastVersion int     `json:"lastVersion"`
}

// NewTracker returns the never-built state.
func NewTracker() *Tracker {
	return &Tracker{LastFile: nil, LastVersion: NeverBuilt}
}

// Fresh reports whether the filter has never been checkpointed.
func (t *Tracker) Fresh() bool {
	return t.LastFile == nil
}

// Consistent reports whether the tracker honors the state invariant:
// LastFile == nil iff LastVersion == -1.
func (t *Tracker) Consistent() bool {
	return (t.LastFile == nil) == (t.LastVersion == NeverBuilt)
}

// GlobalConfig maps filter paths to their tracking state.
type GlobalConfig map[string]*Tracker

// Meta is the per-output-directory version record. Checkpoint is the
// version of the last full snapshot, Latest the most recent version
// represented by the patch chain.
type Meta struct {
	Checkpoint int `json:"checkpoint"`
	Latest     int `json:"latest"`
}

// Validate enforces latest >= checkpoint >= 0.
func (m Meta) Validate() error {
	if m.Checkpoint < 0 || m.Latest < m.Checkpoint {
		return fmt.Errorf("%w: checkpoint=%d latest=%d", ErrMetaInvalid, m.Checkpoint, m.Latest)
	}
	return nil
}

// Span is the number of patches issued since the last checkpoint.
func (m Meta) Span() int {
	return m.Latest - m.Checkpoint
}
