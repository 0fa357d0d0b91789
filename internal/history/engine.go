// Package history implements the checkpoint/patch engine. Given the current
// content of a tracked filter it decides whether to write a full checkpoint
// or an incremental patch, maintains the version counters, and re-bootstraps
// the chain from current content whenever the recorded history turns out to
// be missing or corrupted. Corruption is never surfaced as an error; every
// reset is reported through the Outcome and the log instead.
package history

import (
	"errors"
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"nano-sync/internal/artifact"
	"nano-sync/internal/cache"
	"nano-sync/internal/diff"
	"nano-sync/internal/store"
)

// RolloverThreshold bounds the patch-chain length within one epoch. Once an
// epoch holds this many patches, the next change forces a checkpoint so a
// consumer never applies more than RolloverThreshold patches in a row.
// Fixed design constant, not user-configurable.
const RolloverThreshold = 10

// Action is what the engine did for one reconcile call.
type Action string

const (
	ActionCheckpoint Action = "checkpoint"
	ActionPatch      Action = "patch"
	ActionSkip       Action = "skip"
)

// Reason explains an action.
type Reason string

const (
	ReasonFirstBuild  Reason = "first-build"
	ReasonRollover    Reason = "rollover"
	ReasonLargePatch  Reason = "large-patch"
	ReasonIncremental Reason = "incremental"
	ReasonUnchanged   Reason = "unchanged"
)

// ResetReason explains why a recorded history was discarded and the chain
// re-bootstrapped from current content.
type ResetReason string

const (
	ResetMetaMissing     ResetReason = "meta-missing"
	ResetMetaMalformed   ResetReason = "meta-malformed"
	ResetMetaInvalid     ResetReason = "meta-invalid"
	ResetSnapshotMissing ResetReason = "snapshot-missing"
)

// Outcome reports what a reconcile call did.
type Outcome struct {
	Action    Action
	Reason    Reason
	Reset     ResetReason // set when Reason == ReasonReset
	Version   int         // version after the call
	PatchName string      // set for ActionPatch
}

// ReasonReset marks a checkpoint forced by broken history; Outcome.Reset
// carries the precise cause.
const ReasonReset Reason = "reset"

// Options tunes the engine. Zero value is the default behavior.
type Options struct {
	// SkipIfUnchanged makes reconcile a no-op when the content is
	// byte-identical to the cached snapshot: no version bump, no patch
	// file. Off by default: an unchanged update then still consumes a
	// version and writes a header-only patch.
	SkipIfUnchanged bool

	// MaxPatchRatio falls back to a checkpoint when the patch body
	// exceeds ratio*len(newContent) bytes. 0 disables the fallback.
	MaxPatchRatio float64

	// Context is the number of context lines in generated patches.
	Context int
}

func (o Options) validate() error {
	if o.MaxPatchRatio < 0 {
		return fmt.Errorf("max patch ratio must not be negative, got %v", o.MaxPatchRatio)
	}
	if o.Context < 0 {
		return fmt.Errorf("diff context must not be negative, got %d", o.Context)
	}
	return nil
}

// Engine drives checkpoint/patch reconciliation for tracked filters. It
// owns mutation of the global config and the per-directory meta; the config
// is loaded once at construction and persisted at the end of every
// successful reconcile.
type Engine struct {
	configStore store.ConfigStore
	snapshots   *cache.Cache
	opts        Options
	cfg         store.GlobalConfig
}

// New builds an engine on top of a config store and a snapshot cache.
// Option values of the wrong shape are caller errors and fail construction;
// a missing or corrupt config document is not (it loads as empty).
func New(cs store.ConfigStore, snapshots *cache.Cache, opts Options) (*Engine, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Engine{
		configStore: cs,
		snapshots:   snapshots,
		opts:        opts,
		cfg:         cs.Load(),
	}, nil
}

// Tracked returns the loaded global config. Callers must not mutate it.
func (e *Engine) Tracked() store.GlobalConfig {
	return e.cfg
}

// Forget drops the tracking state and cached snapshot for filterPath, so
// the next reconcile performs a first-build checkpoint. The config is
// persisted immediately.
func (e *Engine) Forget(filterPath string) error {
	tr, ok := e.cfg[filterPath]
	if !ok {
		return nil
	}
	if tr.LastFile != nil {
		if err := e.snapshots.Remove(*tr.LastFile); err != nil {
			return err
		}
	}
	delete(e.cfg, filterPath)
	return e.configStore.Save(e.cfg)
}

// Reconcile records content as the next version of filterPath in outputDir.
// It never fails on missing or corrupted history; it fails on caller errors
// (bad options are caught earlier) and on I/O errors, in which case the
// global config is left unpersisted.
func (e *Engine) Reconcile(filterPath string, content []byte, outputDir string) (Outcome, error) {
	tr := e.tracker(filterPath)

	dir, err := artifact.Open(outputDir)
	if err != nil {
		return Outcome{}, err
	}

	var out Outcome
	if tr.Fresh() {
		out, err = e.checkpoint(dir, tr, content, ReasonFirstBuild, "")
	} else {
		out, err = e.update(dir, tr, filterPath, content)
	}
	if err != nil {
		return Outcome{}, err
	}

	if err := e.configStore.Save(e.cfg); err != nil {
		return Outcome{}, fmt.Errorf("persist config: %w", err)
	}

	log.WithFields(log.Fields{
		"filter":  filterPath,
		"action":  out.Action,
		"reason":  out.Reason,
		"version": out.Version,
	}).Debug("reconciled")
	return out, nil
}

// tracker returns the tracking state for filterPath, creating the
// never-built state when absent. An entry that violates the state
// invariant is replaced the same way: it cannot be trusted to point at a
// usable snapshot.
func (e *Engine) tracker(filterPath string) *store.Tracker {
	tr := e.cfg[filterPath]
	if tr == nil || !tr.Consistent() {
		if tr != nil {
			log.WithField("filter", filterPath).Warn("tracking state inconsistent, re-initializing")
		}
		tr = store.NewTracker()
		e.cfg[filterPath] = tr
	}
	return tr
}

// update handles a filter with existing tracking state: load the recorded
// history, then patch within the epoch, roll over to a fresh checkpoint at
// the threshold, or reset on broken history.
func (e *Engine) update(dir *artifact.Dir, tr *store.Tracker, filterPath string, content []byte) (Outcome, error) {
	res := e.loadHistory(dir, tr)
	if !res.OK {
		log.WithFields(log.Fields{
			"filter": filterPath,
			"reset":  res.Reset,
		}).Warn("history broken, rebuilding from checkpoint")
		return e.checkpoint(dir, tr, content, ReasonReset, res.Reset)
	}

	if res.Meta.Span() >= RolloverThreshold {
		return e.checkpoint(dir, tr, content, ReasonRollover, "")
	}
	return e.patch(dir, tr, filterPath, content, res)
}

// checkpoint writes a full snapshot: bump the version, mint a cache name on
// first build, commit checkpoint.txt plus meta, then refresh the snapshot
// cache. After it returns, the output directory alone reconstructs the
// current version.
func (e *Engine) checkpoint(dir *artifact.Dir, tr *store.Tracker, content []byte, reason Reason, reset ResetReason) (Outcome, error) {
	tr.LastVersion++
	if tr.LastFile == nil {
		name := cache.NewName()
		tr.LastFile = &name
	}
	m := store.Meta{Checkpoint: tr.LastVersion, Latest: tr.LastVersion}
	if err := dir.WriteCheckpoint(content, m); err != nil {
		return Outcome{}, err
	}
	if err := e.snapshots.Put(*tr.LastFile, content); err != nil {
		return Outcome{}, err
	}
	return Outcome{Action: ActionCheckpoint, Reason: reason, Reset: reset, Version: tr.LastVersion}, nil
}

// patch writes the next incremental patch of the epoch.
func (e *Engine) patch(dir *artifact.Dir, tr *store.Tracker, filterPath string, content []byte, res LoadResult) (Outcome, error) {
	base := filepath.Base(filterPath)
	body, err := diff.Unified("a/"+base, "b/"+base, res.Previous, content, diff.Options{Context: e.opts.Context})
	if err != nil {
		return Outcome{}, err
	}

	if e.opts.SkipIfUnchanged && !diff.HasHunks(body) {
		return Outcome{Action: ActionSkip, Reason: ReasonUnchanged, Version: tr.LastVersion}, nil
	}
	if e.opts.MaxPatchRatio > 0 && float64(len(body)) > e.opts.MaxPatchRatio*float64(len(content)) {
		return e.checkpoint(dir, tr, content, ReasonLargePatch, "")
	}

	m := res.Meta
	m.Latest++
	tr.LastVersion = m.Latest
	n := m.Latest - m.Checkpoint
	if err := dir.WritePatch(n, body, m); err != nil {
		return Outcome{}, err
	}
	if err := e.snapshots.Put(*tr.LastFile, content); err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Action:    ActionPatch,
		Reason:    ReasonIncremental,
		Version:   m.Latest,
		PatchName: artifact.PatchName(n),
	}, nil
}

// LoadResult makes the history-load outcome explicit: either the recorded
// history is usable (OK with meta and previous content), or it must be
// discarded for the stated reason. Broken history is a state, not an error.
type LoadResult struct {
	OK       bool
	Reset    ResetReason
	Meta     store.Meta
	Previous []byte
}

func (e *Engine) loadHistory(dir *artifact.Dir, tr *store.Tracker) LoadResult {
	m, err := dir.ReadMeta()
	if err != nil {
		return LoadResult{Reset: classifyMetaError(err)}
	}
	prev, err := e.snapshots.Get(*tr.LastFile)
	if err != nil {
		return LoadResult{Reset: ResetSnapshotMissing}
	}
	return LoadResult{OK: true, Meta: m, Previous: prev}
}

func classifyMetaError(err error) ResetReason {
	switch {
	case errors.Is(err, artifact.ErrMetaMissing):
		return ResetMetaMissing
	case errors.Is(err, artifact.ErrMetaMalformed):
		return ResetMetaMalformed
	default:
		return ResetMetaInvalid
	}
}
