package history

import (
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"nano-sync/internal/artifact"
	"nano-sync/internal/diff"
)

// Latest selects the newest version when passed to Rebuild.
const Latest = -1

// Rebuild reconstructs the content of version from an output directory by
// reading the checkpoint and applying the patch chain in order. This is the
// consumer-side contract of the artifacts; the engine's own tests use it to
// prove the round-trip. Unlike reconcile, a broken history here is a hard
// error: there is no current content to re-bootstrap from.
func Rebuild(outputDir string, version int) ([]byte, error) {
	dir, err := artifact.Open(outputDir)
	if err != nil {
		return nil, err
	}
	m, err := dir.ReadMeta()
	if err != nil {
		return nil, err
	}
	if version == Latest {
		version = m.Latest
	}
	if version < m.Checkpoint || version > m.Latest {
		return nil, fmt.Errorf("version %d not reconstructable, directory covers %d..%d",
			version, m.Checkpoint, m.Latest)
	}

	content, err := dir.ReadCheckpoint()
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	for k := 1; k <= version-m.Checkpoint; k++ {
		body, err := dir.ReadPatch(k)
		if err != nil {
			return nil, fmt.Errorf("read patch %d: %w", k, err)
		}
		content, err = diff.Apply(content, body)
		if err != nil {
			return nil, fmt.Errorf("apply patch %d: %w", k, err)
		}
	}
	return content, nil
}

// EnsureDirs creates the output and config directories. The two creations
// are independent, so they are fired concurrently and both awaited before
// any artifact I/O starts.
func EnsureDirs(outputDir, configDir string) error {
	var g errgroup.Group
	g.Go(func() error { return os.MkdirAll(outputDir, 0o755) })
	g.Go(func() error { return os.MkdirAll(configDir, 0o755) })
	return g.Wait()
}
