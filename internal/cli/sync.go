package cli

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"nano-sync/internal/cache"
	"nano-sync/internal/history"
	"nano-sync/internal/listfiles"
	"nano-sync/internal/store"
	"nano-sync/internal/textutil"
)

var (
	syncOutputDir     string
	syncSkipUnchanged bool
	syncMaxPatchRatio float64
	syncContext       int
	syncNormalize     bool
	syncFresh         bool
)

var syncCmd = &cobra.Command{
	Use:   "sync <filterPath|dir>...",
	Short: "record the current content of filter lists as a new version",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().StringVarP(&syncOutputDir, "output", "o", "",
		"output directory (single filter only; default <filter>-diff)")
	syncCmd.Flags().BoolVar(&syncSkipUnchanged, "skip-unchanged", false,
		"do not consume a version when the content did not change")
	syncCmd.Flags().Float64Var(&syncMaxPatchRatio, "max-patch-ratio", 0,
		"checkpoint instead of patching when the patch exceeds this fraction of the full content (0 = off)")
	syncCmd.Flags().IntVar(&syncContext, "context", 0,
		"context lines in generated patches (0 = default)")
	syncCmd.Flags().BoolVar(&syncNormalize, "normalize", false,
		"normalize input to LF/UTF-8 before tracking")
	syncCmd.Flags().BoolVar(&syncFresh, "fresh", false,
		"drop tracking state first, forcing a checkpoint")
}

func runSync(cmd *cobra.Command, args []string) error {
	targets, err := expandTargets(args)
	if err != nil {
		return err
	}
	if syncOutputDir != "" && len(targets) != 1 {
		return fmt.Errorf("--output needs exactly one filter, got %d", len(targets))
	}

	eng, err := newEngine()
	if err != nil {
		return err
	}
	for _, target := range targets {
		if err := syncOne(eng, target); err != nil {
			return err
		}
	}
	return nil
}

func syncOne(eng *history.Engine, filterPath string) error {
	outDir := syncOutputDir
	if outDir == "" {
		outDir = DefaultOutputDir(filterPath)
	}
	if err := history.EnsureDirs(outDir, flagConfigDir); err != nil {
		return err
	}

	content, err := os.ReadFile(filterPath)
	if err != nil {
		return fmt.Errorf("read filter: %w", err)
	}
	if syncNormalize {
		content = textutil.EnsureTrailingLF(textutil.NormalizeUTF8LF(content))
	}
	if syncFresh {
		if err := eng.Forget(filterPath); err != nil {
			return err
		}
	}

	out, err := eng.Reconcile(filterPath, content, outDir)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"filter":  filterPath,
		"action":  out.Action,
		"version": out.Version,
	}).Info("synced")
	return nil
}

// newEngine builds the engine shared by one invocation: file-backed config
// store and snapshot cache, both rooted at the config directory.
func newEngine() (*history.Engine, error) {
	if err := os.MkdirAll(flagConfigDir, 0o755); err != nil {
		return nil, err
	}
	return history.New(
		store.NewFileStore(flagConfigDir),
		cache.New(flagConfigDir),
		history.Options{
			SkipIfUnchanged: syncSkipUnchanged,
			MaxPatchRatio:   syncMaxPatchRatio,
			Context:         syncContext,
		},
	)
}

// expandTargets resolves CLI arguments into filter paths: files pass
// through, directories are expanded into the filter lists they contain.
func expandTargets(args []string) ([]string, error) {
	var out []string
	for _, a := range args {
		a = filepath.Clean(a)
		fi, err := os.Stat(a)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			out = append(out, a)
			continue
		}
		found, err := listfiles.Collect(a, nil)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("no filter lists found under %s", a)
		}
		out = append(out, found...)
	}
	return out, nil
}
