// Package cli wires the nano-sync command tree: sync (reconcile one or
// more filter lists), watch, rebuild, status and export. All commands
// share the config-dir flag; everything below the flag parsing delegates
// to the internal packages.
package cli

import (
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"nano-sync/internal/buildinfo"
)

// DefaultConfigDir is the fixed relative default for the private config
// and snapshot-cache directory.
const DefaultConfigDir = "nano-sync-config"

var (
	flagConfigDir string
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:     "nano-sync",
	Short:   "checkpoint/patch history for filter lists",
	Long:    "nano-sync keeps a versioned history of filter-list files:\nperiodic full checkpoints plus a bounded chain of unified-diff patches,\nso consumers fetch small patches instead of the whole list on every change.",
	Version: buildinfo.String(),

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagVerbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfigDir, "config-dir", "c", DefaultConfigDir,
		"private directory for tracking state and snapshot cache")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"log engine decisions")
	rootCmd.AddCommand(syncCmd, watchCmd, rebuildCmd, statusCmd, exportCmd)
}

// Execute runs the command tree. The caller maps a non-nil error to a
// non-zero exit code.
func Execute() error {
	return rootCmd.Execute()
}

// DefaultOutputDir derives the consumer-facing directory for a filter:
// the filter path minus its extension, suffixed with "-diff", colocated
// with the filter.
func DefaultOutputDir(filterPath string) string {
	return strings.TrimSuffix(filterPath, filepath.Ext(filterPath)) + "-diff"
}
