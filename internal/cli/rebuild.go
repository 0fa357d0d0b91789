package cli

import (
	"github.com/spf13/cobra"

	"nano-sync/internal/history"
	"nano-sync/internal/store"
)

var (
	rebuildVersion int
	rebuildOut     string
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild <outputDir>",
	Short: "reconstruct a version from checkpoint plus patch chain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := history.Rebuild(args[0], rebuildVersion)
		if err != nil {
			return err
		}
		if rebuildOut == "" {
			_, err = cmd.OutOrStdout().Write(content)
			return err
		}
		return store.WriteFileAtomic(rebuildOut, content)
	},
}

func init() {
	rebuildCmd.Flags().IntVar(&rebuildVersion, "version", history.Latest,
		"version to reconstruct (default: latest)")
	rebuildCmd.Flags().StringVarP(&rebuildOut, "out", "o", "",
		"write to file instead of stdout")
}
