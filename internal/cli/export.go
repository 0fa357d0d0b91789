package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"nano-sync/internal/bundle"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <outputDir>",
	Short: "package an output directory into a reproducible zip",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		zipPath := exportOut
		if zipPath == "" {
			zipPath = strings.TrimSuffix(args[0], "/") + ".zip"
		}
		return bundle.Export(args[0], zipPath)
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "",
		"archive path (default <outputDir>.zip)")
}
