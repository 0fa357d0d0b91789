package cli

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"nano-sync/internal/artifact"
	"nano-sync/internal/store"
	"nano-sync/internal/textutil"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "show tracked filters and their version chains",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := store.NewFileStore(flagConfigDir).Load()
		if len(cfg) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no tracked filters")
			return nil
		}

		paths := make([]string, 0, len(cfg))
		for p := range cfg {
			paths = append(paths, p)
		}
		sort.Strings(paths)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "FILTER\tVERSION\tEPOCH\tPATCHES\tLINES")
		for _, p := range paths {
			fmt.Fprintln(w, statusLine(p, cfg[p]))
		}
		return w.Flush()
	},
}

func statusLine(filterPath string, tr *store.Tracker) string {
	// Only the default output directory is derivable from the filter path.
	// A filter synced into a custom directory shows "-" here rather than
	// a false "broken".
	epoch, patches := "-", "-"
	outDir := DefaultOutputDir(filterPath)
	if fi, err := os.Stat(outDir); err == nil && fi.IsDir() {
		epoch, patches = chainState(outDir)
	}

	lines := "-"
	if b, err := os.ReadFile(filterPath); err == nil {
		lines = fmt.Sprintf("%d", textutil.CountLines(b))
	}
	return fmt.Sprintf("%s\t%d\t%s\t%s\t%s", filterPath, tr.LastVersion, epoch, patches, lines)
}

// chainState inspects an existing output directory. An unreadable or
// invalid meta.json reports the chain as broken.
func chainState(outDir string) (epoch, patches string) {
	epoch, patches = "broken", "-"
	dir, err := artifact.Open(outDir)
	if err != nil {
		return epoch, patches
	}
	if m, err := dir.ReadMeta(); err == nil {
		epoch = fmt.Sprintf("%d+%d", m.Checkpoint, m.Span())
	}
	if n, err := dir.PatchCount(); err == nil {
		patches = fmt.Sprintf("%d", n)
	}
	return epoch, patches
}
