package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rcliao/binrefine/internal/navindex"
)

func init() {
	cmd := &cobra.Command{
		Use:   "index <plot-dir>",
		Short: "Write an HTML index over per-genome plots",
		Long: "Scan a directory for files named <genome>.<label>.<ext> and write " + navindex.IndexFile +
			" and " + navindex.MenuFile + " for browsing them by genome.",
		Args: cobra.ExactArgs(1),
		Run:  runIndex,
	}

	RootCmd.AddCommand(cmd)
}

func runIndex(cmd *cobra.Command, args []string) {
	dir := args[0]
	ix, err := navindex.Scan(dir)
	if err != nil {
		exitErr("scan plots", err)
	}
	if err := navindex.Write(dir, ix); err != nil {
		exitErr("write index", err)
	}
	log.Infof("indexed %d genomes in %s", len(ix.GenomeIDs()), filepath.Join(dir, navindex.IndexFile))
}
