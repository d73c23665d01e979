package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/binrefine/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "genome-stats",
		Short: "Aggregate scaffold statistics into per-genome statistics",
		Run:   runGenomeStats,
	}

	addScaffoldFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")

	RootCmd.AddCommand(cmd)
}

func runGenomeStats(cmd *cobra.Command, args []string) {
	output, _ := cmd.Flags().GetString("output")

	set, _, err := loadScaffolds(cmd)
	if err != nil {
		exitErr("load scaffolds", err)
	}
	genomes, err := model.AggregateGenomes(set)
	if err != nil {
		exitErr("aggregate genomes", err)
	}

	var out io.Writer = os.Stdout
	if output != "" {
		f, err := createOutput(output)
		if err != nil {
			exitErr("create output", err)
		}
		defer f.Close()
		out = f
	}
	if err := model.WriteGenomeStats(out, genomes, set.CoverageNames); err != nil {
		exitErr("write genome statistics", err)
	}
	log.Infof("aggregated %d genomes", len(genomes))
}
