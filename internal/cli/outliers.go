package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rcliao/binrefine/internal/classify"
	"github.com/rcliao/binrefine/internal/model"
	"github.com/rcliao/binrefine/internal/store"
)

// OutliersFileName is the report written by the outliers command.
const OutliersFileName = "outliers.tsv"

func init() {
	cmd := &cobra.Command{
		Use:   "outliers <output-dir>",
		Short: "Identify scaffolds with divergent statistics",
		Long: "Compare every binned scaffold against the genome it is assigned to and report those whose GC, " +
			"tetranucleotide signature or coverage fall outside the reference distributions.",
		Args: cobra.ExactArgs(1),
		Run:  runOutliers,
	}

	addScaffoldFlags(cmd)
	addClassifyFlags(cmd, cfg.Outliers)

	RootCmd.AddCommand(cmd)
}

func runOutliers(cmd *cobra.Command, args []string) {
	outFile := filepath.Join(args[0], OutliersFileName)

	cc, workers := classifyConfig(cmd, cfg.Outliers)
	p, err := cc.Params(workers)
	if err != nil {
		exitErr("outliers", err)
	}

	d, err := loadDistributions(cmd)
	if err != nil {
		exitErr("load distributions", err)
	}
	set, source, err := loadScaffolds(cmd)
	if err != nil {
		exitErr("load scaffolds", err)
	}
	genomes, err := model.AggregateGenomes(set)
	if err != nil {
		exitErr("aggregate genomes", err)
	}
	log.Infof("identifying outliers in %d genomes", len(genomes))

	bar := newProgress("genomes")
	p.Progress = bar.Update
	report, err := classify.Identify(cmd.Context(), d, set, genomes, p)
	bar.Finish()
	if err != nil {
		exitErr("outliers", err)
	}

	writeReport(outFile, report)
	log.Infof("%d outlying scaffolds written to %s", len(report.Rows), outFile)

	recordRun(cmd.Context(), store.RunParams{
		Kind:    "outliers",
		Dataset: source,
		Params:  classifyParams(cc, workers),
		Output:  outFile,
		Rows:    len(report.Rows),
	})
}

func writeReport(path string, r *classify.Report) {
	f, err := createOutput(path)
	if err != nil {
		exitErr("create report", err)
	}
	if err := r.Write(f); err != nil {
		f.Close()
		exitErr("write report", err)
	}
	if err := f.Close(); err != nil {
		exitErr("write report", err)
	}
}
