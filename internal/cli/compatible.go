package cli

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rcliao/binrefine/internal/classify"
	"github.com/rcliao/binrefine/internal/model"
	"github.com/rcliao/binrefine/internal/store"
)

// CompatibleFileName is the report written by the compatible command.
const CompatibleFileName = "compatible.tsv"

func init() {
	cmd := &cobra.Command{
		Use:   "compatible <output-dir>",
		Short: "Identify scaffolds with statistics compatible with a genome",
		Long: "Compare candidate scaffolds against every genome and report the pairs whose statistics agree. " +
			"Candidates come from a homology table (--homology) or, without one, are all unbinned scaffolds.",
		Args: cobra.ExactArgs(1),
		Run:  runCompatible,
	}

	addScaffoldFlags(cmd)
	addClassifyFlags(cmd, cfg.Compatible)
	cmd.Flags().String("homology", "", "Homology table: scaffold id, # genes, % genes with homology")
	cmd.Flags().Int("min-genes", cfg.Homology.MinGenes, "Minimum genes in a candidate scaffold")
	cmd.Flags().Float64("perc-genes", cfg.Homology.PercGenes, "Minimum percent of genes with homology")

	RootCmd.AddCommand(cmd)
}

func runCompatible(cmd *cobra.Command, args []string) {
	outFile := filepath.Join(args[0], CompatibleFileName)
	homologyFile, _ := cmd.Flags().GetString("homology")

	minGenes, percGenes := cfg.Homology.MinGenes, cfg.Homology.PercGenes
	if cmd.Flags().Changed("min-genes") {
		minGenes, _ = cmd.Flags().GetInt("min-genes")
	}
	if cmd.Flags().Changed("perc-genes") {
		percGenes, _ = cmd.Flags().GetFloat64("perc-genes")
	}

	cc, workers := classifyConfig(cmd, cfg.Compatible)
	p, err := cc.Params(workers)
	if err != nil {
		exitErr("compatible", err)
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

	var candidates map[string]model.Homology
	if homologyFile != "" {
		f, err := os.Open(homologyFile)
		if err != nil {
			exitErr("open homology table", err)
		}
		candidates, err = model.ReadHomology(f, minGenes, percGenes)
		f.Close()
		if err != nil {
			exitErr("read homology table", err)
		}
	} else {
		candidates = classify.UnbinnedCandidates(set)
	}
	log.Infof("testing %d candidate scaffolds against %d genomes", len(candidates), len(genomes))

	bar := newProgress("scaffolds")
	p.Progress = bar.Update
	report, err := classify.Compatible(cmd.Context(), d, candidates, set, genomes, p)
	bar.Finish()
	if err != nil {
		exitErr("compatible", err)
	}

	writeReport(outFile, report)
	log.Infof("%d compatible scaffold/genome pairs written to %s", len(report.Rows), outFile)

	params := classifyParams(cc, workers)
	if homologyFile != "" {
		params["homology"] = homologyFile
		params["min_genes"] = strconv.Itoa(minGenes)
		params["perc_genes"] = strconv.FormatFloat(percGenes, 'f', -1, 64)
	}
	recordRun(cmd.Context(), store.RunParams{
		Kind:    "compatible",
		Dataset: source,
		Params:  params,
		Output:  outFile,
		Rows:    len(report.Rows),
	})
}
