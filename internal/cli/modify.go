package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rcliao/binrefine/internal/classify"
	"github.com/rcliao/binrefine/internal/seqio"
	"github.com/rcliao/binrefine/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "modify",
		Short: "Add or remove scaffolds from a genome bin",
		Long: "Write a modified copy of a genome FASTA. Either remove the scaffolds of an outlier report, " +
			"add the compatible scaffolds of a compatibility report, or add and remove explicit scaffold ids.",
		Run: runModify,
	}

	cmd.Flags().String("genome", "", "Genome FASTA to modify (required)")
	cmd.Flags().String("scaffolds", "", "FASTA of scaffolds available for adding")
	cmd.Flags().StringP("output", "o", "", "Modified genome FASTA (required)")
	cmd.Flags().String("outlier-file", "", "Outlier report; its scaffolds are removed")
	cmd.Flags().String("compatible-file", "", "Compatibility report; compatible scaffolds are added")
	cmd.Flags().Bool("unique-only", false, "Only add scaffolds compatible with this genome alone")
	cmd.Flags().StringSlice("add", nil, "Scaffold ids to add")
	cmd.Flags().StringSlice("remove", nil, "Scaffold ids to remove")
	cmd.MarkFlagRequired("genome")
	cmd.MarkFlagRequired("output")

	RootCmd.AddCommand(cmd)
}

func runModify(cmd *cobra.Command, args []string) {
	genomeFile, _ := cmd.Flags().GetString("genome")
	scaffoldFile, _ := cmd.Flags().GetString("scaffolds")
	output, _ := cmd.Flags().GetString("output")
	outlierFile, _ := cmd.Flags().GetString("outlier-file")
	compatibleFile, _ := cmd.Flags().GetString("compatible-file")
	uniqueOnly, _ := cmd.Flags().GetBool("unique-only")
	add, _ := cmd.Flags().GetStringSlice("add")
	remove, _ := cmd.Flags().GetStringSlice("remove")

	explicit := len(add) > 0 || len(remove) > 0
	switch {
	case !explicit && outlierFile == "" && compatibleFile == "":
		exitErr("modify", fmt.Errorf("no modification requested"))
	case explicit && (outlierFile != "" || compatibleFile != ""):
		exitErr("modify", fmt.Errorf("--outlier-file and --compatible-file cannot be combined with --add or --remove"))
	case outlierFile != "" && compatibleFile != "":
		exitErr("modify", fmt.Errorf("--outlier-file and --compatible-file cannot be given together"))
	case (len(add) > 0 || compatibleFile != "") && scaffoldFile == "":
		exitErr("modify", fmt.Errorf("--scaffolds is required when adding scaffolds"))
	}

	genome, err := seqio.ReadFile(genomeFile)
	if err != nil {
		exitErr("read genome", err)
	}
	var pool []seqio.Record
	if scaffoldFile != "" {
		if pool, err = seqio.ReadFile(scaffoldFile); err != nil {
			exitErr("read scaffolds", err)
		}
	}

	params := map[string]string{"genome": genomeFile}
	var out []seqio.Record
	switch {
	case explicit:
		var failedAdd, failedRemove []string
		out, failedAdd = classify.AddScaffolds(genome, pool, add)
		failedRemove = missingIDs(out, remove)
		out = classify.RemoveOutliers(out, remove)
		for _, id := range failedAdd {
			log.Warnf("failed to add %s: not in %s", id, scaffoldFile)
		}
		for _, id := range failedRemove {
			log.Warnf("failed to remove %s: not in %s", id, genomeFile)
		}
		params["added"] = strconv.Itoa(len(add) - len(failedAdd))
		params["removed"] = strconv.Itoa(len(remove) - len(failedRemove))

	case outlierFile != "":
		ids := readIDs(outlierFile)
		out = classify.RemoveOutliers(genome, ids)
		params["outlier_file"] = outlierFile
		params["removed"] = strconv.Itoa(len(genome) - len(out))

	default:
		f, err := os.Open(compatibleFile)
		if err != nil {
			exitErr("open compatibility report", err)
		}
		report, err := classify.ReadReport(f)
		f.Close()
		if err != nil {
			exitErr("read compatibility report", err)
		}
		if report.Kind != classify.KindCompatible {
			exitErr("modify", fmt.Errorf("%s is not a compatibility report", compatibleFile))
		}

		genomeID := seqio.GenomeID(genomeFile)
		records := classify.Records(report.Rows)
		var ids []string
		if uniqueOnly {
			ids = classify.AdmitUnique(records, genomeID)
		} else {
			ids = classify.AdmitClosest(records, genomeID)
		}
		var failed []string
		out, failed = classify.AddScaffolds(genome, pool, ids)
		for _, id := range failed {
			log.Warnf("failed to add %s: not in %s", id, scaffoldFile)
		}
		params["compatible_file"] = compatibleFile
		params["unique_only"] = strconv.FormatBool(uniqueOnly)
		params["added"] = strconv.Itoa(len(ids) - len(failed))
	}

	if err := seqio.WriteFile(output, out); err != nil {
		exitErr("write genome", err)
	}
	log.Infof("modified genome written to %s (%d scaffolds)", output, len(out))

	recordRun(cmd.Context(), store.RunParams{Kind: "modify", Params: params, Output: output, Rows: len(out)})
}

func missingIDs(recs []seqio.Record, ids []string) []string {
	have := make(map[string]bool, len(recs))
	for _, r := range recs {
		have[r.ID] = true
	}
	var missing []string
	for _, id := range ids {
		if !have[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

func readIDs(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		exitErr("open outlier report", err)
	}
	defer f.Close()
	ids, err := classify.ReadScaffoldIDs(f)
	if err != nil {
		exitErr("read outlier report", err)
	}
	return ids
}
