package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rcliao/binrefine/internal/config"
	"github.com/rcliao/binrefine/internal/model"
	"github.com/rcliao/binrefine/internal/refdist"
	"github.com/rcliao/binrefine/internal/store"
)

// addScaffoldFlags registers the flags selecting a statistics source.
func addScaffoldFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("stats", "s", "", "Scaffold statistics TSV file")
	cmd.Flags().String("dataset", "", "Stored dataset name (used when --stats is not given)")
}

// loadScaffolds reads scaffold statistics from --stats, or from the stored
// dataset named by --dataset. The returned name identifies the source in
// the run history.
func loadScaffolds(cmd *cobra.Command) (*model.ScaffoldSet, string, error) {
	statsFile, _ := cmd.Flags().GetString("stats")
	dataset, _ := cmd.Flags().GetString("dataset")

	switch {
	case statsFile != "":
		f, err := os.Open(statsFile)
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		set, err := model.ReadScaffoldStats(f)
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", statsFile, err)
		}
		log.WithField("scaffolds", set.Len()).Debugf("read %s", statsFile)
		return set, statsFile, nil
	case dataset != "":
		s, err := openStore()
		if err != nil {
			return nil, "", err
		}
		defer s.Close()
		set, err := s.LoadScaffolds(cmd.Context(), dataset)
		if err != nil {
			return nil, "", err
		}
		log.WithField("scaffolds", set.Len()).Debugf("loaded dataset %s", dataset)
		return set, dataset, nil
	}
	return nil, "", fmt.Errorf("either --stats or --dataset is required")
}

// addClassifyFlags registers distribution and threshold flags defaulting
// to the values of cc.
func addClassifyFlags(cmd *cobra.Command, cc config.ClassifyConfig) {
	cmd.Flags().String("gc-dist", "", "GC reference distribution file (default: config distributions.gc)")
	cmd.Flags().String("td-dist", "", "TD reference distribution file (default: config distributions.td)")
	cmd.Flags().Float64("gc-perc", cc.GCPercentile, "Percentile defining GC bounds")
	cmd.Flags().Float64("td-perc", cc.TDPercentile, "Percentile defining the TD bound")
	cmd.Flags().Float64("cov-corr", cc.CovCorr, "Minimum Pearson correlation of coverage profiles")
	cmd.Flags().Float64("cov-perc", cc.CovPerc, "Maximum mean absolute percent error of coverage")
	cmd.Flags().String("report", cc.Report, "Report mode: any (one signal) or all (three signals)")
	cmd.Flags().IntP("workers", "w", 0, "Concurrent partitions (default: config workers)")
}

// classifyConfig overlays changed flags on the configured thresholds.
func classifyConfig(cmd *cobra.Command, base config.ClassifyConfig) (config.ClassifyConfig, int) {
	cc := base
	f := cmd.Flags()
	if f.Changed("gc-perc") {
		cc.GCPercentile, _ = f.GetFloat64("gc-perc")
	}
	if f.Changed("td-perc") {
		cc.TDPercentile, _ = f.GetFloat64("td-perc")
	}
	if f.Changed("cov-corr") {
		cc.CovCorr, _ = f.GetFloat64("cov-corr")
	}
	if f.Changed("cov-perc") {
		cc.CovPerc, _ = f.GetFloat64("cov-perc")
	}
	if f.Changed("report") {
		cc.Report, _ = f.GetString("report")
	}
	return cc, workerCount(cmd)
}

func workerCount(cmd *cobra.Command) int {
	if n, _ := cmd.Flags().GetInt("workers"); n > 0 {
		return n
	}
	return cfg.Workers
}

func loadDistributions(cmd *cobra.Command) (*refdist.Distributions, error) {
	gcPath, _ := cmd.Flags().GetString("gc-dist")
	tdPath, _ := cmd.Flags().GetString("td-dist")
	if gcPath == "" {
		gcPath = cfg.Distributions.GC
	}
	if tdPath == "" {
		tdPath = cfg.Distributions.TD
	}
	if gcPath == "" || tdPath == "" {
		return nil, fmt.Errorf("both --gc-dist and --td-dist are required")
	}
	return refdist.Load(gcPath, tdPath)
}

// classifyParams returns the run history parameters of a classification pass.
func classifyParams(cc config.ClassifyConfig, workers int) map[string]string {
	return map[string]string{
		"gc_perc":  strconv.FormatFloat(cc.GCPercentile, 'f', -1, 64),
		"td_perc":  strconv.FormatFloat(cc.TDPercentile, 'f', -1, 64),
		"cov_corr": strconv.FormatFloat(cc.CovCorr, 'f', -1, 64),
		"cov_perc": strconv.FormatFloat(cc.CovPerc, 'f', -1, 64),
		"report":   cc.Report,
		"workers":  strconv.Itoa(workers),
	}
}

// recordRun appends a run to the history. Failures are logged, not fatal.
func recordRun(ctx context.Context, p store.RunParams) {
	s, err := openStore()
	if err != nil {
		log.WithError(err).Warn("run not recorded")
		return
	}
	defer s.Close()
	run, err := s.RecordRun(ctx, p)
	if err != nil {
		log.WithError(err).Warn("run not recorded")
		return
	}
	log.WithField("run", run.ID).Debug("run recorded")
}

func createOutput(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}
