package cli

import (
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rcliao/binrefine/internal/store"
	"github.com/rcliao/binrefine/internal/window"
)

func init() {
	cmd := &cobra.Command{
		Use:   "windows <scaffold-file> <output-dir>",
		Short: "Split scaffolds into fixed-size windows",
		Long: "Write the windows of every scaffold as <stem>windows<ext> in the output directory and " +
			"record the links between consecutive windows in " + window.LinksFileName + ". " +
			"Sizes are base counts (100) or proportions of each scaffold (0.5). A negative gap overlaps windows.",
		Args: cobra.ExactArgs(2),
		Run:  runWindows,
	}

	cmd.Flags().String("window-size", cfg.Windows.Size, "Window size in bases or as a proportion")
	cmd.Flags().String("gap-size", cfg.Windows.Gap, "Gap between windows in bases or as a proportion; negative values overlap")
	cmd.Flags().String("link-mode", cfg.Windows.LinkMode, "Links file handling: append or overwrite")
	cmd.Flags().IntP("workers", "w", 0, "Concurrent scaffolds (default: config workers)")

	RootCmd.AddCommand(cmd)
}

func runWindows(cmd *cobra.Command, args []string) {
	wc := cfg.Windows
	if cmd.Flags().Changed("window-size") {
		wc.Size, _ = cmd.Flags().GetString("window-size")
	}
	if cmd.Flags().Changed("gap-size") {
		wc.Gap, _ = cmd.Flags().GetString("gap-size")
	}
	if cmd.Flags().Changed("link-mode") {
		wc.LinkMode, _ = cmd.Flags().GetString("link-mode")
	}

	opts, err := wc.Options()
	if err != nil {
		exitErr("windows", err)
	}
	mode, err := window.ParseLinkMode(wc.LinkMode)
	if err != nil {
		exitErr("windows", err)
	}
	workers := workerCount(cmd)

	bar := newProgress("scaffolds")
	res, err := window.Run(cmd.Context(), window.RunParams{
		ScaffoldFile: args[0],
		OutputDir:    args[1],
		Options:      opts,
		LinkMode:     mode,
		Workers:      workers,
		Progress:     bar.Update,
		Notify:       func(msg string) { log.Info(msg) },
	})
	bar.Finish()
	if err != nil {
		exitErr("windows", err)
	}

	log.WithFields(logrus.Fields{
		"scaffolds": res.Scaffolds,
		"windows":   res.Windows,
		"links":     res.Links,
	}).Infof("windows written to %s", res.WindowFile)

	recordRun(cmd.Context(), store.RunParams{
		Kind: "windows",
		Params: map[string]string{
			"scaffold_file": args[0],
			"window_size":   opts.Size.String(),
			"gap_size":      opts.Gap.String(),
			"link_mode":     string(mode),
			"workers":       strconv.Itoa(workers),
		},
		Output: res.WindowFile,
		Rows:   res.Windows,
	})
}
