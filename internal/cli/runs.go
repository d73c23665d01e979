package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/binrefine/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "runs [id]",
		Short: "List recorded runs, or show one by id",
		Args:  cobra.MaximumNArgs(1),
		Run:   runRuns,
	}

	cmd.Flags().String("kind", "", "Filter by command (outliers, compatible, modify, windows, ...)")
	cmd.Flags().String("dataset", "", "Filter by dataset or statistics file")
	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().Bool("ids-only", false, "Only output run ids")

	RootCmd.AddCommand(cmd)
}

func runRuns(cmd *cobra.Command, args []string) {
	kind, _ := cmd.Flags().GetString("kind")
	dataset, _ := cmd.Flags().GetString("dataset")
	limit, _ := cmd.Flags().GetInt("limit")
	idsOnly, _ := cmd.Flags().GetBool("ids-only")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if len(args) > 0 {
		run, err := s.GetRun(cmd.Context(), args[0])
		if err != nil {
			exitErr("get run", err)
		}
		b, _ := json.MarshalIndent(run, "", "  ")
		fmt.Println(string(b))
		return
	}

	runs, err := s.ListRuns(cmd.Context(), store.ListRunsParams{
		Kind:    kind,
		Dataset: dataset,
		Limit:   limit,
	})
	if err != nil {
		exitErr("list runs", err)
	}

	if idsOnly {
		for _, r := range runs {
			fmt.Println(r.ID)
		}
		return
	}

	b, _ := json.MarshalIndent(runs, "", "  ")
	fmt.Println(string(b))
}
