package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/binrefine/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Run:   runStats,
	}

	cmd.Flags().Bool("datasets", false, "Also list stored datasets")

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	withDatasets, _ := cmd.Flags().GetBool("datasets")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), getDBPath())
	if err != nil {
		exitErr("stats", err)
	}

	var out any = stats
	if withDatasets {
		ds, err := s.Datasets(cmd.Context())
		if err != nil {
			exitErr("datasets", err)
		}
		out = struct {
			*store.Stats
			Datasets []store.Dataset `json:"datasets"`
		}{stats, ds}
	}

	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}
