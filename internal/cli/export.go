package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export-stats",
		Short: "Export a stored dataset as scaffold statistics TSV",
		Run:   runExport,
	}

	cmd.Flags().String("dataset", "", "Dataset name (required)")
	cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	cmd.MarkFlagRequired("dataset")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	dataset, _ := cmd.Flags().GetString("dataset")
	output, _ := cmd.Flags().GetString("output")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	var out io.Writer = os.Stdout
	if output != "" {
		f, err := createOutput(output)
		if err != nil {
			exitErr("create output", err)
		}
		defer f.Close()
		out = f
	}

	n, err := s.ExportTSV(cmd.Context(), dataset, out)
	if err != nil {
		exitErr("export", err)
	}
	log.Infof("exported %d scaffolds from %s", n, dataset)
}
