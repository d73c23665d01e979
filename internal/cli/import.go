package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/binrefine/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import-stats [file]",
		Short: "Import scaffold statistics into the database",
		Long:  "Import a scaffold statistics TSV (file or stdin) as a named dataset. Appends to an existing dataset unless --replace is set.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runImport,
	}

	cmd.Flags().String("dataset", "", "Dataset name (required)")
	cmd.Flags().Bool("replace", false, "Replace any scaffolds already in the dataset")
	cmd.MarkFlagRequired("dataset")

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	dataset, _ := cmd.Flags().GetString("dataset")
	replace, _ := cmd.Flags().GetBool("replace")

	var in io.Reader = os.Stdin
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			exitErr("open statistics", err)
		}
		defer f.Close()
		in = f
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	imported, err := s.ImportTSV(cmd.Context(), dataset, in, replace)
	if err != nil {
		exitErr("import", err)
	}
	recordRun(cmd.Context(), store.RunParams{Kind: "import-stats", Dataset: dataset, Rows: imported})

	fmt.Printf(`{"ok":true,"dataset":%q,"imported":%d}`+"\n", dataset, imported)
}
