// Package cli implements the binrefine CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rcliao/binrefine/internal/config"
	"github.com/rcliao/binrefine/internal/store"
)

var (
	dbPath     string
	configPath string
	verbose    bool
	quiet      bool

	cfg = config.Default()
	log = logrus.New()
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "binrefine",
	Short: "Refine metagenome-assembled genome bins",
	Long: "Identify scaffolds whose GC, tetranucleotide signature or coverage diverge from their bin, " +
		"find unbinned scaffolds compatible with a bin, modify bins and window scaffolds.",
	PersistentPreRun: setup,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $BINREFINE_DB or ~/.binrefine/binrefine.db)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (default: $BINREFINE_CONFIG)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug messages")
	RootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log warnings and hide progress bars")
}

func setup(cmd *cobra.Command, args []string) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	switch {
	case verbose:
		log.SetLevel(logrus.DebugLevel)
	case quiet:
		log.SetLevel(logrus.WarnLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	if err := config.LoadDotEnv(); err != nil {
		exitErr("load .env", err)
	}
	c, err := config.Load(configPath)
	if err != nil {
		exitErr("load config", err)
	}
	cfg = c
	log.WithField("db", getDBPath()).Debug("configuration loaded")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	return cfg.DB
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
