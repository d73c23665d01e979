// Package config loads binrefine settings.
//
// Settings are layered, later layers winning:
//
//	built-in defaults
//	YAML file (--config or BINREFINE_CONFIG)
//	environment variables (BINREFINE_*), including a .env file if present
//	command-line flags (applied by the CLI)
//
// Environment variables:
//
//	BINREFINE_DB                  - statistics database path
//	BINREFINE_GC_DIST             - GC reference distribution file
//	BINREFINE_TD_DIST             - tetranucleotide reference distribution file
//	BINREFINE_WORKERS             - concurrent partitions
//	BINREFINE_OUTLIERS_GC_PERC    - outliers: GC percentile
//	BINREFINE_OUTLIERS_TD_PERC    - outliers: TD percentile
//	BINREFINE_OUTLIERS_COV_CORR   - outliers: minimum coverage correlation
//	BINREFINE_OUTLIERS_COV_PERC   - outliers: maximum coverage percent error
//	BINREFINE_OUTLIERS_REPORT     - outliers: report mode (any, all)
//	BINREFINE_COMPATIBLE_GC_PERC  - compatible: GC percentile
//	BINREFINE_COMPATIBLE_TD_PERC  - compatible: TD percentile
//	BINREFINE_COMPATIBLE_COV_CORR - compatible: minimum coverage correlation
//	BINREFINE_COMPATIBLE_COV_PERC - compatible: maximum coverage percent error
//	BINREFINE_COMPATIBLE_REPORT   - compatible: report mode (any, all)
//	BINREFINE_MIN_GENES           - homology: minimum genes per scaffold
//	BINREFINE_PERC_GENES          - homology: minimum percent genes with homology
//	BINREFINE_WINDOW_SIZE         - windows: size in bases or a proportion
//	BINREFINE_GAP_SIZE            - windows: gap in bases or a proportion
//	BINREFINE_LINK_MODE           - windows: append or overwrite
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/binrefine/internal/classify"
	"github.com/rcliao/binrefine/internal/window"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "BINREFINE_"

// Config holds every tunable setting.
type Config struct {
	DB            string              `yaml:"db"`
	Workers       int                 `yaml:"workers"`
	Distributions DistributionsConfig `yaml:"distributions"`
	Outliers      ClassifyConfig      `yaml:"outliers"`
	Compatible    ClassifyConfig      `yaml:"compatible"`
	Homology      HomologyConfig      `yaml:"homology"`
	Windows       WindowsConfig       `yaml:"windows"`
}

// DistributionsConfig locates the reference distribution files.
type DistributionsConfig struct {
	GC string `yaml:"gc"`
	TD string `yaml:"td"`
}

// ClassifyConfig holds the thresholds of one classification pass.
type ClassifyConfig struct {
	GCPercentile float64 `yaml:"gc_perc"`
	TDPercentile float64 `yaml:"td_perc"`
	CovCorr      float64 `yaml:"cov_corr"`
	CovPerc      float64 `yaml:"cov_perc"`
	Report       string  `yaml:"report"`
}

// HomologyConfig filters the homology table used by compatible.
type HomologyConfig struct {
	MinGenes  int     `yaml:"min_genes"`
	PercGenes float64 `yaml:"perc_genes"`
}

// WindowsConfig configures scaffold windowing.
type WindowsConfig struct {
	Size     string `yaml:"size"`
	Gap      string `yaml:"gap"`
	LinkMode string `yaml:"link_mode"`
}

// DefaultDBPath returns ~/.binrefine/binrefine.db.
func DefaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".binrefine", "binrefine.db")
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		DB:      DefaultDBPath(),
		Workers: 1,
		Outliers: ClassifyConfig{
			GCPercentile: 98,
			TDPercentile: 98,
			CovCorr:      0.8,
			CovPerc:      50,
			Report:       string(classify.ModeAny),
		},
		Compatible: ClassifyConfig{
			GCPercentile: 95,
			TDPercentile: 95,
			CovCorr:      0.95,
			CovPerc:      15,
			Report:       string(classify.ModeAll),
		},
		Homology: HomologyConfig{MinGenes: 2, PercGenes: 50},
		Windows: WindowsConfig{
			Size:     strconv.Itoa(window.DefaultSize),
			Gap:      strconv.Itoa(window.DefaultGap),
			LinkMode: string(window.LinkAppend),
		},
	}
}

// LoadDotEnv loads variables from the named .env files, or ./.env when none
// are given. Missing files are ignored and set variables are never replaced.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load builds the configuration from defaults, the YAML file at path (or
// $BINREFINE_CONFIG when path is empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	// Unmarshalling over the defaults keeps keys the file omits.
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"DB":                &c.DB,
		"GC_DIST":           &c.Distributions.GC,
		"TD_DIST":           &c.Distributions.TD,
		"OUTLIERS_REPORT":   &c.Outliers.Report,
		"COMPATIBLE_REPORT": &c.Compatible.Report,
		"WINDOW_SIZE":       &c.Windows.Size,
		"GAP_SIZE":          &c.Windows.Gap,
		"LINK_MODE":         &c.Windows.LinkMode,
	}
	for key, dst := range strs {
		if val := os.Getenv(EnvPrefix + key); val != "" {
			*dst = val
		}
	}

	ints := map[string]*int{
		"WORKERS":   &c.Workers,
		"MIN_GENES": &c.Homology.MinGenes,
	}
	for key, dst := range ints {
		if val := os.Getenv(EnvPrefix + key); val != "" {
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = n
		}
	}

	floats := map[string]*float64{
		"OUTLIERS_GC_PERC":    &c.Outliers.GCPercentile,
		"OUTLIERS_TD_PERC":    &c.Outliers.TDPercentile,
		"OUTLIERS_COV_CORR":   &c.Outliers.CovCorr,
		"OUTLIERS_COV_PERC":   &c.Outliers.CovPerc,
		"COMPATIBLE_GC_PERC":  &c.Compatible.GCPercentile,
		"COMPATIBLE_TD_PERC":  &c.Compatible.TDPercentile,
		"COMPATIBLE_COV_CORR": &c.Compatible.CovCorr,
		"COMPATIBLE_COV_PERC": &c.Compatible.CovPerc,
		"PERC_GENES":          &c.Homology.PercGenes,
	}
	for key, dst := range floats {
		if val := os.Getenv(EnvPrefix + key); val != "" {
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = f
		}
	}
	return nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("invalid worker count: %d", c.Workers)
	}
	for name, cc := range map[string]ClassifyConfig{"outliers": c.Outliers, "compatible": c.Compatible} {
		if err := cc.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if c.Homology.MinGenes < 0 {
		return fmt.Errorf("invalid min genes: %d", c.Homology.MinGenes)
	}
	if _, err := c.Windows.Options(); err != nil {
		return err
	}
	if _, err := window.ParseLinkMode(c.Windows.LinkMode); err != nil {
		return err
	}
	return nil
}

// Validate checks percentiles and the report mode.
func (cc ClassifyConfig) Validate() error {
	if cc.GCPercentile <= 0 || cc.GCPercentile > 100 {
		return fmt.Errorf("invalid GC percentile: %v", cc.GCPercentile)
	}
	if cc.TDPercentile <= 0 || cc.TDPercentile > 100 {
		return fmt.Errorf("invalid TD percentile: %v", cc.TDPercentile)
	}
	_, err := classify.ParseMode(cc.Report)
	return err
}

// Params converts the thresholds to classifier parameters.
func (cc ClassifyConfig) Params(workers int) (classify.Params, error) {
	mode, err := classify.ParseMode(cc.Report)
	if err != nil {
		return classify.Params{}, err
	}
	return classify.Params{
		GCPercentile: cc.GCPercentile,
		TDPercentile: cc.TDPercentile,
		CovCorr:      cc.CovCorr,
		CovPerc:      cc.CovPerc,
		Mode:         mode,
		Workers:      workers,
	}, nil
}

// Options parses the window and gap sizes.
func (wc WindowsConfig) Options() (window.Options, error) {
	size, err := window.ParseSize(wc.Size)
	if err != nil {
		return window.Options{}, fmt.Errorf("window size: %w", err)
	}
	gap, err := window.ParseGap(wc.Gap)
	if err != nil {
		return window.Options{}, fmt.Errorf("gap size: %w", err)
	}
	return window.Options{Size: size, Gap: gap}, nil
}
