package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/binrefine/internal/classify"
	"github.com/rcliao/binrefine/internal/window"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "any", cfg.Outliers.Report)
	assert.Equal(t, "all", cfg.Compatible.Report)
	assert.Equal(t, "5000", cfg.Windows.Size)
	assert.Equal(t, "append", cfg.Windows.LinkMode)
	assert.Equal(t, "binrefine.db", filepath.Base(cfg.DB))
}

func TestLoad_YAMLOverDefaults(t *testing.T) {
	path := writeFile(t, "binrefine.yaml", `
db: /data/stats.db
workers: 4
distributions:
  gc: /ref/gc_dist.txt
outliers:
  gc_perc: 90
  report: all
windows:
  size: "0.5"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/stats.db", cfg.DB)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "/ref/gc_dist.txt", cfg.Distributions.GC)
	assert.Equal(t, 90.0, cfg.Outliers.GCPercentile)
	assert.Equal(t, "all", cfg.Outliers.Report)
	// keys the file omits keep their defaults
	assert.Equal(t, 98.0, cfg.Outliers.TDPercentile)
	assert.Equal(t, 0.8, cfg.Outliers.CovCorr)
	assert.Equal(t, "0", cfg.Windows.Gap)

	opts, err := cfg.Windows.Options()
	require.NoError(t, err)
	assert.True(t, opts.Size.Proportional())
	assert.Equal(t, 500, opts.Size.Resolve(1000))
}

func TestLoad_EnvOverYAML(t *testing.T) {
	path := writeFile(t, "binrefine.yaml", "workers: 2\nhomology:\n  min_genes: 5\n")
	t.Setenv("BINREFINE_WORKERS", "8")
	t.Setenv("BINREFINE_COMPATIBLE_COV_PERC", "25")
	t.Setenv("BINREFINE_LINK_MODE", "overwrite")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 5, cfg.Homology.MinGenes)
	assert.Equal(t, 25.0, cfg.Compatible.CovPerc)
	assert.Equal(t, "overwrite", cfg.Windows.LinkMode)
}

func TestLoad_ConfigFromEnv(t *testing.T) {
	path := writeFile(t, "c.yaml", "db: /from/env.db\n")
	t.Setenv("BINREFINE_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/from/env.db", cfg.DB)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"report mode": "outliers:\n  report: most\n",
		"percentile":  "compatible:\n  gc_perc: 120\n",
		"workers":     "workers: 0\n",
		"window size": "windows:\n  size: big\n",
		"window sign": "windows:\n  size: \"-100\"\n",
		"link mode":   "windows:\n  link_mode: prepend\n",
		"yaml":        "outliers: [\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "bad.yaml", content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("BINREFINE_OUTLIERS_COV_CORR", "high")
	_, err := Load("")
	assert.ErrorContains(t, err, "BINREFINE_OUTLIERS_COV_CORR")
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "BINREFINE_TD_DIST=/ref/td.txt\nBINREFINE_DB=/dotenv.db\n")
	t.Setenv("BINREFINE_DB", "/already/set.db")
	t.Setenv("BINREFINE_TD_DIST", "")
	os.Unsetenv("BINREFINE_TD_DIST")

	require.NoError(t, LoadDotEnv(path))
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/ref/td.txt", cfg.Distributions.TD)
	assert.Equal(t, "/already/set.db", cfg.DB)

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "none.env")))
}

func TestParams(t *testing.T) {
	p, err := Default().Outliers.Params(3)
	require.NoError(t, err)
	assert.Equal(t, classify.ModeAny, p.Mode)
	assert.Equal(t, 3, p.Workers)
	assert.Equal(t, 98.0, p.GCPercentile)

	_, err = ClassifyConfig{Report: "most"}.Params(1)
	assert.ErrorIs(t, err, classify.ErrReportMode)
}

func TestWindowsOptions_Default(t *testing.T) {
	opts, err := Default().Windows.Options()
	require.NoError(t, err)
	assert.Equal(t, window.DefaultOptions(), opts)
}

func TestWindowsOptions_NegativeGap(t *testing.T) {
	opts, err := WindowsConfig{Size: "200", Gap: "-100", LinkMode: "append"}.Options()
	require.NoError(t, err)
	assert.Equal(t, -100, opts.Gap.Resolve(400))
	assert.Equal(t, 200, opts.Size.Resolve(400))
}
