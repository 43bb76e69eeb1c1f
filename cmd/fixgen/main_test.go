package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/fixgen/internal/config"
	"github.com/banshee-data/fixgen/internal/fixdb"
	"github.com/banshee-data/fixgen/internal/fixmat"
	"github.com/banshee-data/fixgen/internal/fsutil"
	"github.com/banshee-data/fixgen/internal/monitoring"
	"github.com/banshee-data/fixgen/internal/report"
	"github.com/banshee-data/fixgen/internal/testutil"
)

func init() {
	monitoring.SetLogger(nil)
}

// sourceFS returns a filesystem holding a random-walk dataset as source.csv.
func sourceFS(t *testing.T) *fsutil.MemoryFileSystem {
	t.Helper()
	fm := testutil.NewFixmat(testutil.DefaultParams, testutil.RandomWalks(testutil.Source(1), testutil.DefaultParams, 25, 6)...)
	var buf bytes.Buffer
	require.NoError(t, fixmat.WriteCSV(&buf, fm))
	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, fsys.WriteFile("source.csv", buf.Bytes(), 0o644))
	return fsys
}

func mustParse(t *testing.T, args ...string) Options {
	t.Helper()
	base := []string{"-width", "100", "-height", "100", "-ppd", "1"}
	opts, showVersion, err := parseFlags(append(base, args...))
	require.NoError(t, err)
	require.False(t, showVersion)
	return opts
}

func TestParseFlags(t *testing.T) {
	opts, showVersion, err := parseFlags([]string{"-input", "a.csv", "-n", "12", "-seed", "9", "-smoothing", "none"})
	require.NoError(t, err)
	assert.False(t, showVersion)
	assert.Equal(t, "a.csv", opts.Input)
	assert.Equal(t, "-", opts.Output)
	require.NotNil(t, opts.overrides.NumSamples)
	assert.Equal(t, 12, *opts.overrides.NumSamples)
	assert.Equal(t, uint64(9), *opts.overrides.Seed)
	assert.Nil(t, opts.overrides.MaxRetries, "unset flags do not override")

	_, showVersion, err = parseFlags([]string{"-version"})
	require.NoError(t, err)
	assert.True(t, showVersion)

	_, _, err = parseFlags([]string{"-bogus"})
	assert.Error(t, err)
}

func TestLoadConfig_Overrides(t *testing.T) {
	cfg, err := loadConfig(mustParse(t, "-n", "3", "-max-retries", "50"), fsutil.NewMemoryFileSystem())
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.GetNumSamples())
	assert.Equal(t, 50, cfg.GetMaxRetries())
	assert.Equal(t, testutil.DefaultParams, cfg.Params())

	_, err = loadConfig(mustParse(t, "-n", "0"), fsutil.NewMemoryFileSystem())
	assert.Error(t, err)
}

func TestLoadConfig_DefaultFileFromFS(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, fsys.MkdirAll("config", 0o755))
	body := `{"num_samples": 7, "image_width": 640, "image_height": 480, "pixels_per_degree": 20}`
	require.NoError(t, fsys.WriteFile(config.DefaultConfigPath, []byte(body), 0o644))

	cfg, err := loadConfig(mustParse(t, "-seed", "9"), fsys)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.GetNumSamples())
	assert.Equal(t, uint64(9), cfg.GetSeed())
	assert.Equal(t, 640, cfg.Params().ImageWidth)

	require.NoError(t, fsys.WriteFile("bad.json", []byte(`{"num_samples": 0}`), 0o644))
	_, err = loadConfig(mustParse(t, "-config", "bad.json"), fsys)
	assert.ErrorContains(t, err, "num_samples")
}

func TestRun_CSVToCSV(t *testing.T) {
	fsys := sourceFS(t)
	opts := mustParse(t, "-input", "source.csv", "-out", "out.csv", "-n", "8", "-seed", "42")
	require.NoError(t, run(opts, &bytes.Buffer{}, fsys))

	r, err := fsys.Open("out.csv")
	require.NoError(t, err)
	defer r.Close()
	out, err := fixmat.ReadCSV(r, testutil.DefaultParams)
	require.NoError(t, err)
	assert.Equal(t, 8, out.NumTrajectories())
}

func TestRun_Reproducible(t *testing.T) {
	generate := func() string {
		var stdout bytes.Buffer
		opts := mustParse(t, "-input", "source.csv", "-n", "5", "-seed", "7")
		require.NoError(t, run(opts, &stdout, sourceFS(t)))
		return stdout.String()
	}
	a, b := generate(), generate()
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "trajectory,fix,x,y\n"))
}

func TestRun_DatabaseAndReport(t *testing.T) {
	fsys := sourceFS(t)
	dbPath := filepath.Join(t.TempDir(), "fixgen.db")
	opts := mustParse(t, "-input", "source.csv", "-db", dbPath, "-name", "walks",
		"-n", "6", "-seed", "3", "-report", "report")
	require.NoError(t, run(opts, &bytes.Buffer{}, fsys))

	for _, f := range []string{report.SummaryFile, report.LengthHistogramFile, report.DensityPNGFile, report.DensityHTMLFile} {
		assert.True(t, fsys.Exists(filepath.Join("report", f)), f)
	}

	db, err := fixdb.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()
	datasets, err := db.ListDatasets()
	require.NoError(t, err)
	require.Len(t, datasets, 2)
	assert.Equal(t, "walks/source.csv", datasets[0].Name)
	assert.Equal(t, "walks/surrogate", datasets[1].Name)

	runs, err := db.ListRuns(datasets[0].ID)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, datasets[1].ID, runs[0].OutputID)
	assert.Equal(t, uint64(3), runs[0].Seed)
	assert.Equal(t, 6, runs[0].NumSamples)

	// A stored dataset can be used as the source of a later run.
	var stdout bytes.Buffer
	opts = mustParse(t, "-dataset", datasets[0].ID, "-db", dbPath, "-n", "2", "-seed", "3")
	require.NoError(t, run(opts, &stdout, fsys))
	assert.NotEmpty(t, stdout.String())
}

func TestRun_Errors(t *testing.T) {
	fsys := sourceFS(t)
	tests := []struct {
		name string
		args []string
	}{
		{"no source", nil},
		{"two sources", []string{"-input", "source.csv", "-dataset", "x"}},
		{"dataset without db", []string{"-dataset", "x"}},
		{"missing input", []string{"-input", "missing.csv"}},
		{"unknown dataset", []string{"-dataset", "x", "-db", filepath.Join(t.TempDir(), "f.db")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, run(mustParse(t, tt.args...), &bytes.Buffer{}, fsys))
		})
	}
}
