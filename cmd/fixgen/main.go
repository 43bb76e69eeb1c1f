// Command fixgen fits a second-order saccade model to a fixation dataset
// and generates surrogate trajectories from it.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/banshee-data/fixgen/internal/config"
	"github.com/banshee-data/fixgen/internal/fixdb"
	"github.com/banshee-data/fixgen/internal/fixmat"
	"github.com/banshee-data/fixgen/internal/fsutil"
	"github.com/banshee-data/fixgen/internal/report"
	"github.com/banshee-data/fixgen/internal/simulator"
	"github.com/banshee-data/fixgen/internal/version"
)

// Options holds the command line settings. Generator values set here
// override the config file.
type Options struct {
	ConfigPath string
	Input      string // CSV dataset
	DatasetID  string // dataset stored in DBPath
	DBPath     string
	Output     string // CSV path, "-" for stdout
	ReportDir  string
	Name       string
	Verbose    bool

	overrides config.GeneratorConfig
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	opts, showVersion, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if showVersion {
		fmt.Println(version.String("fixgen"))
		return
	}
	if err := run(opts, os.Stdout, fsutil.OSFileSystem{}); err != nil {
		log.Fatalf("fixgen: %v", err)
	}
}

func parseFlags(args []string) (Options, bool, error) {
	var (
		opts        Options
		showVersion bool
		n, retries  int
		seed        uint64
		smoothing   string
		w, h        int
		ppd         float64
	)
	fs := flag.NewFlagSet("fixgen", flag.ContinueOnError)
	fs.StringVar(&opts.ConfigPath, "config", "", "Generator config JSON (default: "+config.DefaultConfigPath+" if present)")
	fs.StringVar(&opts.Input, "input", "", "Source dataset CSV with fix,x,y[,trajectory] columns")
	fs.StringVar(&opts.DatasetID, "dataset", "", "Source dataset id in -db")
	fs.StringVar(&opts.DBPath, "db", "", "SQLite database for datasets and run history")
	fs.StringVar(&opts.Output, "out", "-", "Output CSV path, - for stdout")
	fs.StringVar(&opts.ReportDir, "report", "", "Write a comparison report into this directory")
	fs.StringVar(&opts.Name, "name", "", "Name for datasets stored in -db")
	fs.BoolVar(&opts.Verbose, "verbose", false, "Log diagnostic generator output")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")

	fs.IntVar(&n, "n", 0, "Number of trajectories to generate")
	fs.IntVar(&retries, "max-retries", 0, "Negative-length redraw budget per saccade")
	fs.Uint64Var(&seed, "seed", 0, "Random seed, 0 seeds from the clock")
	fs.StringVar(&smoothing, "smoothing", "", "Density smoothing: spline or none")
	fs.IntVar(&w, "width", 0, "Display width in pixels")
	fs.IntVar(&h, "height", 0, "Display height in pixels")
	fs.Float64Var(&ppd, "ppd", 0, "Display pixels per degree")

	if err := fs.Parse(args); err != nil {
		return opts, false, err
	}

	o := &opts.overrides
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "n":
			o.NumSamples = config.PtrInt(n)
		case "max-retries":
			o.MaxRetries = config.PtrInt(retries)
		case "seed":
			o.Seed = config.PtrUint64(seed)
		case "smoothing":
			o.Smoothing = config.PtrString(smoothing)
		case "width":
			o.ImageWidth = config.PtrInt(w)
		case "height":
			o.ImageHeight = config.PtrInt(h)
		case "ppd":
			o.PixelsPerDegree = config.PtrFloat64(ppd)
		}
	})
	return opts, showVersion, nil
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(opts Options, fsys fsutil.FileSystem) (*config.GeneratorConfig, error) {
	path := opts.ConfigPath
	if path == "" && fsys.Exists(config.DefaultConfigPath) {
		path = config.DefaultConfigPath
	}
	cfg := config.EmptyGeneratorConfig()
	if path != "" {
		var err error
		if cfg, err = config.LoadGeneratorConfigFS(fsys, path); err != nil {
			return nil, err
		}
	}
	o := opts.overrides
	if o.NumSamples != nil {
		cfg.NumSamples = o.NumSamples
	}
	if o.MaxRetries != nil {
		cfg.MaxRetries = o.MaxRetries
	}
	if o.Seed != nil {
		cfg.Seed = o.Seed
	}
	if o.Smoothing != nil {
		cfg.Smoothing = o.Smoothing
	}
	if o.ImageWidth != nil {
		cfg.ImageWidth = o.ImageWidth
	}
	if o.ImageHeight != nil {
		cfg.ImageHeight = o.ImageHeight
	}
	if o.PixelsPerDegree != nil {
		cfg.PixelsPerDegree = o.PixelsPerDegree
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(opts Options, stdout io.Writer, fsys fsutil.FileSystem) error {
	if (opts.Input == "") == (opts.DatasetID == "") {
		return errors.New("exactly one of -input or -dataset is required")
	}
	if opts.DatasetID != "" && opts.DBPath == "" {
		return errors.New("-dataset requires -db")
	}
	if opts.Verbose {
		simulator.SetLogWriters(simulator.LogWriters{Ops: os.Stderr, Diag: os.Stderr})
	}

	cfg, err := loadConfig(opts, fsys)
	if err != nil {
		return err
	}

	var db *fixdb.DB
	if opts.DBPath != "" {
		if db, err = fixdb.Open(opts.DBPath); err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
	}

	src, sourceID, err := loadSource(opts, cfg, db, fsys)
	if err != nil {
		return err
	}

	seed := cfg.GetSeed()
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	log.Printf("generating %d trajectories from %d fixations (seed %d)", cfg.GetNumSamples(), src.Len(), seed)

	gen, err := simulator.New(src, simulator.Options{
		Estimator:  cfg.Estimator(),
		MaxRetries: cfg.GetMaxRetries(),
		Source:     simulator.NewSource(seed),
	})
	if err != nil {
		return err
	}
	if err := gen.Initialize(); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer gen.Finish()

	out, sampleErr := gen.SampleMany(cfg.GetNumSamples())
	stats := gen.Stats()
	if db != nil {
		outputID := ""
		if out != nil {
			if outputID, err = db.SaveDataset(datasetName(opts, "surrogate"), out); err != nil {
				return fmt.Errorf("save output: %w", err)
			}
		}
		runID, err := db.RecordRun(fixdb.Run{
			SourceID:      sourceID,
			OutputID:      outputID,
			Seed:          seed,
			NumSamples:    cfg.GetNumSamples(),
			MinusSaccades: stats.MinusSaccades,
			Canceled:      stats.Canceled,
		})
		if err != nil {
			return fmt.Errorf("record run: %w", err)
		}
		log.Printf("recorded run %s (output dataset %q)", runID, outputID)
	}
	if sampleErr != nil {
		return sampleErr
	}
	log.Printf("done: %d negative-length draws rejected", stats.MinusSaccades)

	if err := writeOutput(opts.Output, out, stdout, fsys); err != nil {
		return err
	}

	if opts.ReportDir != "" {
		written, err := report.WriteAll(opts.ReportDir, src, out, gen.Parameters().SamplingDensity, fsys)
		if err != nil {
			return fmt.Errorf("report: %w", err)
		}
		for _, p := range written {
			log.Printf("wrote %s", p)
		}
	}
	return nil
}

// loadSource reads the source dataset and, when a database is open, returns
// its stored id. CSV inputs are stored first so runs can reference them.
func loadSource(opts Options, cfg *config.GeneratorConfig, db *fixdb.DB, fsys fsutil.FileSystem) (*fixmat.Fixmat, string, error) {
	if opts.DatasetID != "" {
		fm, err := db.LoadDataset(opts.DatasetID)
		if err != nil {
			return nil, "", err
		}
		return fm, opts.DatasetID, nil
	}

	f, err := fsys.Open(opts.Input)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	fm, err := fixmat.ReadCSV(f, cfg.Params())
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", opts.Input, err)
	}
	if db == nil {
		return fm, "", nil
	}
	id, err := db.SaveDataset(datasetName(opts, opts.Input), fm)
	if err != nil {
		return nil, "", fmt.Errorf("save source: %w", err)
	}
	return fm, id, nil
}

func datasetName(opts Options, fallback string) string {
	if opts.Name == "" {
		return fallback
	}
	return opts.Name + "/" + fallback
}

func writeOutput(path string, out *fixmat.Fixmat, stdout io.Writer, fsys fsutil.FileSystem) error {
	if path == "" || path == "-" {
		return fixmat.WriteCSV(stdout, out)
	}
	f, err := fsys.Create(path)
	if err != nil {
		return err
	}
	if err := fixmat.WriteCSV(f, out); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
