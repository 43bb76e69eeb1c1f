// Command fixstats compares the saccade statistics of an empirical and a
// generated fixation dataset and renders comparison plots.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/banshee-data/fixgen/internal/config"
	"github.com/banshee-data/fixgen/internal/fixmat"
	"github.com/banshee-data/fixgen/internal/fsutil"
	"github.com/banshee-data/fixgen/internal/hist"
	"github.com/banshee-data/fixgen/internal/report"
	"github.com/banshee-data/fixgen/internal/version"
)

// Config holds the command line settings.
type Config struct {
	Empirical  string
	Surrogate  string
	ConfigPath string
	ReportDir  string
	Collapsed  bool
}

func main() {
	cfg, showVersion, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if showVersion {
		fmt.Println(version.String("fixstats"))
		return
	}
	if err := run(cfg, os.Stdout, fsutil.OSFileSystem{}); err != nil {
		log.Fatalf("fixstats: %v", err)
	}
}

func parseFlags(args []string) (Config, bool, error) {
	var (
		cfg         Config
		showVersion bool
	)
	fs := flag.NewFlagSet("fixstats", flag.ContinueOnError)
	fs.StringVar(&cfg.Empirical, "empirical", "", "Empirical dataset CSV")
	fs.StringVar(&cfg.Surrogate, "surrogate", "", "Generated dataset CSV")
	fs.StringVar(&cfg.ConfigPath, "config", "", "Generator config JSON for display parameters and smoothing")
	fs.StringVar(&cfg.ReportDir, "report", "", "Write plots and the comparison table into this directory")
	fs.BoolVar(&cfg.Collapsed, "collapsed", true, "Include the folded second-order density of the empirical data")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return cfg, false, err
	}
	return cfg, showVersion, nil
}

func run(cfg Config, stdout io.Writer, fsys fsutil.FileSystem) error {
	if cfg.Empirical == "" || cfg.Surrogate == "" {
		return fmt.Errorf("-empirical and -surrogate are required")
	}
	gen := config.EmptyGeneratorConfig()
	if cfg.ConfigPath != "" {
		var err error
		if gen, err = config.LoadGeneratorConfigFS(fsys, cfg.ConfigPath); err != nil {
			return err
		}
	}

	emp, err := readDataset(cfg.Empirical, gen.Params(), fsys)
	if err != nil {
		return err
	}
	sur, err := readDataset(cfg.Surrogate, gen.Params(), fsys)
	if err != nil {
		return err
	}

	c, err := report.Compare(emp, sur)
	if err != nil {
		return err
	}
	if err := report.WriteText(stdout, c); err != nil {
		return err
	}
	if cfg.ReportDir == "" {
		return nil
	}

	var density *hist.Histogram2D
	if cfg.Collapsed {
		if density, err = report.CollapsedDensity(emp, gen.Estimator()); err != nil {
			return fmt.Errorf("collapsed density: %w", err)
		}
	}
	written, err := report.WriteAll(cfg.ReportDir, emp, sur, density, fsys)
	if err != nil {
		return err
	}
	for _, p := range written {
		log.Printf("wrote %s", p)
	}
	return nil
}

func readDataset(path string, p fixmat.Params, fsys fsutil.FileSystem) (*fixmat.Fixmat, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	fm, err := fixmat.ReadCSV(f, p)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return fm, nil
}
