package config

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/banshee-data/fixgen/internal/density"
	"github.com/banshee-data/fixgen/internal/fixmat"
	"github.com/banshee-data/fixgen/internal/fsutil"
	"github.com/banshee-data/fixgen/internal/simulator"
)

// DefaultConfigPath is the path to the canonical generator defaults file.
const DefaultConfigPath = "config/generator.defaults.json"

// Smoothing modes for the second-order density.
const (
	SmoothingSpline = "spline"
	SmoothingNone   = "none"
)

// GeneratorConfig holds generator and display settings. Omitted fields take
// the defaults returned by the Get* accessors, so partial files are safe.
type GeneratorConfig struct {
	// Sampling
	NumSamples *int    `json:"num_samples,omitempty"`
	MaxRetries *int    `json:"max_retries,omitempty"`
	Seed       *uint64 `json:"seed,omitempty"` // 0 seeds from the clock

	// Density fit
	KnotsY    *int    `json:"knots_y,omitempty"`
	KnotsX    *int    `json:"knots_x,omitempty"`
	Smoothing *string `json:"smoothing,omitempty"`

	// Display the source data was recorded on
	ImageWidth      *int     `json:"image_width,omitempty"`
	ImageHeight     *int     `json:"image_height,omitempty"`
	PixelsPerDegree *float64 `json:"pixels_per_degree,omitempty"`
}

// EmptyGeneratorConfig returns a GeneratorConfig with all fields set to nil.
func EmptyGeneratorConfig() *GeneratorConfig {
	return &GeneratorConfig{}
}

// maxConfigSize bounds the config files LoadGeneratorConfig accepts.
const maxConfigSize = 1 * 1024 * 1024 // 1MB

// LoadGeneratorConfig loads a GeneratorConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadGeneratorConfig(path string) (*GeneratorConfig, error) {
	return LoadGeneratorConfigFS(fsutil.OSFileSystem{}, path)
}

// LoadGeneratorConfigFS is LoadGeneratorConfig reading through fsys.
func LoadGeneratorConfigFS(fsys fsutil.FileSystem, path string) (*GeneratorConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	f, err := fsys.Open(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxConfigSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) > maxConfigSize {
		return nil, fmt.Errorf("config file too large: over %d bytes", maxConfigSize)
	}

	cfg := EmptyGeneratorConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configured values are usable.
func (c *GeneratorConfig) Validate() error {
	if c.NumSamples != nil && *c.NumSamples < 1 {
		return fmt.Errorf("num_samples must be positive, got %d", *c.NumSamples)
	}
	if c.MaxRetries != nil && *c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be positive, got %d", *c.MaxRetries)
	}
	if c.KnotsY != nil && *c.KnotsY < 2 {
		return fmt.Errorf("knots_y must be at least 2, got %d", *c.KnotsY)
	}
	if c.KnotsX != nil && *c.KnotsX < 2 {
		return fmt.Errorf("knots_x must be at least 2, got %d", *c.KnotsX)
	}
	if c.Smoothing != nil {
		switch *c.Smoothing {
		case SmoothingSpline, SmoothingNone:
		default:
			return fmt.Errorf("smoothing must be %q or %q, got %q", SmoothingSpline, SmoothingNone, *c.Smoothing)
		}
	}
	if err := c.Params().Validate(); err != nil {
		return err
	}
	return nil
}

// GetNumSamples returns the num_samples value or the default.
func (c *GeneratorConfig) GetNumSamples() int {
	if c.NumSamples == nil {
		return 500
	}
	return *c.NumSamples
}

// GetMaxRetries returns the max_retries value or the default.
func (c *GeneratorConfig) GetMaxRetries() int {
	if c.MaxRetries == nil {
		return simulator.DefaultMaxRetries
	}
	return *c.MaxRetries
}

// GetSeed returns the seed value or 0 (seed from the clock).
func (c *GeneratorConfig) GetSeed() uint64 {
	if c.Seed == nil {
		return 0
	}
	return *c.Seed
}

// GetKnotsY returns the knots_y value or the default.
func (c *GeneratorConfig) GetKnotsY() int {
	if c.KnotsY == nil {
		return density.DefaultYKnots
	}
	return *c.KnotsY
}

// GetKnotsX returns the knots_x value or the default.
func (c *GeneratorConfig) GetKnotsX() int {
	if c.KnotsX == nil {
		return density.DefaultXKnots
	}
	return *c.KnotsX
}

// GetSmoothing returns the smoothing mode or the default.
func (c *GeneratorConfig) GetSmoothing() string {
	if c.Smoothing == nil {
		return SmoothingSpline
	}
	return *c.Smoothing
}

// Params returns the display parameters, with defaults for a 1280x960
// display at 45 pixels per degree.
func (c *GeneratorConfig) Params() fixmat.Params {
	p := fixmat.Params{ImageWidth: 1280, ImageHeight: 960, PixelsPerDegree: 45}
	if c.ImageWidth != nil {
		p.ImageWidth = *c.ImageWidth
	}
	if c.ImageHeight != nil {
		p.ImageHeight = *c.ImageHeight
	}
	if c.PixelsPerDegree != nil {
		p.PixelsPerDegree = *c.PixelsPerDegree
	}
	return p
}

// Estimator builds the density estimator described by the config.
func (c *GeneratorConfig) Estimator() *density.Estimator {
	var f density.Fitter = density.SplineFitter{}
	if c.GetSmoothing() == SmoothingNone {
		f = density.HistogramFitter{}
	}
	return &density.Estimator{Fitter: f, YKnots: c.GetKnotsY(), XKnots: c.GetKnotsX()}
}

// Helper functions to create pointers, used when applying flag overrides.
func PtrInt(v int) *int             { return &v }
func PtrUint64(v uint64) *uint64    { return &v }
func PtrFloat64(v float64) *float64 { return &v }
func PtrString(v string) *string    { return &v }
