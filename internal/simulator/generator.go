// Package simulator generates synthetic fixation trajectories that
// reproduce the second-order saccade statistics of a source dataset.
//
// A Generator is built in two phases: New validates the source dataset and
// Initialize fits the model. Fitting is the expensive step and can be run
// later or in parallel across generators. Sampling before Initialize fails
// with ErrNotInitialized.
package simulator

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/banshee-data/fixgen/internal/density"
	"github.com/banshee-data/fixgen/internal/fixmat"
	"github.com/banshee-data/fixgen/internal/hist"
	"github.com/banshee-data/fixgen/internal/monitoring"
	"github.com/banshee-data/fixgen/internal/saccade"
	"github.com/banshee-data/fixgen/internal/sampler"
	"github.com/banshee-data/fixgen/internal/units"
)

// DefaultMaxRetries bounds consecutive negative-length redraws per step.
const DefaultMaxRetries = 10000

// State is the generator lifecycle state.
type State int

const (
	StateInit     State = iota // tables not built
	StateReady                 // tables built, idle
	StateBuilding              // a trajectory is being generated
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateReady:
		return "ready"
	case StateBuilding:
		return "building"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configures a Generator. Zero values select defaults.
type Options struct {
	// Estimator fits the second-order density; nil uses density.NewEstimator.
	Estimator *density.Estimator
	// MaxRetries is the negative-length redraw budget per saccade.
	MaxRetries int
	// Source is the random source for every draw; nil seeds a PCG source
	// from the clock.
	Source rand.Source
}

// Stats are the generator's rejection counters.
type Stats struct {
	// MinusSaccades counts draws rejected for a negative length.
	MinusSaccades int
	// Canceled counts trajectories abandoned after exhausting retries.
	Canceled int
}

// Parameters exposes the source data and the fitted sampling density.
type Parameters struct {
	Fixmat          *fixmat.Fixmat
	SamplingDensity *hist.Histogram2D
}

// Generator is a second-order trajectory generator. It is safe for
// concurrent use; calls are serialised.
type Generator struct {
	mu sync.Mutex

	fm               *fixmat.Fixmat
	firstFixCentered bool
	estimator        *density.Estimator
	maxRetries       int
	src              rand.Source

	state         State
	density       *hist.Histogram2D
	secondOrder   []float64
	firstSaccades Table2D
	firstCoords   Table2D
	trajLengths   Table1D
	stats         Stats
}

// New creates a generator for the given dataset. The dataset is validated
// up front; no model fitting happens until Initialize.
func New(fm *fixmat.Fixmat, opts Options) (*Generator, error) {
	if fm == nil {
		return nil, fmt.Errorf("%w: nil dataset", ErrInvalidDataset)
	}
	if err := fm.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}
	if opts.MaxRetries < 0 {
		return nil, fmt.Errorf("max retries must be non-negative, got %d", opts.MaxRetries)
	}
	g := &Generator{
		fm:               fm,
		firstFixCentered: fm.FirstFixCentered(),
		estimator:        opts.Estimator,
		maxRetries:       opts.MaxRetries,
		src:              opts.Source,
	}
	if g.estimator == nil {
		g.estimator = density.NewEstimator()
	}
	if g.maxRetries == 0 {
		g.maxRetries = DefaultMaxRetries
	}
	if g.src == nil {
		g.src = NewSource(uint64(time.Now().UnixNano()))
	}
	return g, nil
}

// NewSource returns the PCG source used for a given seed, so that a run
// can be repeated from its recorded seed.
func NewSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed>>1)
}

// State returns the current lifecycle state.
func (g *Generator) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// FirstFixCentered reports whether trajectories start at the image centre.
func (g *Generator) FirstFixCentered() bool { return g.firstFixCentered }

// Initialize fits the second-order density and builds the four cumulative
// tables. It resets the rejection counters and may be called again to refit.
func (g *Generator) Initialize() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	start := time.Now()
	feats, err := saccade.Extract(g.fm, 1)
	if err != nil {
		return fmt.Errorf("feature extraction: %w", err)
	}
	dens, err := secondOrderDensity(g.fm, feats, g.estimator)
	if err != nil {
		return fmt.Errorf("second-order density: %w", err)
	}
	firstSaccades, err := firstSaccadeTable(g.fm, feats)
	if err != nil {
		return err
	}
	firstCoords, err := firstCoordinateTable(g.fm)
	if err != nil {
		return err
	}
	trajLengths, err := trajectoryLengthTable(g.fm)
	if err != nil {
		return err
	}
	secondOrder := hist.CumSum(dens)

	checks := []struct {
		name  string
		table []float64
	}{
		{"second-order", secondOrder},
		{"first saccade", firstSaccades.CumSum},
		{"trajectory length", trajLengths.CumSum},
	}
	if !g.firstFixCentered {
		checks = append(checks, struct {
			name  string
			table []float64
		}{"first coordinate", firstCoords.CumSum})
	}
	for _, c := range checks {
		if err := sampler.Check(c.table); err != nil {
			return fmt.Errorf("%s table: %w", c.name, err)
		}
	}

	g.density = dens
	g.secondOrder = secondOrder
	g.firstSaccades = firstSaccades
	g.firstCoords = firstCoords
	g.trajLengths = trajLengths
	g.stats = Stats{}
	g.state = StateReady

	Diagf("density %dx%d, first saccades %dx%d, first coordinates %dx%d, centred=%v",
		dens.Rows, dens.Cols, firstSaccades.Rows, firstSaccades.Cols,
		firstCoords.Rows, firstCoords.Cols, g.firstFixCentered)
	Opsf("initialized from %d fixations in %d trajectories (%v)",
		g.fm.Len(), g.fm.NumTrajectories(), time.Since(start).Round(time.Millisecond))
	return nil
}

// Finish drops the fitted tables and returns the generator to StateInit.
func (g *Generator) Finish() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.density = nil
	g.secondOrder = nil
	g.firstSaccades = Table2D{}
	g.firstCoords = Table2D{}
	g.trajLengths = Table1D{}
	g.state = StateInit
}

// Stats returns a snapshot of the rejection counters.
func (g *Generator) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stats
}

// Parameters returns the source dataset and the fitted sampling density
// (nil before Initialize).
func (g *Generator) Parameters() Parameters {
	g.mu.Lock()
	defer g.mu.Unlock()
	var d *hist.Histogram2D
	if g.density != nil {
		d = g.density.Clone()
	}
	return Parameters{Fixmat: g.fm, SamplingDensity: d}
}

// Sample generates one trajectory as a sequence of (x, y) coordinates.
func (g *Generator) Sample() ([][2]float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == StateInit {
		return nil, ErrNotInitialized
	}
	return g.sample()
}

// SampleMany generates n trajectories and returns them as a dataset with
// 1-based Fix positions, 0-based Trajectory numbers and the source
// dataset's display parameters.
func (g *Generator) SampleMany(n int) (*fixmat.Fixmat, error) {
	if n < 1 {
		return nil, fmt.Errorf("number of samples must be positive, got %d", n)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == StateInit {
		return nil, ErrNotInitialized
	}

	var f fixmat.Fields
	progress := monitoring.NewProgress("simulating trajectories", n)
	for s := 0; s < n; s++ {
		coords, err := g.sample()
		if err != nil {
			return nil, fmt.Errorf("trajectory %d: %w", s, err)
		}
		for i, c := range coords {
			f.X = append(f.X, c[0])
			f.Y = append(f.Y, c[1])
			f.Fix = append(f.Fix, i+1)
			f.Trajectory = append(f.Trajectory, s)
		}
		progress.Add(1)
	}
	Diagf("sampled %d trajectories, %d fixations, %d negative-length draws rejected",
		n, len(f.Fix), g.stats.MinusSaccades)
	return fixmat.FromFields(f, g.fm.Params)
}

// sample builds one trajectory. The caller holds g.mu.
func (g *Generator) sample() ([][2]float64, error) {
	g.state = StateBuilding
	defer func() { g.state = StateReady }()

	size, err := sampler.DrawValue(g.trajLengths.CumSum, g.trajLengths.Borders, g.src)
	if err != nil {
		return nil, fmt.Errorf("trajectory length: %w", err)
	}
	target := int(math.Round(size))

	first, err := g.firstCoordinate()
	if err != nil {
		return nil, err
	}
	coords := make([][2]float64, 0, max(target, 1))
	coords = append(coords, first)

	var prevAngle, prevLength float64
	havePrev := false
	for len(coords) < target {
		step := len(coords) - 1
		var angle, length float64
		for rejected := 0; ; {
			angle, length, err = g.draw(havePrev, prevAngle, prevLength)
			if err != nil {
				return nil, err
			}
			if length >= 0 {
				break
			}
			g.stats.MinusSaccades++
			rejected++
			Tracef("step %d: rejected negative length %.3f", step, length)
			if rejected >= g.maxRetries {
				g.stats.Canceled++
				Opsf("giving up on trajectory after %d negative-length draws at step %d", rejected, step)
				return nil, &ModelDegenerateError{Step: step, Retries: rejected}
			}
		}

		last := coords[len(coords)-1]
		rad := units.Radians(angle)
		coords = append(coords, [2]float64{
			last[0] + math.Cos(rad)*length,
			last[1] + math.Sin(rad)*length,
		})
		prevAngle, prevLength, havePrev = angle, length, true
	}
	return coords, nil
}

// firstCoordinate returns the image centre for centred datasets, otherwise
// a draw from the first-coordinate table.
func (g *Generator) firstCoordinate() ([2]float64, error) {
	if g.firstFixCentered {
		return [2]float64{float64(g.fm.ImageWidth / 2), float64(g.fm.ImageHeight / 2)}, nil
	}
	idx, err := sampler.Draw(g.firstCoords.CumSum, g.src)
	if err != nil {
		return [2]float64{}, fmt.Errorf("first coordinate: %w", err)
	}
	row, col := sampler.Unravel(idx, g.firstCoords.Cols)
	return [2]float64{float64(col), float64(row)}, nil
}

// draw returns the absolute angle (degrees) and length (pixels) of the next
// saccade. Without a previous saccade both come from the first-saccade
// table; otherwise a (length, angle) difference is drawn from the
// second-order table and applied to the previous saccade.
func (g *Generator) draw(havePrev bool, prevAngle, prevLength float64) (angle, length float64, err error) {
	if !havePrev {
		idx, err := sampler.Draw(g.firstSaccades.CumSum, g.src)
		if err != nil {
			return 0, 0, fmt.Errorf("first saccade: %w", err)
		}
		row, col := sampler.Unravel(idx, g.firstSaccades.Cols)
		angle = float64(col) - float64(g.firstSaccades.Cols-1)/2
		return angle, float64(row), nil
	}

	idx, err := sampler.Draw(g.secondOrder, g.src)
	if err != nil {
		return 0, 0, fmt.Errorf("second-order draw: %w", err)
	}
	j, i := sampler.Unravel(idx, g.density.Cols)
	angle = saccade.Reshift(float64(i) - float64(g.density.Cols)/2 + prevAngle)
	length = prevLength + units.DegreesToPixels(float64(j)-float64(g.density.Rows)/2, g.fm.PixelsPerDegree)
	return angle, length, nil
}
