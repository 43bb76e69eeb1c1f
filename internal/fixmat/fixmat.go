// Package fixmat holds fixation datasets: aligned per-fixation arrays of
// screen coordinates and within-trajectory indices, plus the display
// parameters needed to interpret them.
package fixmat

import (
	"errors"
	"fmt"
)

// ErrInvalid is returned when a dataset or its parameters fail validation.
var ErrInvalid = errors.New("invalid fixmat")

// Params describes the display the fixations were recorded on.
type Params struct {
	ImageHeight     int     `json:"image_height"`
	ImageWidth      int     `json:"image_width"`
	PixelsPerDegree float64 `json:"pixels_per_degree"`
}

// Validate checks that image dimensions and scale are positive.
func (p Params) Validate() error {
	if p.ImageHeight <= 0 || p.ImageWidth <= 0 {
		return fmt.Errorf("%w: image size must be positive, got %dx%d", ErrInvalid, p.ImageWidth, p.ImageHeight)
	}
	if !(p.PixelsPerDegree > 0) {
		return fmt.Errorf("%w: pixels_per_degree must be positive, got %g", ErrInvalid, p.PixelsPerDegree)
	}
	return nil
}

// Fixmat is an ordered collection of fixations. Trajectories are delimited by
// resets of Fix back to its minimum value.
type Fixmat struct {
	Fix []int
	X   []float64
	Y   []float64

	// Trajectory is the 0-based trajectory number of each fixation. It is
	// optional on input and always set on generated datasets.
	Trajectory []int

	Params
}

// Fields is the flat field mapping used to build an output dataset.
type Fields struct {
	Fix        []int
	X          []float64
	Y          []float64
	Trajectory []int
}

// FromFields builds a dataset from flat field arrays and validates it.
func FromFields(f Fields, p Params) (*Fixmat, error) {
	fm := &Fixmat{
		Fix:        f.Fix,
		X:          f.X,
		Y:          f.Y,
		Trajectory: f.Trajectory,
		Params:     p,
	}
	if err := fm.Validate(); err != nil {
		return nil, err
	}
	return fm, nil
}

// Len returns the number of fixations.
func (fm *Fixmat) Len() int { return len(fm.Fix) }

// MinFix returns the smallest within-trajectory index in the dataset.
func (fm *Fixmat) MinFix() int {
	if len(fm.Fix) == 0 {
		return 0
	}
	m := fm.Fix[0]
	for _, f := range fm.Fix[1:] {
		if f < m {
			m = f
		}
	}
	return m
}

// FirstFixCentered reports whether the recorded first fixations were dropped
// from the dataset because they were forced to the image centre. This is
// detected by the indices not starting at 1.
func (fm *Fixmat) FirstFixCentered() bool {
	return fm.MinFix() != 1
}

// Validate checks array alignment, display parameters, and that indices
// increase within each trajectory.
func (fm *Fixmat) Validate() error {
	if fm == nil {
		return fmt.Errorf("%w: nil dataset", ErrInvalid)
	}
	n := len(fm.Fix)
	if n == 0 {
		return fmt.Errorf("%w: no fixations", ErrInvalid)
	}
	if len(fm.X) != n || len(fm.Y) != n {
		return fmt.Errorf("%w: misaligned fields fix=%d x=%d y=%d", ErrInvalid, n, len(fm.X), len(fm.Y))
	}
	if fm.Trajectory != nil && len(fm.Trajectory) != n {
		return fmt.Errorf("%w: misaligned trajectory field (%d, want %d)", ErrInvalid, len(fm.Trajectory), n)
	}
	if err := fm.Params.Validate(); err != nil {
		return err
	}
	minFix := fm.MinFix()
	if fm.Fix[0] != minFix {
		return fmt.Errorf("%w: first fixation index %d does not start a trajectory (min %d)", ErrInvalid, fm.Fix[0], minFix)
	}
	for i := 1; i < n; i++ {
		if fm.Fix[i] != minFix && fm.Fix[i] <= fm.Fix[i-1] {
			return fmt.Errorf("%w: fixation index not increasing at position %d (%d after %d)", ErrInvalid, i, fm.Fix[i], fm.Fix[i-1])
		}
	}
	return nil
}

// TrajectoryStarts returns a mask that is true for the first fixation of
// every trajectory.
func (fm *Fixmat) TrajectoryStarts() []bool {
	minFix := fm.MinFix()
	mask := make([]bool, len(fm.Fix))
	for i, f := range fm.Fix {
		mask[i] = f == minFix
	}
	return mask
}

// NumTrajectories counts trajectory starts.
func (fm *Fixmat) NumTrajectories() int {
	n := 0
	for _, s := range fm.TrajectoryStarts() {
		if s {
			n++
		}
	}
	return n
}

// Select returns a new dataset holding only the fixations where mask is true.
func (fm *Fixmat) Select(mask []bool) (*Fixmat, error) {
	if len(mask) != fm.Len() {
		return nil, fmt.Errorf("%w: mask length %d, want %d", ErrInvalid, len(mask), fm.Len())
	}
	out := &Fixmat{Params: fm.Params}
	for i, keep := range mask {
		if !keep {
			continue
		}
		out.Fix = append(out.Fix, fm.Fix[i])
		out.X = append(out.X, fm.X[i])
		out.Y = append(out.Y, fm.Y[i])
		if fm.Trajectory != nil {
			out.Trajectory = append(out.Trajectory, fm.Trajectory[i])
		}
	}
	return out, nil
}
