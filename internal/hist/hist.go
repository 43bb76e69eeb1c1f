// Package hist builds probability histograms over fixed bin edges and the
// flattened cumulative tables used for inverse-transform sampling.
package hist

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrBadEdges is returned for edge arrays that are too short or not
	// strictly increasing.
	ErrBadEdges = errors.New("bin edges must be strictly increasing with at least two entries")
	// ErrMisaligned is returned when paired value arrays differ in length.
	ErrMisaligned = errors.New("value arrays are not aligned")
)

// Histogram2D is a row-major probability grid. Rows follow YEdges, columns
// follow XEdges.
type Histogram2D struct {
	Rows, Cols int
	Data       []float64
	YEdges     []float64
	XEdges     []float64
}

// NewEmpty allocates a zero grid over the given edges.
func NewEmpty(yEdges, xEdges []float64) (*Histogram2D, error) {
	if err := checkEdges(yEdges); err != nil {
		return nil, fmt.Errorf("y edges: %w", err)
	}
	if err := checkEdges(xEdges); err != nil {
		return nil, fmt.Errorf("x edges: %w", err)
	}
	rows, cols := len(yEdges)-1, len(xEdges)-1
	return &Histogram2D{
		Rows:   rows,
		Cols:   cols,
		Data:   make([]float64, rows*cols),
		YEdges: yEdges,
		XEdges: xEdges,
	}, nil
}

// Counts bins the (valuesY[i], valuesX[i]) pairs into raw counts. Pairs with
// a NaN on either side, or outside the edges, are dropped.
func Counts(valuesY, valuesX, yEdges, xEdges []float64) (*Histogram2D, error) {
	if len(valuesY) != len(valuesX) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrMisaligned, len(valuesY), len(valuesX))
	}
	h, err := NewEmpty(yEdges, xEdges)
	if err != nil {
		return nil, err
	}
	for i := range valuesY {
		vy, vx := valuesY[i], valuesX[i]
		if math.IsNaN(vy) || math.IsNaN(vx) {
			continue
		}
		r, ok := binIndex(yEdges, vy)
		if !ok {
			continue
		}
		c, ok := binIndex(xEdges, vx)
		if !ok {
			continue
		}
		h.Data[r*h.Cols+c]++
	}
	return h, nil
}

// New2D builds a probability histogram: counts normalised by the number of
// binned pairs, then the first and last column doubled. Those columns cover
// the half-width bins at the ±180° wrap of the angle axis.
//
// The result sums to more than one whenever the edge columns hold mass.
func New2D(valuesY, valuesX, yEdges, xEdges []float64) (*Histogram2D, error) {
	h, err := Counts(valuesY, valuesX, yEdges, xEdges)
	if err != nil {
		return nil, err
	}
	h.Normalize()
	h.DoubleEdgeColumns()
	return h, nil
}

// Normalize scales the grid to sum to one. An all-zero grid is left as is.
func (h *Histogram2D) Normalize() {
	total := floats.Sum(h.Data)
	if total == 0 {
		return
	}
	floats.Scale(1/total, h.Data)
}

// DoubleEdgeColumns doubles the first and last column.
func (h *Histogram2D) DoubleEdgeColumns() {
	for r := 0; r < h.Rows; r++ {
		h.Data[r*h.Cols] *= 2
		if h.Cols > 1 {
			h.Data[r*h.Cols+h.Cols-1] *= 2
		}
	}
}

// At returns the value at row r, column c.
func (h *Histogram2D) At(r, c int) float64 { return h.Data[r*h.Cols+c] }

// Set sets the value at row r, column c.
func (h *Histogram2D) Set(r, c int, v float64) { h.Data[r*h.Cols+c] = v }

// Shape returns (rows, cols).
func (h *Histogram2D) Shape() (int, int) { return h.Rows, h.Cols }

// Sum returns the total mass.
func (h *Histogram2D) Sum() float64 { return floats.Sum(h.Data) }

// Clone returns a deep copy.
func (h *Histogram2D) Clone() *Histogram2D {
	out := *h
	out.Data = append([]float64(nil), h.Data...)
	return &out
}

// CumSum flattens the grid row-major and returns its running sum.
func CumSum(h *Histogram2D) []float64 {
	return floats.CumSum(make([]float64, len(h.Data)), h.Data)
}

// New1D follows numpy's histogram(values, bins=n): n equal-width bins over
// [min, max], or over [v-0.5, v+0.5] when every value is v. NaNs are
// ignored. It returns the counts and the n+1 bin borders.
func New1D(values []float64, bins int) (counts, borders []float64, err error) {
	if bins < 1 {
		return nil, nil, fmt.Errorf("bin count must be positive, got %d", bins)
	}
	var finite []float64
	for _, v := range values {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return nil, nil, errors.New("no values to histogram")
	}
	lo, hi := floats.Min(finite), floats.Max(finite)
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	borders = Linspace(lo, hi, bins+1)
	counts = make([]float64, bins)
	width := (hi - lo) / float64(bins)
	for _, v := range finite {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		// Guard the computed index against rounding at bin borders.
		for i > 0 && v < borders[i] {
			i--
		}
		for i < bins-1 && v >= borders[i+1] {
			i++
		}
		counts[i]++
	}
	return counts, borders, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	switch {
	case n < 1:
		return nil
	case n == 1:
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Range returns the integer edges 0, 1, ..., n.
func Range(n int) []float64 {
	out := make([]float64, n+1)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

// binIndex locates v among edges: bins are half-open [e_i, e_i+1) except the
// last, which also includes its right edge.
func binIndex(edges []float64, v float64) (int, bool) {
	last := len(edges) - 1
	if v < edges[0] || v > edges[last] {
		return 0, false
	}
	if v == edges[last] {
		return last - 1, true
	}
	// First edge strictly greater than v.
	i := sort.Search(len(edges), func(i int) bool { return edges[i] > v })
	return i - 1, true
}

func checkEdges(edges []float64) error {
	if len(edges) < 2 {
		return ErrBadEdges
	}
	for i := 1; i < len(edges); i++ {
		if !(edges[i] > edges[i-1]) {
			return ErrBadEdges
		}
	}
	return nil
}
