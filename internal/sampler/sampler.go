// Package sampler draws from discrete distributions given as cumulative
// tables (inverse-transform sampling).
package sampler

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// Tolerance is how far below one a table's final entry may fall before the
// table is considered incomplete.
const Tolerance = 1e-6

// ErrIncompleteTable is returned for empty tables or tables whose final
// entry is below 1-Tolerance.
var ErrIncompleteTable = errors.New("cumulative table does not reach one")

// Check reports whether table can be sampled from.
func Check(table []float64) error {
	if len(table) == 0 {
		return fmt.Errorf("%w: empty table", ErrIncompleteTable)
	}
	if last := table[len(table)-1]; !(last >= 1-Tolerance) {
		return fmt.Errorf("%w: final entry %g", ErrIncompleteTable, last)
	}
	return nil
}

// Uniform draws a value in [0, 1) from src.
func Uniform(src rand.Source) float64 {
	return distuv.Uniform{Min: 0, Max: 1, Src: src}.Rand()
}

// Index returns the first index whose entry is at or above u. Leading
// entries without mass are never returned, so u of zero maps to the first
// bin that has mass. When u exceeds every entry the last index is returned.
func Index(table []float64, u float64) int {
	i := sort.SearchFloat64s(table, u)
	if i == len(table) {
		return i - 1
	}
	for i < len(table)-1 && table[i] <= 0 {
		i++
	}
	return i
}

// Draw draws one index from the cumulative table.
func Draw(table []float64, src rand.Source) (int, error) {
	if err := Check(table); err != nil {
		return 0, err
	}
	return Index(table, Uniform(src)), nil
}

// DrawValue draws an index and maps it through borders.
func DrawValue(table, borders []float64, src rand.Source) (float64, error) {
	i, err := Draw(table, src)
	if err != nil {
		return 0, err
	}
	if i >= len(borders) {
		return 0, fmt.Errorf("drawn index %d outside %d borders", i, len(borders))
	}
	return borders[i], nil
}

// Unravel converts a row-major flat index into (row, col) for a grid with
// cols columns.
func Unravel(index, cols int) (row, col int) {
	return index / cols, index % cols
}
