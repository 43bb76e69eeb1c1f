package hist

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinspaceAndRange(t *testing.T) {
	got := Linspace(-0.5, 180.5, 182)
	require.Len(t, got, 182)
	assert.Equal(t, -0.5, got[0])
	assert.Equal(t, 180.5, got[181])
	assert.InDelta(t, 89.5, got[90], 1e-9)

	assert.Equal(t, []float64{0, 1, 2, 3}, Range(3))
	assert.Equal(t, []float64{7}, Linspace(7, 9, 1))
	assert.Nil(t, Linspace(0, 1, 0))
}

func TestCounts_EdgeSemantics(t *testing.T) {
	edges := []float64{0, 1, 2}
	tests := []struct {
		name string
		y, x float64
		want []float64 // row-major 2x2, nil when dropped
	}{
		{"interior", 0.5, 1.5, []float64{0, 1, 0, 0}},
		{"left edge inclusive", 0, 0, []float64{1, 0, 0, 0}},
		{"inner edge goes right", 1, 1, []float64{0, 0, 0, 1}},
		{"last edge inclusive", 2, 2, []float64{0, 0, 0, 1}},
		{"below range", -0.1, 1, nil},
		{"above range", 1, 2.1, nil},
		{"nan y", math.NaN(), 1, nil},
		{"nan x", 1, math.NaN(), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := Counts([]float64{tt.y}, []float64{tt.x}, edges, edges)
			require.NoError(t, err)
			want := tt.want
			if want == nil {
				want = []float64{0, 0, 0, 0}
			}
			assert.Equal(t, want, h.Data)
		})
	}
}

func TestNew2D_NormalizesAndDoublesEdges(t *testing.T) {
	yEdges := []float64{0, 1, 2}
	xEdges := []float64{0, 1, 2, 3, 4}
	// One pair per column in row 0, plus one dropped NaN pair.
	ys := []float64{0.5, 0.5, 0.5, 0.5, math.NaN()}
	xs := []float64{0.5, 1.5, 2.5, 3.5, 1.5}

	raw, err := Counts(ys, xs, yEdges, xEdges)
	require.NoError(t, err)
	raw.Normalize()
	assert.InDelta(t, 1.0, raw.Sum(), 1e-12, "mass before edge correction")

	h, err := New2D(ys, xs, yEdges, xEdges)
	require.NoError(t, err)
	rows, cols := h.Shape()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 4, cols)

	interior := h.At(0, 1)
	assert.InDelta(t, 0.25, interior, 1e-12)
	assert.InDelta(t, 2*interior, h.At(0, 0), 1e-12, "first column doubled")
	assert.InDelta(t, 2*interior, h.At(0, 3), 1e-12, "last column doubled")
	assert.InDelta(t, 1.5, h.Sum(), 1e-12)
	assert.Zero(t, h.At(1, 2))
}

func TestNew2D_Errors(t *testing.T) {
	_, err := New2D([]float64{1}, []float64{1, 2}, Range(2), Range(2))
	assert.True(t, errors.Is(err, ErrMisaligned))

	_, err = New2D(nil, nil, []float64{0}, Range(2))
	assert.True(t, errors.Is(err, ErrBadEdges))

	_, err = New2D(nil, nil, Range(2), []float64{0, 0, 1})
	assert.True(t, errors.Is(err, ErrBadEdges))
}

func TestNew2D_EmptyInputIsZero(t *testing.T) {
	h, err := New2D([]float64{math.NaN()}, []float64{1}, Range(3), Range(3))
	require.NoError(t, err)
	assert.Zero(t, h.Sum())
}

func TestCumSum(t *testing.T) {
	h, err := New2D(
		[]float64{0.5, 1.5, 1.5, 2.5},
		[]float64{1.5, 1.5, 1.5, 1.5},
		Range(3), Range(3),
	)
	require.NoError(t, err)
	cs := CumSum(h)
	require.Len(t, cs, 9)
	for i := 1; i < len(cs); i++ {
		assert.GreaterOrEqual(t, cs[i], cs[i-1], "non-decreasing at %d", i)
	}
	assert.InDelta(t, 1.0, cs[len(cs)-1], 1e-12)
	want := []float64{0, 0.25, 0.25, 0.25, 0.75, 0.75, 0.75, 1, 1}
	if diff := cmp.Diff(want, cs, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("CumSum mismatch (-want +got):\n%s", diff)
	}
}

func TestNew1D(t *testing.T) {
	counts, borders, err := New1D([]float64{1, 2, 2, 3, math.NaN()}, 4)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 2, 1}, counts)
	if diff := cmp.Diff([]float64{1, 1.5, 2, 2.5, 3}, borders, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("borders mismatch (-want +got):\n%s", diff)
	}
}

func TestNew1D_SingleValue(t *testing.T) {
	counts, borders, err := New1D([]float64{3, 3, 3}, 1000)
	require.NoError(t, err)
	require.Len(t, borders, 1001)
	assert.InDelta(t, 2.5, borders[0], 1e-12)
	assert.InDelta(t, 3.5, borders[1000], 1e-12)

	var total float64
	for i, c := range counts {
		if c > 0 {
			assert.Equal(t, 3.0, c)
			assert.Equal(t, 3.0, math.Round(borders[i]))
		}
		total += c
	}
	assert.Equal(t, 3.0, total)
}

func TestNew1D_Errors(t *testing.T) {
	_, _, err := New1D([]float64{1}, 0)
	assert.Error(t, err)
	_, _, err = New1D([]float64{math.NaN()}, 10)
	assert.Error(t, err)
}

func TestClone(t *testing.T) {
	h, err := New2D([]float64{0.5}, []float64{0.5}, Range(1), Range(2))
	require.NoError(t, err)
	c := h.Clone()
	c.Set(0, 0, 42)
	assert.NotEqual(t, 42.0, h.At(0, 0))
}
