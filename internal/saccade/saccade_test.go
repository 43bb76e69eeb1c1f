package saccade

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/banshee-data/fixgen/internal/fixmat"
)

var nan = math.NaN()

func TestReshift(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{190, -170},
		{-200, 160},
		{180, 180},
		{-180, -180},
		{0, 0},
		{45.5, 45.5},
		{360, 0},
		{-360, 0},
		{540, 180},
		{725, 5},
		{-1085, -5},
		{36000.25, 0.25},
	}
	for _, tt := range tests {
		got := Reshift(tt.in)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Reshift(%g) = %g, want %g", tt.in, got, tt.want)
		}
	}
}

func TestReshift_RangeAndIdempotence(t *testing.T) {
	for a := -1000.0; a <= 1000; a += 7.3 {
		got := Reshift(a)
		if got < -180 || got > 180 {
			t.Fatalf("Reshift(%g) = %g out of range", a, got)
		}
		if again := Reshift(got); again != got {
			t.Fatalf("Reshift not idempotent at %g: %g then %g", a, got, again)
		}
	}
	if !math.IsNaN(Reshift(nan)) {
		t.Error("Reshift(NaN) should stay NaN")
	}
	if !math.IsInf(Reshift(math.Inf(1)), 1) {
		t.Error("Reshift(+Inf) should stay +Inf")
	}
}

func TestReshiftAll(t *testing.T) {
	in := []float64{190, -200, 10, nan}
	got := ReshiftAll(in)
	want := []float64{-170, 160, 10, nan}
	if diff := cmp.Diff(want, got, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("ReshiftAll mismatch (-want +got):\n%s", diff)
	}
	if in[0] != 190 {
		t.Error("ReshiftAll mutated its input")
	}
}

func lineDataset() *fixmat.Fixmat {
	return &fixmat.Fixmat{
		Fix:    []int{1, 2, 3, 1, 2, 3},
		X:      []float64{0, 3, 6, 10, 10, 10},
		Y:      []float64{0, 4, 8, 10, 20, 30},
		Params: fixmat.Params{ImageHeight: 100, ImageWidth: 100, PixelsPerDegree: 1},
	}
}

func TestExtract_FirstOrder(t *testing.T) {
	f, err := Extract(lineDataset(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if f.Orders() != 1 {
		t.Fatalf("Orders() = %d, want 1", f.Orders())
	}
	o := f.Order(1)
	a := math.Atan2(4, 3) * 180 / math.Pi // 53.13 degrees

	opts := cmp.Options{cmpopts.EquateNaNs(), cmpopts.EquateApprox(0, 1e-9)}
	checks := []struct {
		name      string
		got, want []float64
	}{
		{"lengths", o.Lengths, []float64{nan, 5, 5, nan, 10, 10}},
		{"angles", o.Angles, []float64{nan, a, a, nan, 90, 90}},
		{"length diffs", o.LengthDiff, []float64{nan, nan, 0, nan, nan, 0}},
		{"angle diffs", o.AngleDiff, []float64{nan, nan, 0, nan, nan, 0}},
	}
	for _, c := range checks {
		if diff := cmp.Diff(c.want, c.got, opts); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", c.name, diff)
		}
	}
	if math.Abs(a-53.13) > 0.01 {
		t.Errorf("reference angle %g, want ~53.13", a)
	}
}

func TestExtract_DiffsAcrossTurns(t *testing.T) {
	// Right, up, then left: angle steps of +90 and +90.
	fm := &fixmat.Fixmat{
		Fix:    []int{1, 2, 3, 4},
		X:      []float64{0, 10, 10, 5},
		Y:      []float64{0, 0, 20, 20},
		Params: fixmat.Params{ImageHeight: 100, ImageWidth: 100, PixelsPerDegree: 1},
	}
	f, err := Extract(fm, 1)
	if err != nil {
		t.Fatal(err)
	}
	o := f.Order(1)
	opts := cmp.Options{cmpopts.EquateNaNs(), cmpopts.EquateApprox(0, 1e-9)}
	if diff := cmp.Diff([]float64{nan, nan, 10, -15}, o.LengthDiff, opts); diff != "" {
		t.Errorf("length diffs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{nan, nan, 90, 90}, o.AngleDiff, opts); diff != "" {
		t.Errorf("angle diffs mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_SecondOrder(t *testing.T) {
	fm := &fixmat.Fixmat{
		Fix:    []int{1, 2, 3, 4},
		X:      []float64{0, 10, 20, 30},
		Y:      []float64{0, 0, 0, 0},
		Params: fixmat.Params{ImageHeight: 100, ImageWidth: 100, PixelsPerDegree: 1},
	}
	f, err := Extract(fm, 2)
	if err != nil {
		t.Fatal(err)
	}
	o := f.Order(2)
	opts := cmp.Options{cmpopts.EquateNaNs()}
	if diff := cmp.Diff([]float64{nan, nan, 20, 20}, o.Lengths, opts); diff != "" {
		t.Errorf("order-2 lengths mismatch (-want +got):\n%s", diff)
	}
	// Saccade i compared with the order-2 saccade ending one fixation earlier.
	if diff := cmp.Diff([]float64{nan, nan, nan, -10}, o.LengthDiff, opts); diff != "" {
		t.Errorf("order-2 length diffs mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_Errors(t *testing.T) {
	if _, err := Extract(lineDataset(), 0); err == nil {
		t.Error("order 0 should fail")
	}
	bad := lineDataset()
	bad.X = bad.X[:1]
	if _, err := Extract(bad, 1); err == nil {
		t.Error("misaligned dataset should fail")
	}
}

func TestValid(t *testing.T) {
	a, b := Valid([]float64{1, nan, 3, 4}, []float64{5, 6, nan, 8})
	if diff := cmp.Diff([]float64{1, 4}, a); diff != "" {
		t.Errorf("a mismatch: %s", diff)
	}
	if diff := cmp.Diff([]float64{5, 8}, b); diff != "" {
		t.Errorf("b mismatch: %s", diff)
	}
}
