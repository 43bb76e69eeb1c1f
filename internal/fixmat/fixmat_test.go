package fixmat

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var testParams = Params{ImageHeight: 60, ImageWidth: 80, PixelsPerDegree: 10}

func twoTrajectories() *Fixmat {
	return &Fixmat{
		Fix:    []int{1, 2, 3, 1, 2, 3},
		X:      []float64{0, 3, 6, 10, 10, 10},
		Y:      []float64{0, 4, 8, 10, 20, 30},
		Params: testParams,
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		p       Params
		wantErr bool
	}{
		{"valid", testParams, false},
		{"zero width", Params{ImageHeight: 10, PixelsPerDegree: 1}, true},
		{"negative height", Params{ImageHeight: -1, ImageWidth: 10, PixelsPerDegree: 1}, true},
		{"zero scale", Params{ImageHeight: 10, ImageWidth: 10}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Errorf("error %v does not wrap ErrInvalid", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := twoTrajectories().Validate(); err != nil {
		t.Fatalf("valid dataset rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Fixmat)
	}{
		{"empty", func(fm *Fixmat) { fm.Fix, fm.X, fm.Y = nil, nil, nil }},
		{"misaligned x", func(fm *Fixmat) { fm.X = fm.X[:2] }},
		{"misaligned trajectory", func(fm *Fixmat) { fm.Trajectory = []int{0} }},
		{"not increasing", func(fm *Fixmat) { fm.Fix[2] = 2 }},
		{"starts mid trajectory", func(fm *Fixmat) { fm.Fix[0] = 2; fm.Fix[1] = 3; fm.Fix[2] = 4 }},
		{"bad params", func(fm *Fixmat) { fm.PixelsPerDegree = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm := twoTrajectories()
			tt.mutate(fm)
			if err := fm.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestFirstFixCentered(t *testing.T) {
	fm := twoTrajectories()
	if fm.FirstFixCentered() {
		t.Error("dataset starting at 1 reported as centred")
	}
	for i := range fm.Fix {
		fm.Fix[i]++
	}
	if !fm.FirstFixCentered() {
		t.Error("dataset starting at 2 not reported as centred")
	}
}

func TestTrajectoryStarts(t *testing.T) {
	fm := twoTrajectories()
	want := []bool{true, false, false, true, false, false}
	if diff := cmp.Diff(want, fm.TrajectoryStarts()); diff != "" {
		t.Errorf("TrajectoryStarts() mismatch (-want +got):\n%s", diff)
	}
	if got := fm.NumTrajectories(); got != 2 {
		t.Errorf("NumTrajectories() = %d, want 2", got)
	}
}

func TestSelect(t *testing.T) {
	fm := twoTrajectories()
	got, err := fm.Select(fm.TrajectoryStarts())
	if err != nil {
		t.Fatal(err)
	}
	want := &Fixmat{Fix: []int{1, 1}, X: []float64{0, 10}, Y: []float64{0, 10}, Params: testParams}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Select() mismatch (-want +got):\n%s", diff)
	}

	if _, err := fm.Select([]bool{true}); !errors.Is(err, ErrInvalid) {
		t.Errorf("short mask error = %v, want ErrInvalid", err)
	}
}

func TestRoll(t *testing.T) {
	tests := []struct {
		r    int
		want []int
	}{
		{0, []int{1, 2, 3, 4}},
		{1, []int{4, 1, 2, 3}},
		{2, []int{3, 4, 1, 2}},
		{5, []int{4, 1, 2, 3}},
		{-1, []int{2, 3, 4, 1}},
	}
	in := []int{1, 2, 3, 4}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, RollInt(in, tt.r)); diff != "" {
			t.Errorf("RollInt(%v, %d) mismatch (-want +got):\n%s", in, tt.r, diff)
		}
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4}, in); diff != "" {
		t.Errorf("Roll mutated its input: %s", diff)
	}
	if got := RollFloat(nil, 3); len(got) != 0 {
		t.Errorf("RollFloat(nil) = %v, want empty", got)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	fm := twoTrajectories()
	fm.Trajectory = []int{0, 0, 0, 1, 1, 1}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, fm); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "trajectory,fix,x,y\n") {
		t.Errorf("unexpected header in %q", buf.String())
	}
	got, err := ReadCSV(&buf, testParams)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(fm, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"missing column", "fix,x\n1,2\n"},
		{"bad fix", "fix,x,y\none,2,3\n"},
		{"bad x", "fix,x,y\n1,a,3\n"},
		{"empty body", "fix,x,y\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadCSV(strings.NewReader(tt.in), testParams); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestReadCSV_ColumnOrder(t *testing.T) {
	in := "Y, X, FIX\n4,3,1\n8,6,2\n"
	fm, err := ReadCSV(strings.NewReader(in), testParams)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float64{3, 6}, fm.X); diff != "" {
		t.Errorf("X mismatch: %s", diff)
	}
	if fm.Trajectory != nil {
		t.Errorf("Trajectory = %v, want nil", fm.Trajectory)
	}
}

func TestFromFields(t *testing.T) {
	fm, err := FromFields(Fields{Fix: []int{1, 2}, X: []float64{1, 2}, Y: []float64{3, 4}, Trajectory: []int{0, 0}}, testParams)
	if err != nil {
		t.Fatal(err)
	}
	if fm.Len() != 2 || fm.ImageWidth != 80 {
		t.Errorf("unexpected dataset %+v", fm)
	}
	if _, err := FromFields(Fields{Fix: []int{1}}, testParams); err == nil {
		t.Error("expected misaligned fields to fail")
	}
}
