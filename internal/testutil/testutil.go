// Package testutil provides shared test utilities and fixtures.
//
// This package centralises fixture datasets and assertion helpers used
// across the generator, storage and report tests.
package testutil

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/banshee-data/fixgen/internal/fixmat"
)

// DefaultParams is a small display used by fixtures.
var DefaultParams = fixmat.Params{ImageHeight: 100, ImageWidth: 100, PixelsPerDegree: 1}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertInDelta fails the test if got and want differ by more than delta.
func AssertInDelta(t testing.TB, name string, got, want, delta float64) {
	t.Helper()
	if math.Abs(got-want) > delta {
		t.Errorf("%s = %g, want %g (±%g)", name, got, want, delta)
	}
}

// NewFixmat builds a dataset from trajectories of (x, y) points, numbering
// fixations from 1 within each trajectory.
func NewFixmat(p fixmat.Params, trajectories ...[][2]float64) *fixmat.Fixmat {
	return NewFixmatFrom(1, p, trajectories...)
}

// NewFixmatFrom is NewFixmat with fixation numbering starting at first.
func NewFixmatFrom(first int, p fixmat.Params, trajectories ...[][2]float64) *fixmat.Fixmat {
	fm := &fixmat.Fixmat{Params: p}
	for ti, traj := range trajectories {
		for i, pt := range traj {
			fm.Fix = append(fm.Fix, first+i)
			fm.X = append(fm.X, pt[0])
			fm.Y = append(fm.Y, pt[1])
			fm.Trajectory = append(fm.Trajectory, ti)
		}
	}
	return fm
}

// Line returns n points starting at (x, y) spaced by (dx, dy).
func Line(x, y, dx, dy float64, n int) [][2]float64 {
	out := make([][2]float64, n)
	for i := range out {
		out[i] = [2]float64{x + float64(i)*dx, y + float64(i)*dy}
	}
	return out
}

// RandomWalks returns n trajectories of the given length inside the
// display, with step lengths and turns drawn from src. Useful as a
// realistic-looking source dataset.
func RandomWalks(src rand.Source, p fixmat.Params, n, length int) [][][2]float64 {
	return Walks(src, p, n, length, 5, 20)
}

// Walks is RandomWalks with steps drawn uniformly from [minStep, maxStep)
// pixels.
func Walks(src rand.Source, p fixmat.Params, n, length int, minStep, maxStep float64) [][][2]float64 {
	r := rand.New(src)
	w, h := float64(p.ImageWidth), float64(p.ImageHeight)
	out := make([][][2]float64, n)
	for t := range out {
		x := math.Floor(r.Float64() * w)
		y := math.Floor(r.Float64() * h)
		heading := r.Float64() * 2 * math.Pi
		traj := [][2]float64{{x, y}}
		for len(traj) < length {
			heading += r.NormFloat64() * 0.8
			step := minStep + r.Float64()*(maxStep-minStep)
			nx := x + math.Cos(heading)*step
			ny := y + math.Sin(heading)*step
			if nx < 0 || nx > w || ny < 0 || ny > h {
				heading += math.Pi
				continue
			}
			x, y = nx, ny
			traj = append(traj, [2]float64{x, y})
		}
		out[t] = traj
	}
	return out
}

// Source returns a deterministic random source.
func Source(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}
