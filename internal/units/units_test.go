package units

import (
	"math"
	"testing"
)

func TestPixelDegreeConversion(t *testing.T) {
	tests := []struct {
		name string
		px   float64
		ppd  float64
		deg  float64
	}{
		{"unit scale", 10, 1, 10},
		{"typical monitor", 90, 45, 2},
		{"zero", 0, 30, 0},
		{"negative difference", -45, 45, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PixelsToDegrees(tt.px, tt.ppd); math.Abs(got-tt.deg) > 1e-12 {
				t.Errorf("PixelsToDegrees(%g, %g) = %g, want %g", tt.px, tt.ppd, got, tt.deg)
			}
			if got := DegreesToPixels(tt.deg, tt.ppd); math.Abs(got-tt.px) > 1e-12 {
				t.Errorf("DegreesToPixels(%g, %g) = %g, want %g", tt.deg, tt.ppd, got, tt.px)
			}
		})
	}
}

func TestScreenDiagonal(t *testing.T) {
	if got := ScreenDiagonalPixels(3, 4); got != 5 {
		t.Errorf("ScreenDiagonalPixels(3, 4) = %d, want 5", got)
	}
	// hypot(960, 1280) = 1600
	if got := ScreenDiagonalPixels(960, 1280); got != 1600 {
		t.Errorf("ScreenDiagonalPixels(960, 1280) = %d, want 1600", got)
	}
	if got := ScreenDiagonalDegrees(960, 1280, 45); got != 36 {
		t.Errorf("ScreenDiagonalDegrees(960, 1280, 45) = %d, want 36", got)
	}
	if got := ScreenDiagonalPixels(1, 1); got != 2 {
		t.Errorf("ScreenDiagonalPixels(1, 1) = %d, want 2", got)
	}
}

func TestRadiansDegrees(t *testing.T) {
	if got := Radians(180); math.Abs(got-math.Pi) > 1e-12 {
		t.Errorf("Radians(180) = %g", got)
	}
	if got := Degrees(math.Pi / 2); math.Abs(got-90) > 1e-12 {
		t.Errorf("Degrees(pi/2) = %g", got)
	}
}
