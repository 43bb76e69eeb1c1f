// Package saccade extracts saccade features (lengths, angles and their
// differences between consecutive saccades) from fixation datasets.
package saccade

import "math"

// Reshift maps an angle or angle difference in degrees into [-180, 180] by
// adding or subtracting whole turns. Values already in range are returned
// unchanged; NaN and infinities pass through.
func Reshift(a float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return a
	}
	if a > 180 || a < -180 {
		// Strip whole turns first so huge inputs do not loop for long.
		if turns := math.Trunc(a / 360); math.Abs(turns) > 1 {
			a -= (turns - math.Copysign(1, turns)) * 360
		}
	}
	for a > 180 {
		a -= 360
	}
	for a < -180 {
		a += 360
	}
	return a
}

// ReshiftAll applies Reshift elementwise and returns a new slice.
func ReshiftAll(as []float64) []float64 {
	out := make([]float64, len(as))
	for i, a := range as {
		out[i] = Reshift(a)
	}
	return out
}
