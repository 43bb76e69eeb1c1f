// Package units converts between screen pixels and degrees of visual angle.
package units

import "math"

// PixelsToDegrees converts a pixel distance to degrees of visual angle.
func PixelsToDegrees(px, pixelsPerDegree float64) float64 {
	return px / pixelsPerDegree
}

// DegreesToPixels converts degrees of visual angle to a pixel distance.
func DegreesToPixels(deg, pixelsPerDegree float64) float64 {
	return deg * pixelsPerDegree
}

// ScreenDiagonalPixels returns the image diagonal in pixels, rounded up.
func ScreenDiagonalPixels(height, width int) int {
	return int(math.Ceil(math.Hypot(float64(height), float64(width))))
}

// ScreenDiagonalDegrees returns the image diagonal in degrees of visual
// angle, rounded up.
func ScreenDiagonalDegrees(height, width int, pixelsPerDegree float64) int {
	return int(math.Ceil(math.Hypot(float64(height), float64(width)) / pixelsPerDegree))
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }
