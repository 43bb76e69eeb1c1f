package fixmat

// Roll returns a copy of s shifted right by r positions with wrap-around,
// so that out[i] == s[(i-r) mod len(s)].
func Roll[T any](s []T, r int) []T {
	n := len(s)
	out := make([]T, n)
	if n == 0 {
		return out
	}
	r %= n
	if r < 0 {
		r += n
	}
	copy(out[r:], s[:n-r])
	copy(out[:r], s[n-r:])
	return out
}

// RollFloat is Roll specialised for float64 slices.
func RollFloat(s []float64, r int) []float64 { return Roll(s, r) }

// RollInt is Roll specialised for int slices.
func RollInt(s []int, r int) []int { return Roll(s, r) }

// RollBool is Roll specialised for masks.
func RollBool(s []bool, r int) []bool { return Roll(s, r) }
