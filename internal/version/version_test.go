package version

import "testing"

func TestString(t *testing.T) {
	Version, GitSHA, BuildTime = "1.2.0", "abc123", "2026-01-02"
	defer func() { Version, GitSHA, BuildTime = "dev", "unknown", "unknown" }()

	want := "fixgen 1.2.0 (abc123, built 2026-01-02)"
	if got := String("fixgen"); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
