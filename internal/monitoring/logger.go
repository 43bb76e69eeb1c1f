// Package monitoring carries the process-wide progress and diagnostic logger.
package monitoring

import (
	"log"
	"sync"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Progress reports completion of a counted job through Logf in steps of
// ten percent.
type Progress struct {
	mu       sync.Mutex
	label    string
	total    int
	done     int
	lastStep int
}

// NewProgress starts reporting for a job of total units.
func NewProgress(label string, total int) *Progress {
	Logf("%s: starting %d", label, total)
	return &Progress{label: label, total: total}
}

// Add records n more completed units.
func (p *Progress) Add(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done += n
	if p.total <= 0 {
		return
	}
	step := p.done * 10 / p.total
	if step > p.lastStep {
		p.lastStep = step
		Logf("%s: %d%% (%d/%d)", p.label, step*10, p.done, p.total)
	}
}

// Done returns the number of completed units.
func (p *Progress) Done() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}
