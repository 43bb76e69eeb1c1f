package simulator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDataset is returned by New for unusable source data.
	ErrInvalidDataset = errors.New("invalid source dataset")
	// ErrNotInitialized is returned when sampling before Initialize.
	ErrNotInitialized = errors.New("generator not initialized")
	// ErrModelDegenerate matches *ModelDegenerateError.
	ErrModelDegenerate = errors.New("model degenerate")
)

// ModelDegenerateError reports that a trajectory step exhausted its retry
// budget drawing only negative saccade lengths.
type ModelDegenerateError struct {
	Step    int // index of the saccade being drawn
	Retries int
}

func (e *ModelDegenerateError) Error() string {
	return fmt.Sprintf("model degenerate: step %d drew %d negative-length saccades in a row", e.Step, e.Retries)
}

// Is makes errors.Is(err, ErrModelDegenerate) match.
func (e *ModelDegenerateError) Is(target error) bool {
	return target == ErrModelDegenerate
}
