package fixmat

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSV column names. fix, x and y are required; trajectory is optional.
const (
	ColFix        = "fix"
	ColX          = "x"
	ColY          = "y"
	ColTrajectory = "trajectory"
)

// ReadCSV parses a dataset from CSV with a header row. Column order is free.
func ReadCSV(r io.Reader, p Params) (*Fixmat, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, req := range []string{ColFix, ColX, ColY} {
		if _, ok := cols[req]; !ok {
			return nil, fmt.Errorf("%w: CSV missing %q column", ErrInvalid, req)
		}
	}
	trajCol, hasTraj := cols[ColTrajectory]

	fm := &Fixmat{Params: p}
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}
		fix, err := strconv.Atoi(rec[cols[ColFix]])
		if err != nil {
			return nil, fmt.Errorf("failed to parse fix on line %d: %w", line, err)
		}
		x, err := strconv.ParseFloat(rec[cols[ColX]], 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse x on line %d: %w", line, err)
		}
		y, err := strconv.ParseFloat(rec[cols[ColY]], 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse y on line %d: %w", line, err)
		}
		fm.Fix = append(fm.Fix, fix)
		fm.X = append(fm.X, x)
		fm.Y = append(fm.Y, y)
		if hasTraj {
			traj, err := strconv.Atoi(rec[trajCol])
			if err != nil {
				return nil, fmt.Errorf("failed to parse trajectory on line %d: %w", line, err)
			}
			fm.Trajectory = append(fm.Trajectory, traj)
		}
	}

	if err := fm.Validate(); err != nil {
		return nil, err
	}
	return fm, nil
}

// WriteCSV writes the dataset with a header row. The trajectory column is
// written only when the dataset carries it.
func WriteCSV(w io.Writer, fm *Fixmat) error {
	cw := csv.NewWriter(w)
	header := []string{ColTrajectory, ColFix, ColX, ColY}
	if fm.Trajectory == nil {
		header = header[1:]
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i := range fm.Fix {
		rec := make([]string, 0, 4)
		if fm.Trajectory != nil {
			rec = append(rec, strconv.Itoa(fm.Trajectory[i]))
		}
		rec = append(rec,
			strconv.Itoa(fm.Fix[i]),
			strconv.FormatFloat(fm.X[i], 'f', -1, 64),
			strconv.FormatFloat(fm.Y[i], 'f', -1, 64),
		)
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
