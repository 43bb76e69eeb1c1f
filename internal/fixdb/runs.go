package fixdb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run records one generation: the source dataset, the stored output (if
// any), and the generator counters at the end of sampling.
type Run struct {
	ID            string
	SourceID      string
	OutputID      string // empty when the output was not stored
	Seed          uint64
	NumSamples    int
	MinusSaccades int
	Canceled      int
	CreatedAt     time.Time
}

// RecordRun stores r under a new id and returns the id. ID and CreatedAt
// on r are ignored.
func (db *DB) RecordRun(r Run) (string, error) {
	if r.SourceID == "" {
		return "", fmt.Errorf("record run: source id is required")
	}
	id := uuid.NewString()
	var output sql.NullString
	if r.OutputID != "" {
		output = sql.NullString{String: r.OutputID, Valid: true}
	}
	_, err := db.Exec(`
		INSERT INTO generation_runs (run_id, source_dataset_id, output_dataset_id, seed,
			num_samples, minus_saccades, canceled, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, r.SourceID, output, int64(r.Seed), r.NumSamples, r.MinusSaccades, r.Canceled,
		db.clock.Now().Unix())
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return id, nil
}

// ListRuns returns the runs generated from sourceID, oldest first.
func (db *DB) ListRuns(sourceID string) ([]Run, error) {
	rows, err := db.Query(`
		SELECT run_id, source_dataset_id, output_dataset_id, seed, num_samples,
		       minus_saccades, canceled, created_at
		FROM generation_runs
		WHERE source_dataset_id = ?
		ORDER BY created_at, rowid`, sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r       Run
			output  sql.NullString
			seed    int64
			created int64
		)
		if err := rows.Scan(&r.ID, &r.SourceID, &output, &seed, &r.NumSamples,
			&r.MinusSaccades, &r.Canceled, &created); err != nil {
			return nil, err
		}
		r.OutputID = output.String
		r.Seed = uint64(seed)
		r.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}
