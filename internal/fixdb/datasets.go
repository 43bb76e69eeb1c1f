package fixdb

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/fixgen/internal/fixmat"
)

// DatasetInfo describes a stored dataset without its fixations.
type DatasetInfo struct {
	ID           string
	Name         string
	Params       fixmat.Params
	NumFixations int
	CreatedAt    time.Time
}

// SaveDataset stores fm under a new id and returns the id.
func (db *DB) SaveDataset(name string, fm *fixmat.Fixmat) (string, error) {
	if err := fm.Validate(); err != nil {
		return "", fmt.Errorf("save dataset %q: %w", name, err)
	}
	id := uuid.NewString()

	tx, err := db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO datasets (dataset_id, name, image_width, image_height, pixels_per_degree, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, name, fm.ImageWidth, fm.ImageHeight, fm.PixelsPerDegree, db.clock.Now().Unix())
	if err != nil {
		return "", fmt.Errorf("failed to insert dataset: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO fixations (dataset_id, position, trajectory, fix, x, y)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i := range fm.Fix {
		var traj sql.NullInt64
		if fm.Trajectory != nil {
			traj = sql.NullInt64{Int64: int64(fm.Trajectory[i]), Valid: true}
		}
		if _, err := stmt.Exec(id, i, traj, fm.Fix[i], fm.X[i], fm.Y[i]); err != nil {
			return "", fmt.Errorf("failed to insert fixation %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// LoadDataset reads the dataset stored under id.
func (db *DB) LoadDataset(id string) (*fixmat.Fixmat, error) {
	var p fixmat.Params
	err := db.QueryRow(`
		SELECT image_width, image_height, pixels_per_degree
		FROM datasets WHERE dataset_id = ?`, id).
		Scan(&p.ImageWidth, &p.ImageHeight, &p.PixelsPerDegree)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("dataset %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT trajectory, fix, x, y FROM fixations
		WHERE dataset_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var f fixmat.Fields
	hasTrajectory := true
	for rows.Next() {
		var (
			traj sql.NullInt64
			fix  int
			x, y float64
		)
		if err := rows.Scan(&traj, &fix, &x, &y); err != nil {
			return nil, err
		}
		f.Fix = append(f.Fix, fix)
		f.X = append(f.X, x)
		f.Y = append(f.Y, y)
		f.Trajectory = append(f.Trajectory, int(traj.Int64))
		hasTrajectory = hasTrajectory && traj.Valid
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if !hasTrajectory {
		f.Trajectory = nil
	}
	return fixmat.FromFields(f, p)
}

// ListDatasets returns all stored datasets, oldest first.
func (db *DB) ListDatasets() ([]DatasetInfo, error) {
	rows, err := db.Query(`
		SELECT d.dataset_id, d.name, d.image_width, d.image_height, d.pixels_per_degree,
		       d.created_at, COUNT(f.position)
		FROM datasets d
		LEFT JOIN fixations f ON f.dataset_id = d.dataset_id
		GROUP BY d.dataset_id
		ORDER BY d.created_at, d.rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DatasetInfo
	for rows.Next() {
		var (
			d       DatasetInfo
			created int64
		)
		if err := rows.Scan(&d.ID, &d.Name, &d.Params.ImageWidth, &d.Params.ImageHeight,
			&d.Params.PixelsPerDegree, &created, &d.NumFixations); err != nil {
			return nil, err
		}
		d.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, d)
	}
	return out, rows.Err()
}
