package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/ayusman/physioflow/internal/engine"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Calibration is a per-exercise threshold override computed from a
// calibration run.
type Calibration struct {
	Exercise   engine.Exercise
	Thresholds engine.Thresholds
	UpdatedAt  time.Time
}

// CalibrationRepository provides CRUD operations for calibrations.
type CalibrationRepository struct {
	db *sql.DB
}

// Calibrations returns the calibration repository for this store.
func (s *Store) Calibrations() *CalibrationRepository {
	return &CalibrationRepository{db: s.db}
}

// Upsert stores the calibration for an exercise, replacing any previous one.
func (r *CalibrationRepository) Upsert(c *Calibration) error {
	c.UpdatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO calibrations (exercise, start_center, start_min, start_max, target, tolerance, hold_time_ms, computed_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(exercise) DO UPDATE SET
			start_center = excluded.start_center,
			start_min = excluded.start_min,
			start_max = excluded.start_max,
			target = excluded.target,
			tolerance = excluded.tolerance,
			hold_time_ms = excluded.hold_time_ms,
			computed_at = excluded.computed_at,
			updated_at = excluded.updated_at`,
		string(c.Exercise),
		c.Thresholds.Start.Center, c.Thresholds.Start.Min, c.Thresholds.Start.Max,
		c.Thresholds.Target, c.Thresholds.Tolerance,
		c.Thresholds.HoldTime.Milliseconds(), c.Thresholds.ComputedAt, c.UpdatedAt,
	)
	return err
}

// Get retrieves the calibration for an exercise.
func (r *CalibrationRepository) Get(ex engine.Exercise) (*Calibration, error) {
	c := &Calibration{Exercise: ex}
	var holdMs int64

	err := r.db.QueryRow(
		`SELECT start_center, start_min, start_max, target, tolerance, hold_time_ms, computed_at, updated_at
		 FROM calibrations WHERE exercise = ?`,
		string(ex),
	).Scan(
		&c.Thresholds.Start.Center, &c.Thresholds.Start.Min, &c.Thresholds.Start.Max,
		&c.Thresholds.Target, &c.Thresholds.Tolerance,
		&holdMs, &c.Thresholds.ComputedAt, &c.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	c.Thresholds.HoldTime = time.Duration(holdMs) * time.Millisecond
	return c, nil
}

// List retrieves all stored calibrations.
func (r *CalibrationRepository) List() ([]*Calibration, error) {
	rows, err := r.db.Query(
		`SELECT exercise, start_center, start_min, start_max, target, tolerance, hold_time_ms, computed_at, updated_at
		 FROM calibrations ORDER BY exercise`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calibrations []*Calibration
	for rows.Next() {
		c := &Calibration{}
		var exercise string
		var holdMs int64

		err := rows.Scan(
			&exercise,
			&c.Thresholds.Start.Center, &c.Thresholds.Start.Min, &c.Thresholds.Start.Max,
			&c.Thresholds.Target, &c.Thresholds.Tolerance,
			&holdMs, &c.Thresholds.ComputedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		c.Exercise = engine.Exercise(exercise)
		c.Thresholds.HoldTime = time.Duration(holdMs) * time.Millisecond
		calibrations = append(calibrations, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return calibrations, nil
}

// Delete removes the calibration for an exercise, returning the exercise to
// its default thresholds.
func (r *CalibrationRepository) Delete(ex engine.Exercise) error {
	result, err := r.db.Exec(`DELETE FROM calibrations WHERE exercise = ?`, string(ex))
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
