package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/ayusman/physioflow/internal/engine"
)

// Session is a completed exercise session summary with its per-rep
// accuracy scores.
type Session struct {
	ID             string
	Exercise       engine.Exercise
	StartedAt      time.Time
	EndedAt        time.Time
	Reps           int
	CompletedHolds int
	BrokenAttempts int
	LongestHold    time.Duration
	MeanAccuracy   float64
	AccuracyStdDev float64
	RepAccuracies  []float64
	CreatedAt      time.Time
}

// SessionRepository provides CRUD operations for sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a session and its per-rep accuracies in one transaction.
func (r *SessionRepository) Create(sess *Session) error {
	sess.CreatedAt = time.Now()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO sessions (id, exercise, started_at, ended_at, reps, completed_holds, broken_attempts, longest_hold_ms, mean_accuracy, accuracy_stddev, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, string(sess.Exercise), sess.StartedAt, sess.EndedAt,
		sess.Reps, sess.CompletedHolds, sess.BrokenAttempts,
		sess.LongestHold.Milliseconds(), sess.MeanAccuracy, sess.AccuracyStdDev, sess.CreatedAt,
	)
	if err != nil {
		return err
	}

	for i, accuracy := range sess.RepAccuracies {
		_, err = tx.Exec(
			`INSERT INTO session_reps (session_id, rep_index, accuracy) VALUES (?, ?, ?)`,
			sess.ID, i, accuracy,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID retrieves a session and its per-rep accuracies.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess := &Session{}
	var exercise string
	var longestMs int64

	err := r.db.QueryRow(
		`SELECT id, exercise, started_at, ended_at, reps, completed_holds, broken_attempts, longest_hold_ms, mean_accuracy, accuracy_stddev, created_at
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(
		&sess.ID, &exercise, &sess.StartedAt, &sess.EndedAt,
		&sess.Reps, &sess.CompletedHolds, &sess.BrokenAttempts,
		&longestMs, &sess.MeanAccuracy, &sess.AccuracyStdDev, &sess.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	sess.Exercise = engine.Exercise(exercise)
	sess.LongestHold = time.Duration(longestMs) * time.Millisecond

	rows, err := r.db.Query(
		`SELECT accuracy FROM session_reps WHERE session_id = ? ORDER BY rep_index`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var accuracy float64
		if err := rows.Scan(&accuracy); err != nil {
			return nil, err
		}
		sess.RepAccuracies = append(sess.RepAccuracies, accuracy)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sess, nil
}

// List retrieves recent sessions, newest first. An empty exercise matches
// every exercise; limit <= 0 means no limit.
func (r *SessionRepository) List(ex engine.Exercise, limit int) ([]*Session, error) {
	query := `SELECT id, exercise, started_at, ended_at, reps, completed_holds, broken_attempts, longest_hold_ms, mean_accuracy, accuracy_stddev, created_at
		 FROM sessions`
	var args []any

	if ex != "" {
		query += ` WHERE exercise = ?`
		args = append(args, string(ex))
	}
	query += ` ORDER BY started_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess := &Session{}
		var exercise string
		var longestMs int64

		err := rows.Scan(
			&sess.ID, &exercise, &sess.StartedAt, &sess.EndedAt,
			&sess.Reps, &sess.CompletedHolds, &sess.BrokenAttempts,
			&longestMs, &sess.MeanAccuracy, &sess.AccuracyStdDev, &sess.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		sess.Exercise = engine.Exercise(exercise)
		sess.LongestHold = time.Duration(longestMs) * time.Millisecond
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// Delete removes a session and, via the foreign key, its per-rep scores.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
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
