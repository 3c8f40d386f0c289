package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Calibrations table - per-exercise threshold overrides computed
		// from a calibration run
		`CREATE TABLE IF NOT EXISTS calibrations (
			exercise TEXT PRIMARY KEY,
			start_center REAL NOT NULL,
			start_min REAL NOT NULL,
			start_max REAL NOT NULL,
			target REAL NOT NULL,
			tolerance REAL NOT NULL,
			hold_time_ms INTEGER NOT NULL DEFAULT 0,
			computed_at DATETIME NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Sessions table - one row per completed exercise session
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			exercise TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			ended_at DATETIME NOT NULL,
			reps INTEGER NOT NULL DEFAULT 0,
			completed_holds INTEGER NOT NULL DEFAULT 0,
			broken_attempts INTEGER NOT NULL DEFAULT 0,
			longest_hold_ms INTEGER NOT NULL DEFAULT 0,
			mean_accuracy REAL NOT NULL DEFAULT 0,
			accuracy_stddev REAL NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Session reps table - per-rep accuracy scores within a session
		`CREATE TABLE IF NOT EXISTS session_reps (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			rep_index INTEGER NOT NULL,
			accuracy REAL NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_sessions_exercise ON sessions(exercise)`,
		`CREATE INDEX IF NOT EXISTS idx_session_reps_session_id ON session_reps(session_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
