package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS calendar_entries (
			id          TEXT PRIMARY KEY,
			owner_id    TEXT NOT NULL,
			title       TEXT NOT NULL,
			category    TEXT NOT NULL CHECK(category IN ('work', 'meeting', 'appointment', 'workout', 'meal', 'reading', 'sleep', 'free_time')),
			kind        TEXT NOT NULL CHECK(kind IN ('recurring', 'one_off')),
			weekdays    TEXT NOT NULL DEFAULT '',
			valid_from  DATE,
			valid_to    DATE,
			start_time  TEXT,
			end_time    TEXT,
			flexible    INTEGER NOT NULL DEFAULT 1,
			priority    INTEGER NOT NULL DEFAULT 5 CHECK(priority BETWEEN 1 AND 10),
			created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_entries_owner ON calendar_entries(owner_id, valid_from, valid_to);

		CREATE TABLE IF NOT EXISTS daily_plans (
			owner_id    TEXT NOT NULL,
			plan_date   DATE NOT NULL,
			created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (owner_id, plan_date)
		);

		CREATE TABLE IF NOT EXISTS plan_items (
			id               TEXT PRIMARY KEY,
			owner_id         TEXT NOT NULL,
			plan_date        DATE NOT NULL,
			kind             TEXT NOT NULL CHECK(kind IN ('workout', 'meal', 'reading')),
			title            TEXT NOT NULL,
			scheduled_time   TEXT NOT NULL,
			duration_minutes INTEGER NOT NULL CHECK(duration_minutes > 0),
			done             INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (owner_id, plan_date) REFERENCES daily_plans(owner_id, plan_date) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_plan_items_plan ON plan_items(owner_id, plan_date);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_plan_items_single
			ON plan_items(owner_id, plan_date, kind) WHERE kind IN ('workout', 'reading');
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	return nil
}
