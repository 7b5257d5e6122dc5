// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/lifecoach/internal/agenda"
	"github.com/javiermolinar/lifecoach/internal/calendar"
	"github.com/javiermolinar/lifecoach/internal/dateutil"
	"github.com/javiermolinar/lifecoach/internal/plan"
	"github.com/javiermolinar/lifecoach/internal/timeofday"
)

// SQLite implements agenda.Store using SQLite.
type SQLite struct {
	db *sql.DB
}

var _ agenda.Store = (*SQLite)(nil)

// New creates a new SQLite repository and runs migrations.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// dsn enables foreign keys and a busy timeout on every pooled connection.
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}

const entryColumns = `id, owner_id, title, category, kind, weekdays, valid_from, valid_to,
	start_time, end_time, flexible, priority, created_at`

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertEntry(ctx context.Context, ex execer, e *calendar.Entry) error {
	query := `INSERT INTO calendar_entries (` + entryColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := ex.ExecContext(ctx, query,
		e.ID,
		e.OwnerID,
		e.Title,
		e.Category,
		e.Kind,
		dateutil.FormatWeekdays(e.Weekdays),
		nullDate(e.ValidFrom),
		nullDate(e.ValidTo),
		nullTime(e.Start),
		nullTime(e.End),
		e.Flexible,
		e.Priority,
		createdAt(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting entry %q: %w", e.Title, err)
	}
	return nil
}

// CreateEntry stores a new entry without any conflict resolution.
func (s *SQLite) CreateEntry(ctx context.Context, e *calendar.Entry) error {
	return insertEntry(ctx, s.db, e)
}

// GetEntry retrieves an owner's entry by ID.
func (s *SQLite) GetEntry(ctx context.Context, ownerID, id string) (*calendar.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM calendar_entries WHERE id = ? AND owner_id = ?`

	e, err := scanEntry(s.db.QueryRowContext(ctx, query, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, calendar.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying entry: %w", err)
	}
	return e, nil
}

// DeleteEntry removes an owner's entry.
func (s *SQLite) DeleteEntry(ctx context.Context, ownerID, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM calendar_entries WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	return expectOne(result, calendar.ErrEntryNotFound)
}

// ListEntries returns the owner's entries whose validity bounds intersect [from, to].
func (s *SQLite) ListEntries(ctx context.Context, ownerID string, from, to time.Time) ([]*calendar.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM calendar_entries
		WHERE owner_id = ?
		  AND (valid_from IS NULL OR valid_from <= ?)
		  AND (valid_to IS NULL OR valid_to >= ?)
		ORDER BY start_time, id
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID, dateutil.Format(to), dateutil.Format(from))
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*calendar.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	return entries, nil
}

// EntriesOn returns the owner's entries whose validity includes date.
// Weekday matching is left to calendar.NewDay.
func (s *SQLite) EntriesOn(ctx context.Context, ownerID string, date time.Time) ([]*calendar.Entry, error) {
	return s.ListEntries(ctx, ownerID, date, date)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*calendar.Entry, error) {
	var (
		e         calendar.Entry
		weekdays  string
		validFrom sql.NullString
		validTo   sql.NullString
		start     sql.NullString
		end       sql.NullString
		created   sql.NullString
	)

	err := row.Scan(
		&e.ID,
		&e.OwnerID,
		&e.Title,
		&e.Category,
		&e.Kind,
		&weekdays,
		&validFrom,
		&validTo,
		&start,
		&end,
		&e.Flexible,
		&e.Priority,
		&created,
	)
	if err != nil {
		return nil, err
	}

	if weekdays != "" {
		if e.Weekdays, err = dateutil.ParseWeekdays(weekdays); err != nil {
			return nil, fmt.Errorf("parsing weekdays: %w", err)
		}
	}
	if e.ValidFrom, err = parseNullDate(validFrom); err != nil {
		return nil, fmt.Errorf("parsing valid_from: %w", err)
	}
	if e.ValidTo, err = parseNullDate(validTo); err != nil {
		return nil, fmt.Errorf("parsing valid_to: %w", err)
	}
	e.Start = parseNullTime(start)
	e.End = parseNullTime(end)
	if created.Valid {
		e.CreatedAt, _ = time.Parse(time.RFC3339, created.String)
	}

	return &e, nil
}

// CreatePlan stores an empty daily plan. Creating an existing plan is a no-op.
func (s *SQLite) CreatePlan(ctx context.Context, p *plan.DailyPlan) error {
	query := `INSERT INTO daily_plans (owner_id, plan_date, created_at) VALUES (?, ?, ?)
		ON CONFLICT(owner_id, plan_date) DO NOTHING`

	_, err := s.db.ExecContext(ctx, query, p.OwnerID, dateutil.Format(p.Date), createdAt(time.Now()))
	if err != nil {
		return fmt.Errorf("inserting plan: %w", err)
	}
	return nil
}

// GetPlan returns the owner's plan for date with its items.
func (s *SQLite) GetPlan(ctx context.Context, ownerID string, date time.Time) (*plan.DailyPlan, error) {
	day := dateutil.Format(date)

	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM daily_plans WHERE owner_id = ? AND plan_date = ?`, ownerID, day,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, plan.ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying plan: %w", err)
	}

	query := `
		SELECT id, kind, title, scheduled_time, duration_minutes, done
		FROM plan_items
		WHERE owner_id = ? AND plan_date = ?
		ORDER BY scheduled_time, id
	`
	rows, err := s.db.QueryContext(ctx, query, ownerID, day)
	if err != nil {
		return nil, fmt.Errorf("querying plan items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	p := plan.NewDailyPlan(ownerID, date)
	for rows.Next() {
		var (
			it        plan.Item
			scheduled string
		)
		if err := rows.Scan(&it.ID, &it.Kind, &it.Title, &scheduled, &it.DurationMinutes, &it.Done); err != nil {
			return nil, fmt.Errorf("scanning plan item: %w", err)
		}
		if it.ScheduledTime, err = timeofday.Parse(scheduled); err != nil {
			return nil, fmt.Errorf("parsing scheduled time: %w", err)
		}
		it.OwnerID = ownerID
		it.Date = p.Date
		if err := p.Add(&it); err != nil {
			return nil, fmt.Errorf("loading plan item %s: %w", it.ID, err)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plan items: %w", err)
	}

	return p, nil
}

// AddItem stores a new item on an existing plan.
func (s *SQLite) AddItem(ctx context.Context, item *plan.Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	day := dateutil.Format(item.Date)

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM daily_plans WHERE owner_id = ? AND plan_date = ?`, item.OwnerID, day,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return plan.ErrPlanNotFound
	}
	if err != nil {
		return fmt.Errorf("querying plan: %w", err)
	}

	query := `
		INSERT INTO plan_items (id, owner_id, plan_date, kind, title, scheduled_time, duration_minutes, done)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		item.ID,
		item.OwnerID,
		day,
		item.Kind,
		item.Title,
		timeofday.FormatSeconds(item.ScheduledTime),
		item.Duration(),
		item.Done,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return plan.ErrDuplicateItem
		}
		return fmt.Errorf("inserting plan item %q: %w", item.Title, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// MarkDone flags an item as completed, eaten or ended.
func (s *SQLite) MarkDone(ctx context.Context, ownerID, itemID string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE plan_items SET done = 1 WHERE id = ? AND owner_id = ?`, itemID, ownerID)
	if err != nil {
		return fmt.Errorf("marking item done: %w", err)
	}
	return expectOne(result, plan.ErrItemNotFound)
}

// Apply writes a change set in a single transaction.
// If any entry or item to update is missing, nothing is written.
func (s *SQLite) Apply(ctx context.Context, cs agenda.ChangeSet) error {
	if cs.Empty() {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// 1. Relocated entries
	if len(cs.EntryMoves) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`UPDATE calendar_entries SET start_time = ?, end_time = ? WHERE id = ? AND owner_id = ?`)
		if err != nil {
			return fmt.Errorf("preparing statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, e := range cs.EntryMoves {
			result, err := stmt.ExecContext(ctx, timeofday.FormatSeconds(e.Start), timeofday.FormatSeconds(e.End), e.ID, e.OwnerID)
			if err != nil {
				return fmt.Errorf("relocating entry %s: %w", e.ID, err)
			}
			if err := expectOne(result, calendar.ErrEntryNotFound); err != nil {
				return fmt.Errorf("relocating entry %s: %w", e.ID, err)
			}
		}
	}

	// 2. Updated entry
	if e := cs.Replace; e != nil {
		query := `
			UPDATE calendar_entries
			SET title = ?, category = ?, kind = ?, weekdays = ?, valid_from = ?, valid_to = ?,
			    start_time = ?, end_time = ?, flexible = ?, priority = ?
			WHERE id = ? AND owner_id = ?
		`
		result, err := tx.ExecContext(ctx, query,
			e.Title,
			e.Category,
			e.Kind,
			dateutil.FormatWeekdays(e.Weekdays),
			nullDate(e.ValidFrom),
			nullDate(e.ValidTo),
			nullTime(e.Start),
			nullTime(e.End),
			e.Flexible,
			e.Priority,
			e.ID,
			e.OwnerID,
		)
		if err != nil {
			return fmt.Errorf("updating entry %s: %w", e.ID, err)
		}
		if err := expectOne(result, calendar.ErrEntryNotFound); err != nil {
			return err
		}
	}

	// 3. New entry
	if cs.Insert != nil {
		if err := insertEntry(ctx, tx, cs.Insert); err != nil {
			return err
		}
	}

	// 4. Plan item moves
	if len(cs.ItemMoves) > 0 {
		stmt, err := tx.PrepareContext(ctx, `UPDATE plan_items SET scheduled_time = ? WHERE id = ? AND owner_id = ?`)
		if err != nil {
			return fmt.Errorf("preparing statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, m := range cs.ItemMoves {
			result, err := stmt.ExecContext(ctx, timeofday.FormatSeconds(m.To), m.ItemID, m.OwnerID)
			if err != nil {
				return fmt.Errorf("moving plan item %s: %w", m.ItemID, err)
			}
			if err := expectOne(result, plan.ErrItemNotFound); err != nil {
				return fmt.Errorf("moving plan item %s: %w", m.ItemID, err)
			}
		}
	}

	// 5. Commit
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func expectOne(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func nullDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return dateutil.Format(t)
}

func nullTime(m int) any {
	if m < 0 {
		return nil
	}
	return timeofday.FormatSeconds(m)
}

func createdAt(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format(time.RFC3339)
}

// parseNullDate parses a stored date. Only the date part is kept, as UTC midnight.
func parseNullDate(s sql.NullString) (time.Time, error) {
	if !s.Valid || s.String == "" {
		return time.Time{}, nil
	}
	v := s.String
	if len(v) > len(dateutil.Layout) {
		v = v[:len(dateutil.Layout)]
	}
	return time.Parse(dateutil.Layout, v)
}

// parseNullTime parses a stored time. Missing or malformed values become calendar.NoTime.
func parseNullTime(s sql.NullString) int {
	if !s.Valid {
		return calendar.NoTime
	}
	m, err := timeofday.Parse(s.String)
	if err != nil {
		return calendar.NoTime
	}
	return m
}
