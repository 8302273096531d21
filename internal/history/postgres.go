package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps one row per (date, student) in grade_history
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a store on an existing pool
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the history tables if they do not exist
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	snapshots := `
		CREATE TABLE IF NOT EXISTS grade_snapshot (
			snapshot_date DATE PRIMARY KEY,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := s.db.Exec(ctx, snapshots); err != nil {
		return fmt.Errorf("create grade_snapshot: %w", err)
	}

	query := `
		CREATE TABLE IF NOT EXISTS grade_history (
			snapshot_date DATE NOT NULL,
			student_id    BIGINT NOT NULL,
			name          TEXT NOT NULL DEFAULT '',
			average       DOUBLE PRECISION,
			courses       JSONB NOT NULL DEFAULT '[]',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (snapshot_date, student_id)
		)
	`
	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create grade_history: %w", err)
	}
	return nil
}

// Load reads every snapshot; an empty table is an empty history
func (s *PostgresStore) Load(ctx context.Context) (History, error) {
	h, err := s.loadDates(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT
			snapshot_date,
			student_id,
			name,
			average,
			courses
		FROM grade_history
		ORDER BY snapshot_date, student_id
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query grade history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			row  recordRow
			date time.Time
		)
		if err := rows.Scan(&date, &row.StudentID, &row.Name, &row.Average, &row.Courses); err != nil {
			return nil, fmt.Errorf("scan grade history: %w", err)
		}
		row.Date = date.Format(DateLayout)

		if err := addRow(h, row); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grade history: %w", err)
	}

	return h, nil
}

func (s *PostgresStore) loadDates(ctx context.Context) (History, error) {
	rows, err := s.db.Query(ctx, `SELECT snapshot_date FROM grade_snapshot`)
	if err != nil {
		return nil, fmt.Errorf("query snapshot dates: %w", err)
	}
	defer rows.Close()

	h := make(History)
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("scan snapshot date: %w", err)
		}
		if err := addDate(h, date.Format(DateLayout)); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot dates: %w", err)
	}
	return h, nil
}

// PutSnapshot replaces all rows for date in one transaction
func (s *PostgresStore) PutSnapshot(ctx context.Context, date string, snap Snapshot) error {
	if err := ValidateDate(date); err != nil {
		return err
	}
	day, _ := time.Parse(DateLayout, date)

	records, err := toRows(date, snap)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO grade_snapshot (snapshot_date) VALUES ($1)
		ON CONFLICT (snapshot_date) DO NOTHING
	`, day); err != nil {
		return fmt.Errorf("record snapshot %s: %w", date, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM grade_history WHERE snapshot_date = $1`, day); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", date, err)
	}

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO grade_history (snapshot_date, student_id, name, average, courses)
			VALUES ($1, $2, $3, $4, $5)
		`, day, r.StudentID, r.Name, r.Average, string(r.Courses))
	}

	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert snapshot %s: %w", date, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit snapshot %s: %w", date, err)
	}
	return nil
}
