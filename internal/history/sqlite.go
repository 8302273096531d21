package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps history in a local SQLite database
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// 단일 writer
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS grade_snapshot (
		snapshot_date TEXT PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS grade_history (
		snapshot_date TEXT NOT NULL,
		student_id    INTEGER NOT NULL,
		name          TEXT NOT NULL DEFAULT '',
		average       REAL,
		courses       TEXT NOT NULL DEFAULT '[]',
		PRIMARY KEY (snapshot_date, student_id)
	);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reads every snapshot; an empty table is an empty history
func (s *SQLiteStore) Load(ctx context.Context) (History, error) {
	h, err := s.loadDates(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT snapshot_date, student_id, name, average, courses
		FROM grade_history
		ORDER BY snapshot_date, student_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query grade history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			row     recordRow
			average sql.NullFloat64
			courses string
		)
		if err := rows.Scan(&row.Date, &row.StudentID, &row.Name, &average, &courses); err != nil {
			return nil, fmt.Errorf("scan grade history: %w", err)
		}
		if average.Valid {
			v := average.Float64
			row.Average = &v
		}
		row.Courses = []byte(courses)

		if err := addRow(h, row); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grade history: %w", err)
	}

	return h, nil
}

func (s *SQLiteStore) loadDates(ctx context.Context) (History, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT snapshot_date FROM grade_snapshot`)
	if err != nil {
		return nil, fmt.Errorf("query snapshot dates: %w", err)
	}
	defer rows.Close()

	h := make(History)
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("scan snapshot date: %w", err)
		}
		if err := addDate(h, date); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot dates: %w", err)
	}
	return h, nil
}

// PutSnapshot replaces all rows for date in one transaction
func (s *SQLiteStore) PutSnapshot(ctx context.Context, date string, snap Snapshot) error {
	if err := ValidateDate(date); err != nil {
		return err
	}

	records, err := toRows(date, snap)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO grade_snapshot (snapshot_date) VALUES (?)`, date); err != nil {
		return fmt.Errorf("record snapshot %s: %w", date, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM grade_history WHERE snapshot_date = ?`, date); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", date, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO grade_history (snapshot_date, student_id, name, average, courses)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		var average sql.NullFloat64
		if r.Average != nil {
			average = sql.NullFloat64{Float64: *r.Average, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, r.Date, r.StudentID, r.Name, average, string(r.Courses)); err != nil {
			return fmt.Errorf("insert student %d: %w", r.StudentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot %s: %w", date, err)
	}
	return nil
}
