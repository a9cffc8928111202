// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pdf-ocr/pkg/types"
)

// SQLiteRecorder appends records to a "tracking" table.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenSQLite opens or creates the ledger database at path.
func OpenSQLite(path string) (*SQLiteRecorder, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS tracking (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL,
		page_count INTEGER NOT NULL,
		processing_date TEXT NOT NULL,
		cost_usd REAL NOT NULL,
		output_path TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger schema: %w", err)
	}
	return &SQLiteRecorder{db: db}, nil
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening ledger database %s: %w", path, err)
	}
	return db, nil
}

// Record inserts one row.
func (s *SQLiteRecorder) Record(ctx context.Context, rec types.TrackingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tracking (filename, page_count, processing_date, cost_usd, output_path) VALUES (?, ?, ?, ?, ?)`,
		rec.Filename, rec.PageCount, rec.ProcessedAt.Format(dateLayout), rec.CostUSD, rec.OutputPath)
	if err != nil {
		return fmt.Errorf("inserting ledger record for %s: %w", rec.Filename, err)
	}
	return nil
}

// Close releases the database connection.
func (s *SQLiteRecorder) Close() error {
	return s.db.Close()
}

func summarizeSQLite(ctx context.Context, path string) (Summary, error) {
	db, err := openDB(path)
	if err != nil {
		return Summary{}, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT page_count, cost_usd, processing_date FROM tracking ORDER BY id`)
	if err != nil {
		return Summary{}, fmt.Errorf("querying ledger %s: %w", path, err)
	}
	defer rows.Close()

	var s Summary
	for rows.Next() {
		var (
			pages int
			cost  float64
			date  string
		)
		if err := rows.Scan(&pages, &cost, &date); err != nil {
			return Summary{}, fmt.Errorf("scanning ledger row: %w", err)
		}
		at, _ := time.Parse(dateLayout, date)
		s.add(pages, cost, at)
	}
	return s, rows.Err()
}
