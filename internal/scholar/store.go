// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scholar

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/citemap/pkg/types"
)

const dbFile = "citations.db"

// Store persists fetched works, citing papers, and affiliation strings in
// a SQLite database under the data directory.
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates the citations database at dataDir/citations.db,
// creating the schema if needed.
func OpenStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS works (
			id TEXT PRIMARY KEY,
			title TEXT,
			date TEXT,
			cited_by_count INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS citing_papers (
			id TEXT PRIMARY KEY,
			cites_id TEXT NOT NULL REFERENCES works(id),
			title TEXT,
			authors TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS affiliations (
			paper_id TEXT NOT NULL REFERENCES citing_papers(id),
			raw TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_citing_cites_id ON citing_papers(cites_id)`,
		`CREATE INDEX IF NOT EXISTS idx_affiliations_paper ON affiliations(paper_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// UpsertWork stores or updates one of the tracked author's works.
func (s *Store) UpsertWork(ctx context.Context, w types.Work) error {
	dateStr := ""
	if !w.Date.IsZero() {
		dateStr = w.Date.Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO works (id, title, date, cited_by_count) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, date=excluded.date, cited_by_count=excluded.cited_by_count`,
		w.ID, w.Title, dateStr, w.CitedByCount,
	)
	if err != nil {
		return fmt.Errorf("upserting work %s: %w", w.ID, err)
	}
	return nil
}

// UpsertCitingPaper stores a citing paper and replaces its affiliation
// rows, so re-fetching a work is idempotent.
func (s *Store) UpsertCitingPaper(ctx context.Context, p types.CitingPaper) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	authorsJSON, _ := json.Marshal(p.Authors)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO citing_papers (id, cites_id, title, authors) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			cites_id=excluded.cites_id, title=excluded.title, authors=excluded.authors`,
		p.ID, p.CitesID, p.Title, string(authorsJSON),
	)
	if err != nil {
		return fmt.Errorf("upserting citing paper %s: %w", p.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM affiliations WHERE paper_id = ?`, p.ID); err != nil {
		return fmt.Errorf("clearing affiliations for %s: %w", p.ID, err)
	}
	for _, raw := range p.Affiliations {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO affiliations (paper_id, raw) VALUES (?, ?)`, p.ID, raw); err != nil {
			return fmt.Errorf("inserting affiliation for %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// Affiliations returns every distinct raw affiliation string with its
// occurrence count across all citing papers, sorted by the raw string.
func (s *Store) Affiliations(ctx context.Context) ([]string, map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT raw, COUNT(*) FROM affiliations GROUP BY raw ORDER BY raw`)
	if err != nil {
		return nil, nil, fmt.Errorf("querying affiliations: %w", err)
	}
	defer rows.Close()

	var raws []string
	counts := make(map[string]int)
	for rows.Next() {
		var raw string
		var n int
		if err := rows.Scan(&raw, &n); err != nil {
			return nil, nil, fmt.Errorf("scanning affiliation: %w", err)
		}
		raws = append(raws, raw)
		counts[raw] = n
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading affiliations: %w", err)
	}
	return raws, counts, nil
}

// CitingCount returns the number of stored citing papers.
func (s *Store) CitingCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM citing_papers`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting citing papers: %w", err)
	}
	return n, nil
}
