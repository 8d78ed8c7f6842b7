// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store records collection runs and their papers in SQLite so
// earlier results can be listed, inspected and searched without querying
// the search sources again.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-miner/pkg/types"
)

// DefaultPath is used when no database path is configured.
const DefaultPath = "data/paper-miner.db"

// Store manages the run database.
type Store struct {
	db *sql.DB
}

// Run is one recorded collection run.
type Run struct {
	ID         int64     `json:"id" yaml:"id"`
	Query      string    `json:"query" yaml:"query"`
	Backend    string    `json:"backend" yaml:"backend"`
	Target     int       `json:"target" yaml:"target"`
	Accessions bool      `json:"accessions" yaml:"accessions"`
	Total      int       `json:"total" yaml:"total"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
}

// Open opens or creates the database at path, creating its directory and
// schema as needed.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
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
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			query TEXT NOT NULL,
			backend TEXT NOT NULL,
			target INTEGER NOT NULL,
			accessions INTEGER NOT NULL,
			total INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS papers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			authors TEXT,
			url TEXT,
			paper_url TEXT,
			citation_url TEXT,
			citation_count INTEGER,
			description TEXT,
			source TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS accessions (
			paper_id INTEGER NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			accession TEXT NOT NULL,
			PRIMARY KEY (paper_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_run_id ON papers(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_accessions_accession ON accessions(accession)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordRun stores a run and its papers in one transaction and returns the
// run ID. Paper order is preserved.
func (s *Store) RecordRun(ctx context.Context, run Run, papers []types.PaperWithAccessions) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (query, backend, target, accessions, total, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.Query, run.Backend, run.Target, run.Accessions, len(papers), run.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	paperStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO papers (run_id, position, title, authors, url, paper_url, citation_url, citation_count, description, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing paper insert: %w", err)
	}
	defer paperStmt.Close()

	accStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO accessions (paper_id, position, accession) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing accession insert: %w", err)
	}
	defer accStmt.Close()

	for i, p := range papers {
		authorsJSON, err := json.Marshal(p.Authors)
		if err != nil {
			return 0, fmt.Errorf("encoding authors of %q: %w", p.Title, err)
		}
		res, err := paperStmt.ExecContext(ctx,
			runID, i, p.Title, string(authorsJSON), p.URL, p.PaperURL,
			p.CitationURL, p.CitationCount, p.Description, p.Source,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting paper %q: %w", p.Title, err)
		}
		paperID, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("reading paper id: %w", err)
		}
		for j, acc := range p.AccessionNumbers {
			if _, err := accStmt.ExecContext(ctx, paperID, j, acc); err != nil {
				return 0, fmt.Errorf("inserting accession %s: %w", acc, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// ListRuns returns recorded runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, backend, target, accessions, total, created_at FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r       Run
			created string
		)
		if err := rows.Scan(&r.ID, &r.Query, &r.Backend, &r.Target, &r.Accessions, &r.Total, &created); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("parsing creation time of run %d: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Papers returns the papers of a run in collection order. An unknown run
// is an error.
func (s *Store) Papers(ctx context.Context, runID int64) ([]types.PaperWithAccessions, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM runs WHERE id = ?`, runID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("looking up run %d: %w", runID, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("run %d not found", runID)
	}
	return s.queryPapers(ctx, `WHERE p.run_id = ? ORDER BY p.position`, runID)
}

// Search returns papers from any run whose title or description contains
// term (case-insensitive), or that carry term as an accession number.
// Newest runs come first.
func (s *Store) Search(ctx context.Context, term string, limit int) ([]types.PaperWithAccessions, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + strings.ToLower(term) + "%"
	return s.queryPapers(ctx,
		`WHERE lower(p.title) LIKE ? OR lower(p.description) LIKE ?
		    OR p.id IN (SELECT paper_id FROM accessions WHERE accession = ?)
		 ORDER BY p.run_id DESC, p.position LIMIT ?`,
		like, like, strings.ToUpper(term), limit)
}

func (s *Store) queryPapers(ctx context.Context, where string, args ...any) ([]types.PaperWithAccessions, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.title, p.authors, p.url, p.paper_url, p.citation_url, p.citation_count, p.description, p.source,
			(SELECT group_concat(accession, ' ') FROM (SELECT accession FROM accessions a WHERE a.paper_id = p.id ORDER BY a.position))
		 FROM papers p `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	var papers []types.PaperWithAccessions
	for rows.Next() {
		var (
			id                                                    int64
			p                                                     types.PaperWithAccessions
			authorsJSON, url, paperURL, citationURL, desc, source sql.NullString
			accessions                                            sql.NullString
			citations                                             sql.NullInt64
		)
		if err := rows.Scan(&id, &p.Title, &authorsJSON, &url, &paperURL, &citationURL, &citations, &desc, &source, &accessions); err != nil {
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		if authorsJSON.Valid {
			if err := json.Unmarshal([]byte(authorsJSON.String), &p.Authors); err != nil {
				return nil, fmt.Errorf("decoding authors of paper %d: %w", id, err)
			}
		}
		p.URL, p.PaperURL, p.CitationURL = url.String, paperURL.String, citationURL.String
		p.Description, p.Source = desc.String, source.String
		p.CitationCount = int(citations.Int64)
		if accessions.Valid && accessions.String != "" {
			p.AccessionNumbers = strings.Fields(accessions.String)
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}
