// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package kb is the local knowledge base: a SQLite library of paper
// references saved from finished assistant replies. It backs the KB
// gallery view and survives across sessions.
package kb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jeranaias/scholar-tui/internal/model"
)

// libraryFile is the database filename inside the scholar directory.
const libraryFile = "library.db"

const schema = `
CREATE TABLE IF NOT EXISTS papers (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	title     TEXT NOT NULL,
	url       TEXT NOT NULL UNIQUE,
	pdf_url   TEXT NOT NULL,
	abstract  TEXT NOT NULL DEFAULT '',
	saved_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_papers_title ON papers(title);
`

// Entry is a saved paper plus its library metadata.
type Entry struct {
	ID      int64
	Paper   model.PaperReference
	SavedAt time.Time
}

// Library stores paper references in a local SQLite database.
type Library struct {
	db *sql.DB
}

// DefaultPath returns the standard library location (~/.scholar/library.db).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".scholar", libraryFile), nil
}

// Open opens (creating if needed) the library at path.
func Open(path string) (*Library, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create library directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open library: %w", err)
	}

	// Single-writer local database; WAL keeps reads cheap while saving.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to configure library: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Library{db: db}, nil
}

// Close releases the database.
func (l *Library) Close() error {
	return l.db.Close()
}

// SavePapers inserts references into the library, skipping URLs already
// present. Returns the number of newly saved papers.
func (l *Library) SavePapers(ctx context.Context, refs []model.PaperReference) (int, error) {
	if len(refs) == 0 {
		return 0, nil
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin save: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO papers (title, url, pdf_url, abstract) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare save: %w", err)
	}
	defer stmt.Close()

	saved := 0
	for _, ref := range refs {
		result, err := stmt.ExecContext(ctx, ref.Title, ref.URL, ref.PDFURL, ref.Abstract)
		if err != nil {
			return 0, fmt.Errorf("failed to save paper %q: %w", ref.URL, err)
		}
		if n, err := result.RowsAffected(); err == nil {
			saved += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit save: %w", err)
	}
	return saved, nil
}

// List returns saved papers, newest first. limit <= 0 means no limit.
func (l *Library) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, title, url, pdf_url, abstract, saved_at FROM papers ORDER BY saved_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list papers: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Search returns papers whose title or URL contains the query,
// case-insensitively, newest first.
func (l *Library) Search(ctx context.Context, query string) ([]Entry, error) {
	pattern := "%" + query + "%"
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, title, url, pdf_url, abstract, saved_at FROM papers
		 WHERE title LIKE ? OR url LIKE ?
		 ORDER BY saved_at DESC, id DESC`,
		pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search papers: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Delete removes the paper with the given URL. Removing a URL that is not
// saved is not an error.
func (l *Library) Delete(ctx context.Context, url string) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM papers WHERE url = ?`, url); err != nil {
		return fmt.Errorf("failed to delete paper: %w", err)
	}
	return nil
}

// Count returns the number of saved papers.
func (l *Library) Count(ctx context.Context) (int, error) {
	var count int
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM papers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count papers: %w", err)
	}
	return count, nil
}

// scanEntries materializes query rows into entries.
func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Paper.Title, &e.Paper.URL, &e.Paper.PDFURL, &e.Paper.Abstract, &e.SavedAt); err != nil {
			return nil, fmt.Errorf("failed to scan paper: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read papers: %w", err)
	}
	return entries, nil
}
