package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ahfong-coder/fetch-orangenews/internal/domain"
	"github.com/ahfong-coder/fetch-orangenews/internal/ports"
)

const archiveSchema = `CREATE TABLE IF NOT EXISTS archived_items (
	link          TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	summary       TEXT,
	source        TEXT,
	published_at  TIMESTAMP,
	first_seen_at TIMESTAMP NOT NULL
)`

// SQLiteArchive keeps every item ever discovered, so entries that aged out
// of the capped feed document are not mistaken for new ones later.
type SQLiteArchive struct {
	db *sql.DB
}

var _ ports.Archive = (*SQLiteArchive)(nil)

// Open creates (if needed) and opens the archive database at path.
func Open(path string) (*SQLiteArchive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}

	if _, err := db.Exec(archiveSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init archive schema: %w", err)
	}

	return &SQLiteArchive{db: db}, nil
}

// Close releases the underlying database handle.
func (a *SQLiteArchive) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// SeenLinks returns a map with the links that already exist in the archive.
func (a *SQLiteArchive) SeenLinks(ctx context.Context, links []string) (map[string]bool, error) {
	if a.db == nil || len(links) == 0 {
		return map[string]bool{}, nil
	}

	query, args, err := sq.Select("link").
		From("archived_items").
		Where(sq.Eq{"link": links}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build seen query: %w", err)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query seen links: %w", err)
	}

	result := make(map[string]bool)
	for rows.Next() {
		var link string
		if err := rows.Scan(&link); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan link: %w", err)
		}
		result[link] = true
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// SaveItems records newly discovered items; already archived links are
// left untouched so first_seen_at stays stable.
func (a *SQLiteArchive) SaveItems(ctx context.Context, items []domain.FeedItem) error {
	if a.db == nil || len(items) == 0 {
		return nil
	}

	builder := sq.Insert("archived_items").
		Columns("link", "title", "summary", "source", "published_at", "first_seen_at").
		Suffix("ON CONFLICT(link) DO NOTHING")

	now := time.Now().UTC()
	for _, item := range items {
		builder = builder.Values(item.Link, item.Title, item.Summary, item.Source, item.PublishedAt, now)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}

	return nil
}
