package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/gazette/internal/apperr"
	"github.com/starford/gazette/internal/models"
)

// ItemRow represents a row in the items table.
type ItemRow struct {
	Path      string
	FileSlug  string
	URL       string
	Title     string
	Slug      string
	Date      time.Time // zero means the item has no date
	Data      models.FrontMatter
	Tags      []string
	Body      string
	Checksum  string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string `json:"path"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// loaderOrder is the order items are handed to collection builders:
// undated first, then by date ascending, ties broken by input path.
const loaderOrder = `ORDER BY date_unix IS NOT NULL, date_unix, path`

const itemColumns = `path, file_slug, url, date_unix, data, body, checksum, updated_at`

// UpsertItem inserts or replaces an item and its FTS entry within a transaction.
func (db *DB) UpsertItem(r ItemRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if r.Data == nil {
		r.Data = models.FrontMatter{}
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	dataJSON, err := json.Marshal(r.Data)
	if err != nil {
		return fmt.Errorf("index: encode front matter for %s: %w", r.Path, err)
	}
	tagsJSON, _ := json.Marshal(r.Tags)

	var date sql.NullInt64
	if !r.Date.IsZero() {
		date = sql.NullInt64{Int64: r.Date.UnixNano(), Valid: true}
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now().UTC()
	}

	_, err = tx.Exec(`
		INSERT INTO items (path, file_slug, url, title, slug, date_unix, data, tags, body, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			file_slug  = excluded.file_slug,
			url        = excluded.url,
			title      = excluded.title,
			slug       = excluded.slug,
			date_unix  = excluded.date_unix,
			data       = excluded.data,
			tags       = excluded.tags,
			body       = excluded.body,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, r.Path, r.FileSlug, r.URL, r.Title, r.Slug, date, string(dataJSON), string(tagsJSON), r.Body, r.Checksum, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert item: %w", err)
	}

	if err := ftsUpsert(tx, r.Path, r.Title, r.Body, r.Tags); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteItem removes an item and its FTS entry.
func (db *DB) DeleteItem(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	if _, err := tx.Exec(`DELETE FROM items WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete item: %w", err)
	}

	return tx.Commit()
}

// GetChecksum returns the stored checksum for an item, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM items WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every indexed item.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM items`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// GetItem returns the indexed item at path or apperr.ErrNotFound.
func (db *DB) GetItem(path string) (*models.Item, error) {
	row := db.conn.QueryRow(`SELECT `+itemColumns+` FROM items WHERE path = ?`, path)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	return it, err
}

// FindBySlug returns the first item, in loader order, whose slug matches.
func (db *DB) FindBySlug(slug string) (*models.Item, error) {
	row := db.conn.QueryRow(`SELECT `+itemColumns+` FROM items WHERE slug = ? `+loaderOrder+` LIMIT 1`, slug)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	return it, err
}

// Items returns every indexed item in loader order.
func (db *DB) Items() ([]*models.Item, error) {
	rows, err := db.conn.Query(`SELECT ` + itemColumns + ` FROM items ` + loaderOrder)
	if err != nil {
		return nil, fmt.Errorf("index: items: %w", err)
	}
	defer rows.Close()

	var out []*models.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*models.Item, error) {
	var (
		it       models.Item
		date     sql.NullInt64
		dataJSON string
	)
	if err := s.Scan(&it.InputPath, &it.FileSlug, &it.URL, &date, &dataJSON, &it.Body, &it.Checksum, &it.ModTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("index: scan item: %w", err)
	}
	if date.Valid {
		it.Date = time.Unix(0, date.Int64).UTC()
	}
	if err := json.Unmarshal([]byte(dataJSON), &it.Data); err != nil {
		return nil, fmt.Errorf("index: decode front matter for %s: %w", it.InputPath, err)
	}
	return &it, nil
}
