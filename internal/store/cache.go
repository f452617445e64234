// Package store provides a SQLite-backed cache of normalized ledger files.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/varcop/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNotCached is returned by LoadFile for a path with no cache entry.
var ErrNotCached = errors.New("file not cached")

// Cache provides SQLite-backed caching of parsed export files.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo identifies the version of a file a cache entry was built from.
type FileInfo struct {
	MtimeNs     int64
	SizeBytes   int64
	Fingerprint string // column mapping and normalization options
}

// Entry is one cached, normalized export file.
type Entry struct {
	Path     string
	Info     FileInfo
	Ledger   model.Ledger
	Rows     int
	Dropped  int
	Encoding string
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all cached files.
func (c *Cache) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := c.db.Query("SELECT file_path, mtime_ns, size_bytes, fingerprint FROM files")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes, &fi.Fingerprint); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveFile replaces the cache entry for e.Path.
func (c *Cache) SaveFile(e Entry) error {
	schemaJSON, err := json.Marshal(e.Ledger.Schema)
	if err != nil {
		return err
	}

	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM postings WHERE file_path = ?", e.Path); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.Exec(`INSERT OR REPLACE INTO files
		(file_path, mtime_ns, size_bytes, fingerprint, schema_json, row_count, dropped, encoding, parsed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Path, e.Info.MtimeNs, e.Info.SizeBytes, e.Info.Fingerprint, string(schemaJSON),
		e.Rows, e.Dropped, e.Encoding, now,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO postings
		(file_path, seq, account, account_name, amount, posting_date, text, document_no, dimensions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, p := range e.Ledger.Postings {
		date := ""
		if !p.PostingDate.IsZero() {
			date = p.PostingDate.UTC().Format(time.RFC3339)
		}
		var dims sql.NullString
		if len(p.Dimensions) > 0 {
			b, err := json.Marshal(p.Dimensions)
			if err != nil {
				return err
			}
			dims = sql.NullString{String: string(b), Valid: true}
		}
		if _, err := stmt.Exec(e.Path, i, p.Account, p.AccountName, p.Amount, date, p.Text, p.DocumentNo, dims); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadFile reads one cached file with its postings in original order.
func (c *Cache) LoadFile(path string) (*Entry, error) {
	e := &Entry{Path: path}
	var schemaJSON string
	var encoding sql.NullString

	err := c.db.QueryRow(`SELECT mtime_ns, size_bytes, fingerprint, schema_json, row_count, dropped, encoding
		FROM files WHERE file_path = ?`, path).
		Scan(&e.Info.MtimeNs, &e.Info.SizeBytes, &e.Info.Fingerprint, &schemaJSON, &e.Rows, &e.Dropped, &encoding)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, err
	}
	e.Encoding = encoding.String
	if err := json.Unmarshal([]byte(schemaJSON), &e.Ledger.Schema); err != nil {
		return nil, fmt.Errorf("decoding schema for %s: %w", path, err)
	}

	rows, err := c.db.Query(`SELECT account, account_name, amount, posting_date, text, document_no, dimensions
		FROM postings WHERE file_path = ? ORDER BY seq`, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var p model.Posting
		var name, date, text, doc, dims sql.NullString
		if err := rows.Scan(&p.Account, &name, &p.Amount, &date, &text, &doc, &dims); err != nil {
			return nil, err
		}
		p.AccountName = name.String
		p.Text = text.String
		p.DocumentNo = doc.String
		if date.Valid && date.String != "" {
			p.PostingDate, _ = time.Parse(time.RFC3339, date.String)
		}
		if dims.Valid && dims.String != "" {
			if err := json.Unmarshal([]byte(dims.String), &p.Dimensions); err != nil {
				return nil, fmt.Errorf("decoding dimensions for %s: %w", path, err)
			}
		}
		e.Ledger.Postings = append(e.Ledger.Postings, p)
	}
	return e, rows.Err()
}

// DeleteFile removes a file entry and its postings.
func (c *Cache) DeleteFile(path string) error {
	_, err := c.db.Exec("DELETE FROM files WHERE file_path = ?", path)
	return err
}

// FileCount returns the number of cached files.
func (c *Cache) FileCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM files").Scan(&count)
	return count, err
}

// PostingCount returns the number of cached postings.
func (c *Cache) PostingCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM postings").Scan(&count)
	return count, err
}

// Prune removes entries whose source file no longer exists and returns how
// many were removed.
func (c *Cache) Prune() (int, error) {
	tracked, err := c.GetTrackedFiles()
	if err != nil {
		return 0, err
	}
	removed := 0
	for path := range tracked {
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := c.DeleteFile(path); err != nil {
			return removed, fmt.Errorf("pruning %s: %w", path, err)
		}
		removed++
	}
	return removed, nil
}
