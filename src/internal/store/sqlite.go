package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"shelf/src/internal/catalog"
	"shelf/src/internal/record"
)

// SQLiteStore keeps the catalog in a single "books" table keyed by record key.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the database at dbPath.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db path: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", filepath.Clean(dbPath))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, path: dbPath}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS books (
			key           TEXT PRIMARY KEY,
			isbn13        TEXT NOT NULL DEFAULT '',
			isbn10        TEXT NOT NULL DEFAULT '',
			title         TEXT NOT NULL DEFAULT '',
			subtitle      TEXT NOT NULL DEFAULT '',
			author        TEXT NOT NULL DEFAULT '',
			publish_date  TEXT NOT NULL DEFAULT '',
			url           TEXT NOT NULL DEFAULT '',
			scanned_input TEXT NOT NULL DEFAULT '',
			tags          TEXT NOT NULL DEFAULT '',
			thumbnail     TEXT NOT NULL DEFAULT '',
			description   TEXT NOT NULL DEFAULT ''
		);
	`)
	return err
}

const upsertBook = `
	INSERT INTO books (key, isbn13, isbn10, title, subtitle, author, publish_date, url, scanned_input, tags, thumbnail, description)
	VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
	ON CONFLICT(key) DO UPDATE SET
		isbn13=excluded.isbn13, isbn10=excluded.isbn10, title=excluded.title,
		subtitle=excluded.subtitle, author=excluded.author, publish_date=excluded.publish_date,
		url=excluded.url, scanned_input=excluded.scanned_input, tags=excluded.tags,
		thumbnail=excluded.thumbnail, description=excluded.description
`

func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load reads every row into a catalog.
func (s *SQLiteStore) Load(ctx context.Context) (*catalog.Catalog, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialized")
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT isbn13, isbn10, title, subtitle, author, publish_date, url, scanned_input, tags, thumbnail, description
		FROM books ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	c := catalog.New()
	for rows.Next() {
		var r record.Record
		if err := rows.Scan(&r.ISBN13, &r.ISBN10, &r.Title, &r.Subtitle, &r.Author, &r.PublishDate,
			&r.URL, &r.ScannedInput, &r.Tags, &r.Thumbnail, &r.Description); err != nil {
			return nil, err
		}
		c.Put(r)
	}
	return c, rows.Err()
}

// Save upserts every record in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, c *catalog.Catalog) error {
	if s == nil || s.db == nil {
		return errors.New("store not initialized")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, upsertBook)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, r := range c.Sorted() {
		args := []any{r.Key()}
		for _, v := range r.Row() {
			args = append(args, v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert %s: %w", r.Key(), err)
		}
	}
	return tx.Commit()
}
