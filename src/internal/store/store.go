// Package store persists the catalog. The CSV file is the canonical format;
// SQLite is an alternative backend with the same upsert-by-key contract.
package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"shelf/src/internal/catalog"
	"shelf/src/internal/record"
)

const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Store loads and saves a whole catalog.
type Store interface {
	Load(ctx context.Context) (*catalog.Catalog, error)
	Save(ctx context.Context, c *catalog.Catalog) error
	// Path is the file backing the store.
	Path() string
	Close() error
}

// Open returns the store for backend at path.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendCSV:
		return NewCSV(path), nil
	case BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown catalog backend %q", backend)
	}
}

// CSVStore keeps the catalog in a CSV file with the record.Header columns.
type CSVStore struct {
	path string
}

// NewCSV returns a CSV store at path. The file need not exist yet.
func NewCSV(path string) *CSVStore { return &CSVStore{path: path} }

func (s *CSVStore) Path() string { return s.path }

func (s *CSVStore) Close() error { return nil }

// Load reads the catalog. A missing file is an empty catalog.
func (s *CSVStore) Load(_ context.Context) (*catalog.Catalog, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return catalog.New(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rs, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return catalog.New(rs...), nil
}

// Save writes the catalog in sorted order, replacing the file atomically.
func (s *CSVStore) Save(_ context.Context, c *catalog.Catalog) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := WriteCSV(tmp, c.Sorted()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// ReadCSV parses rows keyed by the header line. Rows from older catalogs that
// lack trailing columns are accepted.
func ReadCSV(r io.Reader) ([]record.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []record.Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, record.FromRow(header, row))
	}
}

// WriteCSV writes the header and one row per record, in the given order.
func WriteCSV(w io.Writer, rs []record.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(record.Header); err != nil {
		return err
	}
	for _, r := range rs {
		if err := cw.Write(r.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
