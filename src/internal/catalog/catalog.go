// Package catalog holds the in-memory book collection keyed by ISBN-13 and
// defines the order records are persisted in.
package catalog

import (
	"context"
	"sort"

	"shelf/src/internal/dates"
	"shelf/src/internal/isbn"
	"shelf/src/internal/names"
	"shelf/src/internal/record"
)

// Catalog maps record keys to records. It is not safe for concurrent use.
type Catalog struct {
	books map[string]record.Record
}

// New returns a catalog holding rs. Later records win on duplicate keys.
func New(rs ...record.Record) *Catalog {
	c := &Catalog{books: make(map[string]record.Record, len(rs))}
	for _, r := range rs {
		c.Put(r)
	}
	return c
}

// Put inserts r, replacing any record with the same key. Records without a key are ignored.
func (c *Catalog) Put(r record.Record) bool {
	k := r.Key()
	if k == "" {
		return false
	}
	c.books[k] = r
	return true
}

// Get returns the record stored under key.
func (c *Catalog) Get(key string) (record.Record, bool) {
	r, ok := c.books[key]
	return r, ok
}

// Has reports whether key is present.
func (c *Catalog) Has(key string) bool {
	_, ok := c.books[key]
	return ok
}

// Find resolves a scanned identifier to a stored record: by key, by the
// ISBN-13 form of an ISBN-10, then by any record's ISBN-10 or scanned input.
func (c *Catalog) Find(id string) (record.Record, bool) {
	id = isbn.Normalize(id)
	if id == "" {
		return record.Record{}, false
	}
	if r, ok := c.books[id]; ok {
		return r, true
	}
	if r, ok := c.books[isbn.To13(id)]; ok {
		return r, true
	}
	for _, r := range c.Sorted() {
		if r.ISBN10 == id || isbn.Normalize(r.ScannedInput) == id {
			return r, true
		}
	}
	return record.Record{}, false
}

// Len returns the number of records.
func (c *Catalog) Len() int { return len(c.books) }

// Sorted returns every record in persistence order: by lower-cased last token
// of the author, then by sortable publish date, then by key. Empty authors
// and unparseable dates sort first.
func (c *Catalog) Sorted() []record.Record {
	out := make([]record.Record, 0, len(c.books))
	for _, r := range c.books {
		out = append(out, r)
	}
	SortRecords(out)
	return out
}

// SortRecords sorts rs in place in persistence order.
func SortRecords(rs []record.Record) {
	type keyed struct {
		author string
		date   int64
		key    string
		r      record.Record
	}
	ks := make([]keyed, len(rs))
	for i, r := range rs {
		ks[i] = keyed{names.CollationKey(r.Author), dates.Sortable(r.PublishDate).Unix(), r.Key(), r}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		a, b := ks[i], ks[j]
		if a.author != b.author {
			return a.author < b.author
		}
		if a.date != b.date {
			return a.date < b.date
		}
		return a.key < b.key
	})
	for i := range ks {
		rs[i] = ks[i].r
	}
}

// Sweep applies fn to every record, one at a time in persistence order, and
// stores each result under the record's original key. It stops between
// records when ctx is done and returns the number of records that changed.
func (c *Catalog) Sweep(ctx context.Context, fn func(context.Context, record.Record) record.Record) (int, error) {
	changed := 0
	for _, r := range c.Sorted() {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		next := fn(ctx, r)
		if next == r {
			continue
		}
		c.books[r.Key()] = next
		changed++
	}
	return changed, nil
}
