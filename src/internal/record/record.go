// Package record defines the catalog entry shared by the catalog, the
// enrichment engine, and every source extractor.
package record

import (
	"strings"
)

// Record is one book. Every field defaults to "", which also means "not yet
// enriched". A source answer uses the same type with any subset left empty.
type Record struct {
	ISBN13       string `yaml:"isbn13" json:"isbn13" parquet:"isbn13"`
	ISBN10       string `yaml:"isbn10" json:"isbn10" parquet:"isbn10"`
	Title        string `yaml:"title" json:"title" parquet:"title"`
	Subtitle     string `yaml:"subtitle,omitempty" json:"subtitle,omitempty" parquet:"subtitle"`
	Author       string `yaml:"author" json:"author" parquet:"author"`
	PublishDate  string `yaml:"publish_date" json:"publish_date" parquet:"publish_date"`
	URL          string `yaml:"url,omitempty" json:"url,omitempty" parquet:"url"`
	ScannedInput string `yaml:"scanned_input" json:"scanned_input" parquet:"scanned_input"`
	Tags         string `yaml:"tags,omitempty" json:"tags,omitempty" parquet:"tags"`
	Thumbnail    string `yaml:"thumbnail,omitempty" json:"thumbnail,omitempty" parquet:"thumbnail"`
	Description  string `yaml:"description,omitempty" json:"description,omitempty" parquet:"description"`
}

// Header is the persisted column order. Older catalogs stop after "Scanned Input"
// or "Tags"; FromRow treats the missing columns as empty.
var Header = []string{
	"ISBN-13", "ISBN-10", "Title", "Subtitle", "Author", "Publish Date",
	"URL", "Scanned Input", "Tags", "Thumbnail", "Description",
}

// fields returns pointers to every field in Header order.
func (r *Record) fields() []*string {
	return []*string{
		&r.ISBN13, &r.ISBN10, &r.Title, &r.Subtitle, &r.Author, &r.PublishDate,
		&r.URL, &r.ScannedInput, &r.Tags, &r.Thumbnail, &r.Description,
	}
}

// Row returns the record's values in Header order.
func (r Record) Row() []string {
	fs := r.fields()
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = *f
	}
	return out
}

// FromRow builds a record from a row whose columns are named by header.
// Unknown columns are ignored and absent ones stay empty.
func FromRow(header, row []string) Record {
	var r Record
	fs := r.fields()
	pos := make(map[string]int, len(Header))
	for i, name := range Header {
		pos[name] = i
	}
	for i, name := range header {
		j, ok := pos[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))]
		if !ok || i >= len(row) {
			continue
		}
		*fs[j] = row[i]
	}
	return r
}

// Key is the catalog key: the ISBN-13, or the scanned identifier when no
// ISBN-13 is known.
func (r Record) Key() string {
	if r.ISBN13 != "" {
		return r.ISBN13
	}
	return r.ScannedInput
}

// IsZero reports whether every field is empty.
func (r Record) IsZero() bool { return r == Record{} }

// Changed returns the Header names of fields whose values differ between a and b.
func Changed(a, b Record) []string {
	fa, fb := a.fields(), b.fields()
	var out []string
	for i := range fa {
		if *fa[i] != *fb[i] {
			out = append(out, Header[i])
		}
	}
	return out
}

// String renders the short human-readable summary shown after a scan.
func (r Record) String() string {
	lines := []string{"Title: " + r.Title}
	if r.Subtitle != "" {
		lines = append(lines, "Subtitle: "+r.Subtitle)
	}
	lines = append(lines, "Author: "+r.Author, "Published: "+r.PublishDate)
	if r.URL != "" {
		lines = append(lines, "URL: "+r.URL)
	}
	return strings.Join(lines, "\n")
}
