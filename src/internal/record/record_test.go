package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowMatchesHeader(t *testing.T) {
	r := Record{
		ISBN13: "9780316066525", ISBN10: "0316066524", Title: "T", Subtitle: "S",
		Author: "A", PublishDate: "2001", URL: "u", ScannedInput: "9780316066525",
		Tags: "x", Thumbnail: "th", Description: "d",
	}
	row := r.Row()
	require.Len(t, row, len(Header))
	assert.Equal(t, "9780316066525", row[0])
	assert.Equal(t, "x", row[8])
	assert.Equal(t, "th", row[9])
	assert.Equal(t, "d", row[10])
	assert.Equal(t, r, FromRow(Header, row))
}

func TestFromRowOldCatalog(t *testing.T) {
	header := []string{"ISBN-13", "ISBN-10", "Title", "Subtitle", "Author", "Publish Date", "URL", "Scanned Input"}
	row := []string{"9780316066525", "0316066524", "Title", "", "Author", "2001", "", "9780316066525"}
	r := FromRow(header, row)
	assert.Equal(t, "Title", r.Title)
	assert.Empty(t, r.Tags)
	assert.Empty(t, r.Thumbnail)
	assert.Empty(t, r.Description)
}

func TestFromRowReorderedAndShortRow(t *testing.T) {
	header := []string{"\ufeffTitle", "ISBN-13", "Extra", "Tags"}
	r := FromRow(header, []string{"T", "9780316066525", "ignored"})
	assert.Equal(t, Record{Title: "T", ISBN13: "9780316066525"}, r)
}

func TestKeyFallsBackToScannedInput(t *testing.T) {
	assert.Equal(t, "978", Record{ISBN13: "978", ScannedInput: "x"}.Key())
	assert.Equal(t, "0316066524", Record{ScannedInput: "0316066524"}.Key())
}

func TestChanged(t *testing.T) {
	a := Record{Title: "T"}
	b := Record{Title: "T", Tags: "x", Description: "d"}
	assert.Equal(t, []string{"Tags", "Description"}, Changed(a, b))
	assert.Empty(t, Changed(a, a))
}

func TestString(t *testing.T) {
	r := Record{Title: "T", Author: "A", PublishDate: "2001"}
	assert.Equal(t, "Title: T\nAuthor: A\nPublished: 2001", r.String())
	r.Subtitle, r.URL = "S", "https://x"
	assert.Equal(t, "Title: T\nSubtitle: S\nAuthor: A\nPublished: 2001\nURL: https://x", r.String())
}
