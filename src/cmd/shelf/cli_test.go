package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelf/src/internal/enrich"
	"shelf/src/internal/httpx"
	"shelf/src/internal/isbn"
	"shelf/src/internal/record"
	"shelf/src/internal/store"
)

const (
	emmaVolume = `{"totalItems": 1, "items": [{"volumeInfo": {
		"title": "Emma",
		"authors": ["Jane Austen"],
		"publishedDate": "2003-04-29",
		"industryIdentifiers": [
			{"type": "ISBN_10", "identifier": "0141439580"},
			{"type": "ISBN_13", "identifier": "9780141439587"}
		],
		"categories": ["Fiction"],
		"description": "Emma Woodhouse, handsome, clever, and rich.",
		"canonicalVolumeLink": "https://books.google.com/books/about/Emma.html?id=abc",
		"imageLinks": {"thumbnail": "https://books.google.com/thumb.jpg"}
	}}]}`
	emmaBooks = `{"ISBN:9780141439587": {
		"identifiers": {"isbn_13": ["9780141439587"], "isbn_10": ["0141439580"]},
		"title": "Emma",
		"authors": [{"name": "Jane Austen"}],
		"publish_date": "2003",
		"subjects": [{"name": "Classics"}, {"name": "Courtship"}]
	}}`
	huckBooks = `{"ISBN:0486280616": {
		"identifiers": {"isbn_13": ["9780486280615"], "isbn_10": ["0486280616"]},
		"title": "Adventures of Huckleberry Finn",
		"authors": [{"name": "Mark Twain"}],
		"publish_date": "April 1, 1994",
		"subjects": [{"name": "Fiction"}]
	}}`
)

type route struct {
	match  string
	status int
	body   string
}

type routeHTTP struct {
	routes []route
	seen   *[]string
}

func (r routeHTTP) Do(req *http.Request) (*http.Response, error) {
	u := req.URL.String()
	*r.seen = append(*r.seen, u)
	for _, rt := range r.routes {
		if strings.Contains(u, rt.match) {
			return &http.Response{StatusCode: rt.status, Body: io.NopCloser(strings.NewReader(rt.body)), Header: make(http.Header)}, nil
		}
	}
	return &http.Response{StatusCode: 404, Body: io.NopCloser(strings.NewReader("not found")), Header: make(http.Header)}, nil
}

var defaultRoutes = []route{
	{"q=isbn%3A9780141439587", 200, emmaVolume},
	{"bibkeys=ISBN%3A9780141439587", 200, emmaBooks},
	{"bibkeys=ISBN%3A0486280616", 200, huckBooks},
	{"q=isbn", 200, `{"totalItems": 0}`},
	{"bibkeys=", 200, `{}`},
}

type fakeCommitter struct {
	paths, messages []string
}

func (f *fakeCommitter) Commit(_ context.Context, path, message string) error {
	f.paths = append(f.paths, path)
	f.messages = append(f.messages, message)
	return nil
}

// setup runs the test in an empty directory with the HTTP sources served
// from routes and returns the list of requested URLs.
func setup(t *testing.T, routes ...route) *[]string {
	t.Helper()
	dir := t.TempDir()
	old, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(old) })
	require.NoError(t, os.Chdir(dir))
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SHELF_HTTP_RPS", "0")
	t.Setenv("SHELF_HTTP_RETRIES", "0")
	t.Setenv("SHELF_LOG_LEVEL", "error")
	t.Setenv("SHELF_LOG_FORMAT", "json")

	if len(routes) == 0 {
		routes = defaultRoutes
	}
	var seen []string
	oldHTTP := newHTTPClient
	t.Cleanup(func() { newHTTPClient = oldHTTP })
	newHTTPClient = func(time.Duration) httpx.Doer { return routeHTTP{routes: routes, seen: &seen} }
	return &seen
}

// Helper to execute a Cobra command and capture stdout/stderr
func execCmd(root *cobra.Command, stdin string, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func seed(t *testing.T, path string, rs ...record.Record) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, store.WriteCSV(f, rs))
}

func loadCSV(t *testing.T, path string) []record.Record {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rs, err := store.ReadCSV(f)
	require.NoError(t, err)
	return rs
}

func countMatching(urls []string, sub string) int {
	n := 0
	for _, u := range urls {
		if strings.Contains(u, sub) {
			n++
		}
	}
	return n
}

func TestScan(t *testing.T) {
	seen := setup(t)
	in := "978-0-14-143958-7\nnot-an-isbn\n9780000000002\n9780141439587\nq\nnever-read\n"
	out, err := execCmd(newRootCmd(), in, "scan")
	require.NoError(t, err)

	assert.Contains(t, out, "Added:\nTitle: Emma\nAuthor: Jane Austen\nPublished: 2003-04-29")
	assert.Contains(t, out, "Invalid ISBN: not-an-isbn")
	assert.Contains(t, out, "Book not found: 9780000000002")
	assert.Contains(t, out, "Already in catalog:\nTitle: Emma")
	assert.NotContains(t, out, "\a")
	assert.NotContains(t, out, "never-read")

	assert.Equal(t, 2, countMatching(*seen, "9780141439587"), "known books must not be fetched again: %v", *seen)
	assert.Zero(t, countMatching(*seen, "not-an-isbn"))

	rs := loadCSV(t, "books.csv")
	require.Len(t, rs, 1)
	emma := rs[0]
	assert.Equal(t, "9780141439587", emma.ISBN13)
	assert.Equal(t, "0141439580", emma.ISBN10)
	assert.Equal(t, "9780141439587", emma.ScannedInput)
	assert.Equal(t, "Classics, Courtship", emma.Tags)
	assert.Equal(t, "2003-04-29", emma.PublishDate)
	assert.NotEmpty(t, emma.Description)
}

func TestScanSound(t *testing.T) {
	setup(t)
	out, err := execCmd(newRootCmd(), "9780141439587\nbad\n9780141439587\n", "scan", "--sound")
	require.NoError(t, err)
	// success, failure (two bells), success
	assert.Equal(t, 4, strings.Count(out, "\a"))
}

func TestAdd(t *testing.T) {
	seen := setup(t)
	out, err := execCmd(newRootCmd(), "", "add", "0486280616", "9780000000002")
	require.Error(t, err)
	assert.Contains(t, out, "added 1, skipped 1")

	rs := loadCSV(t, "books.csv")
	require.Len(t, rs, 1)
	huck := rs[0]
	assert.Equal(t, "9780486280615", huck.Key())
	assert.Equal(t, "0486280616", huck.ScannedInput)
	assert.Equal(t, "Fiction", huck.Tags)
	// Google Books is asked first, for the scanned form and then the ISBN-13.
	require.GreaterOrEqual(t, len(*seen), 3)
	assert.Contains(t, (*seen)[0], "q=isbn%3A0486280616")
	assert.Contains(t, (*seen)[1], "q=isbn%3A9780486280615")
	assert.Contains(t, (*seen)[2], "bibkeys=ISBN%3A0486280616")

	out, err = execCmd(newRootCmd(), "", "add", "9780486280615")
	require.NoError(t, err)
	assert.Contains(t, out, "Already in catalog")
	assert.Contains(t, out, "added 0, skipped 1")
}

func TestAddCommits(t *testing.T) {
	setup(t)
	t.Setenv("SHELF_CATALOG_COMMIT", "true")
	fc := &fakeCommitter{}
	old := newCommitter
	t.Cleanup(func() { newCommitter = old })
	newCommitter = func(bool) committer { return fc }

	_, err := execCmd(newRootCmd(), "", "add", "9780141439587")
	require.NoError(t, err)
	assert.Equal(t, []string{"books.csv"}, fc.paths)
	assert.Equal(t, []string{"catalog: add 9780141439587"}, fc.messages)
}

func TestEnrich(t *testing.T) {
	seen := setup(t)
	seed(t, "books.csv",
		record.Record{ISBN13: "9780141439587", Title: "Emma", Author: "Jane Austen", PublishDate: "1815", ScannedInput: "9780141439587"},
		record.Record{ISBN13: "9780486280615", Title: "Huck", Author: "Mark Twain", PublishDate: "1994-04-01",
			ScannedInput: "0486280616", Tags: "Fiction", Description: "Raft."},
	)

	out, err := execCmd(newRootCmd(), "", "enrich")
	require.NoError(t, err)
	assert.Contains(t, out, "2 books, 1 looked up, 1 updated")
	assert.Zero(t, countMatching(*seen, "0486280616"), "complete record must not be queried")

	rs := loadCSV(t, "books.csv")
	require.Len(t, rs, 2)
	emma := rs[0]
	assert.Equal(t, "Emma", emma.Title)
	assert.Equal(t, "Classics, Courtship", emma.Tags)
	assert.Equal(t, "2003-04-29", emma.PublishDate)
	assert.Equal(t, "Emma Woodhouse, handsome, clever, and rich.", emma.Description)
	assert.Equal(t, "Raft.", rs[1].Description)

	before := len(*seen)
	out, err = execCmd(newRootCmd(), "", "enrich")
	require.NoError(t, err)
	assert.Contains(t, out, "2 books, 0 looked up, 0 updated")
	assert.Equal(t, before, len(*seen))
}

func TestEnrichTagsOnly(t *testing.T) {
	seen := setup(t)
	seed(t, "books.csv",
		record.Record{ISBN13: "9780141439587", Title: "Emma", Author: "Jane Austen", PublishDate: "1815", ScannedInput: "9780141439587"},
		record.Record{ScannedInput: "9780000000002", Title: enrich.UnknownTitle},
	)
	out, err := execCmd(newRootCmd(), "", "enrich", "--tags-only")
	require.NoError(t, err)
	assert.Contains(t, out, "1 updated")
	assert.Zero(t, countMatching(*seen, "q=isbn"), "tag pass must not ask Google Books")
	assert.Zero(t, countMatching(*seen, "9780000000002"))

	rs := loadCSV(t, "books.csv")
	var emma record.Record
	for _, r := range rs {
		if r.Key() == "9780141439587" {
			emma = r
		}
	}
	assert.Equal(t, "Classics, Courtship", emma.Tags)
	assert.Equal(t, "1815", emma.PublishDate)
	assert.Empty(t, emma.Description)
}

func TestShow(t *testing.T) {
	setup(t)
	seed(t, "books.csv", record.Record{ISBN13: "9780141439587", ISBN10: "0141439580", Title: "Emma",
		Author: "Jane Austen", PublishDate: "2003", ScannedInput: "9780141439587", Tags: "Classics"})

	out, err := execCmd(newRootCmd(), "", "show", "0-14-143958-0", "--full")
	require.NoError(t, err)
	assert.Contains(t, out, "Title: Emma")
	assert.Contains(t, out, "Tags: Classics")
	assert.NotContains(t, out, "Description:")

	_, err = execCmd(newRootCmd(), "", "show", "9780486280615")
	assert.Error(t, err)
	_, err = execCmd(newRootCmd(), "", "show", "12345")
	assert.ErrorIs(t, err, isbn.ErrInvalid)
}

func TestLookup(t *testing.T) {
	seen := setup(t)
	out, err := execCmd(newRootCmd(), "", "lookup", "openlibrary", "9780141439587")
	require.NoError(t, err)
	assert.Contains(t, out, `"title": "Emma"`)

	out, err = execCmd(newRootCmd(), "", "lookup", "googlebooks", "9780141439587")
	require.NoError(t, err)
	assert.Contains(t, out, `"publishedDate": "2003-04-29"`)

	_, err = execCmd(newRootCmd(), "", "lookup", "googlebooks", "9780000000002")
	assert.True(t, errors.Is(err, enrich.ErrNotFound), "got %v", err)

	before := len(*seen)
	_, err = execCmd(newRootCmd(), "", "lookup", "openlibrary", "abc")
	assert.ErrorIs(t, err, isbn.ErrInvalid)
	assert.Equal(t, before, len(*seen))
}

func TestExport(t *testing.T) {
	setup(t)
	seed(t, "books.csv",
		record.Record{ISBN13: "9780486280615", Title: "Huck", Author: "Mark Twain", ScannedInput: "0486280616"},
		record.Record{ISBN13: "9780141439587", Title: "Emma", Author: "Jane Austen", ScannedInput: "9780141439587"},
	)
	out, err := execCmd(newRootCmd(), "", "export", "--format", "json")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, `"Emma"`), strings.Index(out, `"Huck"`))

	out, err = execCmd(newRootCmd(), "", "export")
	require.NoError(t, err)
	assert.Contains(t, out, "title: Emma")

	_, err = execCmd(newRootCmd(), "", "export", "-f", "parquet", "-o", "books.parquet")
	require.NoError(t, err)
	st, err := os.Stat("books.parquet")
	require.NoError(t, err)
	assert.Positive(t, st.Size())

	_, err = execCmd(newRootCmd(), "", "export", "-f", "bibtex")
	assert.Error(t, err)
}

func TestSQLiteBackend(t *testing.T) {
	setup(t)
	_, err := execCmd(newRootCmd(), "", "--backend", "sqlite", "--catalog", "books.db", "add", "9780141439587")
	require.NoError(t, err)
	_, err = os.Stat("books.csv")
	assert.True(t, os.IsNotExist(err))

	out, err := execCmd(newRootCmd(), "", "--backend", "sqlite", "--catalog", "books.db", "show", "9780141439587")
	require.NoError(t, err)
	assert.Contains(t, out, "Title: Emma")
}

func TestBadConfig(t *testing.T) {
	setup(t)
	_, err := execCmd(newRootCmd(), "", "--backend", "postgres", "show", "9780141439587")
	assert.Error(t, err)
	_, err = execCmd(newRootCmd(), "", "--config", "missing.yaml", "show", "9780141439587")
	assert.Error(t, err)
}

func TestHelp(t *testing.T) {
	out, err := execCmd(newRootCmd(), "", "--help")
	require.NoError(t, err)
	for _, name := range []string{"scan", "add", "enrich", "show", "lookup", "export"} {
		assert.Contains(t, out, name)
	}
}
