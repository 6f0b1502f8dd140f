// Package openlibrary fetches book data from the Open Library Books API and
// maps it to a catalog record. Open Library is the preferred tag source.
package openlibrary

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"shelf/src/internal/httpx"
	"shelf/src/internal/logging"
	"shelf/src/internal/names"
	"shelf/src/internal/record"
	"shelf/src/internal/sanitize"
)

// Name identifies this source in logs and reports.
const Name = "openlibrary"

// DefaultBaseURL is the public Open Library host.
const DefaultBaseURL = "https://openlibrary.org"

// Payload is the jscmd=data response: bibkey ("ISBN:<id>") to book.
type Payload map[string]Book

// Book is the subset of a jscmd=data book object that the catalog uses.
type Book struct {
	Identifiers struct {
		ISBN13 []string `json:"isbn_13"`
		ISBN10 []string `json:"isbn_10"`
	} `json:"identifiers"`
	Title       string  `json:"title"`
	Subtitle    string  `json:"subtitle"`
	Authors     []named `json:"authors"`
	PublishDate string  `json:"publish_date"`
	URL         string  `json:"url"`
	Subjects    []named `json:"subjects"`
	Cover       struct {
		Large string `json:"large"`
	} `json:"cover"`
}

// named accepts either {"name": "..."} or a bare string.
type named struct {
	Name string `json:"name"`
}

func (n *named) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		n.Name = s
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	n.Name = obj.Name
	return nil
}

// Client queries the Books API.
type Client struct {
	fetcher *httpx.Fetcher
	BaseURL string
}

// New returns a Client using f for transport.
func New(f *httpx.Fetcher) *Client {
	return &Client{fetcher: f, BaseURL: DefaultBaseURL}
}

// Name implements enrich.Source.
func (c *Client) Name() string { return Name }

func (c *Client) endpoint(id string) string {
	q := url.Values{}
	q.Set("bibkeys", "ISBN:"+id)
	q.Set("format", "json")
	q.Set("jscmd", "data")
	return strings.TrimRight(c.BaseURL, "/") + "/api/books?" + q.Encode()
}

// Raw returns the undecoded response body, or false on any failure.
func (c *Client) Raw(ctx context.Context, id string) (json.RawMessage, bool) {
	body, err := c.fetcher.Get(ctx, c.endpoint(id))
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("source", Name).Str("id", id).Msg("fetch failed")
		return nil, false
	}
	return json.RawMessage(body), true
}

// Fetch returns the payload for id. Network errors, bad JSON and a response
// without the requested bibkey all yield false.
func (c *Client) Fetch(ctx context.Context, id string) (Payload, bool) {
	if strings.TrimSpace(id) == "" {
		return nil, false
	}
	var p Payload
	if err := c.fetcher.GetJSON(ctx, c.endpoint(id), &p); err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("source", Name).Str("id", id).Msg("fetch failed")
		return nil, false
	}
	if _, ok := p["ISBN:"+id]; !ok {
		return nil, false
	}
	return p, true
}

// Lookup fetches id and extracts a record from the answer.
func (c *Client) Lookup(ctx context.Context, id string) (record.Record, bool) {
	p, ok := c.Fetch(ctx, id)
	if !ok {
		return record.Record{}, false
	}
	return Extract(id, p), true
}

// Extract maps the book stored under "ISBN:<id>" to a record. Open Library
// never supplies a description.
func Extract(id string, p Payload) record.Record {
	b := p["ISBN:"+id]
	authors := make([]string, 0, len(b.Authors))
	for _, a := range b.Authors {
		authors = append(authors, a.Name)
	}
	subjects := make([]string, 0, len(b.Subjects))
	for _, s := range b.Subjects {
		subjects = append(subjects, s.Name)
	}
	r := record.Record{
		ISBN13:       first(b.Identifiers.ISBN13),
		ISBN10:       first(b.Identifiers.ISBN10),
		Title:        b.Title,
		Subtitle:     b.Subtitle,
		Author:       names.Join(authors),
		PublishDate:  b.PublishDate,
		URL:          b.URL,
		Tags:         names.Join(subjects),
		Thumbnail:    b.Cover.Large,
		ScannedInput: id,
	}
	sanitize.CleanRecord(&r)
	return r
}

func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}
