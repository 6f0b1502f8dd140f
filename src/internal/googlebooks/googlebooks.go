// Package googlebooks fetches single volumes from the Google Books API and maps
// them to catalog records. Google Books is the broader source: it is the only
// one that supplies descriptions and ISO publish dates.
package googlebooks

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
	"shelf/src/internal/stringsx"
)

// Name identifies this source in logs and reports.
const Name = "googlebooks"

// DefaultBaseURL is the public Books API root.
const DefaultBaseURL = "https://www.googleapis.com/books/v1"

// Volume is one entry of a volumes search response.
type Volume struct {
	VolumeInfo VolumeInfo `json:"volumeInfo"`
}

// VolumeInfo holds the fields of a volume the catalog uses.
type VolumeInfo struct {
	IndustryIdentifiers []Identifier `json:"industryIdentifiers"`
	Title               string       `json:"title"`
	Subtitle            string       `json:"subtitle"`
	Authors             []string     `json:"authors"`
	PublishedDate       string       `json:"publishedDate"`
	CanonicalVolumeLink string       `json:"canonicalVolumeLink"`
	InfoLink            string       `json:"infoLink"`
	Categories          []string     `json:"categories"`
	Description         string       `json:"description"`
	ImageLinks          struct {
		Thumbnail string `json:"thumbnail"`
	} `json:"imageLinks"`
}

// Identifier is an industryIdentifiers element, e.g. {"type":"ISBN_13","identifier":"978..."}.
type Identifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type searchResponse struct {
	TotalItems int               `json:"totalItems"`
	Items      []json.RawMessage `json:"items"`
}

// Client queries the volumes endpoint.
type Client struct {
	fetcher *httpx.Fetcher
	BaseURL string
	// APIKey is optional; unauthenticated requests share a small quota.
	APIKey string
}

// New returns a Client using f for transport.
func New(f *httpx.Fetcher, apiKey string) *Client {
	return &Client{fetcher: f, BaseURL: DefaultBaseURL, APIKey: apiKey}
}

// Name implements enrich.Source.
func (c *Client) Name() string { return Name }

func (c *Client) endpoint(id string) string {
	q := url.Values{}
	q.Set("q", "isbn:"+id)
	q.Set("maxResults", "1")
	if c.APIKey != "" {
		q.Set("key", c.APIKey)
	}
	return strings.TrimRight(c.BaseURL, "/") + "/volumes?" + q.Encode()
}

// Raw returns the first matching volume undecoded, or false when there is none.
func (c *Client) Raw(ctx context.Context, id string) (json.RawMessage, bool) {
	if strings.TrimSpace(id) == "" {
		return nil, false
	}
	var resp searchResponse
	if err := c.fetcher.GetJSON(ctx, c.endpoint(id), &resp); err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("source", Name).Str("id", id).Msg("fetch failed")
		return nil, false
	}
	if len(resp.Items) == 0 {
		return nil, false
	}
	return resp.Items[0], true
}

// Fetch returns the first volume matching id. Any failure yields false.
func (c *Client) Fetch(ctx context.Context, id string) (Volume, bool) {
	raw, ok := c.Raw(ctx, id)
	if !ok {
		return Volume{}, false
	}
	var v Volume
	if err := json.Unmarshal(raw, &v); err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("source", Name).Str("id", id).Msg("decode volume")
		return Volume{}, false
	}
	return v, true
}

// Lookup fetches id and extracts a record from the answer.
func (c *Client) Lookup(ctx context.Context, id string) (record.Record, bool) {
	v, ok := c.Fetch(ctx, id)
	if !ok {
		return record.Record{}, false
	}
	return Extract(id, v), true
}

// Extract maps a volume to a record. The URL prefers canonicalVolumeLink over infoLink.
func Extract(id string, v Volume) record.Record {
	vi := v.VolumeInfo
	r := record.Record{
		ISBN13:       identifier(vi.IndustryIdentifiers, "ISBN_13"),
		ISBN10:       identifier(vi.IndustryIdentifiers, "ISBN_10"),
		Title:        vi.Title,
		Subtitle:     vi.Subtitle,
		Author:       names.Join(vi.Authors),
		PublishDate:  vi.PublishedDate,
		URL:          stringsx.FirstNonEmpty(vi.CanonicalVolumeLink, vi.InfoLink),
		ScannedInput: id,
		Tags:         names.Join(vi.Categories),
		Thumbnail:    vi.ImageLinks.Thumbnail,
		Description:  vi.Description,
	}
	sanitize.CleanRecord(&r)
	return r
}

func identifier(ids []Identifier, typ string) string {
	for _, id := range ids {
		if id.Type == typ {
			return id.Identifier
		}
	}
	return ""
}
