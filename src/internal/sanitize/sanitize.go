package sanitize

import (
	"net/url"
	"strings"

	"shelf/src/internal/record"
)

// CleanString trims and removes ASCII control characters except tab/newline/carriage
// return up to max bytes (if max <= 0, no truncation).
func CleanString(s string, max int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\t' || r == '\r' || (r >= 0x20 && r != 0x7f) {
			b.WriteRune(r)
			if max > 0 && b.Len() >= max {
				break
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// CleanURL returns a validated http/https URL or empty string.
func CleanURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	u.Path = strings.ReplaceAll(u.Path, " ", "%20")
	return u.String()
}

// CleanIdentifier keeps digits and X, upper-casing the check character.
func CleanIdentifier(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= '0' && r <= '9') || r == 'X' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CleanRecord applies conservative sanitization to every field of a source answer.
// ScannedInput is left verbatim.
func CleanRecord(r *record.Record) {
	if r == nil {
		return
	}
	r.ISBN13 = CleanIdentifier(r.ISBN13)
	r.ISBN10 = CleanIdentifier(r.ISBN10)
	r.Title = CleanString(r.Title, 512)
	r.Subtitle = CleanString(r.Subtitle, 512)
	r.Author = CleanString(r.Author, 1024)
	r.PublishDate = CleanString(r.PublishDate, 64)
	r.URL = CleanURL(r.URL)
	r.Tags = CleanString(r.Tags, 4096)
	r.Thumbnail = CleanURL(r.Thumbnail)
	r.Description = CleanString(r.Description, 12000)
}
