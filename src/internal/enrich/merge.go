package enrich

import (
	"shelf/src/internal/dates"
	"shelf/src/internal/record"
)

// UnknownTitle is the placeholder title the tag pass skips.
const UnknownTitle = "Unknown Title"

// Needs reports which sources an enrichment pass over r has to query:
// Open Library while tags are missing, Google Books while the publish date is
// not ISO or the description is missing.
func Needs(r record.Record) (openLibrary, googleBooks bool) {
	return r.Tags == "", !dates.IsValid(r.PublishDate) || r.Description == ""
}

// MergeExisting folds source answers into a stored record. ol and gb are the
// Open Library and Google Books answers; either may be the zero Record.
// Fields only ever go from empty to filled, except that a non-ISO publish date
// is replaced by an ISO one. Applying it twice with the same answers changes
// nothing the second time.
func MergeExisting(cur, ol, gb record.Record) record.Record {
	next := cur
	if next.Tags == "" {
		if ol.Tags != "" {
			next.Tags = ol.Tags
		} else {
			next.Tags = gb.Tags
		}
	}
	if !dates.IsValid(next.PublishDate) && dates.IsValid(gb.PublishDate) {
		next.PublishDate = gb.PublishDate
	}
	if next.Description == "" {
		next.Description = gb.Description
	}
	if next.Thumbnail == "" {
		next.Thumbnail = gb.Thumbnail
	}
	return next
}

// MergeNew shapes a record that is not in the catalog yet. Google Books
// supplies the record and Open Library fills whatever it left empty. Tags are
// the exception: Open Library's subjects replace Google's categories whenever
// Open Library has any.
func MergeNew(ol, gb record.Record) record.Record {
	next := gb
	fill(&next, ol)
	if ol.Tags != "" || gb.Tags == "" {
		next.Tags = ol.Tags
	}
	return next
}

// fill copies every non-empty field of src into an empty field of dst.
func fill(dst *record.Record, src record.Record) {
	pairs := []struct {
		d *string
		s string
	}{
		{&dst.ISBN13, src.ISBN13},
		{&dst.ISBN10, src.ISBN10},
		{&dst.Title, src.Title},
		{&dst.Subtitle, src.Subtitle},
		{&dst.Author, src.Author},
		{&dst.PublishDate, src.PublishDate},
		{&dst.URL, src.URL},
		{&dst.ScannedInput, src.ScannedInput},
		{&dst.Tags, src.Tags},
		{&dst.Thumbnail, src.Thumbnail},
		{&dst.Description, src.Description},
	}
	for _, p := range pairs {
		if *p.d == "" {
			*p.d = p.s
		}
	}
}
