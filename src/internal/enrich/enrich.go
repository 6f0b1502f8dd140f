// Package enrich decides which bibliographic sources a catalog record needs and
// reconciles their answers into it.
//
// There are exactly two sources. Open Library is preferred for subject tags;
// Google Books is preferred for everything else and is the only source of
// descriptions. Stored records are only ever filled in (MergeExisting); new
// records take Google's shape with Open Library's tags (MergeNew).
package enrich

import (
	"context"
	"errors"
	"fmt"

	"shelf/src/internal/isbn"
	"shelf/src/internal/logging"
	"shelf/src/internal/record"
	"shelf/src/internal/stringsx"
)

// ErrNotFound is returned by Create when neither source knows the identifier.
var ErrNotFound = errors.New("book not found")

// Engine runs enrichment passes. Sources are queried serially.
type Engine struct {
	OpenLibrary Source
	GoogleBooks Source
}

// Report describes one pass over one record.
type Report struct {
	Key      string
	Queried  []string
	Answered []string
	Changed  []string
}

// Identifiers lists the ids to try for r, most specific first: ISBN-13,
// ISBN-10, the ISBN-10 derived from the ISBN-13, then the scanned input.
func Identifiers(r record.Record) []string {
	return []string{r.ISBN13, r.ISBN10, isbn.To10(r.ISBN13), isbn.Normalize(r.ScannedInput)}
}

// Enrich runs one pass over cur and returns the merged record. Only the
// sources Needs asks for are queried; a fully enriched record costs nothing.
func (e *Engine) Enrich(ctx context.Context, cur record.Record) (record.Record, Report) {
	rep := Report{Key: cur.Key()}
	needOL, needGB := Needs(cur)
	ids := Identifiers(cur)
	var ol, gb record.Record
	if needOL {
		ol = e.query(ctx, &rep, ChainFor(e.OpenLibrary, ids...))
	}
	if needGB {
		gb = e.query(ctx, &rep, ChainFor(e.GoogleBooks, ids...))
	}
	next := MergeExisting(cur, ol, gb)
	rep.Changed = record.Changed(cur, next)
	logChanges(ctx, rep, next)
	return next, rep
}

// EnrichTags is the tag-only pass: Open Library is asked for subjects of
// titled records that have none.
func (e *Engine) EnrichTags(ctx context.Context, cur record.Record) (record.Record, Report) {
	rep := Report{Key: cur.Key()}
	if cur.Tags != "" || cur.Title == "" || cur.Title == UnknownTitle {
		return cur, rep
	}
	ol := e.query(ctx, &rep, ChainFor(e.OpenLibrary, Identifiers(cur)...))
	next := cur
	next.Tags = ol.Tags
	rep.Changed = record.Changed(cur, next)
	if len(rep.Answered) > 0 && ol.Tags == "" {
		logging.Ctx(ctx).Info().Str("key", rep.Key).Msg("no tags found")
	}
	logChanges(ctx, rep, next)
	return next, rep
}

// Create looks up an identifier that is not in the catalog yet. Invalid input
// is rejected with isbn.ErrInvalid before any source is queried.
func (e *Engine) Create(ctx context.Context, input string) (record.Record, Report, error) {
	id, err := isbn.Validate(input)
	if err != nil {
		return record.Record{}, Report{}, err
	}
	alt := isbn.To10(id)
	if isbn.IsValid10(id) {
		alt = isbn.To13(id)
	}
	rep := Report{Key: id}
	gb := e.query(ctx, &rep, ChainFor(e.GoogleBooks, id, alt))
	ol := e.query(ctx, &rep, ChainFor(e.OpenLibrary, id, alt))
	if len(rep.Answered) == 0 {
		return record.Record{}, rep, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	r := MergeNew(ol, gb)
	r.ScannedInput = id
	rep.Key = r.Key()
	rep.Changed = record.Changed(record.Record{}, r)
	logging.Ctx(ctx).Info().Str("key", rep.Key).Strs("sources", rep.Answered).Str("title", r.Title).Msg("book added")
	return r, rep, nil
}

func (e *Engine) query(ctx context.Context, rep *Report, c Chain) record.Record {
	if len(c) == 0 {
		return record.Record{}
	}
	name := c[0].Source.Name()
	rep.Queried = append(rep.Queried, name)
	r, hit, ok := c.Run(ctx)
	if !ok {
		logging.Ctx(ctx).Debug().Str("key", rep.Key).Str("source", name).Msg("no data")
		return record.Record{}
	}
	rep.Answered = append(rep.Answered, name)
	logging.Ctx(ctx).Debug().Str("key", rep.Key).Str("source", name).Str("id", hit.ID).Msg("data fetched")
	return r
}

func logChanges(ctx context.Context, rep Report, next record.Record) {
	if len(rep.Changed) == 0 {
		return
	}
	row := next.Row()
	l := logging.Ctx(ctx)
	for _, f := range rep.Changed {
		for i, h := range record.Header {
			if h == f {
				l.Info().Str("key", rep.Key).Str("field", f).Str("value", stringsx.Clip(row[i], 80)).Msg("field updated")
			}
		}
	}
}
