package enrich

import (
	"context"

	"shelf/src/internal/record"
)

// Source is one bibliographic service: a query plus the extractor for its payload.
// Lookup reports false for every kind of miss (network, not found, bad payload).
type Source interface {
	Name() string
	Lookup(ctx context.Context, id string) (record.Record, bool)
}

// Step is a single lookup of one identifier against one source.
type Step struct {
	Source Source
	ID     string
}

// Chain is an ordered list of steps tried until one answers.
type Chain []Step

// ChainFor builds the steps for src over ids in order, skipping empty and
// repeated identifiers.
func ChainFor(src Source, ids ...string) Chain {
	if src == nil {
		return nil
	}
	seen := map[string]bool{}
	var c Chain
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		c = append(c, Step{Source: src, ID: id})
	}
	return c
}

// Run tries each step in order and returns the first answer and the step that
// produced it. ok is false when every step missed.
func (c Chain) Run(ctx context.Context) (r record.Record, hit Step, ok bool) {
	for _, s := range c {
		if ctx.Err() != nil {
			return record.Record{}, Step{}, false
		}
		if r, ok := s.Source.Lookup(ctx, s.ID); ok {
			return r, s, true
		}
	}
	return record.Record{}, Step{}, false
}
