package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"shelf/src/internal/catalog"
	"shelf/src/internal/enrich"
	"shelf/src/internal/isbn"
	"shelf/src/internal/logging"
	"shelf/src/internal/record"
)

const scanPrompt = "Scan ISBN (q to quit): "

func newScanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Interactively scan ISBNs into the catalog",
		Long: "Reads one identifier per line from stdin. Known books are shown, new ones are\n" +
			"looked up in Google Books and Open Library and saved. Enter q to quit.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c, err := a.load(ctx)
			if err != nil {
				return err
			}
			return a.scan(ctx, c, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func (a *app) scan(ctx context.Context, c *catalog.Catalog, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	fmt.Fprint(out, scanPrompt)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(sc.Text())
		if strings.EqualFold(line, "q") {
			break
		}
		if line != "" {
			r, added, err := a.resolve(ctx, c, line, out)
			switch {
			case err != nil:
				return err
			case r.IsZero():
				a.cue.Failure()
			default:
				if added {
					if err := a.save(ctx, c, "add", []string{r.Key()}); err != nil {
						return err
					}
				}
				a.cue.Success()
			}
		}
		fmt.Fprint(out, scanPrompt)
	}
	fmt.Fprintln(out)
	return sc.Err()
}

// resolve shows a known book or creates a new one. A zero record with a nil
// error means the input was rejected or no source knew it.
func (a *app) resolve(ctx context.Context, c *catalog.Catalog, input string, out io.Writer) (record.Record, bool, error) {
	if _, err := isbn.Validate(input); err != nil {
		fmt.Fprintf(out, "Invalid ISBN: %s\n", input)
		return record.Record{}, false, nil
	}
	if r, ok := c.Find(input); ok {
		fmt.Fprintf(out, "Already in catalog:\n%s\n", r)
		return r, false, nil
	}
	r, _, err := a.engine.Create(ctx, input)
	switch {
	case errors.Is(err, enrich.ErrNotFound):
		fmt.Fprintf(out, "Book not found: %s\n", isbn.Normalize(input))
		return record.Record{}, false, nil
	case err != nil:
		return record.Record{}, false, err
	}
	if !c.Put(r) {
		return record.Record{}, false, fmt.Errorf("record for %s has no key", input)
	}
	fmt.Fprintf(out, "Added:\n%s\n", r)
	logging.Ctx(ctx).Debug().Str("key", r.Key()).Int("books", c.Len()).Msg("catalog updated")
	return r, true, nil
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <isbn>...",
		Short: "Add books by ISBN without the interactive prompt",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.load(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			var added []string
			failed := 0
			for _, in := range args {
				r, ok, err := a.resolve(ctx, c, in, out)
				if err != nil {
					return err
				}
				if r.IsZero() {
					failed++
				}
				if ok {
					added = append(added, r.Key())
				}
			}
			if len(added) > 0 {
				if err := a.save(ctx, c, "add", added); err != nil {
					return err
				}
			}
			fmt.Fprintf(out, "added %d, skipped %d\n", len(added), len(args)-len(added))
			if failed > 0 {
				return fmt.Errorf("%d of %d identifiers could not be added", failed, len(args))
			}
			return nil
		},
	}
}
