package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"shelf/src/internal/logging"
	"shelf/src/internal/record"
)

func newEnrichCmd(a *app) *cobra.Command {
	var tagsOnly bool
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Fill in missing tags, dates and descriptions for every stored book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c, err := a.load(ctx)
			if err != nil {
				return err
			}
			pass := a.engine.Enrich
			action := "enrich"
			if tagsOnly {
				pass = a.engine.EnrichTags
				action = "enrich tags"
			}
			var keys []string
			queried := 0
			n, sweepErr := c.Sweep(ctx, func(ctx context.Context, r record.Record) record.Record {
				next, rep := pass(ctx, r)
				if len(rep.Queried) > 0 {
					queried++
				}
				if len(rep.Changed) > 0 {
					keys = append(keys, rep.Key)
				}
				return next
			})
			// Whatever was enriched before a cancellation is still saved.
			if n > 0 {
				if err := a.save(context.WithoutCancel(ctx), c, action, keys); err != nil {
					return err
				}
			}
			logging.Ctx(ctx).Info().Int("books", c.Len()).Int("queried", queried).Int("updated", n).Msg(action + " finished")
			fmt.Fprintf(cmd.OutOrStdout(), "%d books, %d looked up, %d updated\n", c.Len(), queried, n)
			return sweepErr
		},
	}
	cmd.Flags().BoolVar(&tagsOnly, "tags-only", false, "only fetch subject tags from Open Library")
	return cmd
}
