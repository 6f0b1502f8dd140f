package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"shelf/src/internal/enrich"
	"shelf/src/internal/googlebooks"
	"shelf/src/internal/isbn"
	"shelf/src/internal/openlibrary"
)

func newLookupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Print the raw answer of one source for an ISBN",
	}
	sub := func(name, short string, src func() source) *cobra.Command {
		return &cobra.Command{
			Use:   name + " <isbn>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := isbn.Validate(args[0])
				if err != nil {
					return err
				}
				raw, ok := src().Raw(cmd.Context(), id)
				if !ok {
					return fmt.Errorf("%s: %w: %s", name, enrich.ErrNotFound, id)
				}
				var buf bytes.Buffer
				if err := json.Indent(&buf, raw, "", "  "); err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				buf.WriteByte('\n')
				_, err = buf.WriteTo(cmd.OutOrStdout())
				return err
			},
		}
	}
	cmd.AddCommand(
		sub(openlibrary.Name, "Query the Open Library Books API", func() source { return a.openLibrary }),
		sub(googlebooks.Name, "Query the Google Books volumes API", func() source { return a.googleBooks }),
	)
	return cmd
}
