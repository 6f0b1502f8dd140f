package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shelf/src/internal/isbn"
)

func newShowCmd(a *app) *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "show <isbn>",
		Short: "Print a stored book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := isbn.Validate(args[0])
			if err != nil {
				return err
			}
			c, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			r, ok := c.Find(id)
			if !ok {
				return fmt.Errorf("%s is not in the catalog", id)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, r)
			if full {
				for _, kv := range [][2]string{
					{"ISBN-13", r.ISBN13}, {"ISBN-10", r.ISBN10},
					{"Tags", r.Tags}, {"Thumbnail", r.Thumbnail}, {"Description", r.Description},
				} {
					if kv[1] != "" {
						fmt.Fprintf(out, "%s: %s\n", kv[0], kv[1])
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "also print identifiers, tags, thumbnail and description")
	return cmd
}
