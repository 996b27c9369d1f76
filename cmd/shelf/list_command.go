package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmcdole/shelf/internal/library"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var filter, output string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List library items",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := validateOutput(output)
			if err != nil {
				return err
			}
			return ctx.withApp(cmd.Context(), func(a *app) error {
				items, err := a.library.ListItems(cmd.Context())
				if err != nil {
					return err
				}
				items = library.Filter(items, filter)

				out := cmd.OutOrStdout()
				if format != outputTable {
					return encodeDocument(out, format, newItemDocument(items))
				}
				if len(items) == 0 {
					if isTerminal(out) {
						fmt.Fprintln(out, "No items")
					}
					return nil
				}
				rows := make([][]string, len(items))
				for i, item := range items {
					rows[i] = itemRow(item)
				}
				writeRows(out, itemHeaders, rows, itemAligns, 1)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Fuzzy filter on title and author")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "Output format: table, yaml or toml")
	return cmd
}
