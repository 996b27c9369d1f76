package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmcdole/shelf/internal/library"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var (
		importN int
		output  string
		offline bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search Open Library and optionally import a result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return fmt.Errorf("search query is empty")
			}
			format, err := validateOutput(output)
			if err != nil {
				return err
			}

			return ctx.withApp(cmd.Context(), func(a *app) error {
				var outcome library.SearchOutcome
				if offline {
					results, ok := a.library.CachedResults(query)
					if !ok {
						return fmt.Errorf("no cached results for %q", query)
					}
					outcome = library.SearchOutcome{Query: query, Results: results, FromCache: true}
				} else {
					var err error
					outcome, err = a.library.SearchOnline(cmd.Context(), query)
					if err != nil {
						return fmt.Errorf("search %q: %w", query, err)
					}
				}

				out := cmd.OutOrStdout()
				if importN > 0 {
					if importN > len(outcome.Results) {
						return fmt.Errorf("result %d out of range: %d results for %q", importN, len(outcome.Results), query)
					}
					item, err := a.library.Import(cmd.Context(), outcome.Results[importN-1])
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Imported %q (id %d)\n", item.Title, item.ID)
					return nil
				}

				if format != outputTable {
					return encodeDocument(out, format, newResultDocument(query, outcome.FromCache, outcome.Results))
				}
				if len(outcome.Results) == 0 {
					fmt.Fprintf(out, "No results for %q\n", query)
					return nil
				}
				rows := make([][]string, len(outcome.Results))
				for i, r := range outcome.Results {
					rows[i] = resultRow(i+1, r)
				}
				writeRows(out, resultHeaders, rows, resultAligns, 1)
				if outcome.FromCache && isTerminal(out) {
					fmt.Fprintln(out, "(cached)")
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&importN, "import", "i", 0, "Import result N (1-based) as a backlog book")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "Output format: table, yaml or toml")
	cmd.Flags().BoolVar(&offline, "offline", false, "Answer only from cached results")
	return cmd
}
