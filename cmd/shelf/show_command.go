package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mmcdole/shelf/internal/domain"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one library item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid item id %q", args[0])
			}
			format, err := validateOutput(output)
			if err != nil {
				return err
			}

			return ctx.withApp(cmd.Context(), func(a *app) error {
				item, err := a.library.GetItem(cmd.Context(), domain.ItemID(n))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if format != outputTable {
					return encodeDocument(out, format, newItemDocument([]domain.Item{*item}))
				}
				writeRows(out, []string{"Field", "Value"}, itemFields(*item, a.covers.Path(item.CoverID, domain.SizeVariant(a.cfg.Covers.Variant))), nil, 1)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "Output format: table, yaml or toml")
	return cmd
}

// itemFields lists an item as field/value pairs. coverPath is shown only
// for items that have a cover.
func itemFields(item domain.Item, coverPath string) [][]string {
	rows := [][]string{
		{"id", strconv.FormatInt(int64(item.ID), 10)},
		{"title", item.Title},
		{"type", label(string(item.MediaType))},
		{"status", label(string(item.Status))},
		{"rating", ratingText(item.Rating)},
	}
	if item.Author != "" {
		rows = append(rows, []string{"author", item.Author})
	}
	if year := item.YearLabel(); year != "" {
		rows = append(rows, []string{"year", year})
	}
	if item.OpenLibraryKey != "" {
		rows = append(rows, []string{"openlibrary", item.OpenLibraryKey})
	}
	if item.HasCover() {
		rows = append(rows, []string{"cover", item.CoverID.String()}, []string{"cover file", coverPath})
	}
	if item.Notes != "" {
		rows = append(rows, []string{"notes", item.Notes})
	}
	return rows
}
