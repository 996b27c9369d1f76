package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmcdole/shelf/internal/domain"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var (
		mediaType string
		status    string
		author    string
		notes     string
		year      int
		rating    int
		coverID   int64
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add an item to the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mt, err := domain.ParseMediaType(mediaType)
			if err != nil {
				return err
			}
			st, err := domain.ParseItemStatus(status)
			if err != nil {
				return err
			}
			if year < 0 {
				return fmt.Errorf("%w: year must not be negative", domain.ErrInvalidItem)
			}
			item := domain.Item{
				Title:            args[0],
				MediaType:        mt,
				Status:           st,
				Rating:           rating,
				Author:           author,
				Notes:            notes,
				FirstPublishYear: year,
				CoverID:          domain.CoverID(coverID),
			}

			return ctx.withApp(cmd.Context(), func(a *app) error {
				saved, err := a.library.AddItem(cmd.Context(), item)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %q (id %d)\n", saved.Title, saved.ID)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&mediaType, "type", "t", string(domain.MediaTypeBook), "Media type: book, comic or movie")
	flags.StringVarP(&status, "status", "s", string(domain.StatusBacklog), "Status: backlog, in_progress or done")
	flags.StringVarP(&author, "author", "a", "", "Author or creator")
	flags.StringVar(&notes, "notes", "", "Free-form notes")
	flags.IntVarP(&year, "year", "y", 0, "First publish year")
	flags.IntVarP(&rating, "rating", "r", 0, "Rating from 1 to 5, 0 for unrated")
	flags.Int64Var(&coverID, "cover", 0, "Open Library cover id")
	return cmd
}
