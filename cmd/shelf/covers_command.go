package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mmcdole/shelf/internal/covers"
	"github.com/mmcdole/shelf/internal/domain"
)

func newCoversCommand(ctx *commandContext) *cobra.Command {
	coversCmd := &cobra.Command{
		Use:   "covers",
		Short: "Fetch and manage cached cover art",
	}

	coversCmd.AddCommand(newCoversFetchCommand(ctx))
	coversCmd.AddCommand(newCoversStatsCommand(ctx))
	coversCmd.AddCommand(newCoversClearCommand(ctx))

	return coversCmd
}

func newCoversFetchCommand(ctx *commandContext) *cobra.Command {
	var size string

	cmd := &cobra.Command{
		Use:   "fetch <cover-id>...",
		Short: "Download covers into the cache",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]domain.CoverID, 0, len(args))
			for _, arg := range args {
				id, err := domain.ParseCoverID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			return ctx.withApp(cmd.Context(), func(a *app) error {
				if size != "" {
					variant, err := domain.ParseSizeVariant(size)
					if err != nil {
						return err
					}
					a.cfg.Covers.Variant = string(variant)
				}
				pipeline := a.startWorkers(cmd.Context())

				pending := 0
				for _, id := range ids {
					if pipeline.Request(id) {
						pending++
					}
				}

				var rows [][]string
				failed := 0
				for pending > 0 {
					msg, ok := a.inbox.Next(cmd.Context())
					if !ok {
						return cmd.Context().Err()
					}
					done, ok := msg.(covers.FetchDone)
					if !ok {
						continue
					}
					u, ok := pipeline.Complete(done)
					if !ok {
						continue
					}
					pending--
					if u.State.Kind != covers.StateReady {
						failed++
					}
					rows = append(rows, fetchRow(u))
				}

				writeRows(cmd.OutOrStdout(), []string{"Cover", "State", "Path"}, rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft}, 2)
				if failed > 0 {
					return fmt.Errorf("%d of %d covers unavailable", failed, len(rows))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&size, "size", "", "Size variant to fetch: S, M or L (default from config)")
	return cmd
}

func fetchRow(u covers.Update) []string {
	return []string{u.Cover.String(), u.State.Kind.String(), u.Path}
}

func newCoversStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cover cache usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stats, err := covers.NewStore(cfg.CoverDir(), covers.WithLogger(ctx.log())).Stats()
			if err != nil {
				return err
			}
			printCoverStats(cmd.OutOrStdout(), cfg.CoverDir(), stats)
			return nil
		},
	}
}

func printCoverStats(out io.Writer, dir string, stats covers.CacheStats) {
	fmt.Fprintf(out, "Directory: %s\n", dir)
	fmt.Fprintf(out, "Covers:    %s\n", humanize.Comma(int64(stats.Files)))
	fmt.Fprintf(out, "Size:      %s\n", humanize.Bytes(uint64(stats.Bytes)))
}

func newCoversClearCommand(ctx *commandContext) *cobra.Command {
	var searches bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached cover",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app) error {
				before, err := a.covers.Stats()
				if err != nil {
					return err
				}
				if err := a.covers.Clear(); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Removed %s covers (%s)\n", humanize.Comma(int64(before.Files)), humanize.Bytes(uint64(before.Bytes)))
				if searches {
					a.library.ClearSearchCache()
					fmt.Fprintln(out, "Cleared cached search results")
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&searches, "searches", false, "Also clear cached search results")
	return cmd
}
