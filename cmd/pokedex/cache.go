package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/pokedex/internal/app"
)

func newCacheCommand() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Cache maintenance commands",
	}
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop every cached listing and upstream payload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if a.Cache == nil {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), "cache is disabled")
					return err
				}
				if err := a.Cache.Clear(ctx); err != nil {
					return fmt.Errorf("cache.Clear > %w", err)
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "cleared %s cache\n", a.Config.Cache.Backend)
				return err
			})
		},
	})
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Remove expired cache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if a.Cache == nil {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), "cache is disabled")
					return err
				}
				n, err := a.Cache.Purge(ctx)
				if err != nil {
					return fmt.Errorf("cache.Purge > %w", err)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired entries\n", n)
				return err
			})
		},
	})
	return cacheCmd
}
