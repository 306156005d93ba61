package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/pokedex/internal/app"
)

func newFavoriteCommand() *cobra.Command {
	favoriteCmd := &cobra.Command{
		Use:   "favorite",
		Short: "Manage the favorites of a user",
	}
	favoriteCmd.AddCommand(
		newFavoriteMutationCommand("add", "Mark a species as a favorite", func(ctx context.Context, a *app.App, userID string, id int) (bool, error) {
			return a.Favorites.Add(ctx, userID, id)
		}),
		newFavoriteMutationCommand("remove", "Unmark a favorite species", func(ctx context.Context, a *app.App, userID string, id int) (bool, error) {
			return a.Favorites.Remove(ctx, userID, id)
		}),
		newFavoriteListCommand(),
	)
	return favoriteCmd
}

type favoriteMutation func(ctx context.Context, a *app.App, userID string, id int) (bool, error)

func newFavoriteMutationCommand(use, short string, mutate favoriteMutation) *cobra.Command {
	return &cobra.Command{
		Use:   use + " USER ID",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[1], err)
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				changed, err := mutate(ctx, a, args[0], id)
				if err != nil {
					return fmt.Errorf("favorite %s > %w", use, err)
				}
				state := "unchanged"
				if changed {
					state = "done"
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s #%d: %s\n", use, args[0], id, state)
				return err
			})
		},
	}
}

func newFavoriteListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list USER",
		Short: "List the favorite species ids of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				ids, err := a.Favorites.List(ctx, args[0])
				if err != nil {
					return fmt.Errorf("favorites.List > %w", err)
				}
				for _, id := range ids {
					if _, err := fmt.Fprintln(cmd.OutOrStdout(), id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
