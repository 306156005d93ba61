package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/pokedex/internal/app"
	"github.com/at-ishikawa/pokedex/internal/bootstrap"
	"github.com/at-ishikawa/pokedex/internal/config"
)

var (
	configFile string
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		if _, fprintfErr := fmt.Fprintf(os.Stderr, "failed to execute a command: %+v\n", err); fprintfErr != nil {
			panic(fmt.Errorf("failed to output an error: %w. Reason: %w", err, fprintfErr))
		}
		os.Exit(1)
	}
	os.Exit(0)
}

func newRootCommand() *cobra.Command {
	var debugMode bool
	rootCommand := &cobra.Command{
		Use:           "pokedex",
		Short:         "Seed and query a local species catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(debugMode)
			return nil
		},
	}
	rootCommand.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCommand.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode")

	rootCommand.AddCommand(
		newMigrateCommand(),
		newSeedCommand(),
		newQueryCommand(),
		newFavoriteCommand(),
		newCacheCommand(),
		newClientMetricsCommand(),
	)
	return rootCommand
}

// setupLogger configures the default logger based on debug mode
func setupLogger(debugMode bool) {
	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	}

	slog.SetDefault(
		slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})),
	)
}

// withApp builds the application, runs fn with interrupt handling and
// closes the application afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("app.New > %w", err)
	}

	lifecycle := bootstrap.New()
	lifecycle.AddShutdownHook(func(ctx context.Context) error {
		return a.Close()
	})
	return lifecycle.Run(cmd.Context(), func(ctx context.Context) error {
		return fn(ctx, a)
	})
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Migrate(ctx); err != nil {
					return fmt.Errorf("a.Migrate > %w", err)
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "schema is up to date (%s)\n", a.Config.Database.Driver)
				return err
			})
		},
	}
}
