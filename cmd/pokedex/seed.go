package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/pokedex/internal/app"
	"github.com/at-ishikawa/pokedex/internal/seeder"
)

func newSeedCommand() *cobra.Command {
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Seeding commands",
	}
	seedCmd.AddCommand(
		newSeedRangeCommand(),
		newSeedGenerationCommand(),
		newSeedUpdateCommand(),
		newSeedClearCommand(),
	)
	return seedCmd
}

func newSeedRangeCommand() *cobra.Command {
	var batchSize int

	command := &cobra.Command{
		Use:   "range START END",
		Short: "Seed every species id in [START, END]",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid start %q: %w", args[0], err)
			}
			end, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid end %q: %w", args[1], err)
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				size := batchSize
				if size == 0 {
					size = a.Config.Seeding.BatchSize
				}
				summary, err := a.Seeder.SeedRange(ctx, start, end, size)
				if err != nil {
					return fmt.Errorf("seeder.SeedRange > %w", err)
				}
				return printSummary(cmd.OutOrStdout(), summary)
			})
		},
	}
	command.Flags().IntVar(&batchSize, "batch-size", 0, "ids per checkpoint (default from config)")
	return command
}

func newSeedGenerationCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generation NAME",
		Short: "Seed every species of a generation such as kanto or generation-ii",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				summary, err := a.Seeder.SeedGeneration(ctx, args[0])
				if err != nil {
					return fmt.Errorf("seeder.SeedGeneration > %w", err)
				}
				return printSummary(cmd.OutOrStdout(), summary)
			})
		},
	}
}

func newSeedUpdateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update ID",
		Short: "Re-fetch one stored species",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				summary, err := a.Seeder.Update(ctx, id)
				if err != nil {
					return fmt.Errorf("seeder.Update > %w", err)
				}
				return printSummary(cmd.OutOrStdout(), summary)
			})
		},
	}
}

func newSeedClearCommand() *cobra.Command {
	var yes bool

	command := &cobra.Command{
		Use:   "clear",
		Short: "Delete every species and favorite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete every species without --yes")
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				summary, err := a.Seeder.Clear(ctx)
				if err != nil {
					return fmt.Errorf("seeder.Clear > %w", err)
				}
				return printSummary(cmd.OutOrStdout(), summary)
			})
		},
	}
	command.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return command
}

func printSummary(w io.Writer, summary *seeder.Summary) error {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	if _, err := bold.Fprintf(w, "Run %s: %s %s\n", summary.RunID, summary.Operation, summary.Target); err != nil {
		return err
	}
	if summary.Operation == seeder.OperationClear {
		if _, err := fmt.Fprintf(w, "  Deleted:   %d\n", summary.Deleted); err != nil {
			return err
		}
	} else {
		lines := []struct {
			c     *color.Color
			label string
			value int
		}{
			{c: color.New(color.Reset), label: "Attempted", value: summary.Attempted},
			{c: green, label: "Succeeded", value: summary.Succeeded},
			{c: red, label: "Failed", value: summary.Failed},
			{c: yellow, label: "Skipped", value: summary.Skipped},
		}
		for _, line := range lines {
			if _, err := line.c.Fprintf(w, "  %-10s %d\n", line.label+":", line.value); err != nil {
				return err
			}
		}
	}
	if _, err := fmt.Fprintf(w, "  Records:   %d -> %d (%+d)\n", summary.RecordsBefore, summary.RecordsAfter, summary.NetChange()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  Duration:  %s\n", summary.Duration.Round(time.Millisecond)); err != nil {
		return err
	}
	if summary.Canceled {
		if _, err := yellow.Fprintln(w, "  Canceled before completion; rerun to resume."); err != nil {
			return err
		}
	}
	for _, id := range summary.FailedIDs() {
		if _, err := red.Fprintf(w, "  #%d: %s\n", id, summary.Failures[id]); err != nil {
			return err
		}
	}
	return nil
}
