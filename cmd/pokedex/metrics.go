package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/pokedex/internal/app"
	"github.com/at-ishikawa/pokedex/internal/pokeapi"
)

func newClientMetricsCommand() *cobra.Command {
	var probeID int

	command := &cobra.Command{
		Use:   "client-metrics",
		Short: "Probe the upstream API and print client metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if _, err := a.Client.FetchPokemon(ctx, probeID); err != nil {
					if _, err := color.New(color.FgRed).Fprintf(cmd.OutOrStdout(), "probe #%d failed: %v\n", probeID, err); err != nil {
						return err
					}
				} else if _, err := color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "probe #%d succeeded\n", probeID); err != nil {
					return err
				}
				return printMetrics(cmd.OutOrStdout(), a.Client.Metrics())
			})
		},
	}
	command.Flags().IntVar(&probeID, "probe-id", 25, "species id to fetch")
	return command
}

func printMetrics(w io.Writer, m pokeapi.MetricsSnapshot) error {
	remaining := "unknown"
	if m.RateLimitRemaining >= 0 {
		remaining = fmt.Sprint(m.RateLimitRemaining)
	}
	lastError := "none"
	if m.LastError != "" {
		lastError = fmt.Sprintf("%s at %s", m.LastError, m.LastErrorAt.Format(time.RFC3339))
	}
	_, err := fmt.Fprintf(w,
		"Total calls:     %d\nSuccesses:       %d\nFailures:        %d\nSuccess rate:    %.1f%%\nAverage latency: %s\nRate limit left: %s\nLast error:      %s\n",
		m.TotalCalls,
		m.Successes,
		m.Failures,
		m.SuccessRate()*100,
		m.AverageLatency.Round(time.Millisecond),
		remaining,
		lastError,
	)
	return err
}
