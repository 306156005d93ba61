package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/pokedex/internal/app"
	"github.com/at-ishikawa/pokedex/internal/query"
)

var _ pflag.Value = (*query.Sort)(nil)

func newQueryCommand() *cobra.Command {
	var (
		params query.Params
		asJSON bool
	)
	params.Sort = query.SortID

	command := &cobra.Command{
		Use:   "query",
		Short: "List stored species",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				result, err := a.Engine.Query(ctx, params)
				if err != nil {
					return fmt.Errorf("engine.Query > %w", err)
				}
				if asJSON {
					encoder := json.NewEncoder(cmd.OutOrStdout())
					encoder.SetIndent("", "  ")
					return encoder.Encode(result)
				}
				return printResult(cmd.OutOrStdout(), result)
			})
		},
	}
	flags := command.Flags()
	flags.StringVarP(&params.Search, "search", "q", "", "case-insensitive name substring")
	flags.StringVarP(&params.Type, "type", "t", "", "type the species must have")
	flags.Var(&params.Sort, "sort", fmt.Sprintf("sort mode (%s)", sortNames()))
	flags.IntVar(&params.Page, "page", 1, "page number")
	flags.IntVar(&params.PerPage, "per-page", 0, "records per page (default from config)")
	flags.StringVarP(&params.UserID, "user", "u", "", "requesting user for favorites_first")
	flags.BoolVar(&asJSON, "json", false, "print JSON")
	return command
}

func sortNames() string {
	names := make([]string, 0, len(query.Sorts))
	for _, s := range query.Sorts {
		names = append(names, s.String())
	}
	return strings.Join(names, "|")
}

func printResult(w io.Writer, result *query.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tNAME\tTYPES\tHEIGHT\tWEIGHT"); err != nil {
		return err
	}
	for _, r := range result.Records {
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\n", r.ExternalID, r.Name, strings.Join(r.Types, ","), r.Height, r.Weight); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	p := result.Pagination
	_, err := fmt.Fprintf(w, "page %d/%d, %d total, has_prev=%t has_next=%t\n", p.Page, p.Pages, p.Total, p.HasPrev, p.HasNext)
	return err
}
