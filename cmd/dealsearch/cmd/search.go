package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dealsearch/dealsearch/internal/output"
)

type searchOptions struct {
	limit  int
	format string // "text", "json"
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the deals catalog",
		Long: `Search ranks offers against a free-text query by combining keyword,
fuzzy, and semantic matching into a single composite score (see
internal/rank for the scoring pipeline).

Examples:
  dealsearch search "chocolate"
  dealsearch search "something to drink with breakfast" --limit 5
  dealsearch search "gift card" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(cmd, query, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 40, "maximum number of deals to return")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format: text, json")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, opts searchOptions) error {
	out := output.New(cmd.OutOrStdout())
	cfg := loadConfig()

	engine, err := buildEngine(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("build search engine: %w", err)
	}

	deals, err := engine.Search(cmd.Context(), query, opts.limit)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if opts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(deals)
	}

	if len(deals) == 0 {
		out.Status("", fmt.Sprintf("no deals found for %q", query))
		return nil
	}

	out.Statusf("", "found %d deals for %q:", len(deals), query)
	out.Newline()
	for i, d := range deals {
		out.Statusf("", "%d. %s (score: %.3f)", i+1, d.Offer.Name, d.Score)
		if len(d.MatchingProducts) > 0 {
			out.Status("", fmt.Sprintf("   %d matching product(s)", len(d.MatchingProducts)))
		}
	}
	return nil
}
