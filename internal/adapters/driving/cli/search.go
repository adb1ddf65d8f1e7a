package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

var (
	searchLimit     int
	searchJSON      bool
	searchCountries []string
	searchYearFrom  int
	searchYearTo    int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search speeches by keyword",
	Long: `Runs a full-text keyword search over speech segments.
Results are ranked by BM25 relevance and show the matching passage.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringSliceVarP(&searchCountries, "country", "c", nil, "ISO3 country codes to include")
	searchCmd.Flags().IntVar(&searchYearFrom, "from", 0, "first year to include")
	searchCmd.Flags().IntVar(&searchYearTo, "to", 0, "last year to include")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	opts := domain.SearchOptions{
		Limit:        searchLimit,
		CountryCodes: upperAll(searchCountries),
		YearFrom:     searchYearFrom,
		YearTo:       searchYearTo,
	}

	results, err := searchService.Search(commandContext(cmd), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		r := &results[i]
		title := r.Document.Title
		if title == "" {
			title = r.Document.ID
		}

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, r.Score)
		if code := r.Document.MetaString(domain.MetaCountryCode); code != "" {
			cmd.Printf("      %s, %d\n", countryLabel(&r.Document), r.Document.Year())
		}
		snippet := r.Highlight
		if snippet == "" {
			snippet = r.Segment.Content
		}
		if snippet != "" {
			cmd.Printf("      %s\n", truncate(snippet, 200))
		}
		cmd.Printf("      segment %s\n", r.Segment.ID)
		cmd.Println()
	}

	return nil
}

func countryLabel(doc *domain.Document) string {
	if name := doc.MetaString(domain.MetaCountryName); name != "" {
		return name
	}
	return doc.MetaString(domain.MetaCountryCode)
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
