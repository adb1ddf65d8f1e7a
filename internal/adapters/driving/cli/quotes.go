package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

var (
	quotesFigure string
	quotesQuery  string
	quotesDirect bool
	quotesLimit  int
	quotesJSON   bool
	topLimit     int
	topJSON      bool
)

var quotesCmd = &cobra.Command{
	Use:   "quotes",
	Short: "Find passages that speeches quote",
	Long: `Speakers often quote figures such as Gandhi or Mandela, or the UN Charter
itself. Quotations are extracted from stored speeches together with the
figure they are attributed to, and repeated ones are grouped.`,
}

var quotesExtractCmd = &cobra.Command{
	Use:   "extract [document-id...]",
	Short: "Extract quotations from all or the given speeches",
	RunE:  runQuotesExtract,
}

var quotesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List extracted quotations",
	Args:  cobra.NoArgs,
	RunE:  runQuotesList,
}

var quotesTopCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the quotations repeated across the most speeches",
	Args:  cobra.NoArgs,
	RunE:  runQuotesTop,
}

func init() {
	quotesListCmd.Flags().StringVarP(&quotesFigure, "figure", "f", "", "quoted figure, for example \"Nelson Mandela\"")
	quotesListCmd.Flags().StringVarP(&quotesQuery, "query", "q", "", "words the quotation contains")
	quotesListCmd.Flags().BoolVar(&quotesDirect, "direct", false, "only quotations with an explicit attribution")
	quotesListCmd.Flags().IntVarP(&quotesLimit, "limit", "n", 20, "maximum quotations (0 for all)")
	quotesListCmd.Flags().BoolVar(&quotesJSON, "json", false, "output as JSON")

	quotesTopCmd.Flags().IntVarP(&topLimit, "limit", "n", 10, "maximum groups (0 for all)")
	quotesTopCmd.Flags().BoolVar(&topJSON, "json", false, "output as JSON")

	quotesCmd.AddCommand(quotesExtractCmd)
	quotesCmd.AddCommand(quotesListCmd)
	quotesCmd.AddCommand(quotesTopCmd)
	rootCmd.AddCommand(quotesCmd)
}

func runQuotesExtract(cmd *cobra.Command, args []string) error {
	if quotationService == nil {
		return errors.New("quotation service not configured")
	}

	n, err := quotationService.Extract(commandContext(cmd), args)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	cmd.Printf("Extracted %d quotation(s)\n", n)
	return nil
}

func runQuotesList(cmd *cobra.Command, _ []string) error {
	if quotationService == nil {
		return errors.New("quotation service not configured")
	}

	quotes, err := quotationService.Search(commandContext(cmd), domain.QuotationFilter{
		Figure:     quotesFigure,
		Query:      quotesQuery,
		DirectOnly: quotesDirect,
		Limit:      quotesLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to list quotations: %w", err)
	}

	if quotesJSON {
		return printJSON(cmd, quotes)
	}
	if len(quotes) == 0 {
		cmd.Println("No quotations found. Run 'rostrum quotes extract' first.")
		return nil
	}

	for _, q := range quotes {
		figure := q.Figure
		if figure == "" {
			figure = "unattributed"
		}
		cmd.Printf("%d %s  %s (%.2f)\n", q.Year, q.CountryCode, figure, q.Confidence)
		cmd.Printf("    %q\n", q.Text)
	}
	return nil
}

func runQuotesTop(cmd *cobra.Command, _ []string) error {
	if quotationService == nil {
		return errors.New("quotation service not configured")
	}

	groups, err := quotationService.MostQuoted(commandContext(cmd), topLimit)
	if err != nil {
		return fmt.Errorf("failed to group quotations: %w", err)
	}

	if topJSON {
		return printJSON(cmd, groups)
	}
	if len(groups) == 0 {
		cmd.Println("No quotation appears in more than one speech.")
		return nil
	}

	for i, g := range groups {
		cmd.Printf("%d. Quoted %d times, %s, %d countries\n", i+1, g.Count, yearRange(g.FirstYear, g.LastYear), len(g.Countries))
		cmd.Printf("    %q\n", g.Text)
		switch {
		case g.Source != "":
			cmd.Printf("    Source: %s\n", g.Source)
		case g.Figure != "":
			cmd.Printf("    Attributed to: %s\n", g.Figure)
		}
	}
	return nil
}

func yearRange(first, last int) string {
	if first == last {
		return fmt.Sprint(first)
	}
	return fmt.Sprintf("%d-%d", first, last)
}
