package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

var (
	similarK         int
	similarText      string
	similarThreshold float64
	similarJSON      bool
)

// Filter flags shared by matrix and pairs.
var (
	filterDocs      []string
	filterCountries []string
	filterYearFrom  int
	filterYearTo    int
	filterLimit     int
	filterJSON      bool
	matrixThreshold float64
	pairsThreshold  float64
	pairsTop        int
)

var similarCmd = &cobra.Command{
	Use:   "similar [segment-id]",
	Short: "Find segments similar to a segment or text",
	Long: `Ranks stored segments by cosine similarity to a segment or, with --text,
to a piece of free text. Scores range from -1 to 1; 1 means identical
direction.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSimilar,
}

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Print the similarity matrix for a set of segments",
	Long: `Computes pairwise similarity between the segments of the selected
documents. The diagonal is 1 and cells below --threshold are 0.`,
	Args: cobra.NoArgs,
	RunE: runMatrix,
}

var pairsCmd = &cobra.Command{
	Use:   "pairs",
	Short: "List the most similar segment pairs",
	Long:  `Lists segment pairs from the selected documents whose similarity reaches --threshold, highest first.`,
	Args:  cobra.NoArgs,
	RunE:  runPairs,
}

func init() {
	similarCmd.Flags().IntVarP(&similarK, "limit", "n", 10, "number of results")
	similarCmd.Flags().StringVarP(&similarText, "text", "t", "", "compare against this text instead of a segment")
	similarCmd.Flags().Float64Var(&similarThreshold, "threshold", 0, "minimum similarity")
	similarCmd.Flags().BoolVar(&similarJSON, "json", false, "output results as JSON")

	for _, c := range []*cobra.Command{matrixCmd, pairsCmd} {
		c.Flags().StringSliceVarP(&filterDocs, "doc", "d", nil, "document IDs to include")
		c.Flags().StringSliceVarP(&filterCountries, "country", "c", nil, "ISO3 country codes to include")
		c.Flags().IntVar(&filterYearFrom, "from", 0, "first year to include")
		c.Flags().IntVar(&filterYearTo, "to", 0, "last year to include")
		c.Flags().IntVarP(&filterLimit, "limit", "n", 0, "maximum documents (0 = no limit)")
		c.Flags().BoolVar(&filterJSON, "json", false, "output as JSON")
	}
	matrixCmd.Flags().Float64Var(&matrixThreshold, "threshold", 0, "zero cells below this similarity")
	pairsCmd.Flags().Float64Var(&pairsThreshold, "threshold", 0.8, "minimum similarity")
	pairsCmd.Flags().IntVar(&pairsTop, "top", 20, "show at most this many pairs (0 = all)")

	rootCmd.AddCommand(similarCmd)
	rootCmd.AddCommand(matrixCmd)
	rootCmd.AddCommand(pairsCmd)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	if similarityService == nil {
		return errors.New("similarity service not configured")
	}

	ctx := commandContext(cmd)
	var (
		results []domain.ScoredSegment
		err     error
	)
	switch {
	case len(args) == 1 && similarText != "":
		return errors.New("give a segment ID or --text, not both")
	case len(args) == 1:
		results, err = similarityService.SimilarSegments(ctx, args[0], similarK, similarThreshold)
	case similarText != "":
		results, err = similarityService.SimilarToText(ctx, similarText, similarK, similarThreshold)
	default:
		return errors.New("a segment ID or --text is required")
	}
	if err != nil {
		return fmt.Errorf("similarity failed: %w", err)
	}

	if similarJSON {
		return printJSON(cmd, results)
	}
	if len(results) == 0 {
		cmd.Println("No similar segments found.")
		return nil
	}
	for i, r := range results {
		cmd.Printf("  [%d] %s (%.4f)\n", i+1, r.SegmentID, r.Score)
	}
	return nil
}

func runMatrix(cmd *cobra.Command, _ []string) error {
	if similarityService == nil {
		return errors.New("similarity service not configured")
	}

	m, err := similarityService.Matrix(commandContext(cmd), documentFilter(), matrixThreshold)
	if err != nil {
		return fmt.Errorf("similarity failed: %w", err)
	}

	if filterJSON {
		return printJSON(cmd, m)
	}
	if len(m.SegmentIDs) == 0 {
		cmd.Println("No embedded segments match the filter.")
		return nil
	}

	cmd.Printf("%d segments, threshold %.2f\n\n", len(m.SegmentIDs), m.Threshold)
	var header strings.Builder
	fmt.Fprintf(&header, "%-10s", "")
	for j := range m.SegmentIDs {
		fmt.Fprintf(&header, " %6d", j+1)
	}
	cmd.Println(header.String())
	for i, row := range m.Cells {
		var line strings.Builder
		fmt.Fprintf(&line, "%3d %-6s", i+1, shortID(m.SegmentIDs[i]))
		for _, v := range row {
			fmt.Fprintf(&line, " %6.3f", v)
		}
		cmd.Println(line.String())
	}
	return nil
}

func runPairs(cmd *cobra.Command, _ []string) error {
	if similarityService == nil {
		return errors.New("similarity service not configured")
	}

	pairs, err := similarityService.Pairs(commandContext(cmd), documentFilter(), pairsThreshold)
	if err != nil {
		return fmt.Errorf("similarity failed: %w", err)
	}
	if pairsTop > 0 && len(pairs) > pairsTop {
		pairs = pairs[:pairsTop]
	}

	if filterJSON {
		return printJSON(cmd, pairs)
	}
	if len(pairs) == 0 {
		cmd.Printf("No pairs at or above %.2f.\n", pairsThreshold)
		return nil
	}
	for i, p := range pairs {
		cmd.Printf("  [%d] %s ~ %s (%.4f)\n", i+1, p.SegmentA, p.SegmentB, p.Score)
	}
	return nil
}

func documentFilter() domain.DocumentFilter {
	return domain.DocumentFilter{
		DocumentIDs:  filterDocs,
		CountryCodes: upperAll(filterCountries),
		YearFrom:     filterYearFrom,
		YearTo:       filterYearTo,
		Limit:        filterLimit,
	}
}

func shortID(id string) string {
	if len(id) <= 6 {
		return id
	}
	return id[:6]
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
