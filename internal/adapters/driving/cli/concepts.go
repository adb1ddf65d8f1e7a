package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	trendsCountries []string
	trendsJSON      bool
	eventsJSON      bool
	regionsJSON     bool
)

var conceptsCmd = &cobra.Command{
	Use:   "concepts",
	Short: "Tag and track discourse concepts",
	Long: `Concepts are named themes such as sovereignty or climate, each defined by
weighted terms. Segments are tagged with the concepts they discuss so
their use can be followed across countries and decades.

Without a subcommand, lists the known concepts.`,
	RunE: runConceptsList,
}

var conceptsTagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Tag every segment with the concepts it discusses",
	Args:  cobra.NoArgs,
	RunE:  runConceptsTag,
}

var conceptsTrendsCmd = &cobra.Command{
	Use:   "trends [concept]",
	Short: "Show how often a concept is discussed per country and decade",
	Args:  cobra.ExactArgs(1),
	RunE:  runConceptsTrends,
}

var conceptsEventsCmd = &cobra.Command{
	Use:   "events [concept]",
	Short: "Compare a concept's mentions around world events",
	Long: `With a concept, shows each linked world event with the number of tagged
segments in the year before, the year of and the year after it.
Without one, lists every known event.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConceptsEvents,
}

var conceptsRegionsCmd = &cobra.Command{
	Use:   "regions [concept]",
	Short: "Show the share of each region's speeches that discuss a concept",
	Args:  cobra.ExactArgs(1),
	RunE:  runConceptsRegions,
}

func init() {
	conceptsEventsCmd.Flags().BoolVar(&eventsJSON, "json", false, "output as JSON")
	conceptsRegionsCmd.Flags().BoolVar(&regionsJSON, "json", false, "output as JSON")
	conceptsTrendsCmd.Flags().StringSliceVarP(&trendsCountries, "country", "c", nil, "ISO3 country codes to include")
	conceptsTrendsCmd.Flags().BoolVar(&trendsJSON, "json", false, "output as JSON")

	conceptsCmd.AddCommand(conceptsTagCmd)
	conceptsCmd.AddCommand(conceptsTrendsCmd)
	conceptsCmd.AddCommand(conceptsEventsCmd)
	conceptsCmd.AddCommand(conceptsRegionsCmd)
	rootCmd.AddCommand(conceptsCmd)
}

func runConceptsList(cmd *cobra.Command, _ []string) error {
	if conceptService == nil {
		return errors.New("concept service not configured")
	}

	concepts, err := conceptService.Concepts(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list concepts: %w", err)
	}
	if len(concepts) == 0 {
		cmd.Println("No concepts defined.")
		return nil
	}

	for _, c := range concepts {
		terms := make([]string, len(c.Terms))
		for i, t := range c.Terms {
			terms[i] = t.Term
		}
		cmd.Printf("  %s [%s]\n", c.Name, c.Category)
		if c.Description != "" {
			cmd.Printf("      %s\n", c.Description)
		}
		cmd.Printf("      terms: %s\n", strings.Join(terms, ", "))
	}
	return nil
}

func runConceptsTag(cmd *cobra.Command, _ []string) error {
	if conceptService == nil {
		return errors.New("concept service not configured")
	}

	n, err := conceptService.Tag(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("tagging failed: %w", err)
	}
	cmd.Printf("Tagged %d segment(s)\n", n)
	return nil
}

func runConceptsTrends(cmd *cobra.Command, args []string) error {
	if conceptService == nil {
		return errors.New("concept service not configured")
	}

	trends, err := conceptService.Trends(commandContext(cmd), args[0], upperAll(trendsCountries))
	if err != nil {
		return fmt.Errorf("failed to compute trends: %w", err)
	}

	if trendsJSON {
		return printJSON(cmd, trends)
	}
	if len(trends) == 0 {
		cmd.Printf("No segments tagged with %q. Run 'rostrum concepts tag' first.\n", args[0])
		return nil
	}

	cmd.Printf("%-8s %-8s %9s %9s\n", "Country", "Decade", "Mentions", "Speeches")
	for _, t := range trends {
		cmd.Printf("%-8s %-8s %9d %9d\n", t.CountryCode, fmt.Sprintf("%ds", t.Decade), t.Mentions, t.Speeches)
	}
	return nil
}

func runConceptsEvents(cmd *cobra.Command, args []string) error {
	if conceptService == nil {
		return errors.New("concept service not configured")
	}
	ctx := commandContext(cmd)

	if len(args) == 0 {
		events, err := conceptService.Events(ctx, "")
		if err != nil {
			return fmt.Errorf("failed to list events: %w", err)
		}
		if eventsJSON {
			return printJSON(cmd, events)
		}
		for _, e := range events {
			years := fmt.Sprint(e.Year)
			if e.EndYear > 0 {
				years = fmt.Sprintf("%d-%d", e.Year, e.EndYear)
			}
			cmd.Printf("  %-10s %s [%s] %s\n", years, e.Name, e.Category, strings.Join(e.Concepts, ", "))
		}
		return nil
	}

	impacts, err := conceptService.EventImpacts(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to compare events: %w", err)
	}
	if eventsJSON {
		return printJSON(cmd, impacts)
	}
	if len(impacts) == 0 {
		cmd.Printf("No world events are linked to %q.\n", args[0])
		return nil
	}

	cmd.Printf("%-6s %-35s %8s %8s %8s %8s\n", "Year", "Event", "Before", "During", "After", "Change")
	for _, im := range impacts {
		cmd.Printf("%-6d %-35s %8d %8d %8d %+8d\n",
			im.Event.Year, im.Event.Name, im.Before, im.During, im.After, im.Change())
	}
	return nil
}

func runConceptsRegions(cmd *cobra.Command, args []string) error {
	if conceptService == nil {
		return errors.New("concept service not configured")
	}

	trends, err := conceptService.RegionalTrends(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to compute regional trends: %w", err)
	}
	if regionsJSON {
		return printJSON(cmd, trends)
	}
	if len(trends) == 0 {
		cmd.Println("No speeches ingested.")
		return nil
	}

	cmd.Printf("%-12s %-6s %9s %11s %8s\n", "Region", "Year", "Speeches", "Mentioning", "Share")
	for _, t := range trends {
		cmd.Printf("%-12s %-6d %9d %11d %7.1f%%\n", t.Region, t.Year, t.Speeches, t.Mentioning, t.Percent)
	}
	return nil
}
