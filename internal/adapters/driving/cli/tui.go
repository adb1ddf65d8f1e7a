package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui"
)

// runProgram runs the TUI until the user quits. Tests replace it.
var runProgram = func(app *tui.App) error {
	return app.Run()
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse and search speeches interactively",
	Long: `Opens a terminal browser over the indexed speeches. Search segments with
country and year filters, read whole speeches, and follow similar passages
from one speech to the next.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if searchService == nil || documentService == nil {
		return errors.New("search service not configured")
	}

	app, err := tui.NewApp(&tui.Ports{
		Search:     searchService,
		Documents:  documentService,
		Similarity: similarityService,
		Segments:   segmentStore,
	})
	if err != nil {
		return err
	}
	return runProgram(app.WithContext(cmd.Context()))
}
