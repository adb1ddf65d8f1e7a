package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	notesLimit int
	notesJSON  bool
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "List research notes saved by the agent",
	Args:  cobra.NoArgs,
	RunE:  runNotes,
}

func init() {
	notesCmd.Flags().IntVarP(&notesLimit, "limit", "n", 20, "maximum number of notes")
	notesCmd.Flags().BoolVar(&notesJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(notesCmd)
}

func runNotes(cmd *cobra.Command, _ []string) error {
	if noteStore == nil {
		return errors.New("note store not configured")
	}

	notes, err := noteStore.ListNotes(commandContext(cmd), notesLimit)
	if err != nil {
		return fmt.Errorf("failed to list notes: %w", err)
	}

	if notesJSON {
		return printJSON(cmd, notes)
	}
	if len(notes) == 0 {
		cmd.Println("No notes yet.")
		return nil
	}

	for i := range notes {
		n := &notes[i]
		cmd.Printf("%s  %s\n", n.CreatedAt.Local().Format("2006-01-02 15:04"), n.Title)
		cmd.Printf("  %s\n\n", n.Body)
	}
	return nil
}
