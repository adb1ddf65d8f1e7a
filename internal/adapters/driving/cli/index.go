package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var indexLimit int

var indexCmd = &cobra.Command{
	Use:   "index [doc-id...]",
	Short: "Embed document segments",
	Long: `Chunks documents into segments and embeds every segment that has no
vector yet. With no arguments all documents are processed.

Indexing is resumable: a second run over an unchanged corpus creates no
new embeddings.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().IntVarP(&indexLimit, "limit", "n", 0, "process at most this many documents (0 = all)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}
	return runIndexReport(commandContext(cmd), cmd, args, indexLimit)
}

func runIndexReport(ctx context.Context, cmd *cobra.Command, ids []string, limit int) error {
	report, err := indexService.Index(ctx, ids, limit)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	cmd.Printf("Documents: %d processed, %d failed\n", report.DocumentsProcessed, report.DocumentsFailed)
	cmd.Printf("Segments:  %d created, %d reused\n", report.SegmentsCreated, report.SegmentsSkipped)
	cmd.Printf("Vectors:   %d created, %d already embedded\n", report.EmbeddingsCreated, report.EmbeddingsSkipped)

	for _, f := range report.Failures {
		cmd.Printf("  ! %s: %v\n", f.DocumentID, f.Err)
	}
	return nil
}
