package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rostrum/internal/connectors/filesystem"
	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/logger"
)

var (
	ingestWatch bool
	ingestIndex bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Ingest speech files",
	Long: `Reads a speech file or every file under a directory and stores it as a
document. Files named like FRA_78_2023.txt get their country, session and
year filled in automatically.

Re-ingesting a file replaces the stored document and drops its segments.

With --watch, new and changed files under the directory are ingested as
they appear until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep watching the directory for new files")
	ingestCmd.Flags().BoolVar(&ingestIndex, "index", false, "embed each document right after it is ingested")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if ingestIndex && indexService == nil {
		return errors.New("index service not configured")
	}

	path := args[0]
	ctx := commandContext(cmd)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to ingest: %w", err)
	}

	if !info.IsDir() {
		if ingestWatch {
			return errors.New("--watch needs a directory")
		}
		doc, err := ingestService.IngestFile(ctx, path)
		if err != nil {
			return fmt.Errorf("failed to ingest: %w", err)
		}
		cmd.Printf("Ingested %s (%s)\n", doc.ID, doc.Title)
		return indexIngested(ctx, cmd, doc)
	}

	report, err := ingestService.IngestDir(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to ingest: %w", err)
	}
	cmd.Printf("Ingested %d, unchanged %d, skipped %d, failed %d\n",
		report.Ingested, report.Unchanged, report.Skipped, report.Failed)

	if ingestIndex && report.Ingested > 0 {
		if err := runIndexReport(ctx, cmd, nil, 0); err != nil {
			return err
		}
	}

	if !ingestWatch {
		return nil
	}
	return watchAndIngest(ctx, cmd, filesystem.New(path))
}

func watchAndIngest(ctx context.Context, cmd *cobra.Command, w *filesystem.Watcher) error {
	defer w.Close()

	changes, err := w.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch: %w", err)
	}
	cmd.Printf("Watching %s for new speeches (Ctrl+C to stop)\n", w.Root())

	for change := range changes {
		switch change.Type {
		case filesystem.ChangeCreated, filesystem.ChangeUpdated:
			doc, err := ingestService.IngestFile(ctx, change.Path)
			if errors.Is(err, domain.ErrUnsupportedType) {
				logger.Debug("Skipping %s: unsupported type", change.Path)
				continue
			}
			if err != nil {
				cmd.Printf("Failed %s: %v\n", change.Path, err)
				continue
			}
			cmd.Printf("Ingested %s (%s)\n", doc.ID, doc.Title)
			if err := indexIngested(ctx, cmd, doc); err != nil {
				cmd.Printf("Failed to index %s: %v\n", doc.ID, err)
			}
		case filesystem.ChangeDeleted:
			logger.Info("%s was removed; its document stays until deleted", change.Path)
		}
	}
	return nil
}

func indexIngested(ctx context.Context, cmd *cobra.Command, doc *domain.Document) error {
	if !ingestIndex {
		return nil
	}
	return runIndexReport(ctx, cmd, []string{doc.ID}, 0)
}
