// Package cli provides the cobra command tree for rostrum.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
	"github.com/custodia-labs/rostrum/internal/logger"
)

// version is set by Execute from build flags.
var version = "dev"

// AgentFactory builds a fresh agent for the named persona. An empty name
// selects the configured default.
type AgentFactory func(name string) (driving.AgentService, error)

// Services holds everything the commands drive. Nil fields disable the
// commands that need them.
type Services struct {
	Similarity driving.SimilarityService
	Search     driving.SearchService
	Documents  driving.DocumentService
	Index      driving.IndexService
	Ingest     driving.IngestService
	Concepts   driving.ConceptService
	Quotations driving.QuotationService
	Settings   driving.SettingsService
	Scheduler  driving.Scheduler
	Notes      driven.NoteStore
	Config     driven.ConfigStore
	Segments   driven.SegmentStore
	Agents     AgentFactory
	AgentNames func() ([]string, error)

	// Close releases stores and clients. May be nil.
	Close func() error
}

// Options are the global flags handed to a Bootstrapper.
type Options struct {
	DataDir string
}

// Bootstrapper builds the services once flags are parsed.
type Bootstrapper func(ctx context.Context, opts Options) (*Services, error)

var (
	similarityService driving.SimilarityService
	searchService     driving.SearchService
	documentService   driving.DocumentService
	indexService      driving.IndexService
	ingestService     driving.IngestService
	conceptService    driving.ConceptService
	quotationService  driving.QuotationService
	settingsService   driving.SettingsService
	scheduler         driving.Scheduler
	noteStore         driven.NoteStore
	configStore       driven.ConfigStore
	segmentStore      driven.SegmentStore
	agentFactory      AgentFactory
	agentNames        func() ([]string, error)
	closeServices     func() error

	bootstrap     Bootstrapper
	servicesReady bool
)

// Global flags.
var (
	verboseFlag   bool
	logFormatFlag string
	dataDirFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "rostrum",
	Short: "Semantic analysis of UN General Debate speeches",
	Long: `rostrum ingests UN General Debate speeches, embeds their segments and
answers questions about them.

Find speeches that say similar things, track concepts across countries and
decades, or ask the research agent to dig through the corpus for you.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", string(logger.FormatText), "log format (text or json)")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory (default ~/.rostrum)")
}

// SetServices installs the services used by the commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	similarityService = s.Similarity
	searchService = s.Search
	documentService = s.Documents
	indexService = s.Index
	ingestService = s.Ingest
	conceptService = s.Concepts
	quotationService = s.Quotations
	settingsService = s.Settings
	scheduler = s.Scheduler
	noteStore = s.Notes
	configStore = s.Config
	segmentStore = s.Segments
	agentFactory = s.Agents
	agentNames = s.AgentNames
	closeServices = s.Close
	servicesReady = true
}

// Execute runs the root command. boot is called after flag parsing for
// every command except version.
func Execute(ctx context.Context, ver string, boot Bootstrapper) error {
	if ver != "" {
		version = ver
	}
	bootstrap = boot
	defer func() {
		if closeServices == nil {
			return
		}
		if err := closeServices(); err != nil {
			logger.Warn("closing services: %v", err)
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verboseFlag)
	if err := logger.SetFormat(logger.Format(logFormatFlag)); err != nil {
		return err
	}

	if cmd == versionCmd || servicesReady || bootstrap == nil {
		return nil
	}

	svc, err := bootstrap(cmd.Context(), Options{DataDir: dataDirFlag})
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	SetServices(svc)
	return nil
}

// commandContext returns the command's context, falling back to
// Background when the command was run without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

var errAgentNotConfigured = errors.New("agent not configured: set an LLM provider with 'rostrum settings llm'")

// upperAll trims and uppercases country codes, dropping blanks.
func upperAll(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
			out = append(out, c)
		}
	}
	return out
}
