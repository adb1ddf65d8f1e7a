package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rostrum/internal/adapters/driving/api"
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
	"github.com/custodia-labs/rostrum/internal/logger"
)

var (
	serveAddr        string
	serveAgent       string
	serveNoScheduler bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON API",
	Long: `Serves the similarity, search and agent endpoints over HTTP under
/api/v1, and runs the background scheduler that keeps the index and
concept tags up to date.

Endpoints:
  GET  /api/v1/similarity/pairs
  GET  /api/v1/similarity/matrix
  GET  /api/v1/segments/:id/similar
  GET  /api/v1/search?q=...
  POST /api/v1/ask`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings, 127.0.0.1:8080)")
	serveCmd.Flags().StringVarP(&serveAgent, "agent", "a", "", "agent persona for /ask")
	serveCmd.Flags().BoolVar(&serveNoScheduler, "no-scheduler", false, "do not run background tasks")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if similarityService == nil {
		return errors.New("similarity service not configured")
	}

	ports := api.Ports{
		Similarity: similarityService,
		Search:     searchService,
	}
	if agentFactory != nil {
		ports.Agents = func() (driving.AgentService, error) { return agentFactory(serveAgent) }
	}

	server, err := api.New(ports)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	if scheduler != nil && !serveNoScheduler {
		go func() {
			if err := scheduler.Start(ctx); err != nil {
				logger.Warn("scheduler stopped: %v", err)
			}
		}()
		defer func() {
			if err := scheduler.Stop(); err != nil {
				logger.Warn("stopping scheduler: %v", err)
			}
		}()
	}

	addr := resolveServeAddr()
	cmd.Printf("API listening on http://%s/api/v1\n", addr)
	return server.Run(ctx, addr)
}

func resolveServeAddr() string {
	if serveAddr != "" {
		return serveAddr
	}
	if settingsService != nil {
		if s, err := settingsService.Get(); err == nil && s.API.Addr != "" {
			return s.API.Addr
		}
	}
	return "127.0.0.1:8080"
}
