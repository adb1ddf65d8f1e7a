package cli

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rostrum/internal/adapters/driving/mcp"
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
)

var (
	mcpAgent string
	mcpHost  string
	mcpPort  int
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose speech search, similarity and the agent over MCP",
	Long: `Serve the speech corpus to MCP clients.

Tools: similar_segments and similarity_matrix, plus search when text
search is available and ask when a chat provider is configured.
Speeches are also exposed as resources.

Stdio is the default. --port serves streamable HTTP instead, which the
MCP Inspector can connect to.

Examples:
  rostrum mcp serve
  rostrum mcp serve --agent skeptic
  rostrum mcp serve --port 8080 --host 127.0.0.1`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "localhost", "HTTP listen host")
	mcpServeCmd.Flags().StringVarP(&mcpAgent, "agent", "a", "", "agent persona for the ask tool")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if similarityService == nil {
		return errors.New("similarity service not configured")
	}

	ports := &mcp.Ports{
		Similarity: similarityService,
		Search:     searchService,
		Document:   documentService,
		Version:    version,
	}
	if agentFactory != nil {
		ports.Agents = func() (driving.AgentService, error) { return agentFactory(mcpAgent) }
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	if mcpPort > 0 {
		addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
