package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
)

var (
	askAgent      string
	askListAgents bool
)

// Replaced in tests.
var (
	stdin           io.Reader = os.Stdin
	stdinIsTerminal           = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the research agent a question",
	Long: `Sends a question to the research agent, which searches the speeches,
compares passages and runs queries until it can answer.

Without a question, ask reads one from stdin; on a terminal it starts an
interactive session instead. Type /reset to clear the conversation and
/exit to leave.`,
	Args: cobra.ArbitraryArgs,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askAgent, "agent", "a", "", "agent persona to use (default from settings)")
	askCmd.Flags().BoolVar(&askListAgents, "list-agents", false, "list available agent personas")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askListAgents {
		return listAgents(cmd)
	}
	if agentFactory == nil {
		return errAgentNotConfigured
	}

	agent, err := agentFactory(askAgent)
	if err != nil {
		return fmt.Errorf("failed to start agent: %w", err)
	}
	ctx := commandContext(cmd)

	if len(args) > 0 {
		return askOnce(ctx, cmd, agent, strings.Join(args, " "))
	}
	if stdinIsTerminal() {
		return askInteractive(ctx, cmd, agent)
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("failed to read question: %w", err)
	}
	question := strings.TrimSpace(string(data))
	if question == "" {
		return errors.New("no question given")
	}
	return askOnce(ctx, cmd, agent, question)
}

func askOnce(ctx context.Context, cmd *cobra.Command, agent driving.AgentService, question string) error {
	outcome, err := agent.Ask(ctx, question)
	if err != nil {
		return fmt.Errorf("agent failed: %w", err)
	}
	printOutcome(cmd, outcome)
	return nil
}

func askInteractive(ctx context.Context, cmd *cobra.Command, agent driving.AgentService) error {
	cmd.Println("Ask about the General Debate. /reset clears the conversation, /exit quits.")
	scanner := bufio.NewScanner(stdin)

	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		case "/reset":
			agent.Reset()
			cmd.Println("Conversation cleared.")
			continue
		}

		outcome, err := agent.Ask(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			cmd.Printf("Error: %v\n", err)
			continue
		}
		printOutcome(cmd, outcome)
	}
}

func printOutcome(cmd *cobra.Command, outcome *domain.AgentOutcome) {
	if outcome.Answered() {
		cmd.Println(outcome.Answer)
	} else {
		cmd.Printf("No answer after %d steps (%s).\n", outcome.Steps, outcome.State)
	}
	if verboseFlag {
		cmd.Printf("\n[%d steps, %d tool calls]\n", outcome.Steps, outcome.ToolCalls)
	}
}

func listAgents(cmd *cobra.Command) error {
	if agentNames == nil {
		return errAgentNotConfigured
	}
	names, err := agentNames()
	if err != nil {
		return fmt.Errorf("failed to list agents: %w", err)
	}
	for _, n := range names {
		cmd.Println(n)
	}
	return nil
}
