package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
	"github.com/custodia-labs/rostrum/internal/logger"
)

// Ensure AgentOrchestrator implements the interface.
var _ driving.AgentService = (*AgentOrchestrator)(nil)

// AgentOrchestrator runs the tool-calling loop for one persona.
//
// Each ask is a bounded state machine: Idle -> Stepping, then per model
// reply either ToolCall -> Stepping, Done, or StepLimitReached once
// MaxSteps model calls have been made. Only one ask runs at a time.
type AgentOrchestrator struct {
	cfg        *domain.AgentConfig
	llm        driven.LLMService
	dispatcher *ToolDispatcher
	memory     *ConversationMemory

	// run serialises asks.
	run sync.Mutex

	mu    sync.RWMutex
	state domain.AgentState
}

// NewAgentOrchestrator creates an agent. A nil memory is created from the
// persona's system prompts.
func NewAgentOrchestrator(
	cfg *domain.AgentConfig,
	llm driven.LLMService,
	dispatcher *ToolDispatcher,
	memory *ConversationMemory,
) (*AgentOrchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if dispatcher == nil {
		var err error
		dispatcher, err = NewToolDispatcher(cfg)
		if err != nil {
			return nil, err
		}
	}
	if memory == nil {
		memory = NewConversationMemory(cfg.SystemPrompts)
	}

	return &AgentOrchestrator{
		cfg:        cfg,
		llm:        llm,
		dispatcher: dispatcher,
		memory:     memory,
		state:      domain.AgentIdle,
	}, nil
}

// State returns the state of the current or last ask.
func (a *AgentOrchestrator) State() domain.AgentState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Memory returns the conversation log.
func (a *AgentOrchestrator) Memory() *ConversationMemory {
	return a.memory
}

// Config returns the persona the agent runs with.
func (a *AgentOrchestrator) Config() *domain.AgentConfig {
	return a.cfg
}

// Reset clears the conversation and returns the agent to Idle.
func (a *AgentOrchestrator) Reset() {
	a.run.Lock()
	defer a.run.Unlock()
	a.memory.Reset()
	a.setState(domain.AgentIdle)
}

// Ask appends question to the conversation and steps the model until it
// answers without tool calls or MaxSteps model calls have been made.
// Reaching the step limit is an outcome, not an error. A failed model
// call ends the ask with an error and leaves the agent Idle.
func (a *AgentOrchestrator) Ask(ctx context.Context, question string) (*domain.AgentOutcome, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	a.run.Lock()
	defer a.run.Unlock()

	logger.Section("Agent " + a.cfg.Name)
	a.memory.Append(ctx, domain.Message{Role: domain.RoleUser, Content: question})

	schemas := a.dispatcher.Schemas()
	opts := driven.ChatOptions{Model: a.cfg.Model, Temperature: a.cfg.Temperature}
	outcome := &domain.AgentOutcome{}

	a.setState(domain.AgentStepping)
	for outcome.Steps < a.cfg.MaxSteps {
		if err := ctx.Err(); err != nil {
			a.setState(domain.AgentIdle)
			return nil, err
		}

		resp, err := a.llm.ChatWithTools(ctx, a.memory.Messages(), schemas, opts)
		outcome.Steps++
		if err != nil {
			logger.Error("Agent %s step %d: model call failed: %v", a.cfg.Name, outcome.Steps, err)
			a.setState(domain.AgentIdle)
			return nil, fmt.Errorf("agent %s: step %d: %w", a.cfg.Name, outcome.Steps, err)
		}

		calls := assignCallIDs(resp.ToolCalls, outcome.Steps)
		a.memory.Append(ctx, domain.Message{
			Role:      domain.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: calls,
		})

		if len(calls) == 0 {
			a.setState(domain.AgentDone)
			outcome.State = domain.AgentDone
			outcome.Answer = resp.Content
			logger.Info("Agent %s answered after %d step(s), %d tool call(s)",
				a.cfg.Name, outcome.Steps, outcome.ToolCalls)
			return outcome, nil
		}

		a.setState(domain.AgentToolCall)
		logger.Debug("Step %d: %d tool call(s)", outcome.Steps, len(calls))

		results := a.dispatcher.DispatchAll(ctx, calls)
		outcome.ToolCalls += len(results)

		msgs := make([]domain.Message, len(results))
		for i, r := range results {
			msgs[i] = r.Message()
		}
		a.memory.Append(ctx, msgs...)

		a.setState(domain.AgentStepping)
	}

	a.setState(domain.AgentStepLimitReached)
	outcome.State = domain.AgentStepLimitReached
	logger.Warn("Agent %s stopped at step limit %d without an answer", a.cfg.Name, a.cfg.MaxSteps)
	return outcome, nil
}

func (a *AgentOrchestrator) setState(s domain.AgentState) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = s
}

// assignCallIDs fills in IDs some providers omit, so every tool message
// can be matched to its call.
func assignCallIDs(calls []domain.ToolCall, step int) []domain.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]domain.ToolCall, len(calls))
	for i, c := range calls {
		if c.ID == "" {
			c.ID = fmt.Sprintf("call_%d_%d", step, i)
		}
		out[i] = c
	}
	return out
}
