package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
)

func agentConfig(maxSteps int, tools ...driven.Tool) *domain.AgentConfig {
	cfg := &domain.AgentConfig{
		Name:          "researcher",
		Model:         "test-model",
		Temperature:   0.2,
		MaxSteps:      maxSteps,
		SystemPrompts: []string{"You research UN speeches."},
	}
	for _, tool := range tools {
		cfg.Tools = append(cfg.Tools, schemaOf(tool))
	}
	return cfg
}

func newAgent(t *testing.T, llm driven.LLMService, maxSteps int, tools ...driven.Tool) *AgentOrchestrator {
	t.Helper()
	cfg := agentConfig(maxSteps, tools...)
	d, err := NewToolDispatcher(cfg, tools...)
	require.NoError(t, err)
	a, err := NewAgentOrchestrator(cfg, llm, d, nil)
	require.NoError(t, err)
	return a
}

func toolCallResponse(calls ...domain.ToolCall) *driven.ChatResponse {
	return &driven.ChatResponse{ToolCalls: calls, FinishReason: "tool_calls"}
}

func countRole(msgs []domain.Message, role domain.Role) int {
	n := 0
	for _, m := range msgs {
		if m.Role == role {
			n++
		}
	}
	return n
}

func TestNewAgentOrchestrator_Validation(t *testing.T) {
	llm := &scriptedLLM{}

	_, err := NewAgentOrchestrator(agentConfig(0), llm, nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidAgentConfig)

	_, err = NewAgentOrchestrator(agentConfig(3), nil, nil, nil)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)

	a, err := NewAgentOrchestrator(agentConfig(3), llm, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.AgentIdle, a.State())
	assert.Equal(t, 1, a.Memory().Len())
}

// A question the model answers directly ends in one step with no tool
// messages.
func TestAsk_AnswersWithoutTools(t *testing.T) {
	llm := &scriptedLLM{responses: []*driven.ChatResponse{{Content: "4", FinishReason: "stop"}}}
	a := newAgent(t, llm, 5, echoTool("search_speeches"))

	outcome, err := a.Ask(context.Background(), "What is 2+2")
	require.NoError(t, err)

	assert.Equal(t, domain.AgentDone, outcome.State)
	assert.True(t, outcome.Answered())
	assert.Equal(t, "4", outcome.Answer)
	assert.Equal(t, 1, outcome.Steps)
	assert.Equal(t, 0, outcome.ToolCalls)
	assert.Equal(t, 1, llm.calls())
	assert.Equal(t, domain.AgentDone, a.State())

	msgs := a.Memory().Messages()
	assert.Zero(t, countRole(msgs, domain.RoleTool))
	assert.Equal(t, domain.RoleAssistant, msgs[len(msgs)-1].Role)
}

// A model that always asks for a tool stops at exactly MaxSteps calls.
func TestAsk_StopsAtStepLimit(t *testing.T) {
	llm := &scriptedLLM{responses: []*driven.ChatResponse{
		toolCallResponse(domain.ToolCall{ID: "c", Name: "search_speeches", Arguments: json.RawMessage(`{}`)}),
	}}
	a := newAgent(t, llm, 2, echoTool("search_speeches"))

	outcome, err := a.Ask(context.Background(), "Keep searching")
	require.NoError(t, err)

	assert.Equal(t, domain.AgentStepLimitReached, outcome.State)
	assert.False(t, outcome.Answered())
	assert.Empty(t, outcome.Answer)
	assert.Equal(t, 2, outcome.Steps)
	assert.Equal(t, 2, outcome.ToolCalls)
	assert.Equal(t, 2, llm.calls(), "never a third model call")
	assert.Equal(t, 2, countRole(a.Memory().Messages(), domain.RoleTool))
	assert.Equal(t, domain.AgentStepLimitReached, a.State())
}

func TestAsk_ToolLoopThenAnswer(t *testing.T) {
	llm := &scriptedLLM{responses: []*driven.ChatResponse{
		toolCallResponse(
			domain.ToolCall{ID: "a", Name: "search_speeches", Arguments: json.RawMessage(`{"q":"climate"}`)},
			domain.ToolCall{ID: "b", Name: "concept_trends", Arguments: json.RawMessage(`{"c":"climate_change"}`)},
		),
		{Content: "Small island states lead.", FinishReason: "stop"},
	}}
	a := newAgent(t, llm, 5, echoTool("search_speeches"), echoTool("concept_trends"))

	outcome, err := a.Ask(context.Background(), "Who talks about climate?")
	require.NoError(t, err)

	assert.Equal(t, domain.AgentDone, outcome.State)
	assert.Equal(t, 2, outcome.Steps)
	assert.Equal(t, 2, outcome.ToolCalls)

	// system, user, assistant(tool calls), tool a, tool b, assistant(answer)
	msgs := a.Memory().Messages()
	require.Len(t, msgs, 6)
	assert.Len(t, msgs[2].ToolCalls, 2)
	assert.Equal(t, "a", msgs[3].ToolCallID)
	assert.Equal(t, `search_speeches:{"q":"climate"}`, msgs[3].Content)
	assert.Equal(t, "b", msgs[4].ToolCallID)
	assert.Equal(t, "concept_trends", msgs[4].Name)

	// The second call saw the tool results; both saw the declared tools.
	require.Len(t, llm.requests, 2)
	assert.Len(t, llm.requests[1], 5)
	assert.Len(t, llm.tools[0], 2)
	assert.Equal(t, "test-model", llm.opts[0].Model)
	assert.InDelta(t, 0.2, llm.opts[0].Temperature, 1e-9)
}

func TestAsk_UnknownToolIsReportedToModel(t *testing.T) {
	llm := &scriptedLLM{responses: []*driven.ChatResponse{
		toolCallResponse(domain.ToolCall{ID: "x", Name: "drop_tables", Arguments: json.RawMessage(`{}`)}),
		{Content: "Sorry.", FinishReason: "stop"},
	}}
	a := newAgent(t, llm, 3, echoTool("search_speeches"))

	outcome, err := a.Ask(context.Background(), "Do something odd")
	require.NoError(t, err)
	assert.True(t, outcome.Answered())

	msgs := a.Memory().Messages()
	tool := msgs[3]
	assert.Equal(t, domain.RoleTool, tool.Role)
	assert.True(t, tool.IsError)
	assert.Contains(t, tool.Content, "unknown tool")
}

// A failing or panicking tool becomes one error result for the model and
// the conversation carries on.
func TestAsk_ToolFailureIsIsolated(t *testing.T) {
	tests := []struct {
		name string
		run  func(context.Context, json.RawMessage) (string, error)
		want string
	}{
		{
			name: "error",
			run: func(context.Context, json.RawMessage) (string, error) {
				return "", errors.New("database is locked")
			},
			want: "database is locked",
		},
		{
			name: "panic",
			run: func(context.Context, json.RawMessage) (string, error) {
				var m map[string]int
				m["boom"]++
				return "", nil
			},
			want: "panicked",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &scriptedLLM{responses: []*driven.ChatResponse{
				toolCallResponse(domain.ToolCall{ID: "q", Name: "query_speeches", Arguments: json.RawMessage(`{}`)}),
				{Content: "The database was unavailable.", FinishReason: "stop"},
			}}
			a := newAgent(t, llm, 3, &mockTool{name: "query_speeches", run: tt.run})

			outcome, err := a.Ask(context.Background(), "How many speeches mention peace?")
			require.NoError(t, err)
			assert.True(t, outcome.Answered())
			assert.Equal(t, 1, outcome.ToolCalls)

			msgs := a.Memory().Messages()
			require.Equal(t, 1, countRole(msgs, domain.RoleTool))
			var tool domain.Message
			for _, m := range msgs {
				if m.Role == domain.RoleTool {
					tool = m
				}
			}
			assert.Equal(t, "q", tool.ToolCallID)
			assert.True(t, tool.IsError)
			assert.Contains(t, tool.Content, tt.want)
			assert.Equal(t, 2, llm.calls(), "the model saw the failure and answered")
		})
	}
}

func TestAsk_AssignsMissingCallIDs(t *testing.T) {
	llm := &scriptedLLM{responses: []*driven.ChatResponse{
		toolCallResponse(domain.ToolCall{Name: "search_speeches", Arguments: json.RawMessage(`{}`)}),
		{Content: "done"},
	}}
	a := newAgent(t, llm, 3, echoTool("search_speeches"))

	_, err := a.Ask(context.Background(), "q")
	require.NoError(t, err)

	msgs := a.Memory().Messages()
	assert.Equal(t, "call_1_0", msgs[2].ToolCalls[0].ID)
	assert.Equal(t, "call_1_0", msgs[3].ToolCallID)
}

func TestAsk_ProviderErrorIsFatal(t *testing.T) {
	llm := &scriptedLLM{err: &domain.ProviderError{Provider: "openai", StatusCode: 503, Message: "overloaded"}}
	a := newAgent(t, llm, 3)

	outcome, err := a.Ask(context.Background(), "q")

	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.Equal(t, domain.AgentIdle, a.State())
	assert.Equal(t, 1, llm.calls())
}

func TestAsk_EmptyQuestion(t *testing.T) {
	llm := &scriptedLLM{}
	a := newAgent(t, llm, 3)

	_, err := a.Ask(context.Background(), "   ")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, llm.calls())
}

func TestAsk_CancelledContext(t *testing.T) {
	llm := &scriptedLLM{responses: []*driven.ChatResponse{{Content: "never"}}}
	a := newAgent(t, llm, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Ask(ctx, "q")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, llm.calls())
	assert.Equal(t, domain.AgentIdle, a.State())
}

func TestAsk_ConversationCarriesAcrossAsks(t *testing.T) {
	llm := &scriptedLLM{responses: []*driven.ChatResponse{{Content: "first"}, {Content: "second"}}}
	a := newAgent(t, llm, 3)

	_, err := a.Ask(context.Background(), "one")
	require.NoError(t, err)
	outcome, err := a.Ask(context.Background(), "two")
	require.NoError(t, err)

	assert.Equal(t, "second", outcome.Answer)
	assert.Len(t, llm.requests[1], 4, "system, user, assistant, user")

	a.Reset()
	assert.Equal(t, 1, a.Memory().Len())
	assert.Equal(t, domain.AgentIdle, a.State())
}
