package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AgentConfig is the persona an agent runs with. It is loaded once per
// agent instance and treated as immutable afterwards.
type AgentConfig struct {
	// Name identifies the persona (e.g. "researcher").
	Name string

	// Version is the persona revision.
	Version string

	// Model is the language model identifier.
	Model string

	// Temperature controls sampling randomness.
	Temperature float64

	// MaxSteps bounds the number of model calls per request.
	MaxSteps int

	// SystemPrompts seed the conversation in order. A "{{date}}"
	// placeholder is replaced with the current date.
	SystemPrompts []string

	// Tools declares the tools the model may call.
	Tools []ToolSchema
}

// Validate checks the config invariants.
func (c *AgentConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidAgentConfig)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: agent %s: model is required", ErrInvalidAgentConfig, c.Name)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("%w: agent %s: max_steps must be positive, got %d",
			ErrInvalidAgentConfig, c.Name, c.MaxSteps)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: agent %s: temperature %.2f out of range [0, 2]",
			ErrInvalidAgentConfig, c.Name, c.Temperature)
	}

	seen := make(map[string]bool, len(c.Tools))
	for _, tool := range c.Tools {
		if tool.Name == "" {
			return fmt.Errorf("%w: agent %s: tool without a name", ErrInvalidAgentConfig, c.Name)
		}
		if seen[tool.Name] {
			return fmt.Errorf("%w: agent %s: duplicate tool %q", ErrInvalidAgentConfig, c.Name, tool.Name)
		}
		seen[tool.Name] = true

		if len(tool.Parameters) > 0 {
			var schema map[string]any
			if err := json.Unmarshal(tool.Parameters, &schema); err != nil {
				return fmt.Errorf("%w: agent %s: tool %q parameters must be a JSON object: %w",
					ErrInvalidAgentConfig, c.Name, tool.Name, err)
			}
		}
	}
	return nil
}

// Tool returns the declared schema for a tool name.
func (c *AgentConfig) Tool(name string) (ToolSchema, bool) {
	for _, t := range c.Tools {
		if t.Name == name {
			return t, true
		}
	}
	return ToolSchema{}, false
}

// ToolNames returns the declared tool names in declaration order.
func (c *AgentConfig) ToolNames() []string {
	names := make([]string, len(c.Tools))
	for i, t := range c.Tools {
		names[i] = t.Name
	}
	return names
}

// AgentState is the state of an agent run.
type AgentState int

// Agent states. A run moves Idle -> Stepping and then either loops through
// ToolCall back to Stepping or ends in Done or StepLimitReached.
const (
	AgentIdle AgentState = iota
	AgentStepping
	AgentToolCall
	AgentDone
	AgentStepLimitReached
)

// String returns the state name.
func (s AgentState) String() string {
	switch s {
	case AgentIdle:
		return "idle"
	case AgentStepping:
		return "stepping"
	case AgentToolCall:
		return "tool_call"
	case AgentDone:
		return "done"
	case AgentStepLimitReached:
		return "step_limit_reached"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Terminal reports whether the state ends a run.
func (s AgentState) Terminal() bool {
	return s == AgentDone || s == AgentStepLimitReached
}

// AgentOutcome is what an ask returns to the caller.
type AgentOutcome struct {
	// State is Done or StepLimitReached.
	State AgentState

	// Answer is the final answer. Empty when the step limit was reached.
	Answer string

	// Steps is the number of model calls made.
	Steps int

	// ToolCalls is the number of tool dispatches made.
	ToolCalls int
}

// Answered reports whether the run produced a final answer.
func (o *AgentOutcome) Answered() bool {
	return o.State == AgentDone
}

// StoppedWithoutAnswer is the caller-facing text for a run that hit its
// step limit.
const StoppedWithoutAnswer = "stopped, no answer: step limit reached"
