package services

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"
	"unicode/utf8"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
	"github.com/custodia-labs/rostrum/internal/logger"
)

// MaxToolResultChars caps the payload a tool may return to the model.
const MaxToolResultChars = 16000

// registeredTool is a declared tool with its compiled argument schema.
type registeredTool struct {
	tool   driven.Tool
	decl   domain.ToolSchema
	schema *jsonschema.Resolved
}

// ToolDispatcher routes model tool calls to their implementations.
// The dispatch table is closed: it holds exactly the tools declared by
// the agent config, each validated when the dispatcher is built.
type ToolDispatcher struct {
	tools map[string]registeredTool
	order []string
}

// NewToolDispatcher builds the dispatch table for cfg. Every declared
// tool must have an implementation among tools; implementations that
// are not declared are ignored. A declared schema without parameters
// takes the implementation's own.
func NewToolDispatcher(cfg *domain.AgentConfig, tools ...driven.Tool) (*ToolDispatcher, error) {
	impls := make(map[string]driven.Tool, len(tools))
	for _, t := range tools {
		impls[t.Name()] = t
	}

	d := &ToolDispatcher{tools: make(map[string]registeredTool, len(cfg.Tools))}
	for _, decl := range cfg.Tools {
		impl, ok := impls[decl.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrToolNotRegistered, decl.Name)
		}
		if decl.Description == "" {
			decl.Description = impl.Description()
		}
		if len(decl.Parameters) == 0 {
			decl.Parameters = impl.Parameters()
		}

		resolved, err := compileSchema(decl.Parameters)
		if err != nil {
			return nil, fmt.Errorf("%w: tool %s: %w", domain.ErrInvalidAgentConfig, decl.Name, err)
		}

		d.tools[decl.Name] = registeredTool{tool: impl, decl: decl, schema: resolved}
		d.order = append(d.order, decl.Name)
	}

	logger.Debug("Tool dispatcher ready: %v", d.order)
	return d, nil
}

func compileSchema(raw json.RawMessage) (*jsonschema.Resolved, error) {
	if len(raw) == 0 {
		raw = json.RawMessage(`{"type":"object"}`)
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return schema.Resolve(nil)
}

// Schemas returns the declared tools in declaration order, as sent to
// the model.
func (d *ToolDispatcher) Schemas() []domain.ToolSchema {
	out := make([]domain.ToolSchema, len(d.order))
	for i, name := range d.order {
		out[i] = d.tools[name].decl
	}
	return out
}

// Has reports whether name is dispatchable.
func (d *ToolDispatcher) Has(name string) bool {
	_, ok := d.tools[name]
	return ok
}

// Dispatch runs one tool call. Every failure, including a panic inside
// the tool, becomes an error payload for the model; Dispatch itself
// never fails.
func (d *ToolDispatcher) Dispatch(ctx context.Context, call domain.ToolCall) domain.ToolResult {
	result := domain.ToolResult{ToolCallID: call.ID, Name: call.Name}

	content, err := d.dispatch(ctx, call)
	if err != nil {
		logger.Warn("Tool %s failed: %v", call.Name, err)
		result.Content = "error: " + err.Error()
		result.IsError = true
		return result
	}

	result.Content = truncate(content, MaxToolResultChars)
	return result
}

// DispatchAll runs one step's tool calls concurrently and returns their
// results in call order.
func (d *ToolDispatcher) DispatchAll(ctx context.Context, calls []domain.ToolCall) []domain.ToolResult {
	results := make([]domain.ToolResult, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = d.Dispatch(ctx, call)
		}()
	}
	wg.Wait()

	return results
}

// dispatch looks up, validates and executes a call.
func (d *ToolDispatcher) dispatch(ctx context.Context, call domain.ToolCall) (out string, err error) {
	reg, ok := d.tools[call.Name]
	if !ok {
		return "", &domain.UnknownToolError{Name: call.Name}
	}

	args := call.Arguments
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	var instance any
	if err := json.Unmarshal(args, &instance); err != nil {
		return "", &domain.MalformedArgumentsError{Tool: call.Name, Err: err}
	}
	if err := reg.schema.Validate(instance); err != nil {
		return "", &domain.MalformedArgumentsError{Tool: call.Name, Err: err}
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Debug("Tool %s panic stack:\n%s", call.Name, debug.Stack())
			err = fmt.Errorf("tool %q panicked: %v", call.Name, r)
		}
	}()

	logger.Debug("Dispatching %s(%s)", call.Name, string(args))
	return reg.tool.Execute(ctx, args)
}

// truncate shortens s to at most limit runes, marking the cut.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "\n[truncated]"
}
