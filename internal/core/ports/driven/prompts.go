package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible
	// default or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptAgentSystem is the default system prompt for research agents.
	// A "{{date}}" placeholder is replaced with the current date.
	PromptAgentSystem = "agent_system"

	// PromptToolGuidance is appended after the system prompt and explains
	// how the agent should use its tools.
	PromptToolGuidance = "tool_guidance"
)
