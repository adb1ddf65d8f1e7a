// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under ~/.rostrum.
//
// Adapters:
//   - ConfigStore: TOML settings in config.toml
//   - PromptStore: editable agent prompts in prompts/*.txt
//   - AgentStore: TOML or YAML agent personas in agents/
package file
