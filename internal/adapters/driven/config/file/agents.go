package file

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
)

// Ensure AgentStore implements the interface.
var _ driven.AgentConfigStore = (*AgentStore)(nil)

// Persona defaults.
const (
	// BuiltinAgent is served when no persona file of that name exists.
	BuiltinAgent = "researcher"

	// DefaultMaxSteps applies when a persona omits max_steps.
	DefaultMaxSteps = 10

	// DefaultTemperature applies when a persona omits temperature.
	DefaultTemperature = 0.2
)

// personaExts lists the accepted persona file extensions in lookup order.
var personaExts = []string{".toml", ".yaml", ".yml"}

// builtinTools are the tools the researcher persona may call.
var builtinTools = []string{
	"search_speeches",
	"similar_segments",
	"sql_query",
	"concept_trends",
	"world_events",
	"find_quotations",
	"web_search",
	"fetch_url",
	"save_note",
	"list_notes",
}

// AgentStoreConfig configures an AgentStore.
type AgentStoreConfig struct {
	// Dir holds persona files. Defaults to ~/.rostrum/agents.
	Dir string

	// Prompts resolves the named prompts a persona references.
	Prompts driven.PromptStore

	// DefaultModel fills personas that do not name a model.
	DefaultModel string
}

// AgentStore loads agent personas from TOML or YAML files.
//
// A persona file looks like:
//
//	name = "historian"
//	model = "gpt-4o-mini"
//	temperature = 0.1
//	max_steps = 6
//	prompts = ["agent_system"]
//	system_prompts = ["Focus on the Cold War period."]
//
//	[[tools]]
//	name = "search_speeches"
//
//	[[tools]]
//	name = "sql_query"
//	description = "Count speeches with SQL."
//
// Named prompts are resolved through the PromptStore and placed before
// the literal system prompts. Tool description and parameters are
// optional; the dispatcher fills them from the registered tool.
type AgentStore struct {
	dir          string
	prompts      driven.PromptStore
	defaultModel string
}

type personaFile struct {
	Name          string      `toml:"name" yaml:"name"`
	Version       string      `toml:"version" yaml:"version"`
	Model         string      `toml:"model" yaml:"model"`
	Temperature   *float64    `toml:"temperature" yaml:"temperature"`
	MaxSteps      int         `toml:"max_steps" yaml:"max_steps"`
	Prompts       []string    `toml:"prompts" yaml:"prompts"`
	SystemPrompts []string    `toml:"system_prompts" yaml:"system_prompts"`
	Tools         []toolEntry `toml:"tools" yaml:"tools"`
}

type toolEntry struct {
	Name        string `toml:"name" yaml:"name"`
	Description string `toml:"description" yaml:"description"`
	Parameters  string `toml:"parameters" yaml:"parameters"`
}

// NewAgentStore creates a persona store.
func NewAgentStore(cfg AgentStoreConfig) (*AgentStore, error) {
	if cfg.Dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		cfg.Dir = filepath.Join(home, ".rostrum", "agents")
	}
	return &AgentStore{
		dir:          cfg.Dir,
		prompts:      cfg.Prompts,
		defaultModel: cfg.DefaultModel,
	}, nil
}

// Dir returns the persona directory.
func (s *AgentStore) Dir() string {
	return s.dir
}

// Load reads and validates the named persona.
func (s *AgentStore) Load(name string) (*domain.AgentConfig, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("%w: invalid agent name %q", domain.ErrInvalidInput, name)
	}

	pf, err := s.readPersona(name)
	if errors.Is(err, domain.ErrNotFound) && name == BuiltinAgent {
		pf = builtinPersona()
	} else if err != nil {
		return nil, err
	}

	cfg, err := s.resolve(name, pf)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// List returns the persona names found on disk plus the built-in one.
func (s *AgentStore) List() ([]string, error) {
	set := map[string]bool{BuiltinAgent: true}

	entries, err := os.ReadDir(s.dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read agents directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		for _, known := range personaExts {
			if ext == known {
				set[strings.TrimSuffix(e.Name(), ext)] = true
			}
		}
	}

	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (s *AgentStore) readPersona(name string) (*personaFile, error) {
	for _, ext := range personaExts {
		path := filepath.Join(s.dir, name+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read agent %s: %w", name, err)
		}

		var pf personaFile
		if ext == ".toml" {
			dec := toml.NewDecoder(bytes.NewReader(data))
			dec.DisallowUnknownFields()
			err = dec.Decode(&pf)
		} else {
			dec := yaml.NewDecoder(bytes.NewReader(data))
			dec.KnownFields(true)
			err = dec.Decode(&pf)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: parse %s: %w", domain.ErrInvalidAgentConfig, filepath.Base(path), err)
		}
		return &pf, nil
	}
	return nil, fmt.Errorf("agent %q: %w", name, domain.ErrNotFound)
}

func (s *AgentStore) resolve(name string, pf *personaFile) (*domain.AgentConfig, error) {
	cfg := &domain.AgentConfig{
		Name:        pf.Name,
		Version:     pf.Version,
		Model:       pf.Model,
		Temperature: DefaultTemperature,
		MaxSteps:    pf.MaxSteps,
	}
	if cfg.Name == "" {
		cfg.Name = name
	}
	if cfg.Model == "" {
		cfg.Model = s.defaultModel
	}
	if pf.Temperature != nil {
		cfg.Temperature = *pf.Temperature
	}
	if cfg.MaxSteps == 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}

	for _, p := range pf.Prompts {
		if s.prompts == nil {
			return nil, fmt.Errorf("%w: agent %s: prompt %q referenced without a prompt store",
				domain.ErrInvalidAgentConfig, cfg.Name, p)
		}
		text, err := s.prompts.Load(p)
		if err != nil {
			return nil, fmt.Errorf("%w: agent %s: %w", domain.ErrInvalidAgentConfig, cfg.Name, err)
		}
		cfg.SystemPrompts = append(cfg.SystemPrompts, text)
	}
	cfg.SystemPrompts = append(cfg.SystemPrompts, pf.SystemPrompts...)

	for _, t := range pf.Tools {
		schema := domain.ToolSchema{Name: t.Name, Description: t.Description}
		if params := strings.TrimSpace(t.Parameters); params != "" {
			if !json.Valid([]byte(params)) {
				return nil, fmt.Errorf("%w: agent %s: tool %q parameters are not valid JSON",
					domain.ErrInvalidAgentConfig, cfg.Name, t.Name)
			}
			schema.Parameters = json.RawMessage(params)
		}
		cfg.Tools = append(cfg.Tools, schema)
	}
	return cfg, nil
}

func builtinPersona() *personaFile {
	pf := &personaFile{
		Name:    BuiltinAgent,
		Version: "1",
		Prompts: []string{driven.PromptAgentSystem, driven.PromptToolGuidance},
	}
	for _, name := range builtinTools {
		pf.Tools = append(pf.Tools, toolEntry{Name: name})
	}
	return pf
}
