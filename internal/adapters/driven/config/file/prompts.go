package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// promptExt is the extension of prompt files.
const promptExt = ".txt"

// PromptStore loads agent prompts from user-editable text files.
//
// The directory is populated with the built-in prompts on first Load, so
// construction performs no I/O. A file that is missing or unreadable falls
// back to the built-in prompt of the same name.
type PromptStore struct {
	mu       sync.RWMutex
	dir      string
	cache    map[string]string
	initOnce sync.Once
	initErr  error
}

var defaultPrompts = map[string]string{
	driven.PromptAgentSystem: `You are a research assistant for the United Nations General Debate corpus.
The corpus holds every speech delivered at the General Debate since 1946,
one document per country and session, split into numbered segments.

Today's date is {{date}}.

Answer questions about what countries said, how their positions changed
over time and which speeches resemble each other. Ground every claim in
the corpus: quote or paraphrase segments and name the country, year and
session you took them from. When the corpus does not hold an answer, say
so plainly instead of guessing.`,

	driven.PromptToolGuidance: `Use your tools before answering:
- search_speeches finds segments by keyword. Start here for most questions.
- similar_segments finds segments close in meaning to a segment or a query.
- sql_query runs a read-only SELECT against the speeches, documents and segments tables when you need counts or aggregates.
- concept_trends reports how often a concept is mentioned per country and decade, or per region and year.
- world_events compares a concept's mentions in the years around historical events.
- find_quotations finds passages speakers quoted and the ones repeated most.
- web_search and fetch_url bring in outside context. Mark anything from the web as such.
- save_note keeps a finding for later and list_notes shows what was saved.

Call one tool at a time and read its result before deciding the next step.
Stop calling tools once you can answer.`,
}

// NewPromptStore creates a prompt store rooted at dir.
// If dir is empty, defaults to ~/.rostrum/prompts.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".rostrum", "prompts")
	}
	return &PromptStore{
		dir:   dir,
		cache: make(map[string]string),
	}, nil
}

// Load returns the prompt with the given name.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	prompt, err := s.read(name)
	if err != nil {
		if builtin, ok := defaultPrompts[name]; ok {
			return builtin, nil
		}
		return "", fmt.Errorf("prompt %q: %w", name, err)
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()
	return prompt, nil
}

// Reload drops cached prompts so the next Load reads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Names returns the built-in prompt names and any extra prompt files in
// the directory, sorted.
func (s *PromptStore) Names() []string {
	s.initOnce.Do(s.initialise)

	set := make(map[string]bool, len(defaultPrompts))
	for name := range defaultPrompts {
		set[name] = true
	}
	entries, _ := os.ReadDir(s.dir)
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == promptExt {
			set[strings.TrimSuffix(e.Name(), promptExt)] = true
		}
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InitErr reports why the prompt directory could not be populated, if it
// could not. Load still serves built-in prompts in that case.
func (s *PromptStore) InitErr() error {
	s.initOnce.Do(s.initialise)
	return s.initErr
}

func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}
	for name, content := range defaultPrompts {
		if err := writeIfMissing(filepath.Join(s.dir, name+promptExt), content+"\n"); err != nil {
			s.initErr = fmt.Errorf("write default prompt %q: %w", name, err)
			return
		}
	}
	if err := writeIfMissing(filepath.Join(s.dir, "README.md"), promptReadme); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) read(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return "", fmt.Errorf("%w: invalid prompt name", domain.ErrInvalidInput)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name+promptExt))
	if errors.Is(err, fs.ErrNotExist) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func writeIfMissing(path, content string) error {
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return os.WriteFile(path, []byte(content), 0600)
}

const promptReadme = `# Rostrum Prompts

Prompts the research agent is seeded with. Edit a file to change how the
agent behaves; the change applies to the next agent that starts.

- agent_system.txt: who the agent is and how it should answer
- tool_guidance.txt: when to reach for each tool

{{date}} is replaced with the current date.

Personas in ~/.rostrum/agents can reference any file here by name
(without the .txt extension) in their prompts list. Delete a file to
restore the built-in version.
`
