package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
	"github.com/custodia-labs/rostrum/internal/logger"
)

// DatePlaceholder is replaced with the current date in system prompts.
const DatePlaceholder = "{{date}}"

// ConversationMemory is the ordered, append-only message log of one agent.
// It is seeded with the persona's system prompts and resent in full on
// every model call.
type ConversationMemory struct {
	mu         sync.Mutex
	prompts    []string
	messages   []domain.Message
	transcript driven.TranscriptStore
	sessionID  string
	now        func() time.Time
}

// NewConversationMemory creates a memory seeded with prompts.
func NewConversationMemory(prompts []string) *ConversationMemory {
	m := &ConversationMemory{
		prompts: append([]string(nil), prompts...),
		now:     time.Now,
	}
	m.seed()
	return m
}

// SetTranscriptStore mirrors every appended message to store. Mirroring
// is best effort; failures are logged and never reach the agent.
func (m *ConversationMemory) SetTranscriptStore(store driven.TranscriptStore) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transcript = store
}

// SessionID identifies the current conversation in the transcript store.
func (m *ConversationMemory) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// Append adds messages to the end of the log.
func (m *ConversationMemory) Append(ctx context.Context, msgs ...domain.Message) {
	m.mu.Lock()
	m.messages = append(m.messages, msgs...)
	store, session := m.transcript, m.sessionID
	m.mu.Unlock()

	if store != nil && len(msgs) > 0 {
		if err := store.Append(ctx, session, msgs...); err != nil {
			logger.Warn("Failed to mirror transcript %s: %v", session, err)
		}
	}
}

// Messages returns a copy of the log.
func (m *ConversationMemory) Messages() []domain.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Len returns the number of messages, system prompts included.
func (m *ConversationMemory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

// Reset drops the conversation back to its system prompts and starts a
// new transcript session.
func (m *ConversationMemory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seed()
}

// seed must be called with mu held.
func (m *ConversationMemory) seed() {
	date := m.now().Format("2006-01-02")
	m.messages = make([]domain.Message, 0, len(m.prompts)+8)
	for _, p := range m.prompts {
		m.messages = append(m.messages, domain.Message{
			Role:    domain.RoleSystem,
			Content: strings.ReplaceAll(p, DatePlaceholder, date),
		})
	}
	m.sessionID = uuid.NewString()
}
