package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

type recordingTranscript struct {
	mu       sync.Mutex
	sessions map[string][]domain.Message
	err      error
}

func newRecordingTranscript() *recordingTranscript {
	return &recordingTranscript{sessions: make(map[string][]domain.Message)}
}

func (r *recordingTranscript) Append(_ context.Context, id string, msgs ...domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sessions[id] = append(r.sessions[id], msgs...)
	return nil
}

func (r *recordingTranscript) Read(_ context.Context, id string) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[id], nil
}

func (r *recordingTranscript) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func fixedMemory(prompts ...string) *ConversationMemory {
	m := NewConversationMemory(nil)
	m.prompts = prompts
	m.now = func() time.Time { return time.Date(2024, 9, 24, 15, 0, 0, 0, time.UTC) }
	m.Reset()
	return m
}

func TestConversationMemory_SeedsSystemPrompts(t *testing.T) {
	m := fixedMemory("You are a researcher. Today is {{date}}.", "Cite sources.")

	msgs := m.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.RoleSystem, msgs[0].Role)
	assert.Equal(t, "You are a researcher. Today is 2024-09-24.", msgs[0].Content)
	assert.Equal(t, "Cite sources.", msgs[1].Content)
}

func TestConversationMemory_AppendKeepsOrder(t *testing.T) {
	m := fixedMemory("sys")
	ctx := context.Background()

	m.Append(ctx, domain.Message{Role: domain.RoleUser, Content: "q"})
	m.Append(ctx,
		domain.Message{Role: domain.RoleAssistant, ToolCalls: []domain.ToolCall{{ID: "1", Name: "t"}}},
		domain.Message{Role: domain.RoleTool, ToolCallID: "1", Content: "r"},
	)

	msgs := m.Messages()
	require.Equal(t, 4, m.Len())
	roles := []domain.Role{msgs[0].Role, msgs[1].Role, msgs[2].Role, msgs[3].Role}
	assert.Equal(t, []domain.Role{domain.RoleSystem, domain.RoleUser, domain.RoleAssistant, domain.RoleTool}, roles)
}

func TestConversationMemory_MessagesIsACopy(t *testing.T) {
	m := fixedMemory("sys")

	msgs := m.Messages()
	msgs[0].Content = "tampered"

	assert.Equal(t, "sys", m.Messages()[0].Content)
}

func TestConversationMemory_Reset(t *testing.T) {
	m := fixedMemory("sys")
	before := m.SessionID()
	m.Append(context.Background(), domain.Message{Role: domain.RoleUser, Content: "q"})

	m.Reset()

	assert.Equal(t, 1, m.Len())
	assert.NotEqual(t, before, m.SessionID())
}

func TestConversationMemory_MirrorsTranscript(t *testing.T) {
	store := newRecordingTranscript()
	m := fixedMemory("sys")
	m.SetTranscriptStore(store)

	m.Append(context.Background(), domain.Message{Role: domain.RoleUser, Content: "q"})

	got, err := store.Read(context.Background(), m.SessionID())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "q", got[0].Content)
}

func TestConversationMemory_TranscriptFailureIsNotFatal(t *testing.T) {
	store := newRecordingTranscript()
	store.err = errors.New("redis down")
	m := fixedMemory("sys")
	m.SetTranscriptStore(store)

	m.Append(context.Background(), domain.Message{Role: domain.RoleUser, Content: "q"})

	assert.Equal(t, 2, m.Len())
}
