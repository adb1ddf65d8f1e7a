package services

import (
	"context"
	"encoding/json"
	"errors"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
)

// mockEmbedder derives a deterministic vector from each text.
type mockEmbedder struct {
	mu        sync.Mutex
	dims      int
	batchSize int
	batches   [][]string
	// failOn fails any batch containing a text with this substring.
	failOn string
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{dims: 4, batchSize: 100}
}

func (m *mockEmbedder) vector(text string) []float32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	sum := h.Sum64()
	v := make([]float32, m.dims)
	for i := range v {
		v[i] = float32((sum>>(8*uint(i)))&0xff) + 1
	}
	return v
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return m.vector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batches = append(m.batches, append([]string(nil), texts...))
	m.mu.Unlock()

	out := make([][]float32, len(texts))
	for i, t := range texts {
		if m.failOn != "" && strings.Contains(t, m.failOn) {
			return nil, &domain.ProviderError{Provider: "mock", StatusCode: 500, Message: "boom"}
		}
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *mockEmbedder) embeddedTexts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.batches {
		n += len(b)
	}
	return n
}

func (m *mockEmbedder) BatchSize() int { return m.batchSize }
func (m *mockEmbedder) Dimensions() int { return m.dims }
func (m *mockEmbedder) ModelName() string { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error { return nil }

// mockVectorIndex returns canned hits.
type mockVectorIndex struct {
	hits []driven.VectorHit
	err  error
	k    int
}

func (m *mockVectorIndex) Add(_ context.Context, _ string, _ []float32) error { return nil }
func (m *mockVectorIndex) Delete(_ context.Context, _ string) error { return nil }
func (m *mockVectorIndex) Close() error { return nil }
func (m *mockVectorIndex) Search(_ context.Context, _ []float32, k int) ([]driven.VectorHit, error) {
	m.k = k
	return m.hits, m.err
}

// mockCache is a map-backed similarity cache.
type mockCache struct {
	matrices map[string]*domain.SimilarityMatrix
	getErr   error
	puts     int
}

func newMockCache() *mockCache {
	return &mockCache{matrices: make(map[string]*domain.SimilarityMatrix)}
}

func (m *mockCache) GetMatrix(_ context.Context, key string) (*domain.SimilarityMatrix, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	mat, ok := m.matrices[key]
	return mat, ok, nil
}

func (m *mockCache) PutMatrix(_ context.Context, key string, mat *domain.SimilarityMatrix) error {
	m.puts++
	m.matrices[key] = mat
	return nil
}

// scriptedLLM replays responses in order and records every request.
type scriptedLLM struct {
	mu        sync.Mutex
	responses []*driven.ChatResponse
	err       error
	requests  [][]domain.Message
	tools     [][]domain.ToolSchema
	opts      []driven.ChatOptions
}

func (m *scriptedLLM) ChatWithTools(
	_ context.Context, messages []domain.Message, tools []domain.ToolSchema, opts driven.ChatOptions,
) (*driven.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, append([]domain.Message(nil), messages...))
	m.tools = append(m.tools, tools)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return nil, errors.New("script exhausted")
	}
	resp := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return resp, nil
}

func (m *scriptedLLM) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *scriptedLLM) ModelName() string { return "mock-chat" }
func (m *scriptedLLM) Ping(_ context.Context) error { return nil }
func (m *scriptedLLM) Close() error { return nil }

// mockTool runs a function over its arguments.
type mockTool struct {
	name   string
	params string
	run    func(ctx context.Context, args json.RawMessage) (string, error)
}

func (t *mockTool) Name() string { return t.name }
func (t *mockTool) Description() string { return "mock tool " + t.name }
func (t *mockTool) Parameters() json.RawMessage {
	if t.params == "" {
		return json.RawMessage(`{"type":"object"}`)
	}
	return json.RawMessage(t.params)
}
func (t *mockTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	return t.run(ctx, args)
}

func echoTool(name string) *mockTool {
	return &mockTool{
		name: name,
		run: func(_ context.Context, args json.RawMessage) (string, error) {
			return name + ":" + string(args), nil
		},
	}
}

// schemaOf declares a tool the way a persona file would.
func schemaOf(t driven.Tool) domain.ToolSchema {
	return domain.ToolSchema{Name: t.Name(), Description: t.Description(), Parameters: t.Parameters()}
}
