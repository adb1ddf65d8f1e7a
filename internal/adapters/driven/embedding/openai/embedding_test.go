package openai

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

// fakeServer answers /embeddings with a 3-dimensional vector per input
// whose first component is the input's position in its request.
type fakeServer struct {
	mu       sync.Mutex
	requests []embeddingRequest
	status   int
	headers  map[string]string
	body     string
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/models" {
		w.WriteHeader(f.statusOr(http.StatusOK))
		return
	}

	var req embeddingRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	for k, v := range f.headers {
		w.Header().Set(k, v)
	}
	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(f.body))
		return
	}

	type item struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	}
	data := make([]item, len(req.Input))
	// Reverse order to check reordering by index.
	for i := range req.Input {
		pos := len(req.Input) - 1 - i
		data[i] = item{Embedding: []float64{float64(pos), 0.5, 1}, Index: pos}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func (f *fakeServer) statusOr(def int) int {
	if f.status != 0 {
		return f.status
	}
	return def
}

func newTestService(t *testing.T, f *fakeServer, batchSize int) *EmbeddingService {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	svc, err := NewEmbeddingService(Config{APIKey: "sk-test", BaseURL: srv.URL, BatchSize: batchSize})
	require.NoError(t, err)
	return svc
}

func TestNewEmbeddingService(t *testing.T) {
	t.Run("requires api key", func(t *testing.T) {
		_, err := NewEmbeddingService(Config{})
		assert.ErrorIs(t, err, domain.ErrMissingCredentials)
	})

	t.Run("defaults", func(t *testing.T) {
		svc, err := NewEmbeddingService(Config{APIKey: "sk"})
		require.NoError(t, err)
		assert.Equal(t, DefaultModel, svc.ModelName())
		assert.Equal(t, 1536, svc.Dimensions())
		assert.Equal(t, DefaultBatchSize, svc.BatchSize())
	})

	t.Run("large model dimensions", func(t *testing.T) {
		svc, err := NewEmbeddingService(Config{APIKey: "sk", Model: "text-embedding-3-large"})
		require.NoError(t, err)
		assert.Equal(t, 3072, svc.Dimensions())
	})
}

func TestEmbedBatch_OrderAndCount(t *testing.T) {
	f := &fakeServer{}
	svc := newTestService(t, f, 10)

	out, err := svc.EmbedBatch(t.Context(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i, v := range out {
		assert.Equal(t, float32(i), v[0])
		assert.Len(t, v, 3)
	}
	require.Len(t, f.requests, 1)
	assert.Equal(t, 1536, f.requests[0].Dimensions)
}

func TestEmbedBatch_SplitsAboveBatchSize(t *testing.T) {
	f := &fakeServer{}
	svc := newTestService(t, f, 2)

	out, err := svc.EmbedBatch(t.Context(), []string{"a", "b", "c", "d", "e"})
	require.NoError(t, err)
	assert.Len(t, out, 5)

	require.Len(t, f.requests, 3)
	assert.Equal(t, []string{"a", "b"}, f.requests[0].Input)
	assert.Equal(t, []string{"c", "d"}, f.requests[1].Input)
	assert.Equal(t, []string{"e"}, f.requests[2].Input)
}

func TestEmbedBatch_Empty(t *testing.T) {
	f := &fakeServer{}
	svc := newTestService(t, f, 2)

	out, err := svc.EmbedBatch(t.Context(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, f.requests)
}

func TestEmbedBatch_ProviderError(t *testing.T) {
	f := &fakeServer{
		status:  http.StatusTooManyRequests,
		headers: map[string]string{"Retry-After": "7"},
		body:    `{"error":{"message":"slow down","type":"rate_limit"}}`,
	}
	svc := newTestService(t, f, 2)

	_, err := svc.EmbedBatch(t.Context(), []string{"a"})
	require.Error(t, err)

	var perr *domain.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "openai", perr.Provider)
	assert.Equal(t, http.StatusTooManyRequests, perr.StatusCode)
	assert.Equal(t, "slow down", perr.Message)
	assert.Equal(t, 7, perr.RetryAfter)
	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestEmbedBatch_TransportError(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "sk", BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	_, err = svc.Embed(t.Context(), "x")
	assert.ErrorIs(t, err, domain.ErrProvider)
}

func TestPing(t *testing.T) {
	svc := newTestService(t, &fakeServer{}, 2)
	assert.NoError(t, svc.Ping(t.Context()))

	bad := newTestService(t, &fakeServer{status: http.StatusUnauthorized}, 2)
	assert.ErrorIs(t, bad.Ping(t.Context()), domain.ErrProvider)
}
