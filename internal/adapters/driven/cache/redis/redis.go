// Package redis provides a Redis-backed similarity matrix cache and
// transcript mirror.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.SimilarityCache = (*Store)(nil)
	_ driven.TranscriptStore = (*Store)(nil)
)

// Default configuration values.
const (
	DefaultTTL       = time.Hour
	DefaultKeyPrefix = "rostrum:"
	pingTimeout      = 5 * time.Second
)

// Config holds configuration for the Redis store.
type Config struct {
	// Client is the Redis client (required).
	Client *goredis.Client

	// TTL is the lifetime of cached matrices (default: 1h). Transcripts
	// do not expire.
	TTL time.Duration

	// KeyPrefix namespaces every key (default: "rostrum:").
	KeyPrefix string
}

// Store caches similarity matrices and mirrors agent transcripts.
type Store struct {
	cli    *goredis.Client
	ttl    time.Duration
	prefix string
}

// New creates a store from an existing client.
func New(cfg Config) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}
	return &Store{cli: cfg.Client, ttl: cfg.TTL, prefix: cfg.KeyPrefix}
}

// NewFromURL parses a redis:// URL, connects and pings the server.
func NewFromURL(ctx context.Context, redisURL string, ttl time.Duration) (*Store, error) {
	opt, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	cli := goredis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := cli.Ping(pingCtx).Err(); err != nil {
		cli.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", opt.Addr, err)
	}

	return New(Config{Client: cli, TTL: ttl}), nil
}

func (s *Store) matrixKey(key string) string {
	return s.prefix + "matrix:" + key
}

func (s *Store) transcriptKey(sessionID string) string {
	return s.prefix + "transcript:" + sessionID
}

// GetMatrix returns a cached matrix. A miss is (nil, false, nil).
func (s *Store) GetMatrix(ctx context.Context, key string) (*domain.SimilarityMatrix, bool, error) {
	b, err := s.cli.Get(ctx, s.matrixKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis: get matrix: %w", err)
	}

	var m domain.SimilarityMatrix
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, false, fmt.Errorf("redis: decode matrix: %w", err)
	}
	return &m, true, nil
}

// PutMatrix caches a matrix for the configured TTL.
func (s *Store) PutMatrix(ctx context.Context, key string, m *domain.SimilarityMatrix) error {
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("redis: encode matrix: %w", err)
	}
	if err := s.cli.Set(ctx, s.matrixKey(key), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set matrix: %w", err)
	}
	return nil
}

// Append pushes messages onto the end of a session transcript.
func (s *Store) Append(ctx context.Context, sessionID string, msgs ...domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	values := make([]any, len(msgs))
	for i, m := range msgs {
		b, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("redis: encode message: %w", err)
		}
		values[i] = b
	}
	if err := s.cli.RPush(ctx, s.transcriptKey(sessionID), values...).Err(); err != nil {
		return fmt.Errorf("redis: append transcript: %w", err)
	}
	return nil
}

// Read returns a session transcript in order.
func (s *Store) Read(ctx context.Context, sessionID string) ([]domain.Message, error) {
	raw, err := s.cli.LRange(ctx, s.transcriptKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: read transcript: %w", err)
	}
	return decodeMessages(raw)
}

// Delete removes a session transcript.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.cli.Del(ctx, s.transcriptKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis: delete transcript: %w", err)
	}
	return nil
}

// Close closes the Redis client connection.
func (s *Store) Close() error {
	return s.cli.Close()
}

func decodeMessages(raw []string) ([]domain.Message, error) {
	msgs := make([]domain.Message, 0, len(raw))
	for _, r := range raw {
		var m domain.Message
		if err := json.Unmarshal([]byte(r), &m); err != nil {
			return nil, fmt.Errorf("redis: decode message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}
