package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// farFuture is the index score of conversations without TTL (2100-01-01).
const farFuture = 4102444800

// Store implements ports.SessionStore using one Redis hash per conversation.
// Values are stored as JSON and come back in their generic decoded form.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL expires idle conversations. Every write refreshes the expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for conversations.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with its own client.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "arbor:session:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(conversationID string) string {
	return s.prefix + conversationID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Get reads one field of the conversation hash.
func (s *Store) Get(ctx context.Context, conversationID, key string) (any, bool, error) {
	raw, err := s.client.HGet(ctx, s.key(conversationID), key).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get from redis: %w", err)
	}

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal %q: %w", key, err)
	}
	return v, true, nil
}

// Set writes one field and refreshes the conversation expiry.
func (s *Store) Set(ctx context.Context, conversationID, key string, value any) error {
	if value == nil {
		return s.Delete(ctx, conversationID, key)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %q: %w", key, err)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.key(conversationID), key, data)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key(conversationID), s.ttl)
	}

	score := float64(farFuture)
	if s.ttl > 0 {
		score = float64(time.Now().Add(s.ttl).Unix())
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: conversationID})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Delete removes one field of the conversation hash.
func (s *Store) Delete(ctx context.Context, conversationID, key string) error {
	if err := s.client.HDel(ctx, s.key(conversationID), key).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// Clear drops the whole conversation.
func (s *Store) Clear(ctx context.Context, conversationID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(conversationID))
	pipe.ZRem(ctx, s.indexKey(), conversationID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear conversation: %w", err)
	}
	return nil
}

// List returns conversations that have not expired.
// Expired members are pruned from the index lazily.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired conversations: %w", err)
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return ids, nil
}

// Client exposes the underlying client so a Locker can share it.
func (s *Store) Client() *backend.Client {
	return s.client
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
