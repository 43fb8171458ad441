package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-livesite/internal/backends"
	"github.com/goliatone/go-livesite/internal/sites"
	"github.com/goliatone/go-livesite/pkg/interfaces"
)

// DefaultPrefix namespaces tenant document keys.
const DefaultPrefix = "livesite:tenant:"

// Store keeps tenant documents as JSON strings in Redis.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTTL expires documents after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// New wraps an existing client.
func New(client *redis.Client, prefix string, opts ...Option) *Store {
	if client == nil {
		panic("redisstore: client is required")
	}
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultPrefix
	}
	s := &Store{client: client, prefix: prefix}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Open connects to the Redis server at url and verifies it responds.
func Open(ctx context.Context, url, prefix string, opts ...Option) (*Store, error) {
	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redisstore: parse url: %w", err)
	}
	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redisstore: ping: %w", err)
	}
	return New(client, prefix, opts...), nil
}

// FetchTenant loads the document of tenantKey. Missing keys yield an empty document.
func (s *Store) FetchTenant(ctx context.Context, tenantKey string) (*sites.TenantSnapshot, error) {
	key, err := backends.NormalizeKey(tenantKey)
	if err != nil {
		return nil, err
	}
	payload, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return &sites.TenantSnapshot{TenantKey: key}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redisstore: get %s: %w", key, err)
	}
	return backends.DecodeDocument(key, []byte(payload))
}

// RequestSave writes the document carried by req.
func (s *Store) RequestSave(ctx context.Context, req interfaces.SaveRequest) error {
	key, err := backends.CheckSave(req)
	if err != nil {
		return err
	}
	snapshot := sites.CloneSnapshot(req.Snapshot)
	snapshot.TenantKey = key
	payload, err := backends.EncodeDocument(snapshot)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(key), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redisstore: set %s: %w", key, err)
	}
	return nil
}

// Delete removes the document of tenantKey.
func (s *Store) Delete(ctx context.Context, tenantKey string) error {
	key, err := backends.NormalizeKey(tenantKey)
	if err != nil {
		return err
	}
	return s.client.Del(ctx, s.key(key)).Err()
}

// Close releases the client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(tenantKey string) string {
	return s.prefix + tenantKey
}
