package offercache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

var (
	ErrOfferNotFound  = errors.New("offer not found")
	ErrInvalidOfferID = errors.New("offer id is empty")
	ErrNilOffer       = errors.New("offer is nil")
)

const (
	defaultKeyPrefix  = "flightdesk:offer:"
	defaultTTL        = 30 * time.Minute
	defaultMemorySize = 4096
)

// Store resolves offer ids returned by a search to the raw provider offer.
type Store interface {
	Put(ctx context.Context, offerID string, offer map[string]any) error
	Get(ctx context.Context, offerID string) (map[string]any, error)
}

type Config struct {
	RedisURL string        `envconfig:"REDIS_URL"`
	TTL      time.Duration `envconfig:"OFFER_CACHE_TTL" default:"30m"`
}

// StoreOption customizes RedisStore.
type StoreOption func(*RedisStore)

func WithKeyPrefix(prefix string) StoreOption {
	return func(s *RedisStore) {
		trimmed := strings.TrimSpace(prefix)
		if trimmed != "" {
			s.keyPrefix = trimmed
		}
	}
}

func WithTTL(ttl time.Duration) StoreOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// RedisStore keeps offers as JSON strings with a TTL.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

// New returns a RedisStore when a Redis URL is configured and an in-memory
// store otherwise.
func New(cfg Config) (Store, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return NewMemoryStore(defaultMemorySize, cfg.TTL), nil
	}

	opt, err := redis.ParseURL(strings.TrimSpace(cfg.RedisURL))
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewRedisStore(redis.NewClient(opt), WithTTL(cfg.TTL))
}

func NewRedisStore(client redis.UniversalClient, opts ...StoreOption) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}

	store := &RedisStore{
		client:    client,
		keyPrefix: defaultKeyPrefix,
		ttl:       defaultTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	if store.ttl < 0 {
		return nil, errors.New("ttl must be >= 0")
	}
	return store, nil
}

func (s *RedisStore) Put(ctx context.Context, offerID string, offer map[string]any) error {
	key, err := s.redisKey(offerID)
	if err != nil {
		return err
	}
	if offer == nil {
		return ErrNilOffer
	}

	payload, err := json.Marshal(offer)
	if err != nil {
		return fmt.Errorf("marshal offer: %w", err)
	}
	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set offer: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, offerID string) (map[string]any, error) {
	key, err := s.redisKey(offerID)
	if err != nil {
		return nil, err
	}

	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrOfferNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get offer: %w", err)
	}

	var offer map[string]any
	if err := json.Unmarshal(raw, &offer); err != nil {
		return nil, fmt.Errorf("unmarshal offer: %w", err)
	}
	return offer, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) redisKey(offerID string) (string, error) {
	if strings.TrimSpace(offerID) == "" {
		return "", ErrInvalidOfferID
	}
	return s.keyPrefix + strings.TrimSpace(offerID), nil
}

// MemoryStore is a size-bounded expiring LRU used when Redis is not
// configured.
type MemoryStore struct {
	lru *expirable.LRU[string, map[string]any]
}

func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	if size <= 0 {
		size = defaultMemorySize
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &MemoryStore{lru: expirable.NewLRU[string, map[string]any](size, nil, ttl)}
}

func (s *MemoryStore) Put(_ context.Context, offerID string, offer map[string]any) error {
	id := strings.TrimSpace(offerID)
	if id == "" {
		return ErrInvalidOfferID
	}
	if offer == nil {
		return ErrNilOffer
	}
	s.lru.Add(id, offer)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, offerID string) (map[string]any, error) {
	id := strings.TrimSpace(offerID)
	if id == "" {
		return nil, ErrInvalidOfferID
	}
	offer, ok := s.lru.Get(id)
	if !ok {
		return nil, ErrOfferNotFound
	}
	return offer, nil
}
