package account

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"veil/internal/profile/models"
)

const (
	accountCacheKeyPrefix = "account:"

	// DefaultCacheTTL bounds staleness of cached account snapshots. Access
	// key rotations take effect within this window.
	DefaultCacheTTL = 30 * time.Second
)

// Store is the read surface the caching layer wraps.
type Store interface {
	GetByServiceIdentifier(ctx context.Context, identifier models.ServiceIdentifier) (*models.Account, error)
}

// CachingStore is a Redis read-through cache in front of another account
// store. Only positive lookups are cached: a cached miss would age
// differently than a cached hit and make absent accounts observable through
// response timing.
type CachingStore struct {
	inner  Store
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// CachingStoreOption configures a CachingStore.
type CachingStoreOption func(*CachingStore)

// WithCacheTTL overrides the default cache entry lifetime.
func WithCacheTTL(ttl time.Duration) CachingStoreOption {
	return func(s *CachingStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithCacheLogger sets the logger for cache faults.
func WithCacheLogger(logger *slog.Logger) CachingStoreOption {
	return func(s *CachingStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewCachingStore wraps inner with a Redis read-through cache.
func NewCachingStore(inner Store, client *redis.Client, opts ...CachingStoreOption) (*CachingStore, error) {
	if inner == nil {
		return nil, errors.New("inner account store is required")
	}
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	s := &CachingStore{
		inner:  inner,
		client: client,
		ttl:    DefaultCacheTTL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// GetByServiceIdentifier resolves an account, serving from cache when a
// fresh snapshot is available. Cache faults degrade to the inner store.
func (s *CachingStore) GetByServiceIdentifier(ctx context.Context, identifier models.ServiceIdentifier) (*models.Account, error) {
	key := cacheKey(identifier)

	payload, err := s.client.Get(ctx, key).Bytes()
	if err == nil {
		var account models.Account
		if unmarshalErr := json.Unmarshal(payload, &account); unmarshalErr == nil {
			return &account, nil
		}
		// Corrupt entry: forget it and fall through.
		s.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		s.logger.WarnContext(ctx, "account cache read failed", "error", err)
	}

	account, err := s.inner.GetByServiceIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if encoded, marshalErr := json.Marshal(account); marshalErr == nil {
		if setErr := s.client.Set(ctx, key, encoded, s.ttl).Err(); setErr != nil {
			s.logger.WarnContext(ctx, "account cache write failed", "error", setErr)
		}
	}
	return account, nil
}

func cacheKey(identifier models.ServiceIdentifier) string {
	return accountCacheKeyPrefix + identifier.String()
}
