package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Phicks-debug/daisii/internal/utils/platformerrors"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent or
// expired. A miss is a normal condition in the cache-aside pattern.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the fast, non-authoritative side of the history store.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// HistoryRepository is the durable, authoritative side of the history
// store. GetHistory returns (nil, nil) when no record exists.
type HistoryRepository interface {
	GetHistory(ctx context.Context, userID, conversationID string) (*History, error)
	PutHistory(ctx context.Context, history *History) error
	EnsureTable(ctx context.Context) error
}

// durableWriteTimeout bounds the background durable write that outlives
// the request.
const durableWriteTimeout = 30 * time.Second

// HistoryStore keeps chat history in a cache backed by a durable store.
// The durable store is authoritative; a cache entry may be stale for at
// most its TTL. Saves update the cache on the request path and the
// durable store in the background; under durable-store failure the cache
// is the only surviving copy until the TTL runs out.
//
// Concurrent saves for one key are not serialized: the last cache write
// wins and durable write ordering may differ from arrival order.
type HistoryStore struct {
	cache  Cache
	repo   HistoryRepository
	ttl    time.Duration
	logger zerolog.Logger

	wg sync.WaitGroup
}

// NewHistoryStore constructs a HistoryStore with the given cache TTL.
func NewHistoryStore(cache Cache, repo HistoryRepository, ttl time.Duration, logger zerolog.Logger) *HistoryStore {
	return &HistoryStore{
		cache:  cache,
		repo:   repo,
		ttl:    ttl,
		logger: logger,
	}
}

func historyCacheKey(userID, conversationID string) string {
	return fmt.Sprintf("chat:%s:%s", userID, conversationID)
}

// Load returns the history for (userID, conversationID). A cache hit is
// returned as-is, not re-validated against the durable store. On a miss
// the durable store is read and the cache repopulated. A missing durable
// record yields an empty history, not an error.
func (s *HistoryStore) Load(ctx context.Context, userID, conversationID string) (*History, error) {
	key := historyCacheKey(userID, conversationID)

	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		var history History
		if unmarshalErr := json.Unmarshal([]byte(cached), &history); unmarshalErr == nil {
			return &history, nil
		}
		// undecodable cache entry: fall through to the durable read
		s.logger.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	} else if !errors.Is(err, ErrCacheMiss) {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, falling back to durable store")
	}

	history, err := s.repo.GetHistory(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = EmptyHistory(userID, conversationID)
	}

	if err := s.cacheHistory(ctx, key, history); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache repopulation failed")
	}

	return history, nil
}

// Save rewrites the history for (userID, conversationID). The cache
// write is synchronous so reads within the TTL window observe it; the
// durable write runs in the background and its failure is reported, not
// returned, since the client response has already been delivered.
func (s *HistoryStore) Save(ctx context.Context, userID, conversationID string, messages []Message) error {
	history := &History{
		ConversationID: conversationID,
		UserID:         userID,
		Messages:       messages,
	}

	key := historyCacheKey(userID, conversationID)
	if err := s.cacheHistory(ctx, key, history); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypePersistence, "cache write failed", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), durableWriteTimeout)
		defer cancel()
		if err := s.repo.PutHistory(writeCtx, history); err != nil {
			platformerrors.LogError(s.logger, platformerrors.NewError(writeCtx,
				platformerrors.LayerDomain, platformerrors.ErrorTypePersistence,
				"durable history write failed", err))
		}
	}()

	return nil
}

// Provision idempotently prepares durable storage for conversations.
func (s *HistoryStore) Provision(ctx context.Context) error {
	return s.repo.EnsureTable(ctx)
}

// Wait blocks until all background durable writes have finished. Used on
// shutdown so scheduled writes are not abandoned.
func (s *HistoryStore) Wait() {
	s.wg.Wait()
}

func (s *HistoryStore) cacheHistory(ctx context.Context, key string, history *History) error {
	encoded, err := json.Marshal(history)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, string(encoded), s.ttl)
}
