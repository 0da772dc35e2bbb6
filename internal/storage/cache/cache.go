package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/julianstephens/dailyfocus/internal/config"
	"github.com/julianstephens/dailyfocus/internal/constants"
	"github.com/julianstephens/dailyfocus/internal/logger"
	"github.com/julianstephens/dailyfocus/internal/models"
	"github.com/julianstephens/dailyfocus/internal/storage"
)

// Store is a read-through, write-through Redis cache in front of another
// Provider. Single-note reads are served from Redis when present. Upsert
// caches the row it stored, and a read fills only an empty key, so a read
// that raced a write cannot put the older row back. Redis faults never fail
// a call; they fall through to the inner provider.
type Store struct {
	storage.Provider

	client *redis.Client
	ttl    time.Duration
}

var _ storage.Provider = (*Store)(nil)

// New connects to Redis and wraps inner.
func New(ctx context.Context, inner storage.Provider, cfg config.CacheConfig) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = constants.DefaultCacheTTL
	}

	return &Store{
		Provider: inner,
		client:   client,
		ttl:      ttl,
	}, nil
}

// Key is the Redis key for a single note.
func Key(key models.NoteKey) string {
	return fmt.Sprintf("%s:%s:%s:%s", constants.CacheKeyPrefix, key.UserID, key.NoteType, key.Date)
}

func pattern(userID string, noteType models.NoteType) string {
	return fmt.Sprintf("%s:%s:%s:*", constants.CacheKeyPrefix, userID, noteType)
}

func (s *Store) Select(ctx context.Context, key models.NoteKey) (models.DateNote, error) {
	redisKey := Key(key)

	raw, err := s.client.Get(ctx, redisKey).Bytes()
	switch {
	case err == nil:
		var note models.DateNote
		if err := json.Unmarshal(raw, &note); err == nil {
			logger.Debug("Note cache hit", "key", redisKey)
			return note, nil
		}
		logger.Warn("Discarding undecodable cached note", "key", redisKey, "error", err)
		s.drop(ctx, redisKey)
	case errors.Is(err, redis.Nil):
		// miss
	default:
		logger.Warn("Note cache read failed", "key", redisKey, "error", err)
	}

	note, err := s.Provider.Select(ctx, key)
	if err != nil {
		return models.DateNote{}, err
	}

	if data, err := json.Marshal(note); err == nil {
		if err := s.client.SetNX(ctx, redisKey, data, s.ttl).Err(); err != nil {
			logger.Warn("Note cache fill failed", "key", redisKey, "error", err)
		}
	}
	return note, nil
}

func (s *Store) Upsert(ctx context.Context, note models.DateNote) (models.DateNote, error) {
	stored, err := s.Provider.Upsert(ctx, note)
	if err != nil {
		return models.DateNote{}, err
	}

	redisKey := Key(stored.Key())
	data, err := json.Marshal(stored)
	if err == nil {
		err = s.client.Set(ctx, redisKey, data, s.ttl).Err()
	}
	if err != nil {
		logger.Warn("Note cache write failed", "key", redisKey, "error", err)
		s.drop(ctx, redisKey)
	}
	return stored, nil
}

// drop removes a cached note that may no longer match the inner provider.
func (s *Store) drop(ctx context.Context, redisKey string) {
	if err := s.client.Del(ctx, redisKey).Err(); err != nil {
		logger.Warn("Note cache invalidation failed", "key", redisKey, "error", err)
	}
}

func (s *Store) DeleteAll(ctx context.Context, userID string, noteType models.NoteType) (int64, error) {
	n, err := s.Provider.DeleteAll(ctx, userID, noteType)
	if err != nil {
		return 0, err
	}

	if err := s.evict(ctx, pattern(userID, noteType)); err != nil {
		logger.Warn("Note cache eviction failed", "user", userID, "note_type", noteType, "error", err)
	}
	return n, nil
}

func (s *Store) evict(ctx context.Context, match string) error {
	iter := s.client.Scan(ctx, 0, match, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *Store) Close() error {
	var errs []error
	if err := s.client.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close redis connection: %w", err))
	}
	if err := s.Provider.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Unwrap returns the provider behind the cache.
func (s *Store) Unwrap() storage.Provider {
	return s.Provider
}
