package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ViewStore is the durable view history the seen-set cache fronts.
type ViewStore interface {
	SeenSet(ctx context.Context, userID string) (map[string]struct{}, error)
	RecordViews(ctx context.Context, userID string, itemIDs []string) error
}

// SeenSetCache keeps a per-user redis set in front of the durable view
// history. Members are only ever added and the key expires on its own,
// so a stale cache can over-exclude within the retention window but
// can never cause a repeat. All cache failures degrade to the store.
type SeenSetCache struct {
	cache  *Cache
	store  ViewStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewSeenSetCache creates a seen-set cache. A nil cache passes every
// call straight through to the store.
func NewSeenSetCache(cache *Cache, store ViewStore, ttl time.Duration, logger *zap.Logger) *SeenSetCache {
	return &SeenSetCache{
		cache:  cache,
		store:  store,
		ttl:    ttl,
		logger: logger.With(zap.String("component", "seen-set-cache")),
	}
}

func seenKey(userID string) string {
	return "seen:" + userID
}

// SeenSet returns the user's seen item IDs, serving from redis when
// the set is warm and rebuilding it from the store otherwise.
func (s *SeenSetCache) SeenSet(ctx context.Context, userID string) (map[string]struct{}, error) {
	if s.cache == nil {
		return s.store.SeenSet(ctx, userID)
	}

	key := seenKey(userID)
	exists, err := s.cache.Exists(ctx, key)
	if err == nil && exists {
		members, merr := s.cache.SMembers(ctx, key)
		if merr == nil {
			seen := make(map[string]struct{}, len(members))
			for _, m := range members {
				seen[m] = struct{}{}
			}
			return seen, nil
		}
		err = merr
	}
	if err != nil {
		s.logger.Warn("seen-set cache read failed, falling back to store", zap.Error(err))
	}

	seen, err := s.store.SeenSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(seen) > 0 {
		members := make([]interface{}, 0, len(seen))
		for id := range seen {
			members = append(members, id)
		}
		if err := s.cache.SAdd(ctx, key, members...); err != nil {
			s.logger.Warn("seen-set cache rebuild failed", zap.Error(err))
		} else if err := s.cache.Expire(ctx, key, s.ttl); err != nil {
			s.logger.Warn("seen-set cache expire failed", zap.Error(err))
		}
	}

	return seen, nil
}

// RecordViews writes the views durably and then folds them into the
// warm cache set so a concurrent reader cannot miss them.
func (s *SeenSetCache) RecordViews(ctx context.Context, userID string, itemIDs []string) error {
	if err := s.store.RecordViews(ctx, userID, itemIDs); err != nil {
		return err
	}
	if s.cache == nil || len(itemIDs) == 0 {
		return nil
	}

	key := seenKey(userID)
	exists, err := s.cache.Exists(ctx, key)
	if err != nil || !exists {
		return nil
	}
	members := make([]interface{}, len(itemIDs))
	for i, id := range itemIDs {
		members[i] = id
	}
	if err := s.cache.SAdd(ctx, key, members...); err != nil {
		s.logger.Warn("seen-set cache write-through failed", zap.Error(err))
	}
	return nil
}
