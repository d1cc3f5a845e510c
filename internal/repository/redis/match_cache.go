package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"silleShop/domain"
	"silleShop/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

// MatchCache keeps ranked match listings warm between recomputes. Entries
// are invalidated whenever a user's match set is replaced, so a hit always
// reflects the last fully committed batch.
type MatchCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewMatchCache(client *redis.Client, ttl time.Duration) *MatchCache {
	return &MatchCache{
		client: client,
		ttl:    ttl,
	}
}

func matchKey(userID uint) string {
	return fmt.Sprintf("matches:user:%d", userID)
}

func (c *MatchCache) Get(ctx context.Context, userID uint) ([]domain.MatchScore, bool, error) {
	val, err := c.client.Get(ctx, matchKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		metrics.MatchCacheHits.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		metrics.MatchCacheHits.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("failed to read match cache: %w", err)
	}

	var scores []domain.MatchScore
	if err := json.Unmarshal([]byte(val), &scores); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached matches: %w", err)
	}

	metrics.MatchCacheHits.WithLabelValues("hit").Inc()
	return scores, true, nil
}

func (c *MatchCache) Set(ctx context.Context, userID uint, scores []domain.MatchScore) error {
	raw, err := json.Marshal(scores)
	if err != nil {
		return fmt.Errorf("failed to marshal matches: %w", err)
	}

	if err := c.client.Set(ctx, matchKey(userID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write match cache: %w", err)
	}

	return nil
}

func (c *MatchCache) Invalidate(ctx context.Context, userID uint) error {
	if err := c.client.Del(ctx, matchKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate match cache: %w", err)
	}

	return nil
}
