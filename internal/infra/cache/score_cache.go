package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rsouza-dev/leadforge/internal/usecase"
)

// ScoreCache holds the latest scoring result per lead so tracking endpoints
// do not recompute on every hit.
type ScoreCache interface {
	Get(ctx context.Context, leadID string) (*usecase.ScoringResult, error)
	Store(ctx context.Context, leadID string, result usecase.ScoringResult) error
	Invalidate(ctx context.Context, leadID string) error
}

type RedisScoreCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisScoreCache(rdb *redis.Client, ttl time.Duration) *RedisScoreCache {
	return &RedisScoreCache{rdb: rdb, ttl: ttl}
}

func scoreKey(leadID string) string {
	return fmt.Sprintf("score:%s", leadID)
}

// Get returns nil without error on a cache miss.
func (c *RedisScoreCache) Get(ctx context.Context, leadID string) (*usecase.ScoringResult, error) {
	raw, err := c.rdb.Get(ctx, scoreKey(leadID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var result usecase.ScoringResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *RedisScoreCache) Store(ctx context.Context, leadID string, result usecase.ScoringResult) error {
	b, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, scoreKey(leadID), b, c.ttl).Err()
}

func (c *RedisScoreCache) Invalidate(ctx context.Context, leadID string) error {
	return c.rdb.Del(ctx, scoreKey(leadID)).Err()
}
