package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	model "github.com/rishika105/CodeShield-AI/internal/models"
)

const (
	leaderboardCacheKey = "leaderboard:top"
	leaderboardCacheTTL = 30 * time.Second
)

// LeaderboardCache keeps the serialized top-N leaderboard in Redis for a
// short TTL. Progress writes invalidate it eagerly.
type LeaderboardCache struct {
	client *redis.Client
}

func NewLeaderboardCache(client *redis.Client) *LeaderboardCache {
	return &LeaderboardCache{client: client}
}

// GetLeaderboard returns the cached entries, or (nil, nil) on a miss.
func (c *LeaderboardCache) GetLeaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	data, err := c.client.Get(ctx, leaderboardCacheKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []model.LeaderboardEntry
	if err := json.Unmarshal([]byte(data), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SetLeaderboard stores the entries with the cache TTL.
func (c *LeaderboardCache) SetLeaderboard(ctx context.Context, entries []model.LeaderboardEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, leaderboardCacheKey, data, leaderboardCacheTTL).Err()
}

// InvalidateLeaderboard drops the cached entries after a progress write.
func (c *LeaderboardCache) InvalidateLeaderboard(ctx context.Context) error {
	return c.client.Del(ctx, leaderboardCacheKey).Err()
}
