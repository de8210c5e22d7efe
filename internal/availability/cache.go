package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"courtslot/internal/logger"
)

// Cache is a read-through redis cache for availability responses. Entries are
// short-lived and keyed per court, date, duration, sport and user, so a stale
// answer can survive at most the TTL after a booking lands.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(req AvailabilityRequest) string {
	return fmt.Sprintf("availability:%d:%s:%d:%s:%d",
		req.CourtID, req.Date.Format("2006-01-02"), req.DurationMinutes, req.Sport, req.UserID)
}

func (c *Cache) Get(ctx context.Context, req AvailabilityRequest) (*AvailabilityResponse, bool) {
	if c == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, cacheKey(req)).Bytes()
	if err != nil {
		return nil, false
	}

	var resp AvailabilityResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		logger.Errorf("Bad availability cache entry: %v", err)
		return nil, false
	}

	return &resp, true
}

func (c *Cache) Set(ctx context.Context, req AvailabilityRequest, resp *AvailabilityResponse) {
	if c == nil {
		return
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, cacheKey(req), data, c.ttl).Err(); err != nil {
		logger.Errorf("Failed to cache availability for court %d: %v", req.CourtID, err)
	}
}

// InvalidateCourt drops every cached answer for a court on one date. Called after
// reservation or maintenance writes.
func (c *Cache) InvalidateCourt(ctx context.Context, courtID int, date time.Time) {
	if c == nil {
		return
	}

	pattern := fmt.Sprintf("availability:%d:%s:*", courtID, date.Format("2006-01-02"))
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Errorf("Failed to invalidate availability cache key %s: %v", iter.Val(), err)
		}
	}
}
