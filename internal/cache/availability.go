// Package cache holds the redis-backed station availability snapshot used by
// the polling endpoint. The store stays the source of truth: the cache is
// refreshed on every recount and read with a fallback, so a cold or failed
// cache never changes results, only latency.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when no snapshot is cached for the station.
var ErrMiss = errors.New("cache: availability miss")

// AvailabilitySnapshot is the cached view of one station's live capacity.
type AvailabilitySnapshot struct {
	StationID      int64     `json:"station_id"`
	AvailableSlots int       `json:"available_slots"`
	TotalSlots     int       `json:"total_slots"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AvailabilityCache stores per-station snapshots with a TTL.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAvailabilityCache wraps a redis client. TTL <= 0 falls back to a minute.
func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &AvailabilityCache{client: client, ttl: ttl}
}

func (c *AvailabilityCache) key(stationID int64) string {
	return fmt.Sprintf("stations:availability:%d", stationID)
}

// Put refreshes the station's snapshot.
func (c *AvailabilityCache) Put(ctx context.Context, snapshot AvailabilitySnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(snapshot.StationID), data, c.ttl).Err()
}

// Get returns the cached snapshot or ErrMiss.
func (c *AvailabilityCache) Get(ctx context.Context, stationID int64) (*AvailabilitySnapshot, error) {
	result, err := c.client.Get(ctx, c.key(stationID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, err
	}
	var snapshot AvailabilitySnapshot
	if err := json.Unmarshal([]byte(result), &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Invalidate drops the station's snapshot, e.g. when the station is deleted.
func (c *AvailabilityCache) Invalidate(ctx context.Context, stationID int64) error {
	return c.client.Del(ctx, c.key(stationID)).Err()
}
