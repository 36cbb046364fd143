package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RatingCache is a read-through cache for per-book review aggregates.
// It only ever stores aggregates that were computed from the database;
// absence of a key always falls through to the store, so a missing book
// is never served from here.
type RatingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRatingCache connects to Redis and verifies the connection.
func NewRatingCache(addr, password string, ttl time.Duration) (*RatingCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RatingCache{client: rdb, ttl: ttl}, nil
}

func key(bookID int64) string {
	return fmt.Sprintf("book:%d:aggregate", bookID)
}

// Get returns the cached aggregate for a book. ok is false on a cache
// miss or any Redis error; callers fall back to the database.
func (c *RatingCache) Get(ctx context.Context, bookID int64) (count int64, mean *float64, ok bool) {
	if c == nil || c.client == nil {
		// cache disabled - always miss
		return 0, nil, false
	}

	fields, err := c.client.HGetAll(ctx, key(bookID)).Result()
	if err != nil || len(fields) == 0 {
		return 0, nil, false
	}

	count, err = strconv.ParseInt(fields["count"], 10, 64)
	if err != nil {
		return 0, nil, false
	}

	// mean is stored as "" for unreviewed books (count 0)
	if raw, exists := fields["mean"]; exists && raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, nil, false
		}
		mean = &parsed
	}

	return count, mean, true
}

// Set stores an aggregate with the configured TTL. Best-effort: errors
// are dropped, the database remains the source of truth.
func (c *RatingCache) Set(ctx context.Context, bookID int64, count int64, mean *float64) {
	if c == nil || c.client == nil {
		return
	}

	meanField := ""
	if mean != nil {
		meanField = strconv.FormatFloat(*mean, 'f', -1, 64)
	}

	k := key(bookID)
	if err := c.client.HSet(ctx, k, map[string]any{
		"count": count,
		"mean":  meanField,
	}).Err(); err != nil {
		return
	}
	_ = c.client.Expire(ctx, k, c.ttl).Err()
}

// Invalidate drops the cached aggregate after a review write.
func (c *RatingCache) Invalidate(ctx context.Context, bookID int64) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, key(bookID)).Err()
}

func (c *RatingCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
