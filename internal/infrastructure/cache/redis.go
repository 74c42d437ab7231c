package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/cinematch/internal/domain/model"
)

// metadataCacheKeyPrefix is the prefix for metadata cache keys in Redis.
// Keys use the original (non-normalized) catalog title.
const metadataCacheKeyPrefix = "metadata:"

// metadataJSON is the JSON representation of Metadata for caching.
// Using an explicit struct avoids coupling cache layout to the domain model.
type metadataJSON struct {
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	Popularity   float64 `json:"popularity"`
}

// RedisMetadataCache implements MetadataCache using Redis as the backing store.
type RedisMetadataCache struct {
	client *redis.Client
}

// NewRedisMetadataCache creates a new Redis-backed metadata cache.
func NewRedisMetadataCache(client *redis.Client) *RedisMetadataCache {
	return &RedisMetadataCache{
		client: client,
	}
}

// Get retrieves metadata from Redis.
// Returns nil, nil on cache miss.
func (c *RedisMetadataCache) Get(ctx context.Context, title string) (*model.Metadata, error) {
	data, err := c.client.Get(ctx, metadataCacheKeyPrefix+title).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var m metadataJSON
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("deserialize metadata: %w", err)
	}

	return &model.Metadata{
		PosterPath:   m.PosterPath,
		BackdropPath: m.BackdropPath,
		Overview:     m.Overview,
		ReleaseDate:  m.ReleaseDate,
		VoteAverage:  m.VoteAverage,
		Popularity:   m.Popularity,
	}, nil
}

// Set stores metadata in Redis with the specified TTL.
func (c *RedisMetadataCache) Set(ctx context.Context, title string, meta model.Metadata, ttl time.Duration) error {
	data, err := json.Marshal(metadataJSON{
		PosterPath:   meta.PosterPath,
		BackdropPath: meta.BackdropPath,
		Overview:     meta.Overview,
		ReleaseDate:  meta.ReleaseDate,
		VoteAverage:  meta.VoteAverage,
		Popularity:   meta.Popularity,
	})
	if err != nil {
		return fmt.Errorf("serialize metadata: %w", err)
	}

	if err := c.client.Set(ctx, metadataCacheKeyPrefix+title, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Compile-time verification that RedisMetadataCache implements MetadataCache.
var _ MetadataCache = (*RedisMetadataCache)(nil)
