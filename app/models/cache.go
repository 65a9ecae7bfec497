package models

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"GoTelegramAI/app/utils"
)

const (
	redisKeyPrefix  = "embedding:"
	DefaultCacheTTL = 7 * 24 * time.Hour
)

// Cache stores embeddings by key. Misses and backend failures look the same
// to the caller: the embedding is simply requested again.
type Cache interface {
	Get(ctx context.Context, key string) ([]float32, bool)
	Set(ctx context.Context, key string, vec []float32)
}

type MemoryCache struct {
	entries sync.Map
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]float32, bool) {
	v, ok := c.entries.Load(key)
	if !ok {
		return nil, false
	}
	emb, ok := v.([]float32)
	return emb, ok
}

func (c *MemoryCache) Set(_ context.Context, key string, vec []float32) {
	c.entries.Store(key, vec)
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(ctx context.Context, url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err = client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]float32, bool) {
	b, err := c.client.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warnf("⚠️ Redis cache get failed: %v", err)
		}
		return nil, false
	}
	vec, err := utils.DecodeVector(b)
	if err != nil {
		log.Warnf("⚠️ Corrupted cached embedding: %v", err)
		return nil, false
	}
	return vec, true
}

func (c *RedisCache) Set(ctx context.Context, key string, vec []float32) {
	if err := c.client.Set(ctx, redisKey(key), utils.EncodeVector(vec), c.ttl).Err(); err != nil {
		log.Warnf("⚠️ Redis cache set failed: %v", err)
	}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func redisKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return redisKeyPrefix + hex.EncodeToString(sum[:])
}
