package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nutrition-relay/internal/infrastructure/config"
	"nutrition-relay/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "nutrition-relay:ai:"

// RedisStore 以 Redis 保存 AI 回應，多個實例可共用
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore 創建 Redis 緩存並測試連線
func NewRedisStore(cacheCfg config.CacheConfig, redisCfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisStore(client, cacheCfg.TTL), nil
}

func newRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get 獲取緩存
func (s *RedisStore) Get(ctx context.Context, prompt, imageData string) (string, error) {
	val, err := s.client.Get(ctx, redisKeyPrefix+generateKey(prompt, imageData)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", common.ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}
	return val, nil
}

// Set 設置緩存
func (s *RedisStore) Set(ctx context.Context, prompt, imageData, value string) error {
	if err := s.client.Set(ctx, redisKeyPrefix+generateKey(prompt, imageData), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close 關閉 Redis 連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}
