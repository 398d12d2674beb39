package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/athebyme/struct-commerce-sync/internal/metrics"
	"github.com/athebyme/struct-commerce-sync/pkg/interfaces"
	"github.com/go-redis/redis/v8"
)

// scanBatch число ключей, удаляемых одним DEL при удалении по шаблону
const scanBatch = 100

// RedisCache реализация CachePort поверх Redis.
// Все ключи хранятся с префиксом сервиса, чтобы несколько проектов могли делить один Redis.
type RedisCache struct {
	client     *redis.Client
	prefix     string
	defaultTTL time.Duration
}

// NewRedisCache подключается к Redis и проверяет соединение
func NewRedisCache(ctx context.Context, host string, port int, password string, db int, prefix string, defaultTTL time.Duration) (interfaces.CachePort, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client, prefix: prefix, defaultTTL: defaultTTL}, nil
}

func (r *RedisCache) buildKey(key string) string {
	if r.prefix != "" {
		return r.prefix + ":" + key
	}
	return key
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.buildKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheOperations.WithLabelValues("get", "miss").Inc()
			return nil, interfaces.ErrCacheMiss
		}
		metrics.CacheOperations.WithLabelValues("get", "error").Inc()
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	metrics.CacheOperations.WithLabelValues("get", "hit").Inc()
	return val, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	if expiration == 0 {
		expiration = r.defaultTTL
	}
	if err := r.client.Set(ctx, r.buildKey(key), value, expiration).Err(); err != nil {
		metrics.CacheOperations.WithLabelValues("set", "error").Inc()
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	metrics.CacheOperations.WithLabelValues("set", "success").Inc()
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.buildKey(key)).Err()
}

// DeleteByPattern удаляет ключи пачками по scanBatch
func (r *RedisCache) DeleteByPattern(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, r.buildKey(pattern), scanBatch).Iterator()
	var keys []string

	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= scanBatch {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("ошибка при удалении ключей кэша: %w", err)
			}
			keys = keys[:0]
		}
	}

	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("ошибка при удалении оставшихся ключей кэша: %w", err)
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("ошибка при сканировании ключей по шаблону: %w", err)
	}
	metrics.CacheOperations.WithLabelValues("delete_pattern", "success").Inc()
	return nil
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
