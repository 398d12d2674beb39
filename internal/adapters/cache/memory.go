package cache

import (
	"context"
	"path"
	"time"

	"github.com/athebyme/struct-commerce-sync/internal/metrics"
	"github.com/athebyme/struct-commerce-sync/pkg/interfaces"
	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache реализация CachePort в памяти процесса.
// Используется, когда Redis не настроен.
type MemoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache создает кэш с временем жизни по умолчанию и интервалом очистки
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) interfaces.CachePort {
	return &MemoryCache{store: gocache.New(defaultTTL, cleanupInterval)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	value, ok := m.store.Get(key)
	if !ok {
		metrics.CacheOperations.WithLabelValues("get", "miss").Inc()
		return nil, interfaces.ErrCacheMiss
	}
	metrics.CacheOperations.WithLabelValues("get", "hit").Inc()
	return value.([]byte), nil
}

// Set сохраняет копию значения, 0 означает время жизни по умолчанию
func (m *MemoryCache) Set(_ context.Context, key string, value []byte, expiration time.Duration) error {
	if expiration == 0 {
		expiration = gocache.DefaultExpiration
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	m.store.Set(key, stored, expiration)
	metrics.CacheOperations.WithLabelValues("set", "success").Inc()
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.store.Delete(key)
	return nil
}

// DeleteByPattern поддерживает шаблоны в синтаксисе path.Match, как glob у Redis
func (m *MemoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	for key := range m.store.Items() {
		matched, err := path.Match(pattern, key)
		if err != nil {
			return err
		}
		if matched {
			m.store.Delete(key)
		}
	}
	metrics.CacheOperations.WithLabelValues("delete_pattern", "success").Inc()
	return nil
}

func (m *MemoryCache) Close() error {
	m.store.Flush()
	return nil
}
