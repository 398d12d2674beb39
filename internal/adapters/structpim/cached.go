package structpim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/athebyme/struct-commerce-sync/pkg/interfaces"
	"github.com/athebyme/struct-commerce-sync/pkg/models"
	"github.com/google/uuid"
)

const (
	attributesKey          = "pim:attributes:all"
	attributesPattern      = "pim:attributes:*"
	productStructurePrefix = "pim:productstructures:"
)

// CachedClient кэширует определения атрибутов и структуры товаров.
// Остальные вызовы идут напрямую во вложенный PIMPort.
type CachedClient struct {
	interfaces.PIMPort
	cache  interfaces.CachePort
	ttl    time.Duration
	logger interfaces.LoggerPort
}

// NewCachedClient оборачивает PIMPort кэшем
func NewCachedClient(inner interfaces.PIMPort, cache interfaces.CachePort, ttl time.Duration, logger interfaces.LoggerPort) *CachedClient {
	return &CachedClient{PIMPort: inner, cache: cache, ttl: ttl, logger: logger}
}

// GetAttributes берет все атрибуты из кэша и фильтрует по uid
func (c *CachedClient) GetAttributes(ctx context.Context, uids []uuid.UUID) ([]models.Attribute, error) {
	all, err := c.allAttributes(ctx)
	if err != nil {
		return nil, err
	}
	if len(uids) == 0 {
		return all, nil
	}

	wanted := make(map[uuid.UUID]struct{}, len(uids))
	for _, uid := range uids {
		wanted[uid] = struct{}{}
	}
	out := make([]models.Attribute, 0, len(uids))
	for _, attr := range all {
		if _, ok := wanted[attr.Uid]; ok {
			out = append(out, attr)
		}
	}
	return out, nil
}

func (c *CachedClient) allAttributes(ctx context.Context) ([]models.Attribute, error) {
	var cached []models.Attribute
	if c.load(ctx, attributesKey, &cached) {
		return cached, nil
	}

	attrs, err := c.PIMPort.GetAttributes(ctx, nil)
	if err != nil {
		return nil, err
	}

	// атрибуты неизвестного вида не сериализуются и все равно не переносятся
	known := make([]models.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		if attr.Kind != nil {
			known = append(known, attr)
		}
	}
	c.store(ctx, attributesKey, known)
	return known, nil
}

// GetProductStructure кэширует найденные структуры, отсутствие не кэшируется
func (c *CachedClient) GetProductStructure(ctx context.Context, uid uuid.UUID) (*models.ProductStructure, error) {
	key := productStructurePrefix + uid.String()

	var cached models.ProductStructure
	if c.load(ctx, key, &cached) {
		return &cached, nil
	}

	structure, err := c.PIMPort.GetProductStructure(ctx, uid)
	if err != nil || structure == nil {
		return structure, err
	}
	c.store(ctx, key, structure)
	return structure, nil
}

// InvalidateAttributes сбрасывает закэшированные определения атрибутов
func (c *CachedClient) InvalidateAttributes(ctx context.Context) error {
	if err := c.cache.DeleteByPattern(ctx, attributesPattern); err != nil {
		return fmt.Errorf("failed to invalidate attributes: %w", err)
	}
	return nil
}

// InvalidateProductStructure сбрасывает структуру товара
func (c *CachedClient) InvalidateProductStructure(ctx context.Context, uid uuid.UUID) error {
	if err := c.cache.Delete(ctx, productStructurePrefix+uid.String()); err != nil {
		return fmt.Errorf("failed to invalidate product structure %s: %w", uid, err)
	}
	return nil
}

// load ошибки кэша считаются промахом
func (c *CachedClient) load(ctx context.Context, key string, dst interface{}) bool {
	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, interfaces.ErrCacheMiss) {
			c.logger.WarnWithContext(ctx, "Ошибка чтения кэша",
				interfaces.LogField{Key: "key", Value: key},
				interfaces.LogField{Key: "error", Value: err.Error()},
			)
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.WarnWithContext(ctx, "Поврежденная запись кэша",
			interfaces.LogField{Key: "key", Value: key},
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
		return false
	}
	return true
}

func (c *CachedClient) store(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.WarnWithContext(ctx, "Не удалось сериализовать запись кэша",
			interfaces.LogField{Key: "key", Value: key},
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
		return
	}
	if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
		c.logger.WarnWithContext(ctx, "Не удалось записать в кэш",
			interfaces.LogField{Key: "key", Value: key},
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
	}
}
