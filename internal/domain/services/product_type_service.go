package services

import (
	"context"
	"fmt"

	"github.com/athebyme/struct-commerce-sync/internal/domain/changes"
	"github.com/athebyme/struct-commerce-sync/internal/domain/keys"
	"github.com/athebyme/struct-commerce-sync/internal/domain/mapping"
	"github.com/athebyme/struct-commerce-sync/pkg/interfaces"
	"github.com/athebyme/struct-commerce-sync/pkg/models"
	"github.com/google/uuid"
)

// ProductTypeService синхронизирует структуры товаров Struct с типами товаров Commercetools
type ProductTypeService struct {
	commerce    interfaces.CommercePort
	pim         interfaces.PIMPort
	errors      *ErrorService
	logger      interfaces.LoggerPort
	concurrency int
}

// NewProductTypeService создает сервис типов товаров
func NewProductTypeService(commerce interfaces.CommercePort, pim interfaces.PIMPort, errs *ErrorService, logger interfaces.LoggerPort, opts Options) *ProductTypeService {
	return &ProductTypeService{
		commerce:    commerce,
		pim:         pim,
		errors:      errs,
		logger:      logger.WithField("component", "product_type_service"),
		concurrency: opts.concurrency(),
	}
}

// Create создает тип товара. include перечисляет алиасы атрибутов товара,
// которые попадут в тип; атрибуты варианта и sku переносятся всегда.
func (s *ProductTypeService) Create(ctx context.Context, structure models.ProductStructure, include []string) *models.ProductType {
	key := keys.FromUID(structure.Uid)

	productAttrs, err := s.attributes(ctx, structure.ProductAttributeUIDs())
	if err != nil {
		fail(ctx, s.logger, s.errors, fmt.Sprintf("Failed to create the product type %s in Commercetools.", key), err.Error())
		return nil
	}
	variantAttrs, err := s.attributes(ctx, structure.VariantAttributeUIDs())
	if err != nil {
		fail(ctx, s.logger, s.errors, fmt.Sprintf("Failed to create the product type %s in Commercetools.", key), err.Error())
		return nil
	}

	draft := mapping.ProductTypeDraft(structure, productAttrs, variantAttrs, include)
	res := s.commerce.CreateProductType(ctx, draft)
	if !res.IsOK() {
		fail(ctx, s.logger, s.errors, fmt.Sprintf("Failed to create the product type %s in Commercetools.", key), res.Message)
		return nil
	}

	s.logger.InfoWithContext(ctx, "Тип товара создан",
		interfaces.LogField{Key: "key", Value: key},
		interfaces.LogField{Key: "attributes", Value: len(draft.Attributes)},
	)
	return res.Value
}

// CreateMany создает типы товаров параллельно и возвращает структуры созданных типов
func (s *ProductTypeService) CreateMany(ctx context.Context, structures []models.ProductStructure, include []string) []models.ProductStructure {
	return fanOutFilter(ctx, s.concurrency, structures, func(ctx context.Context, structure models.ProductStructure) bool {
		return s.Create(ctx, structure, include) != nil
	})
}

// Update применяет изменения имени и описания типа товара
func (s *ProductTypeService) Update(ctx context.Context, structure models.ProductStructure) *models.ProductType {
	key := keys.FromUID(structure.Uid)
	existing := s.GetByKey(ctx, key)
	if existing == nil {
		s.logger.WarnWithContext(ctx, "Тип товара не найден в Commercetools, обновление пропущено", interfaces.LogField{Key: "key", Value: key})
		return nil
	}

	update := changes.ProductType(existing, mapping.ProductTypeState(structure))
	if update == nil {
		s.logger.InfoWithContext(ctx, "Изменений нет, обновление типа товара пропущено", interfaces.LogField{Key: "key", Value: key})
		return nil
	}

	res := s.commerce.UpdateProductType(ctx, key, *update)
	if !res.IsOK() {
		fail(ctx, s.logger, s.errors, fmt.Sprintf("Failed to update the product type %s in Commercetools.", key), res.Message)
		return nil
	}
	s.logger.InfoWithContext(ctx, "Тип товара обновлен", interfaces.LogField{Key: "key", Value: key})
	return res.Value
}

// Delete удаляет тип товара, отсутствие типа считается ошибкой
func (s *ProductTypeService) Delete(ctx context.Context, uid uuid.UUID) *models.ProductType {
	key := keys.FromUID(uid)
	existing := s.GetByKey(ctx, key)
	if existing == nil {
		fail(ctx, s.logger, s.errors, fmt.Sprintf("Could not delete the product type %s in Commercetools since it does not exist.", key), "")
		return nil
	}

	res := s.commerce.DeleteProductType(ctx, key, existing.Version)
	if !res.IsOK() {
		fail(ctx, s.logger, s.errors, fmt.Sprintf("Failed to delete the product type %s in Commercetools.", key), res.Message)
		return nil
	}
	s.logger.InfoWithContext(ctx, "Тип товара удален", interfaces.LogField{Key: "key", Value: key})
	return res.Value
}

// DeleteMany удаляет типы товаров параллельно
func (s *ProductTypeService) DeleteMany(ctx context.Context, structures []models.ProductStructure) {
	fanOut(ctx, s.concurrency, structures, func(ctx context.Context, structure models.ProductStructure) {
		s.Delete(ctx, structure.Uid)
	})
}

// GetByKey читает тип товара, отсутствие и ошибки чтения дают nil
func (s *ProductTypeService) GetByKey(ctx context.Context, key string) *models.ProductType {
	res := s.commerce.GetProductTypeByKey(ctx, key)
	if res.IsOK() {
		return res.Value
	}
	s.logger.WarnWithContext(ctx, "Не удалось получить тип товара из Commercetools",
		interfaces.LogField{Key: "key", Value: key},
		interfaces.LogField{Key: "error", Value: res.Message},
	)
	return nil
}

// attributes читает определения атрибутов.
// Пустой список uid не запрашивается, иначе PIM вернул бы все атрибуты.
func (s *ProductTypeService) attributes(ctx context.Context, uids []uuid.UUID) ([]models.Attribute, error) {
	if len(uids) == 0 {
		return []models.Attribute{}, nil
	}
	attrs, err := s.pim.GetAttributes(ctx, uids)
	if err != nil {
		return nil, fmt.Errorf("failed to get attributes: %w", err)
	}
	if attrs == nil {
		attrs = []models.Attribute{}
	}
	return attrs, nil
}
