package services

import (
	"context"
	"fmt"

	"github.com/athebyme/struct-commerce-sync/internal/domain/changes"
	"github.com/athebyme/struct-commerce-sync/internal/domain/keys"
	"github.com/athebyme/struct-commerce-sync/internal/domain/mapping"
	"github.com/athebyme/struct-commerce-sync/pkg/interfaces"
	"github.com/athebyme/struct-commerce-sync/pkg/models"
	"github.com/athebyme/struct-commerce-sync/pkg/utils"
)

// Раскрываемые ссылки товара при обновлении
const (
	expandProductType = "productType"
	expandCategories  = "masterData.current.categories[*]"
)

// ProductVariantService синхронизирует товары и варианты Struct с товарами Commercetools.
// Вариант Struct становится вариантом товара с ключом варианта.
type ProductVariantService struct {
	commerce     interfaces.CommercePort
	pim          interfaces.PIMPort
	productTypes *ProductTypeService
	values       *valueResolver
	errors       *ErrorService
	logger       interfaces.LoggerPort
	recreate     bool
	batchSize    int
	concurrency  int
}

// NewProductVariantService создает сервис товаров и вариантов
func NewProductVariantService(
	commerce interfaces.CommercePort,
	pim interfaces.PIMPort,
	productTypes *ProductTypeService,
	errs *ErrorService,
	logger interfaces.LoggerPort,
	opts Options,
) *ProductVariantService {
	log := logger.WithField("component", "product_variant_service")
	return &ProductVariantService{
		commerce:     commerce,
		pim:          pim,
		productTypes: productTypes,
		values:       &valueResolver{commerce: commerce, logger: log},
		errors:       errs,
		logger:       log,
		recreate:     opts.RecreateProductsOnProductStructureChange,
		batchSize:    opts.batchSize(),
		concurrency:  opts.concurrency(),
	}
}

// CreateProducts создает товары параллельно и возвращает идентификаторы созданных
func (s *ProductVariantService) CreateProducts(ctx context.Context, products []models.ProductModel) []int {
	created := fanOutFilter(ctx, s.concurrency, products, func(ctx context.Context, p models.ProductModel) bool {
		return s.CreateProduct(ctx, p) != nil
	})
	ids := make([]int, 0, len(created))
	for _, p := range created {
		ids = append(ids, p.Id)
	}
	return ids
}

// CreateProduct создает товар и вторым запросом записывает значения атрибутов товара
func (s *ProductVariantService) CreateProduct(ctx context.Context, p models.ProductModel) *models.Product {
	key := keys.FromID(p.Id)

	cls, ok := s.classification(ctx, p.Id)
	if !ok {
		fail(ctx, s.logger, s.errors, fmt.Sprintf("Failed to create the product %s in Commercetools. No classifications defined.", key), "")
		return nil
	}

	if existing := s.GetByKey(ctx, key); existing != nil {
		s.logger.InfoWithContext(ctx, "Товар уже существует, создание пропущено", interfaces.LogField{Key: "key", Value: key})
		return nil
	}

	draft := mapping.ProductDraft(p, cls)
	res := s.commerce.CreateProduct(ctx, draft)
	if !res.IsOK() {
		fail(ctx, s.logger, s.errors, fmt.Sprintf("Failed to create the product %s in Commercetools.", key), res.Message)
		return nil
	}
	s.logger.InfoWithContext(ctx, "Товар создан", interfaces.LogField{Key: "key", Value: key})

	created := res.Value
	productType := s.productTypes.GetByKey(ctx, draft.ProductType.Key)
	if productType == nil {
		return created
	}

	actions := s.productAttributeActions(ctx, p.Id, productType)
	if len(actions) == 0 {
		return created
	}
	if updated := s.apply(ctx, key, models.Update{Version: created.Version, Actions: actions},
		fmt.Sprintf("Failed to update the product %s in Commercetools.", key)); updated != nil {
		return updated
	}
	return created
}

// UpdateProducts обновляет товары параллельно
func (s *ProductVariantService) UpdateProducts(ctx context.Context, products []models.ProductModel) {
	fanOut(ctx, s.concurrency, products, func(ctx context.Context, p models.ProductModel) {
		s.UpdateProduct(ctx, p)
	})
}

// UpdateProduct записывает значения атрибутов и привязку к категориям.
// Отсутствующий в Commercetools товар пропускается без ошибки.
// При смене типа товар пересоздается, если это разрешено настройками.
func (s *ProductVariantService) UpdateProduct(ctx context.Context, p models.ProductModel) *models.Product {
	key := keys.FromID(p.Id)

	cls, ok := s.classification(ctx, p.Id)
	if !ok {
		fail(ctx, s.logger, s.errors, fmt.Sprintf("Failed to update the product %s in Commercetools. No classifications defined.", key), "")
		return nil
	}

	existing := s.GetByKey(ctx, key, expandProductType, expandCategories)
	if existing == nil {
		s.logger.WarnWithContext(ctx, "Товар не найден в Commercetools, обновление пропущено", interfaces.LogField{Key: "key", Value: key})
		return nil
	}

	productType := s.productTypes.GetByKey(ctx, keys.FromUID(p.ProductStructureUid))
	if productType == nil {
		fail(ctx, s.logger, s.errors, fmt.Sprintf("Failed to update the product %s in Commercetools. No product type found.", key), "")
		return nil
	}

	if productTypeChanged(existing, productType) {
		if s.recreate {
			s.logger.WarnWithContext(ctx, "Тип товара изменился, товар будет пересоздан",
				interfaces.LogField{Key: "key", Value: key},
				interfaces.LogField{Key: "product_type", Value: productType.Key},
			)
			return s.recreateProduct(ctx, p)
		}
		s.logger.WarnWithContext(ctx, "Тип товара изменился, пересоздание отключено",
			interfaces.LogField{Key: "key", Value: key},
			interfaces.LogField{Key: "product_type", Value: productType.Key},
		)
	}

	actions := s.productAttributeActions(ctx, p.Id, productType)
	actions = append(actions, changes.ProductCategories(existing.CategoryKeys(), cls.CategoryKeys())...)
	if len(actions) == 0 {
		s.logger.InfoWithContext(ctx, "Изменений нет, обновление товара пропущено", interfaces.LogField{Key: "key", Value: key})
		return nil
	}

	return s.apply(ctx, key, models.Update{Version: existing.Version, Actions: actions},
		fmt.Sprintf("Failed to update the product %s in Commercetools.", key))
}

// DeleteProducts удаляет товары параллельно
func (s *ProductVariantService) DeleteProducts(ctx context.Context, ids []int) {
	fanOut(ctx, s.concurrency, ids, func(ctx context.Context, id int) {
		s.DeleteProduct(ctx, id)
	})
}

// DeleteProductModels удаляет товары из списка моделей
func (s *ProductVariantService) DeleteProductModels(ctx context.Context, products []models.ProductModel) {
	ids := make([]int, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.Id)
	}
	s.DeleteProducts(ctx, ids)
}

// DeleteProduct снимает товар с публикации и удаляет его.
// Отсутствие товара считается ошибкой.
func (s *ProductVariantService) DeleteProduct(ctx context.Context, id int) *models.Product {
	key := keys.FromID(id)
	existing := s.GetByKey(ctx, key)
	if existing == nil {
		fail(ctx, s.logger, s.errors, fmt.Sprintf("Could not delete the product %s in Commercetools since it does not exist.", key), "")
		return nil
	}

	version := existing.Version
	if existing.MasterData.Published {
		unpublished := s.apply(ctx, key, models.Update{Version: version, Actions: []models.UpdateAction{models.ProductUnpublish{}}},
			fmt.Sprintf("Failed to unpublish the product %s in Commercetools.", key))
		if unpublished == nil {
			return nil
		}
		version = unpublished.Version
	}

	res := s.commerce.DeleteProduct(ctx, key, version)
	if !res.IsOK() {
		fail(ctx, s.logger, s.errors, fmt.Sprintf("Failed to delete the product %s in Commercetools.", key), res.Message)
		return nil
	}
	s.logger.InfoWithContext(ctx, "Товар удален", interfaces.LogField{Key: "key", Value: key})
	return res.Value
}

// CreateVariants создает варианты. Варианты одного товара добавляются последовательно,
// разные товары обрабатываются параллельно. Возвращает созданные варианты.
func (s *ProductVariantService) CreateVariants(ctx context.Context, variants []models.VariantModel) []models.VariantModel {
	attrs, ok := s.allAttributes(ctx)
	if !ok {
		return nil
	}
	return s.perProduct(ctx, variants, func(ctx context.Context, v models.VariantModel) bool {
		return s.CreateVariant(ctx, v, attrs) != nil
	})
}

// CreateVariant добавляет вариант в товар, существующий вариант пропускается
func (s *ProductVariantService) CreateVariant(ctx context.Context, v models.VariantModel, attrs []models.Attribute) *models.Product {
	productKey := keys.FromID(v.ProductId)
	variantKey := keys.FromID(v.Id)

	existing := s.GetByKey(ctx, productKey)
	if existing == nil {
		s.logger.WarnWithContext(ctx, "Товар варианта не найден в Commercetools, создание пропущено",
			interfaces.LogField{Key: "key", Value: variantKey},
			interfaces.LogField{Key: "product", Value: productKey},
		)
		return nil
	}
	if existing.HasVariant(variantKey) {
		s.logger.InfoWithContext(ctx, "Вариант уже существует, создание пропущено", interfaces.LogField{Key: "key", Value: variantKey})
		return nil
	}

	sku, values, ok := s.variantValues(ctx, v, attrs)
	if !ok {
		return nil
	}

	action := models.ProductAddVariant{
		Key:        variantKey,
		Sku:        sku,
		Attributes: withMasterAttributes(values, existing.MasterData.Current.MasterVariant.Attributes),
	}
	return s.apply(ctx, productKey, models.Update{Version: existing.Version, Actions: []models.UpdateAction{action}},
		fmt.Sprintf("Failed to create the product variant %s in Commercetools.", variantKey))
}

// UpdateVariants обновляет варианты, группируя их по товару
func (s *ProductVariantService) UpdateVariants(ctx context.Context, variants []models.VariantModel) {
	attrs, ok := s.allAttributes(ctx)
	if !ok {
		return
	}
	s.perProduct(ctx, variants, func(ctx context.Context, v models.VariantModel) bool {
		return s.UpdateVariant(ctx, v, attrs) != nil
	})
}

// UpdateVariant записывает значения атрибутов варианта.
// Вариант, которого еще нет в товаре, создается.
func (s *ProductVariantService) UpdateVariant(ctx context.Context, v models.VariantModel, attrs []models.Attribute) *models.Product {
	productKey := keys.FromID(v.ProductId)
	variantKey := keys.FromID(v.Id)

	existing := s.GetByKey(ctx, productKey)
	if existing == nil {
		s.logger.WarnWithContext(ctx, "Товар варианта не найден в Commercetools, обновление пропущено",
			interfaces.LogField{Key: "key", Value: variantKey},
			interfaces.LogField{Key: "product", Value: productKey},
		)
		return nil
	}
	if !existing.HasVariant(variantKey) {
		return s.CreateVariant(ctx, v, attrs)
	}

	sku, values, ok := s.variantValues(ctx, v, attrs)
	if !ok {
		return nil
	}
	if len(values) == 0 {
		s.logger.InfoWithContext(ctx, "Нет значений для обновления варианта", interfaces.LogField{Key: "key", Value: variantKey})
		return nil
	}

	actions := make([]models.UpdateAction, 0, len(values))
	for _, a := range values {
		actions = append(actions, models.ProductSetAttribute{Sku: sku, Name: a.Name, Value: a.Value})
	}
	return s.apply(ctx, productKey, models.Update{Version: existing.Version, Actions: actions},
		fmt.Sprintf("Failed to update the variant %s in Commercetools.", variantKey))
}

// DeleteVariants удаляет варианты из товаров по sku
func (s *ProductVariantService) DeleteVariants(ctx context.Context, variants []models.VariantModel) {
	s.perProduct(ctx, variants, func(ctx context.Context, v models.VariantModel) bool {
		return s.DeleteVariant(ctx, v) != nil
	})
}

// DeleteVariantsByID читает варианты из Struct пачками и удаляет их из товаров.
// Варианты, которых нет в Struct, пропускаются.
func (s *ProductVariantService) DeleteVariantsByID(ctx context.Context, ids []int) {
	for _, batch := range utils.Batch(ids, s.batchSize) {
		variants, err := s.pim.GetVariants(ctx, batch)
		if err != nil {
			fail(ctx, s.logger, s.errors, "Failed to read the variants from Struct PIM.", err.Error())
			continue
		}
		if missing := len(batch) - len(variants); missing > 0 {
			s.logger.WarnWithContext(ctx, "Часть вариантов не найдена в Struct, удаление пропущено",
				interfaces.LogField{Key: "missing", Value: missing},
			)
		}
		s.DeleteVariants(ctx, variants)
	}
}

// DeleteVariant удаляет вариант из товара. Вариант без товара или sku пропускается.
func (s *ProductVariantService) DeleteVariant(ctx context.Context, v models.VariantModel) *models.Product {
	productKey := keys.FromID(v.ProductId)
	variantKey := keys.FromID(v.Id)

	existing := s.GetByKey(ctx, productKey)
	if existing == nil {
		s.logger.WarnWithContext(ctx, "Товар варианта не найден в Commercetools, удаление пропущено",
			interfaces.LogField{Key: "key", Value: variantKey},
			interfaces.LogField{Key: "product", Value: productKey},
		)
		return nil
	}

	values, err := s.pim.GetVariantAttributeValues(ctx, v.Id)
	if err != nil || values == nil {
		s.logger.WarnWithContext(ctx, "Значения варианта не найдены в Struct, удаление пропущено", interfaces.LogField{Key: "key", Value: variantKey})
		return nil
	}
	sku := mapping.VariantSku(values.Values)
	if sku == "" {
		s.logger.WarnWithContext(ctx, "У варианта нет sku, удаление пропущено", interfaces.LogField{Key: "key", Value: variantKey})
		return nil
	}

	return s.apply(ctx, productKey,
		models.Update{Version: existing.Version, Actions: []models.UpdateAction{models.ProductRemoveVariant{Sku: sku}}},
		fmt.Sprintf("Failed to remove the variant %s in Commercetools.", variantKey))
}

// GetByKey читает товар, отсутствие и ошибки чтения дают nil
func (s *ProductVariantService) GetByKey(ctx context.Context, key string, expand ...string) *models.Product {
	res := s.commerce.GetProductByKey(ctx, keys.FromString(key), expand...)
	switch res.Outcome {
	case interfaces.OutcomeOK:
		return res.Value
	case interfaces.OutcomeNotFound:
		s.logger.DebugWithContext(ctx, "Товар не найден в Commercetools", interfaces.LogField{Key: "key", Value: key})
	default:
		s.logger.ErrorWithContext(ctx, "Не удалось получить товар из Commercetools",
			interfaces.LogField{Key: "key", Value: key},
			interfaces.LogField{Key: "error", Value: res.Message},
		)
	}
	return nil
}

// recreateProduct удаляет товар и создает его заново вместе с вариантами
func (s *ProductVariantService) recreateProduct(ctx context.Context, p models.ProductModel) *models.Product {
	s.DeleteProduct(ctx, p.Id)
	created := s.CreateProduct(ctx, p)

	productID := p.Id
	variantIDs, err := s.pim.GetVariantIDs(ctx, &productID)
	if err != nil {
		fail(ctx, s.logger, s.errors, fmt.Sprintf("Failed to recreate the variants of the product %s in Commercetools.", keys.FromID(p.Id)), err.Error())
		return created
	}
	if len(variantIDs) == 0 {
		return created
	}
	variants, err := s.pim.GetVariants(ctx, variantIDs)
	if err != nil {
		fail(ctx, s.logger, s.errors, fmt.Sprintf("Failed to recreate the variants of the product %s in Commercetools.", keys.FromID(p.Id)), err.Error())
		return created
	}
	s.CreateVariants(ctx, variants)
	return created
}

// classification читает классификации товара. Пустой список считается отсутствием.
func (s *ProductVariantService) classification(ctx context.Context, productID int) (mapping.Classification, bool) {
	cls, err := s.pim.GetProductClassifications(ctx, productID)
	if err != nil {
		s.logger.ErrorWithContext(ctx, "Не удалось получить классификации товара из Struct",
			interfaces.LogField{Key: "product_id", Value: productID},
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
		return mapping.Classification{}, false
	}
	if len(cls) == 0 {
		return mapping.Classification{}, false
	}
	return mapping.SplitClassifications(cls), true
}

// productAttributeActions действия записи атрибутов товара во все варианты
func (s *ProductVariantService) productAttributeActions(ctx context.Context, productID int, productType *models.ProductType) []models.UpdateAction {
	values, err := s.pim.GetProductAttributeValues(ctx, productID)
	if err != nil {
		s.logger.ErrorWithContext(ctx, "Не удалось получить значения атрибутов товара из Struct",
			interfaces.LogField{Key: "product_id", Value: productID},
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
		return nil
	}
	if values == nil {
		return nil
	}

	selected := mapping.ProductAttributeValues(productType, values.Values)
	var actions []models.UpdateAction
	for _, a := range s.values.attributes(ctx, productID, selected) {
		actions = append(actions, models.ProductSetAttributeInAllVariants{Name: a.Name, Value: a.Value})
	}
	return actions
}

// variantValues читает sku и допустимые значения атрибутов варианта.
// false означает, что тип товара, структура или значения не найдены.
func (s *ProductVariantService) variantValues(ctx context.Context, v models.VariantModel, attrs []models.Attribute) (string, []models.ProductAttribute, bool) {
	variantKey := keys.FromID(v.Id)

	productType := s.productTypes.GetByKey(ctx, keys.FromUID(v.ProductStructureUid))
	if productType == nil {
		return "", nil, false
	}
	structure, err := s.pim.GetProductStructure(ctx, v.ProductStructureUid)
	if err != nil || structure == nil {
		s.logger.WarnWithContext(ctx, "Структура товара варианта не найдена в Struct", interfaces.LogField{Key: "key", Value: variantKey})
		return "", nil, false
	}
	values, err := s.pim.GetVariantAttributeValues(ctx, v.Id)
	if err != nil || values == nil {
		s.logger.WarnWithContext(ctx, "Значения варианта не найдены в Struct", interfaces.LogField{Key: "key", Value: variantKey})
		return "", nil, false
	}

	sku, eligible := mapping.EligibleVariantAttributes(productType, structure, attrs, values.Values)
	return sku, s.values.attributes(ctx, v.Id, eligible), true
}

func (s *ProductVariantService) allAttributes(ctx context.Context) ([]models.Attribute, bool) {
	attrs, err := s.pim.GetAttributes(ctx, nil)
	if err != nil {
		fail(ctx, s.logger, s.errors, "Failed to read the attributes from Struct PIM.", err.Error())
		return nil, false
	}
	return attrs, true
}

// perProduct обрабатывает варианты одного товара последовательно, товары параллельно.
// Параллельные изменения одного товара конфликтуют по версии.
// Возвращает варианты, для которых fn вернул true.
func (s *ProductVariantService) perProduct(ctx context.Context, variants []models.VariantModel, fn func(context.Context, models.VariantModel) bool) []models.VariantModel {
	var order []int
	groups := make(map[int][]int)
	for n, v := range variants {
		if _, ok := groups[v.ProductId]; !ok {
			order = append(order, v.ProductId)
		}
		groups[v.ProductId] = append(groups[v.ProductId], n)
	}

	done := make([]bool, len(variants))
	fanOut(ctx, s.concurrency, order, func(ctx context.Context, productID int) {
		for _, n := range groups[productID] {
			done[n] = fn(ctx, variants[n])
		}
	})
	return keep(variants, done)
}

// apply отправляет обновление товара, при отказе записывает msg в накопитель
func (s *ProductVariantService) apply(ctx context.Context, key string, update models.Update, msg string) *models.Product {
	res := s.commerce.UpdateProduct(ctx, key, update)
	if !res.IsOK() {
		fail(ctx, s.logger, s.errors, msg, res.Message)
		return nil
	}
	s.logger.InfoWithContext(ctx, "Товар обновлен",
		interfaces.LogField{Key: "key", Value: key},
		interfaces.LogField{Key: "actions", Value: len(update.Actions)},
	)
	return res.Value
}

// productTypeChanged сравнивает тип товара с текущим типом из Struct
func productTypeChanged(existing *models.Product, productType *models.ProductType) bool {
	if existing.ProductType.Obj != nil {
		return existing.ProductType.Obj.Key != productType.Key
	}
	return existing.ProductType.ID != "" && existing.ProductType.ID != productType.ID
}

// withMasterAttributes дополняет значения варианта атрибутами мастер-варианта,
// которые вариант не переопределяет
func withMasterAttributes(values, master []models.ProductAttribute) []models.ProductAttribute {
	out := make([]models.ProductAttribute, 0, len(values)+len(master))
	seen := make(map[string]struct{}, len(values))
	for _, a := range values {
		seen[a.Name] = struct{}{}
		out = append(out, a)
	}
	for _, a := range master {
		if _, ok := seen[a.Name]; ok {
			continue
		}
		out = append(out, a)
	}
	return out
}
