package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/athebyme/struct-commerce-sync/internal/adapters/messaging"
	"github.com/athebyme/struct-commerce-sync/internal/domain/mapping"
	"github.com/athebyme/struct-commerce-sync/internal/domain/services"
	"github.com/athebyme/struct-commerce-sync/internal/metrics"
	"github.com/athebyme/struct-commerce-sync/pkg/interfaces"
	"github.com/athebyme/struct-commerce-sync/pkg/models"
	"github.com/google/uuid"
)

// Семейства событий Struct PIM
const (
	FamilyCatalogues        = "catalogues"
	FamilyCategories        = "categories"
	FamilyLanguages         = "languages"
	FamilyProductStructures = "productstructures"
	FamilyProducts          = "products"
	FamilyVariants          = "variants"
	FamilyAttributes        = "attributes"
)

// Действия событий
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Event входящий вебхук. Family пустой означает семейство из префикса ключа.
type Event struct {
	Family string
	Key    string
	Body   []byte
	// Source откуда пришло событие: http или kafka
	Source string
}

// Result ответ на вебхук: пустой Message и Errors при успехе
type Result struct {
	Status  int
	Message string
	Errors  []string
}

func ok() Result { return Result{Status: http.StatusOK} }

func badRequest(format string, args ...interface{}) Result {
	return Result{Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// Invalidator сбрасывает кэш определений Struct PIM
type Invalidator interface {
	InvalidateAttributes(ctx context.Context) error
	InvalidateProductStructure(ctx context.Context, uid uuid.UUID) error
}

// Dispatcher направляет вебхуки Struct PIM в сервисы синхронизации.
// Каждый вызов получает новый Scope с пустым накопителем ошибок.
type Dispatcher struct {
	factory     *services.Factory
	pim         interfaces.PIMPort
	invalidator Invalidator
	publisher   interfaces.MessagingPort
	eventsTopic string
	logger      interfaces.LoggerPort
}

// NewDispatcher создает диспетчер вебхуков
func NewDispatcher(factory *services.Factory, pim interfaces.PIMPort, logger interfaces.LoggerPort) *Dispatcher {
	return &Dispatcher{
		factory: factory,
		pim:     pim,
		logger:  logger.WithField("component", "webhook"),
	}
}

// WithInvalidator включает сброс кэша по событиям атрибутов и структур
func (d *Dispatcher) WithInvalidator(invalidator Invalidator) *Dispatcher {
	d.invalidator = invalidator
	return d
}

// WithEvents включает публикацию результатов обработки в топик
func (d *Dispatcher) WithEvents(publisher interfaces.MessagingPort, topic string) *Dispatcher {
	d.publisher = publisher
	d.eventsTopic = topic
	return d
}

// Dispatch обрабатывает вебхук и публикует итог, если настроен издатель
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) Result {
	start := time.Now()
	ctx = context.WithValue(ctx, interfaces.EventKeyKey, event.Key)

	result := d.dispatch(ctx, event)

	status := messaging.StatusSucceeded
	switch {
	case len(result.Errors) > 0:
		status = messaging.StatusFailed
	case result.Status != http.StatusOK:
		status = messaging.StatusRejected
	}

	metricKey := event.Key
	if !isKnownKey(metricKey) {
		metricKey = "unknown"
	}
	metrics.WebhooksProcessed.WithLabelValues(metricKey, status).Inc()
	metrics.WebhookDuration.WithLabelValues(metricKey).Observe(time.Since(start).Seconds())

	d.publish(ctx, event, status, result)
	return result
}

func (d *Dispatcher) dispatch(ctx context.Context, event Event) Result {
	if event.Key == "" {
		d.logger.WarnWithContext(ctx, "В вебхуке нет X-Event-Key", interfaces.LogField{Key: "family", Value: event.Family})
		return badRequest("X-Event-Key is missing")
	}

	family, action, found := strings.Cut(event.Key, ":")
	if event.Family == "" {
		event.Family = family
	}

	if event.Family != FamilyLanguages && isEmptyBody(event.Body) {
		return badRequest("No model provided")
	}

	d.logger.InfoWithContext(ctx, "Обработка вебхука", interfaces.LogField{Key: "event", Value: event.Key})

	if !found || family != event.Family || !isKnownAction(action) {
		return d.noHandler(ctx, event.Key)
	}

	scope := d.factory.NewScope()

	var result Result
	switch event.Family {
	case FamilyCatalogues:
		result = d.catalogues(ctx, scope, action, event.Body)
	case FamilyCategories:
		result = d.categories(ctx, scope, action, event.Body)
	case FamilyLanguages:
		result = d.languages(ctx, scope, action)
	case FamilyProductStructures:
		result = d.productStructures(ctx, scope, action, event.Body)
	case FamilyProducts:
		result = d.products(ctx, scope, action, event.Body)
	case FamilyVariants:
		result = d.variants(ctx, scope, action, event.Body)
	case FamilyAttributes:
		result = d.attributes(ctx, event.Body)
	default:
		return d.noHandler(ctx, event.Key)
	}

	if result.Status != http.StatusOK {
		return result
	}
	if scope.Errors.HasErrors() {
		return Result{Status: http.StatusBadRequest, Errors: scope.Errors.Errors()}
	}
	return ok()
}

func (d *Dispatcher) noHandler(ctx context.Context, key string) Result {
	d.logger.WarnWithContext(ctx, "Нет обработчика вебхука", interfaces.LogField{Key: "event", Value: key})
	return badRequest("No handler for webhook %s", key)
}

func (d *Dispatcher) catalogues(ctx context.Context, scope *services.Scope, action string, body []byte) Result {
	var model models.CatalogueWebhookModel
	if err := json.Unmarshal(body, &model); err != nil {
		return badRequest("No model provided")
	}
	if model.CatalogueUid == uuid.Nil {
		return badRequest("No CatalogueUid provided")
	}

	catalogue := mapping.CatalogueFromWebhook(model)
	switch action {
	case ActionCreated:
		scope.Categories.CreateCatalogue(ctx, catalogue)
	case ActionUpdated:
		scope.Categories.UpdateCatalogue(ctx, catalogue)
	case ActionDeleted:
		scope.Categories.DeleteCatalogue(ctx, model.CatalogueUid)
	}
	return ok()
}

func (d *Dispatcher) categories(ctx context.Context, scope *services.Scope, action string, body []byte) Result {
	var model models.CategoryWebhookModel
	if err := json.Unmarshal(body, &model); err != nil {
		return badRequest("No model provided")
	}
	if len(model.CategoryIds) == 0 {
		return badRequest("No category ids provided")
	}

	categories, err := d.pim.GetCategories(ctx, model.CategoryIds)
	if err != nil {
		d.readFailed(ctx, FamilyCategories, err)
	}
	if len(categories) == 0 {
		return d.noMatch(ctx, "categories", model.CategoryIds)
	}

	switch action {
	case ActionCreated:
		scope.Categories.CreateCategories(ctx, categories)
	case ActionUpdated:
		scope.Categories.UpdateCategories(ctx, categories)
	case ActionDeleted:
		scope.Categories.DeleteCategoryModels(ctx, categories)
	}
	return ok()
}

func (d *Dispatcher) languages(ctx context.Context, scope *services.Scope, action string) Result {
	if action == ActionDeleted {
		return badRequest("Deleting language in Commercetools not supported")
	}

	languages, err := d.pim.GetLanguages(ctx)
	if err != nil {
		d.readFailed(ctx, FamilyLanguages, err)
	}
	if len(languages) == 0 {
		d.logger.WarnWithContext(ctx, "В Struct PIM нет языков")
		return badRequest("No languages defined in Struct PIM")
	}

	scope.Settings.ApplyLanguages(ctx, languages)
	return ok()
}

func (d *Dispatcher) productStructures(ctx context.Context, scope *services.Scope, action string, body []byte) Result {
	var model models.ProductStructureWebhookModel
	if err := json.Unmarshal(body, &model); err != nil {
		return badRequest("No model provided")
	}
	if model.ProductStructureUid == uuid.Nil {
		return badRequest("No ProductStructureUid provided")
	}

	if d.invalidator != nil && action != ActionCreated {
		if err := d.invalidator.InvalidateProductStructure(ctx, model.ProductStructureUid); err != nil {
			d.logger.WarnWithContext(ctx, "Не удалось сбросить кэш структуры товара",
				interfaces.LogField{Key: "uid", Value: model.ProductStructureUid.String()},
				interfaces.LogField{Key: "error", Value: err.Error()},
			)
		}
	}

	structure, err := d.pim.GetProductStructure(ctx, model.ProductStructureUid)
	if err != nil {
		d.readFailed(ctx, FamilyProductStructures, err)
	}
	if structure == nil {
		d.logger.InfoWithContext(ctx, "Структура товара не найдена в Struct",
			interfaces.LogField{Key: "uid", Value: model.ProductStructureUid.String()})
		return badRequest("No matching Struct productstructures found for %s", model.ProductStructureUid)
	}

	switch action {
	case ActionCreated:
		scope.ProductTypes.Create(ctx, *structure, d.factory.Options().IncludeProductStructureAliases)
	case ActionUpdated:
		scope.ProductTypes.Update(ctx, *structure)
	case ActionDeleted:
		scope.ProductTypes.Delete(ctx, model.ProductStructureUid)
	}
	return ok()
}

func (d *Dispatcher) products(ctx context.Context, scope *services.Scope, action string, body []byte) Result {
	var model models.ProductWebhookModel
	if err := json.Unmarshal(body, &model); err != nil {
		return badRequest("No model provided")
	}
	if len(model.ProductIds) == 0 {
		return badRequest("No product ids provided")
	}

	products, err := d.pim.GetProducts(ctx, model.ProductIds)
	if err != nil {
		d.readFailed(ctx, FamilyProducts, err)
	}
	if len(products) == 0 {
		return d.noMatch(ctx, "products", model.ProductIds)
	}

	switch action {
	case ActionCreated:
		scope.Products.CreateProducts(ctx, products)
	case ActionUpdated:
		scope.Products.UpdateProducts(ctx, products)
	case ActionDeleted:
		scope.Products.DeleteProductModels(ctx, products)
	}
	return ok()
}

func (d *Dispatcher) variants(ctx context.Context, scope *services.Scope, action string, body []byte) Result {
	var model models.VariantWebhookModel
	if err := json.Unmarshal(body, &model); err != nil {
		return badRequest("No model provided")
	}
	if len(model.VariantIds) == 0 {
		return badRequest("No variant ids provided")
	}

	variants, err := d.pim.GetVariants(ctx, model.VariantIds)
	if err != nil {
		d.readFailed(ctx, FamilyVariants, err)
	}
	if len(variants) == 0 {
		return d.noMatch(ctx, "variants", model.VariantIds)
	}

	switch action {
	case ActionCreated:
		scope.Products.CreateVariants(ctx, variants)
	case ActionUpdated:
		scope.Products.UpdateVariants(ctx, variants)
	case ActionDeleted:
		scope.Products.DeleteVariants(ctx, variants)
	}
	return ok()
}

// attributes изменения атрибутов в Commercetools не переносятся, сбрасывается только кэш
func (d *Dispatcher) attributes(ctx context.Context, body []byte) Result {
	var model models.AttributeWebhookModel
	if err := json.Unmarshal(body, &model); err != nil {
		return badRequest("No model provided")
	}
	if d.invalidator == nil {
		return ok()
	}
	if err := d.invalidator.InvalidateAttributes(ctx); err != nil {
		d.logger.ErrorWithContext(ctx, "Не удалось сбросить кэш атрибутов", interfaces.LogField{Key: "error", Value: err.Error()})
		return Result{Status: http.StatusBadRequest, Errors: []string{"Failed to invalidate the cached Struct PIM attributes."}}
	}
	d.logger.InfoWithContext(ctx, "Кэш атрибутов сброшен", interfaces.LogField{Key: "uids", Value: len(model.AttributeUids)})
	return ok()
}

// readFailed ошибка чтения Struct PIM равносильна отсутствию сущностей
func (d *Dispatcher) readFailed(ctx context.Context, family string, err error) {
	d.logger.ErrorWithContext(ctx, "Ошибка чтения Struct PIM",
		interfaces.LogField{Key: "family", Value: family},
		interfaces.LogField{Key: "error", Value: err.Error()},
	)
}

func (d *Dispatcher) noMatch(ctx context.Context, family string, ids []int) Result {
	d.logger.InfoWithContext(ctx, "Сущности не найдены в Struct",
		interfaces.LogField{Key: "family", Value: family},
		interfaces.LogField{Key: "ids", Value: ids},
	)
	return badRequest("No matching Struct %s found for %v", family, ids)
}

func (d *Dispatcher) publish(ctx context.Context, event Event, status string, result Result) {
	if d.publisher == nil || d.eventsTopic == "" {
		return
	}

	errs := result.Errors
	if len(errs) == 0 && result.Message != "" {
		errs = []string{result.Message}
	}
	payload, err := messaging.NewSyncEvent(event.Key, status, event.Source, errs).Encode()
	if err != nil {
		d.logger.ErrorWithContext(ctx, "Не удалось сериализовать событие синхронизации", interfaces.LogField{Key: "error", Value: err.Error()})
		return
	}

	headers := map[string]string{messaging.HeaderEventKey: event.Key}
	if err := d.publisher.PublishWithHeaders(ctx, d.eventsTopic, event.Key, payload, headers); err != nil {
		d.logger.ErrorWithContext(ctx, "Не удалось опубликовать событие синхронизации",
			interfaces.LogField{Key: "topic", Value: d.eventsTopic},
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
	}
}

func isEmptyBody(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func isKnownAction(action string) bool {
	return action == ActionCreated || action == ActionUpdated || action == ActionDeleted
}

// isKnownKey ограничивает кардинальность метрик известными ключами
func isKnownKey(key string) bool {
	family, action, found := strings.Cut(key, ":")
	if !found || !isKnownAction(action) {
		return false
	}
	switch family {
	case FamilyCatalogues, FamilyCategories, FamilyLanguages, FamilyProductStructures,
		FamilyProducts, FamilyVariants, FamilyAttributes:
		return true
	}
	return false
}
