package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/athebyme/struct-commerce-sync/internal/domain/changes"
	"github.com/athebyme/struct-commerce-sync/internal/domain/keys"
	"github.com/athebyme/struct-commerce-sync/internal/domain/mapping"
	"github.com/athebyme/struct-commerce-sync/pkg/interfaces"
	"github.com/athebyme/struct-commerce-sync/pkg/models"
	"github.com/google/uuid"
)

const (
	entityCategory  = "category"
	entityCatalogue = "catalogue"
)

// CategoryService синхронизирует каталоги и категории Struct с категориями Commercetools.
// Каталог становится корневой категорией.
type CategoryService struct {
	commerce    interfaces.CommercePort
	errors      *ErrorService
	logger      interfaces.LoggerPort
	concurrency int
}

// NewCategoryService создает сервис категорий
func NewCategoryService(commerce interfaces.CommercePort, errs *ErrorService, logger interfaces.LoggerPort, opts Options) *CategoryService {
	return &CategoryService{
		commerce:    commerce,
		errors:      errs,
		logger:      logger.WithField("component", "category_service"),
		concurrency: opts.concurrency(),
	}
}

// CreateCatalogue создает корневую категорию для каталога
func (s *CategoryService) CreateCatalogue(ctx context.Context, c models.CatalogueModel) *models.Category {
	return s.create(ctx, entityCatalogue, mapping.CatalogueDraft(c))
}

// CreateCatalogues создает каталоги параллельно и возвращает созданные
func (s *CategoryService) CreateCatalogues(ctx context.Context, catalogues []models.CatalogueModel) []models.CatalogueModel {
	return fanOutFilter(ctx, s.concurrency, catalogues, func(ctx context.Context, c models.CatalogueModel) bool {
		return s.CreateCatalogue(ctx, c) != nil
	})
}

// CreateCategory создает категорию
func (s *CategoryService) CreateCategory(ctx context.Context, c models.CategoryModel) *models.Category {
	return s.create(ctx, entityCategory, mapping.CategoryDraft(c))
}

// CreateCategories создает категории строго по возрастанию идентификатора,
// чтобы родитель существовал раньше дочерней категории.
// Возвращает идентификаторы созданных категорий.
func (s *CategoryService) CreateCategories(ctx context.Context, categories []models.CategoryModel) []int {
	ordered := make([]models.CategoryModel, len(categories))
	copy(ordered, categories)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Id < ordered[j].Id })

	var created []int
	for _, c := range ordered {
		if s.CreateCategory(ctx, c) != nil {
			created = append(created, c.Id)
		}
	}
	return created
}

// UpdateCatalogue применяет изменения имени и slug каталога
func (s *CategoryService) UpdateCatalogue(ctx context.Context, c models.CatalogueModel) *models.Category {
	key := keys.FromUID(c.Uid)
	existing := s.GetByKey(ctx, key)
	if existing == nil {
		s.logger.WarnWithContext(ctx, "Каталог не найден в Commercetools, обновление пропущено", interfaces.LogField{Key: "key", Value: key})
		return nil
	}

	update := changes.Category(existing, "", mapping.CatalogueState(c))
	return s.update(ctx, entityCatalogue, key, update)
}

// UpdateCatalogues обновляет каталоги параллельно
func (s *CategoryService) UpdateCatalogues(ctx context.Context, catalogues []models.CatalogueModel) {
	fanOut(ctx, s.concurrency, catalogues, func(ctx context.Context, c models.CatalogueModel) {
		s.UpdateCatalogue(ctx, c)
	})
}

// UpdateCategory применяет изменения имени, slug и родителя категории
func (s *CategoryService) UpdateCategory(ctx context.Context, c models.CategoryModel) *models.Category {
	key := keys.FromID(c.Id)
	existing := s.GetByKey(ctx, key)
	if existing == nil {
		s.logger.WarnWithContext(ctx, "Категория не найдена в Commercetools, обновление пропущено", interfaces.LogField{Key: "key", Value: key})
		return nil
	}

	update := changes.Category(existing, s.parentKey(ctx, existing), mapping.CategoryState(c))
	return s.update(ctx, entityCategory, key, update)
}

// UpdateCategories обновляет категории параллельно
func (s *CategoryService) UpdateCategories(ctx context.Context, categories []models.CategoryModel) {
	fanOut(ctx, s.concurrency, categories, func(ctx context.Context, c models.CategoryModel) {
		s.UpdateCategory(ctx, c)
	})
}

// DeleteCategory удаляет категорию по идентификатору Struct
func (s *CategoryService) DeleteCategory(ctx context.Context, id int) *models.Category {
	return s.deleteByKey(ctx, entityCategory, keys.FromID(id))
}

// DeleteCategories удаляет категории строго по убыванию идентификатора,
// дочерние категории удаляются раньше родителей.
func (s *CategoryService) DeleteCategories(ctx context.Context, ids []int) {
	ordered := make([]int, len(ids))
	copy(ordered, ids)
	sort.Sort(sort.Reverse(sort.IntSlice(ordered)))

	for _, id := range ordered {
		s.DeleteCategory(ctx, id)
	}
}

// DeleteCategoryModels удаляет категории из списка моделей
func (s *CategoryService) DeleteCategoryModels(ctx context.Context, categories []models.CategoryModel) {
	ids := make([]int, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.Id)
	}
	s.DeleteCategories(ctx, ids)
}

// DeleteCatalogue удаляет корневую категорию каталога
func (s *CategoryService) DeleteCatalogue(ctx context.Context, uid uuid.UUID) *models.Category {
	return s.deleteByKey(ctx, entityCatalogue, keys.FromUID(uid))
}

// DeleteCatalogues удаляет каталоги последовательно
func (s *CategoryService) DeleteCatalogues(ctx context.Context, uids []uuid.UUID) {
	for _, uid := range uids {
		s.DeleteCatalogue(ctx, uid)
	}
}

// GetByKey читает категорию. Отсутствие и ошибки чтения дают nil.
func (s *CategoryService) GetByKey(ctx context.Context, key string) *models.Category {
	res := s.commerce.GetCategoryByKey(ctx, keys.FromString(key))
	switch res.Outcome {
	case interfaces.OutcomeOK:
		return res.Value
	case interfaces.OutcomeNotFound:
		s.logger.WarnWithContext(ctx, "Категория не найдена в Commercetools", interfaces.LogField{Key: "key", Value: key})
	default:
		s.logger.WarnWithContext(ctx, "Не удалось получить категорию из Commercetools",
			interfaces.LogField{Key: "key", Value: key},
			interfaces.LogField{Key: "error", Value: res.Message},
		)
	}
	return nil
}

// parentKey ключ текущего родителя категории, пустой если родителя нет
func (s *CategoryService) parentKey(ctx context.Context, existing *models.Category) string {
	if existing.Parent == nil {
		return ""
	}
	if existing.Parent.Obj != nil {
		return existing.Parent.Obj.Key
	}
	res := s.commerce.GetCategoryByID(ctx, existing.Parent.ID)
	if !res.IsOK() {
		s.logger.WarnWithContext(ctx, "Не удалось получить родителя категории",
			interfaces.LogField{Key: "key", Value: existing.Key},
			interfaces.LogField{Key: "parent_id", Value: existing.Parent.ID},
			interfaces.LogField{Key: "error", Value: res.Message},
		)
		return ""
	}
	return res.Value.Key
}

func (s *CategoryService) create(ctx context.Context, entity string, draft models.CategoryDraft) *models.Category {
	res := s.commerce.CreateCategory(ctx, draft)
	if !res.IsOK() {
		fail(ctx, s.logger, s.errors, fmt.Sprintf("Failed to create the %s %s in Commercetools.", entity, draft.Key), res.Message)
		return nil
	}
	s.logger.InfoWithContext(ctx, "Категория создана",
		interfaces.LogField{Key: "entity", Value: entity},
		interfaces.LogField{Key: "key", Value: draft.Key},
	)
	return res.Value
}

func (s *CategoryService) update(ctx context.Context, entity, key string, update *models.Update) *models.Category {
	if update == nil {
		s.logger.InfoWithContext(ctx, "Изменений нет, обновление пропущено",
			interfaces.LogField{Key: "entity", Value: entity},
			interfaces.LogField{Key: "key", Value: key},
		)
		return nil
	}

	res := s.commerce.UpdateCategory(ctx, key, *update)
	if !res.IsOK() {
		fail(ctx, s.logger, s.errors, fmt.Sprintf("Failed to update the %s %s in Commercetools.", entity, key), res.Message)
		return nil
	}
	s.logger.InfoWithContext(ctx, "Категория обновлена",
		interfaces.LogField{Key: "entity", Value: entity},
		interfaces.LogField{Key: "key", Value: key},
		interfaces.LogField{Key: "actions", Value: len(update.Actions)},
	)
	return res.Value
}

func (s *CategoryService) deleteByKey(ctx context.Context, entity, key string) *models.Category {
	existing := s.GetByKey(ctx, key)
	if existing == nil {
		fail(ctx, s.logger, s.errors, fmt.Sprintf("Could not delete the %s %s in Commercetools since it does not exist.", entity, key), "")
		return nil
	}

	res := s.commerce.DeleteCategory(ctx, key, existing.Version)
	if !res.IsOK() {
		fail(ctx, s.logger, s.errors, fmt.Sprintf("Failed to delete the %s %s in Commercetools.", entity, key), res.Message)
		return nil
	}
	s.logger.InfoWithContext(ctx, "Категория удалена",
		interfaces.LogField{Key: "entity", Value: entity},
		interfaces.LogField{Key: "key", Value: key},
	)
	return res.Value
}
