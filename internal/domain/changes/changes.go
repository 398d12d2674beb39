// Package changes вычисляет минимальный набор действий обновления
// между желаемым состоянием сущности и ее текущим представлением в Commercetools.
//
// Результат nil означает "изменений нет", вызывающая сторона не должна
// отправлять обновление.
package changes

import (
	"github.com/athebyme/struct-commerce-sync/pkg/models"
)

// CategoryState желаемое состояние категории
type CategoryState struct {
	Name models.LocalizedString
	Slug models.LocalizedString
	// ParentKey ключ родителя, пустая строка означает "родитель не указан"
	ParentKey string
}

// ProductTypeState желаемое состояние типа товара
type ProductTypeState struct {
	Name        string
	Description string
}

// LocalizedHasChanges сообщает, добавляет ли desired новый язык
// или меняет значение существующего. Порядок ключей не важен.
func LocalizedHasChanges(existing, desired models.LocalizedString) bool {
	if desired == nil {
		return false
	}
	for lang, value := range desired {
		current, ok := existing[lang]
		if !ok || current != value {
			return true
		}
	}
	return false
}

// StringHasChanges сравнивает строки, пустое desired означает "не указано"
func StringHasChanges(existing, desired string) bool {
	if desired == "" {
		return false
	}
	return existing != desired
}

// Category возвращает обновление категории или nil.
// existingParentKey ключ текущего родителя, пустой если родителя нет.
func Category(existing *models.Category, existingParentKey string, desired CategoryState) *models.Update {
	if existing == nil {
		return nil
	}

	var actions []models.UpdateAction
	if LocalizedHasChanges(existing.Name, desired.Name) {
		actions = append(actions, models.CategoryChangeName{Name: desired.Name})
	}
	if LocalizedHasChanges(existing.Slug, desired.Slug) {
		actions = append(actions, models.CategoryChangeSlug{Slug: desired.Slug})
	}
	if desired.ParentKey != "" && desired.ParentKey != existingParentKey {
		actions = append(actions, models.CategoryChangeParent{
			Parent: models.ResourceIdentifier{Key: desired.ParentKey, TypeID: models.TypeCategory},
		})
	}

	return build(existing.Version, actions)
}

// ProductType сравнивает только имя и описание.
// Определения атрибутов после создания не меняются.
func ProductType(existing *models.ProductType, desired ProductTypeState) *models.Update {
	if existing == nil {
		return nil
	}

	var actions []models.UpdateAction
	if StringHasChanges(existing.Name, desired.Name) {
		actions = append(actions, models.ProductTypeChangeName{Name: desired.Name})
	}
	if StringHasChanges(existing.Description, desired.Description) {
		actions = append(actions, models.ProductTypeChangeDescription{Description: desired.Description})
	}

	return build(existing.Version, actions)
}

// ProductCategories возвращает действия привязки и отвязки категорий товара.
// Сначала добавления в порядке desiredKeys, затем удаления в порядке existingKeys.
func ProductCategories(existingKeys, desiredKeys []string) []models.UpdateAction {
	existing := toSet(existingKeys)
	desired := toSet(desiredKeys)

	var actions []models.UpdateAction
	for _, key := range desiredKeys {
		if _, ok := existing[key]; !ok {
			actions = append(actions, models.ProductAddToCategory{
				Category: models.ResourceIdentifier{Key: key, TypeID: models.TypeCategory},
			})
			existing[key] = struct{}{}
		}
	}
	for _, key := range existingKeys {
		if _, ok := desired[key]; !ok {
			actions = append(actions, models.ProductRemoveFromCategory{
				Category: models.ResourceIdentifier{Key: key, TypeID: models.TypeCategory},
			})
			desired[key] = struct{}{}
		}
	}
	return actions
}

func build(version int64, actions []models.UpdateAction) *models.Update {
	if len(actions) == 0 {
		return nil
	}
	return &models.Update{Version: version, Actions: actions}
}

func toSet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}
