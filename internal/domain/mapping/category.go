// Package mapping строит черновики Commercetools из моделей Struct PIM.
package mapping

import (
	"github.com/athebyme/struct-commerce-sync/internal/domain/changes"
	"github.com/athebyme/struct-commerce-sync/internal/domain/keys"
	"github.com/athebyme/struct-commerce-sync/pkg/models"
	"github.com/google/uuid"
)

// CatalogueFromWebhook собирает каталог из тела вебхука
func CatalogueFromWebhook(m models.CatalogueWebhookModel) models.CatalogueModel {
	return models.CatalogueModel{Uid: m.CatalogueUid, Alias: m.CatalogueAlias}
}

// CatalogueDraft каталог становится корневой категорией
func CatalogueDraft(c models.CatalogueModel) models.CategoryDraft {
	return models.CategoryDraft{
		Key:  keys.FromUID(c.Uid),
		Name: models.LocalizedString{"en": c.Alias},
		Slug: models.LocalizedString{"en": RemoveSpaces(c.Alias)},
	}
}

// CatalogueState желаемое состояние корневой категории
func CatalogueState(c models.CatalogueModel) changes.CategoryState {
	draft := CatalogueDraft(c)
	return changes.CategoryState{Name: draft.Name, Slug: draft.Slug}
}

// CategoryParentKey ключ родителя: родительская категория, иначе каталог
func CategoryParentKey(c models.CategoryModel) string {
	if c.ParentId != nil {
		return keys.FromID(*c.ParentId)
	}
	if c.CatalogueUid != uuid.Nil {
		return keys.FromUID(c.CatalogueUid)
	}
	return ""
}

// CategoryDraft черновик категории
func CategoryDraft(c models.CategoryModel) models.CategoryDraft {
	key := keys.FromID(c.Id)
	name := Localize(c.Name)
	draft := models.CategoryDraft{
		Key:  key,
		Name: name,
		Slug: Slug(name, key),
	}
	if parent := CategoryParentKey(c); parent != "" {
		draft.Parent = &models.ResourceIdentifier{Key: parent, TypeID: models.TypeCategory}
	}
	return draft
}

// CategoryState желаемое состояние категории для сравнения
func CategoryState(c models.CategoryModel) changes.CategoryState {
	draft := CategoryDraft(c)
	return changes.CategoryState{
		Name:      draft.Name,
		Slug:      draft.Slug,
		ParentKey: CategoryParentKey(c),
	}
}
