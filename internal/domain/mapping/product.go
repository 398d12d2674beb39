package mapping

import (
	"github.com/athebyme/struct-commerce-sync/internal/domain/keys"
	"github.com/athebyme/struct-commerce-sync/pkg/models"
)

// Classification разбиение классификаций товара на основную и дополнительные категории
type Classification struct {
	Primary   *int
	Secondary []int
}

// SplitClassifications основная категория помечена IsPrimary, иначе берется первая классификация
func SplitClassifications(cls []models.ProductClassificationModel) Classification {
	var out Classification
	for _, c := range cls {
		if c.IsPrimary && out.Primary == nil {
			id := c.CategoryId
			out.Primary = &id
			continue
		}
		if !c.IsPrimary {
			out.Secondary = append(out.Secondary, c.CategoryId)
		}
	}
	if out.Primary != nil || len(out.Secondary) == 0 {
		return out
	}

	first := out.Secondary[0]
	out.Primary = &first
	out.Secondary = out.Secondary[1:]
	return out
}

// CategoryKeys ключи категорий в порядке: основная, затем дополнительные
func (c Classification) CategoryKeys() []string {
	if c.Primary == nil {
		return nil
	}
	out := make([]string, 0, len(c.Secondary)+1)
	out = append(out, keys.FromID(*c.Primary))
	for _, id := range c.Secondary {
		out = append(out, keys.FromID(id))
	}
	return out
}

// ProductDraft черновик товара, публикуется сразу
func ProductDraft(p models.ProductModel, cls Classification) models.ProductDraft {
	key := keys.FromID(p.Id)
	name := LocalizeData(p.Name)
	draft := models.ProductDraft{
		Key:         key,
		Name:        name,
		Slug:        Slug(name, key),
		ProductType: models.ResourceIdentifier{Key: keys.FromUID(p.ProductStructureUid), TypeID: models.TypeProductType},
		Publish:     true,
	}
	for _, k := range cls.CategoryKeys() {
		draft.Categories = append(draft.Categories, models.ResourceIdentifier{Key: k, TypeID: models.TypeCategory})
	}
	return draft
}
