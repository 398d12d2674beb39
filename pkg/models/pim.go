package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Модели Struct PIM. Снимки читаются на время одного запроса и не сохраняются.

// LocalizedData значение с указанием культуры, например "en-GB"
type LocalizedData struct {
	CultureCode string `json:"CultureCode"`
	Data        string `json:"Data"`
}

// CatalogueModel каталог Struct PIM, в Commercetools становится корневой категорией
type CatalogueModel struct {
	Uid   uuid.UUID `json:"Uid"`
	Alias string    `json:"Alias"`
}

// CategoryModel категория каталога
type CategoryModel struct {
	Id           int               `json:"Id"`
	ParentId     *int              `json:"ParentId,omitempty"`
	CatalogueUid uuid.UUID         `json:"CatalogueUid"`
	Name         map[string]string `json:"Name"`
}

// ProductModel товар Struct PIM
type ProductModel struct {
	Id                  int             `json:"Id"`
	ProductStructureUid uuid.UUID       `json:"ProductStructureUid"`
	Name                []LocalizedData `json:"Name"`
}

// VariantModel вариант товара
type VariantModel struct {
	Id                  int       `json:"Id"`
	ProductId           int       `json:"ProductId"`
	ProductStructureUid uuid.UUID `json:"ProductStructureUid"`
}

// ProductClassificationModel привязка товара к категории
type ProductClassificationModel struct {
	CategoryId int  `json:"CategoryId"`
	IsPrimary  bool `json:"IsPrimary"`
}

// LanguageModel язык, включенный в Struct PIM
type LanguageModel struct {
	CultureCode string `json:"CultureCode"`
}

// AttributeValuesModel значения атрибутов товара или варианта по алиасу атрибута
type AttributeValuesModel struct {
	Id     int                        `json:"Id"`
	Values map[string]json.RawMessage `json:"Values"`
}

// PropertySetup свойство секции структуры товара
type PropertySetup struct {
	Type         string    `json:"Type"`
	AttributeUid uuid.UUID `json:"AttributeUid"`
	Inherits     bool      `json:"Inherits"`
}

// SectionSetup секция вкладки структуры товара
type SectionSetup struct {
	Type       string          `json:"Type"`
	Properties []PropertySetup `json:"Properties"`
}

// TabSetup вкладка структуры товара
type TabSetup struct {
	Type     string         `json:"Type"`
	Sections []SectionSetup `json:"Sections"`
}

// Configuration набор вкладок для товара или варианта
type Configuration struct {
	Tabs []TabSetup `json:"Tabs"`
}

// ProductStructure схема товара, в Commercetools становится типом товара
type ProductStructure struct {
	Uid                  uuid.UUID      `json:"Uid"`
	Alias                string         `json:"Alias"`
	Label                string         `json:"Label"`
	ProductConfiguration *Configuration `json:"ProductConfiguration"`
	VariantConfiguration *Configuration `json:"VariantConfiguration"`
}

func (c *Configuration) properties() []PropertySetup {
	if c == nil {
		return nil
	}
	var out []PropertySetup
	for _, tab := range c.Tabs {
		for _, section := range tab.Sections {
			out = append(out, section.Properties...)
		}
	}
	return out
}

func uniqueUIDs(props []PropertySetup) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(props))
	out := make([]uuid.UUID, 0, len(props))
	for _, p := range props {
		if p.AttributeUid == uuid.Nil {
			continue
		}
		if _, ok := seen[p.AttributeUid]; ok {
			continue
		}
		seen[p.AttributeUid] = struct{}{}
		out = append(out, p.AttributeUid)
	}
	return out
}

// ProductAttributeUIDs возвращает атрибуты уровня товара
func (s *ProductStructure) ProductAttributeUIDs() []uuid.UUID {
	return uniqueUIDs(s.ProductConfiguration.properties())
}

// VariantAttributeUIDs возвращает атрибуты уровня варианта
func (s *ProductStructure) VariantAttributeUIDs() []uuid.UUID {
	return uniqueUIDs(s.VariantConfiguration.properties())
}

// VariantAttributeInherits сообщает, наследует ли вариант значение атрибута от товара
func (s *ProductStructure) VariantAttributeInherits(attributeUID uuid.UUID) bool {
	for _, p := range s.VariantConfiguration.properties() {
		if p.AttributeUid == attributeUID {
			return p.Inherits
		}
	}
	return false
}
