package models

import "time"

// Ресурсы и черновики Commercetools HTTP API

// LocalizedString значение по двухбуквенным кодам языков
type LocalizedString map[string]string

// Типы ресурсов для ссылок
const (
	TypeCategory         = "category"
	TypeProduct          = "product"
	TypeProductType      = "product-type"
	TypeKeyValueDocument = "key-value-document"
)

// ResourceIdentifier ссылка на ресурс по ключу или ID при записи
type ResourceIdentifier struct {
	ID     string `json:"id,omitempty"`
	Key    string `json:"key,omitempty"`
	TypeID string `json:"typeId"`
}

// CategoryReference ссылка на категорию, Obj заполнен при expand
type CategoryReference struct {
	ID     string    `json:"id"`
	TypeID string    `json:"typeId"`
	Obj    *Category `json:"obj,omitempty"`
}

// ProductTypeReference ссылка на тип товара, Obj заполнен при expand
type ProductTypeReference struct {
	ID     string       `json:"id"`
	TypeID string       `json:"typeId"`
	Obj    *ProductType `json:"obj,omitempty"`
}

// Category категория Commercetools
type Category struct {
	ID      string             `json:"id"`
	Key     string             `json:"key"`
	Version int64              `json:"version"`
	Name    LocalizedString    `json:"name"`
	Slug    LocalizedString    `json:"slug"`
	Parent  *CategoryReference `json:"parent,omitempty"`
}

// CategoryDraft черновик создания категории
type CategoryDraft struct {
	Key    string              `json:"key"`
	Name   LocalizedString     `json:"name"`
	Slug   LocalizedString     `json:"slug"`
	Parent *ResourceIdentifier `json:"parent,omitempty"`
}

// Ограничения атрибутов типа товара
const (
	ConstraintNone       = "None"
	ConstraintUnique     = "Unique"
	ConstraintSameForAll = "SameForAll"
)

// AttributeType тип значения атрибута
type AttributeType struct {
	Name            string `json:"name"`
	ReferenceTypeID string `json:"referenceTypeId,omitempty"`
}

// AttributeDefinition определение атрибута в типе товара
type AttributeDefinition struct {
	Name                string          `json:"name"`
	Label               LocalizedString `json:"label"`
	Type                AttributeType   `json:"type"`
	AttributeConstraint string          `json:"attributeConstraint"`
	IsRequired          bool            `json:"isRequired"`
	IsSearchable        bool            `json:"isSearchable"`
}

// ProductType тип товара
type ProductType struct {
	ID          string                `json:"id"`
	Key         string                `json:"key"`
	Version     int64                 `json:"version"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Attributes  []AttributeDefinition `json:"attributes"`
}

// ProductTypeDraft черновик типа товара
type ProductTypeDraft struct {
	Key         string                `json:"key"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Attributes  []AttributeDefinition `json:"attributes,omitempty"`
}

// ProductAttribute значение атрибута варианта
type ProductAttribute struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// ProductVariant вариант товара
type ProductVariant struct {
	ID         int                `json:"id"`
	Key        string             `json:"key,omitempty"`
	Sku        string             `json:"sku,omitempty"`
	Attributes []ProductAttribute `json:"attributes"`
}

// ProductData текущие или черновые данные товара
type ProductData struct {
	Name          LocalizedString     `json:"name"`
	Slug          LocalizedString     `json:"slug"`
	Categories    []CategoryReference `json:"categories"`
	MasterVariant ProductVariant      `json:"masterVariant"`
	Variants      []ProductVariant    `json:"variants"`
}

// ProductCatalogData опубликованное и черновое состояние товара
type ProductCatalogData struct {
	Published        bool        `json:"published"`
	HasStagedChanges bool        `json:"hasStagedChanges"`
	Current          ProductData `json:"current"`
	Staged           ProductData `json:"staged"`
}

// Product товар Commercetools
type Product struct {
	ID          string               `json:"id"`
	Key         string               `json:"key"`
	Version     int64                `json:"version"`
	ProductType ProductTypeReference `json:"productType"`
	MasterData  ProductCatalogData   `json:"masterData"`
}

// CategoryKeys ключи категорий текущей версии товара, нужен expand категорий
func (p *Product) CategoryKeys() []string {
	keys := make([]string, 0, len(p.MasterData.Current.Categories))
	for _, ref := range p.MasterData.Current.Categories {
		if ref.Obj != nil {
			keys = append(keys, ref.Obj.Key)
		}
	}
	return keys
}

// HasVariant сообщает, есть ли у товара вариант с ключом
func (p *Product) HasVariant(key string) bool {
	for _, v := range p.MasterData.Current.Variants {
		if v.Key == key {
			return true
		}
	}
	return false
}

// ProductDraft черновик товара
type ProductDraft struct {
	Key         string               `json:"key"`
	Name        LocalizedString      `json:"name"`
	Slug        LocalizedString      `json:"slug"`
	ProductType ResourceIdentifier   `json:"productType"`
	Categories  []ResourceIdentifier `json:"categories,omitempty"`
	Publish     bool                 `json:"publish"`
}

// Project настройки проекта
type Project struct {
	Key       string   `json:"key"`
	Name      string   `json:"name"`
	Version   int64    `json:"version"`
	Languages []string `json:"languages"`
}

// CustomObject произвольный JSON документ, на него ссылаются сложные атрибуты
type CustomObject struct {
	ID             string      `json:"id"`
	Container      string      `json:"container"`
	Key            string      `json:"key"`
	Version        int64       `json:"version"`
	Value          interface{} `json:"value"`
	LastModifiedAt time.Time   `json:"lastModifiedAt"`
}

// CustomObjectDraft черновик произвольного документа
type CustomObjectDraft struct {
	Container string      `json:"container"`
	Key       string      `json:"key"`
	Value     interface{} `json:"value"`
}

// KeyValueReference ссылка на CustomObject в значении атрибута
type KeyValueReference struct {
	ID     string `json:"id"`
	TypeID string `json:"typeId"`
}
