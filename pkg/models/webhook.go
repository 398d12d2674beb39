package models

import "github.com/google/uuid"

// Тела вебхуков Struct PIM

type CatalogueWebhookModel struct {
	CatalogueUid   uuid.UUID `json:"CatalogueUid"`
	CatalogueAlias string    `json:"CatalogueAlias"`
}

type CategoryWebhookModel struct {
	CategoryIds []int `json:"CategoryIds"`
}

type ProductWebhookModel struct {
	ProductIds []int `json:"ProductIds"`
}

type VariantWebhookModel struct {
	VariantIds []int `json:"VariantIds"`
}

type ProductStructureWebhookModel struct {
	ProductStructureUid uuid.UUID `json:"ProductStructureUid"`
}

type LanguageWebhookModel struct {
	CultureCodes []string `json:"CultureCodes,omitempty"`
}

type AttributeWebhookModel struct {
	AttributeUids []uuid.UUID `json:"AttributeUids"`
}
