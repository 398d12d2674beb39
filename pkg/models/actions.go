package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UpdateAction действие обновления ресурса Commercetools
type UpdateAction interface {
	ActionType() string
}

// Update набор действий с версией ресурса, прочитанной перед изменением
type Update struct {
	Version int64          `json:"version"`
	Actions []UpdateAction `json:"-"`
}

// MarshalJSON добавляет поле action в каждое действие
func (u Update) MarshalJSON() ([]byte, error) {
	actions := make([]json.RawMessage, 0, len(u.Actions))
	for _, action := range u.Actions {
		raw, err := marshalAction(action)
		if err != nil {
			return nil, err
		}
		actions = append(actions, raw)
	}
	return json.Marshal(struct {
		Version int64             `json:"version"`
		Actions []json.RawMessage `json:"actions"`
	}{Version: u.Version, Actions: actions})
}

func marshalAction(action UpdateAction) (json.RawMessage, error) {
	body, err := json.Marshal(action)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal action %s: %w", action.ActionType(), err)
	}
	head := fmt.Sprintf(`{"action":%q`, action.ActionType())
	body = bytes.TrimSpace(body)
	if bytes.Equal(body, []byte("{}")) {
		return json.RawMessage(head + "}"), nil
	}
	return json.RawMessage(head + "," + string(body[1:])), nil
}

// Действия категорий

type CategoryChangeName struct {
	Name LocalizedString `json:"name"`
}

type CategoryChangeSlug struct {
	Slug LocalizedString `json:"slug"`
}

type CategoryChangeParent struct {
	Parent ResourceIdentifier `json:"parent"`
}

func (CategoryChangeName) ActionType() string   { return "changeName" }
func (CategoryChangeSlug) ActionType() string   { return "changeSlug" }
func (CategoryChangeParent) ActionType() string { return "changeParent" }

// Действия типов товаров

type ProductTypeChangeName struct {
	Name string `json:"name"`
}

type ProductTypeChangeDescription struct {
	Description string `json:"description"`
}

func (ProductTypeChangeName) ActionType() string        { return "changeName" }
func (ProductTypeChangeDescription) ActionType() string { return "changeDescription" }

// Действия товаров. Все изменения сразу публикуются, поэтому staged=false.

type ProductSetAttributeInAllVariants struct {
	Name   string      `json:"name"`
	Value  interface{} `json:"value"`
	Staged bool        `json:"staged"`
}

type ProductSetAttribute struct {
	Sku    string      `json:"sku"`
	Name   string      `json:"name"`
	Value  interface{} `json:"value"`
	Staged bool        `json:"staged"`
}

type ProductAddToCategory struct {
	Category ResourceIdentifier `json:"category"`
	Staged   bool               `json:"staged"`
}

type ProductRemoveFromCategory struct {
	Category ResourceIdentifier `json:"category"`
	Staged   bool               `json:"staged"`
}

type ProductAddVariant struct {
	Key        string             `json:"key,omitempty"`
	Sku        string             `json:"sku,omitempty"`
	Attributes []ProductAttribute `json:"attributes,omitempty"`
	Staged     bool               `json:"staged"`
}

type ProductRemoveVariant struct {
	Sku    string `json:"sku"`
	Staged bool   `json:"staged"`
}

type ProductUnpublish struct{}

func (ProductSetAttributeInAllVariants) ActionType() string { return "setAttributeInAllVariants" }
func (ProductSetAttribute) ActionType() string              { return "setAttribute" }
func (ProductAddToCategory) ActionType() string             { return "addToCategory" }
func (ProductRemoveFromCategory) ActionType() string        { return "removeFromCategory" }
func (ProductAddVariant) ActionType() string                { return "addVariant" }
func (ProductRemoveVariant) ActionType() string             { return "removeVariant" }
func (ProductUnpublish) ActionType() string                 { return "unpublish" }

// Действия проекта

type ProjectChangeLanguages struct {
	Languages []string `json:"languages"`
}

func (ProjectChangeLanguages) ActionType() string { return "changeLanguages" }
