package services

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/athebyme/struct-commerce-sync/internal/domain/mapping"
	"github.com/athebyme/struct-commerce-sync/pkg/interfaces"
	"github.com/athebyme/struct-commerce-sync/pkg/models"
)

// valueResolver переводит значения атрибутов Struct в значения Commercetools.
// Структурные значения сохраняются как CustomObject, атрибут ссылается на него.
type valueResolver struct {
	commerce interfaces.CommercePort
	logger   interfaces.LoggerPort
}

// resolve возвращает значение атрибута, false означает "не записывать"
func (r *valueResolver) resolve(ctx context.Context, ownerID int, alias string, raw json.RawMessage) (interface{}, bool) {
	value, kind := mapping.ResolveValue(raw)
	switch kind {
	case mapping.ValueSkip:
		return nil, false
	case mapping.ValuePlain:
		return value, true
	}

	document := json.RawMessage(value.(string))
	container, key := mapping.CustomObjectKeys(ownerID, alias)

	existing := r.commerce.GetCustomObject(ctx, container, key)
	if existing.IsOK() && sameDocument(existing.Value.Value, document) {
		return reference(existing.Value), true
	}

	res := r.commerce.UpsertCustomObject(ctx, models.CustomObjectDraft{Container: container, Key: key, Value: document})
	if !res.IsOK() {
		r.logger.ErrorWithContext(ctx, "Не удалось сохранить значение атрибута в CustomObject",
			interfaces.LogField{Key: "container", Value: container},
			interfaces.LogField{Key: "key", Value: key},
			interfaces.LogField{Key: "error", Value: res.Message},
		)
		return nil, false
	}
	return reference(res.Value), true
}

// attributes разрешает значения в порядке алиасов
func (r *valueResolver) attributes(ctx context.Context, ownerID int, values map[string]json.RawMessage) []models.ProductAttribute {
	out := make([]models.ProductAttribute, 0, len(values))
	for _, name := range sortedKeys(values) {
		if value, ok := r.resolve(ctx, ownerID, name, values[name]); ok {
			out = append(out, models.ProductAttribute{Name: name, Value: value})
		}
	}
	return out
}

func reference(obj *models.CustomObject) models.KeyValueReference {
	return models.KeyValueReference{ID: obj.ID, TypeID: models.TypeKeyValueDocument}
}

// sameDocument сравнивает документы после нормализации, порядок ключей объекта не важен
func sameDocument(current interface{}, desired json.RawMessage) bool {
	raw, err := json.Marshal(current)
	if err != nil {
		return false
	}
	a, err := normalize(raw)
	if err != nil {
		return false
	}
	b, err := normalize(desired)
	if err != nil {
		return false
	}
	return bytes.Equal(a, b)
}

func normalize(raw []byte) ([]byte, error) {
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return json.Marshal(decoded)
}
