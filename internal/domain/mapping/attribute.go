package mapping

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/athebyme/struct-commerce-sync/internal/domain/changes"
	"github.com/athebyme/struct-commerce-sync/internal/domain/keys"
	"github.com/athebyme/struct-commerce-sync/pkg/models"
)

// IncludeAll разрешает перенос всех атрибутов товара в тип товара
const IncludeAll = "all"

// SkuAlias атрибут-идентификатор варианта, обрабатывается отдельно
const SkuAlias = "sku"

var keyValueReference = models.AttributeType{Name: "reference", ReferenceTypeID: models.TypeKeyValueDocument}

// AttributeType возвращает тип атрибута Commercetools для вида атрибута Struct.
// false означает, что вид не переносится.
func AttributeType(kind models.AttributeKind) (models.AttributeType, bool) {
	switch k := kind.(type) {
	case models.TextKind:
		if k.Localized {
			return models.AttributeType{Name: "ltext"}, true
		}
		return models.AttributeType{Name: "text"}, true
	case models.NumberKind:
		return models.AttributeType{Name: "number"}, true
	case models.BooleanKind:
		return models.AttributeType{Name: "boolean"}, true
	case models.DateTimeKind:
		return models.AttributeType{Name: "datetime"}, true
	case models.MediaKind:
		if k.AllowMultiselect {
			return keyValueReference, true
		}
		return models.AttributeType{Name: "text"}, true
	case models.ComplexKind, models.ListKind, models.FixedListKind,
		models.VariantReferenceKind, models.ProductReferenceKind, models.CategoryReferenceKind,
		models.CollectionReferenceKind, models.AttributeReferenceKind:
		return keyValueReference, true
	default:
		return models.AttributeType{}, false
	}
}

// AttributeLabel метка на английском из первого по алфавиту языка имени
func AttributeLabel(a models.Attribute) models.LocalizedString {
	langs := make([]string, 0, len(a.Name))
	for lang := range a.Name {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	label := ""
	if len(langs) > 0 {
		label = a.Name[langs[0]]
	}
	return models.LocalizedString{"en": label}
}

// AttributeDefinitions переводит атрибуты Struct в определения Commercetools.
// skip исключает алиасы, include разрешает алиасы; nil include не разрешает ничего.
func AttributeDefinitions(attrs []models.Attribute, constraint string, skip, include []string) []models.AttributeDefinition {
	skipSet := lowerSet(skip)
	includeSet := lowerSet(include)
	_, all := includeSet[IncludeAll]

	out := make([]models.AttributeDefinition, 0, len(attrs))
	for _, a := range attrs {
		alias := strings.ToLower(a.Alias)
		if _, ok := skipSet[alias]; ok {
			continue
		}
		if include == nil {
			continue
		}
		if _, ok := includeSet[alias]; !ok && !all {
			continue
		}
		typ, ok := AttributeType(a.Kind)
		if !ok {
			continue
		}
		out = append(out, models.AttributeDefinition{
			Name:                a.Alias,
			Label:               AttributeLabel(a),
			Type:                typ,
			AttributeConstraint: constraint,
			IsRequired:          a.Mandatory,
		})
	}
	return out
}

// ProductTypeDraft строит тип товара из структуры.
// Атрибуты товара получают SameForAll, атрибуты варианта Unique, sku всегда относится к варианту.
func ProductTypeDraft(s models.ProductStructure, productAttrs, variantAttrs []models.Attribute, include []string) models.ProductTypeDraft {
	draft := models.ProductTypeDraft{
		Key:         keys.FromUID(s.Uid),
		Name:        s.Label,
		Description: s.Alias,
	}
	if productAttrs == nil {
		return draft
	}

	defs := AttributeDefinitions(productAttrs, models.ConstraintSameForAll, []string{SkuAlias}, include)
	if variantAttrs != nil {
		variantInclude := append([]string{}, include...)
		if !containsFold(variantInclude, SkuAlias) {
			variantInclude = append(variantInclude, SkuAlias)
		}
		defs = append(defs, AttributeDefinitions(variantAttrs, models.ConstraintUnique, nil, variantInclude)...)
	}

	seen := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		if _, ok := seen[d.Name]; ok {
			continue
		}
		seen[d.Name] = struct{}{}
		draft.Attributes = append(draft.Attributes, d)
	}
	return draft
}

// ProductTypeState желаемые имя и описание типа товара, совпадают с черновиком
func ProductTypeState(s models.ProductStructure) changes.ProductTypeState {
	return changes.ProductTypeState{Name: s.Label, Description: s.Alias}
}

// EligibleVariantAttributes отбирает значения варианта, которые можно записать в Commercetools:
// атрибут объявлен в типе товара, найден в Struct, не наследуется от товара и не является sku.
func EligibleVariantAttributes(
	productType *models.ProductType,
	structure *models.ProductStructure,
	attrs []models.Attribute,
	values map[string]json.RawMessage,
) (sku string, eligible map[string]json.RawMessage) {
	eligible = make(map[string]json.RawMessage)
	byAlias := make(map[string]models.Attribute, len(attrs))
	for _, a := range attrs {
		byAlias[a.Alias] = a
	}
	declared := make(map[string]struct{}, len(productType.Attributes))
	for _, d := range productType.Attributes {
		declared[d.Name] = struct{}{}
	}

	for name, raw := range values {
		if strings.EqualFold(name, SkuAlias) {
			sku = rawString(raw)
			continue
		}
		if _, ok := declared[name]; !ok {
			continue
		}
		attr, ok := byAlias[name]
		if !ok || structure.VariantAttributeInherits(attr.Uid) {
			continue
		}
		eligible[name] = raw
	}
	return sku, eligible
}

// VariantSku значение атрибута sku, регистр алиаса не важен
func VariantSku(values map[string]json.RawMessage) string {
	for name, raw := range values {
		if strings.EqualFold(name, SkuAlias) {
			return rawString(raw)
		}
	}
	return ""
}

// ProductAttributeValues отбирает значения товара, объявленные в типе товара, кроме sku
func ProductAttributeValues(productType *models.ProductType, values map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage)
	for _, d := range productType.Attributes {
		if strings.EqualFold(d.Name, SkuAlias) {
			continue
		}
		if raw, ok := values[d.Name]; ok {
			out[d.Name] = raw
		}
	}
	return out
}

// ValueKind вид значения атрибута после разбора
type ValueKind int

const (
	// ValueSkip пустое значение, не записывается
	ValueSkip ValueKind = iota
	// ValuePlain строка, число, булево или локализованная строка
	ValuePlain
	// ValueStructured объект или нелокализованный массив, хранится как CustomObject
	ValueStructured
)

// ResolveValue разбирает значение атрибута Struct
func ResolveValue(raw json.RawMessage) (interface{}, ValueKind) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ValueSkip
	}

	switch trimmed[0] {
	case '[':
		var localized []models.LocalizedData
		if err := json.Unmarshal(trimmed, &localized); err != nil || !isLocalized(trimmed) {
			return string(trimmed), ValueStructured
		}
		value := LocalizeData(localized)
		if len(value) == 0 {
			return nil, ValueSkip
		}
		return value, ValuePlain
	case '{':
		return string(trimmed), ValueStructured
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, ValueSkip
		}
		return s, ValuePlain
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return nil, ValueSkip
		}
		return b, ValuePlain
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return nil, ValueSkip
		}
		return n, ValuePlain
	}
}

// CustomObjectKeys контейнер и ключ CustomObject для значения атрибута владельца
func CustomObjectKeys(ownerID int, alias string) (container, key string) {
	suffix := FromOwner(ownerID, alias)
	return "container_" + suffix, "key_" + suffix
}

// FromOwner суффикс ключа CustomObject: идентификатор владельца и алиас атрибута
func FromOwner(ownerID int, alias string) string {
	return strings.ToLower(strconv.Itoa(ownerID) + "_" + alias)
}

// isLocalized проверяет, что массив состоит из объектов с CultureCode
func isLocalized(raw []byte) bool {
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return false
	}
	for _, item := range items {
		if _, ok := item["CultureCode"]; !ok {
			return false
		}
	}
	return true
}

func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(bytes.TrimSpace(raw)), `"`)
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = struct{}{}
	}
	return set
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}
