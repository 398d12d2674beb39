package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// AttributeKind закрытое множество видов атрибутов Struct PIM.
// Реализации объявлены только в этом пакете.
type AttributeKind interface {
	attributeKind()
	// TypeName имя типа в Struct PIM, например "TextAttribute"
	TypeName() string
}

type (
	TextKind                struct{ Localized bool }
	NumberKind              struct{}
	BooleanKind             struct{}
	DateTimeKind            struct{}
	MediaKind               struct{ AllowMultiselect bool }
	ComplexKind             struct{}
	ListKind                struct{}
	FixedListKind           struct{}
	VariantReferenceKind    struct{}
	ProductReferenceKind    struct{}
	CategoryReferenceKind   struct{}
	CollectionReferenceKind struct{}
	AttributeReferenceKind  struct{}
)

func (TextKind) attributeKind()                {}
func (NumberKind) attributeKind()              {}
func (BooleanKind) attributeKind()             {}
func (DateTimeKind) attributeKind()            {}
func (MediaKind) attributeKind()               {}
func (ComplexKind) attributeKind()             {}
func (ListKind) attributeKind()                {}
func (FixedListKind) attributeKind()           {}
func (VariantReferenceKind) attributeKind()    {}
func (ProductReferenceKind) attributeKind()    {}
func (CategoryReferenceKind) attributeKind()   {}
func (CollectionReferenceKind) attributeKind() {}
func (AttributeReferenceKind) attributeKind()  {}

func (TextKind) TypeName() string                { return "TextAttribute" }
func (NumberKind) TypeName() string              { return "NumberAttribute" }
func (BooleanKind) TypeName() string             { return "BooleanAttribute" }
func (DateTimeKind) TypeName() string            { return "DateTimeAttribute" }
func (MediaKind) TypeName() string               { return "MediaAttribute" }
func (ComplexKind) TypeName() string             { return "ComplexAttribute" }
func (ListKind) TypeName() string                { return "ListAttribute" }
func (FixedListKind) TypeName() string           { return "FixedListAttribute" }
func (VariantReferenceKind) TypeName() string    { return "VariantReferenceAttribute" }
func (ProductReferenceKind) TypeName() string    { return "ProductReferenceAttribute" }
func (CategoryReferenceKind) TypeName() string   { return "CategoryReferenceAttribute" }
func (CollectionReferenceKind) TypeName() string { return "CollectionReferenceAttribute" }
func (AttributeReferenceKind) TypeName() string  { return "AttributeReferenceAttribute" }

// Attribute определение атрибута Struct PIM
type Attribute struct {
	Uid       uuid.UUID         `json:"Uid"`
	Alias     string            `json:"Alias"`
	Name      map[string]string `json:"Name"`
	Mandatory bool              `json:"Mandatory"`
	Kind      AttributeKind     `json:"-"`
}

type attributeJSON struct {
	Uid              uuid.UUID         `json:"Uid"`
	Alias            string            `json:"Alias"`
	Name             map[string]string `json:"Name"`
	Mandatory        bool              `json:"Mandatory"`
	AttributeType    string            `json:"AttributeType"`
	Localized        bool              `json:"Localized,omitempty"`
	AllowMultiselect bool              `json:"AllowMultiselect,omitempty"`
}

// UnmarshalJSON выбирает вид атрибута по полю AttributeType
func (a *Attribute) UnmarshalJSON(data []byte) error {
	var raw attributeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	kind, err := parseKind(raw)
	if err != nil {
		return err
	}

	*a = Attribute{
		Uid:       raw.Uid,
		Alias:     raw.Alias,
		Name:      raw.Name,
		Mandatory: raw.Mandatory,
		Kind:      kind,
	}
	return nil
}

// MarshalJSON нужен для кэширования определений атрибутов
func (a Attribute) MarshalJSON() ([]byte, error) {
	raw := attributeJSON{
		Uid:       a.Uid,
		Alias:     a.Alias,
		Name:      a.Name,
		Mandatory: a.Mandatory,
	}
	switch k := a.Kind.(type) {
	case TextKind:
		raw.Localized = k.Localized
	case MediaKind:
		raw.AllowMultiselect = k.AllowMultiselect
	}
	if a.Kind != nil {
		raw.AttributeType = a.Kind.TypeName()
	}
	return json.Marshal(raw)
}

func parseKind(raw attributeJSON) (AttributeKind, error) {
	switch raw.AttributeType {
	case "TextAttribute":
		return TextKind{Localized: raw.Localized}, nil
	case "NumberAttribute":
		return NumberKind{}, nil
	case "BooleanAttribute":
		return BooleanKind{}, nil
	case "DateTimeAttribute":
		return DateTimeKind{}, nil
	case "MediaAttribute":
		return MediaKind{AllowMultiselect: raw.AllowMultiselect}, nil
	case "ComplexAttribute":
		return ComplexKind{}, nil
	case "ListAttribute":
		return ListKind{}, nil
	case "FixedListAttribute":
		return FixedListKind{}, nil
	case "VariantReferenceAttribute":
		return VariantReferenceKind{}, nil
	case "ProductReferenceAttribute":
		return ProductReferenceKind{}, nil
	case "CategoryReferenceAttribute":
		return CategoryReferenceKind{}, nil
	case "CollectionReferenceAttribute":
		return CollectionReferenceKind{}, nil
	case "AttributeReferenceAttribute":
		return AttributeReferenceKind{}, nil
	case "":
		return nil, fmt.Errorf("attribute %s has no AttributeType", raw.Alias)
	default:
		// неизвестные виды не переносятся в Commercetools
		return nil, nil
	}
}
