// Package keys переводит идентификаторы Struct PIM в ключи Commercetools и обратно.
package keys

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Prefix отличает числовые идентификаторы Struct от других ключей
const Prefix = "struct_"

// Invalid возвращается ToStructID для ключей, которые не удалось разобрать
const Invalid = -1

// FromID возвращает ключ для числового идентификатора
func FromID(id int) string {
	return strings.ToLower(Prefix + strconv.Itoa(id))
}

// FromUID возвращает ключ для GUID
func FromUID(uid uuid.UUID) string {
	return strings.ToLower(uid.String())
}

// FromString возвращает ключ для строкового идентификатора
func FromString(s string) string {
	return strings.ToLower(s)
}

// ToStructID возвращает числовой идентификатор Struct или Invalid
func ToStructID(key string) int {
	rest, ok := strings.CutPrefix(strings.ToLower(key), Prefix)
	if !ok || rest == "" {
		return Invalid
	}
	id, err := strconv.Atoi(rest)
	if err != nil || id < 0 {
		return Invalid
	}
	return id
}

// FromIDs возвращает ключи для списка идентификаторов в том же порядке
func FromIDs(ids []int) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = FromID(id)
	}
	return out
}
