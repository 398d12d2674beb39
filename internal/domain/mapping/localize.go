package mapping

import (
	"strings"

	"github.com/athebyme/struct-commerce-sync/pkg/models"
	"golang.org/x/text/language"
)

// TwoLetterISO возвращает двухбуквенный код языка для кода культуры, например "en-GB" -> "en"
func TwoLetterISO(cultureCode string) (string, bool) {
	tag, err := language.Parse(cultureCode)
	if err != nil {
		return "", false
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return "", false
	}
	code := base.String()
	if code == "" || code == "und" {
		return "", false
	}
	return code, true
}

// Localize переводит словарь "культура -> значение" в LocalizedString.
// Нераспознанные культуры пропускаются.
func Localize(values map[string]string) models.LocalizedString {
	out := make(models.LocalizedString, len(values))
	for culture, value := range values {
		if code, ok := TwoLetterISO(culture); ok {
			out[code] = value
		}
	}
	return out
}

// LocalizeData переводит список LocalizedData, nil сохраняется как nil
func LocalizeData(values []models.LocalizedData) models.LocalizedString {
	if values == nil {
		return nil
	}
	out := make(models.LocalizedString, len(values))
	for _, v := range values {
		if code, ok := TwoLetterISO(v.CultureCode); ok {
			out[code] = v.Data
		}
	}
	return out
}

// RemoveSpaces удаляет все пробельные символы
func RemoveSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// Slug строит slug на всех языках имени из ключа сущности
func Slug(name models.LocalizedString, key string) models.LocalizedString {
	slug := make(models.LocalizedString, len(name))
	for lang := range name {
		slug[lang] = RemoveSpaces(key)
	}
	return slug
}
