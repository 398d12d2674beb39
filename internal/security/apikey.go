package security

import (
	"crypto/subtle"
	"errors"
)

// HeaderAPIKey заголовок с ключом API, который передает Struct PIM
const HeaderAPIKey = "XApiKey"

var (
	ErrMissingAPIKey = errors.New("Api Key was not provided")
	ErrInvalidAPIKey = errors.New("Unauthorized client")
)

// APIKeyVerifier сравнивает ключ клиента с настроенным
type APIKeyVerifier struct {
	key []byte
}

func NewAPIKeyVerifier(key string) *APIKeyVerifier {
	return &APIKeyVerifier{key: []byte(key)}
}

// Enabled ключ не настроен, проверка отключена
func (v *APIKeyVerifier) Enabled() bool {
	return len(v.key) > 0
}

func (v *APIKeyVerifier) Verify(provided string) error {
	if provided == "" {
		return ErrMissingAPIKey
	}
	if subtle.ConstantTimeCompare([]byte(provided), v.key) != 1 {
		return ErrInvalidAPIKey
	}
	return nil
}
