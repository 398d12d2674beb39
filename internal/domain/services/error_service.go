package services

import (
	"context"
	"sync"

	"github.com/athebyme/struct-commerce-sync/pkg/interfaces"
)

// ErrorService накапливает сообщения об ошибках одного запроса или запуска импорта.
// Безопасен для одновременной записи из параллельных вызовов.
type ErrorService struct {
	mu     sync.Mutex
	errors []string
}

// NewErrorService создает пустой накопитель ошибок
func NewErrorService() *ErrorService {
	return &ErrorService{}
}

// AddError добавляет сообщение в конец списка
func (e *ErrorService) AddError(msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errors = append(e.errors, msg)
}

// HasErrors сообщает, есть ли накопленные ошибки
func (e *ErrorService) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.errors) > 0
}

// Errors возвращает копию накопленных сообщений
func (e *ErrorService) Errors() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.errors))
	copy(out, e.errors)
	return out
}

// Clear очищает накопитель
func (e *ErrorService) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errors = nil
}

// fail логирует ошибку вместе с ответом удаленной стороны и записывает сообщение в накопитель
func fail(ctx context.Context, logger interfaces.LoggerPort, errs *ErrorService, msg, cause string) {
	if cause != "" {
		logger.ErrorWithContext(ctx, msg, interfaces.LogField{Key: "error", Value: cause})
	} else {
		logger.ErrorWithContext(ctx, msg)
	}
	errs.AddError(msg)
}
