package interfaces

import (
	"context"
	"time"
)

// ImportRun описывает один запуск импорта или очистки
type ImportRun struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Succeeded  bool       `json:"succeeded"`
	Errors     []string   `json:"errors,omitempty"`
}

// StoragePort определяет интерфейс для работы с постоянным хранилищем данных
// Хранилище используется только для журнала запусков импорта
type StoragePort interface {
	// SaveRun сохраняет или обновляет запись о запуске
	SaveRun(ctx context.Context, run *ImportRun) error

	// ListRuns возвращает последние запуски, начиная с самых новых
	ListRuns(ctx context.Context, limit int) ([]*ImportRun, error)

	// Ping проверяет соединение с хранилищем
	Ping(ctx context.Context) error

	// Close закрывает соединение с хранилищем
	Close() error
}
