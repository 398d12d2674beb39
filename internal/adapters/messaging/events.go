package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Заголовки сообщений
const (
	HeaderEventKey  = "X-Event-Key"
	HeaderMessageID = "message_id"
	HeaderTimestamp = "timestamp"
	HeaderRequestID = "request_id"
)

// Статусы обработки события синхронизации
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusRejected  = "rejected"
)

// SyncEvent результат обработки вебхука Struct, публикуется после каждой обработки
type SyncEvent struct {
	ID          string    `json:"id"`
	EventKey    string    `json:"event_key"`
	Status      string    `json:"status"`
	Errors      []string  `json:"errors,omitempty"`
	Source      string    `json:"source"`
	ProcessedAt time.Time `json:"processed_at"`
}

// NewSyncEvent создает событие с новым идентификатором
func NewSyncEvent(eventKey, status, source string, errs []string) SyncEvent {
	return SyncEvent{
		ID:          uuid.New().String(),
		EventKey:    eventKey,
		Status:      status,
		Errors:      errs,
		Source:      source,
		ProcessedAt: time.Now().UTC(),
	}
}

// Encode сериализует событие для публикации
func (e SyncEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}
