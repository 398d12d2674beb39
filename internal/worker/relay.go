package worker

import (
	"context"
	"net/http"
	"time"

	"github.com/athebyme/struct-commerce-sync/internal/adapters/messaging"
	"github.com/athebyme/struct-commerce-sync/internal/webhook"
	"github.com/athebyme/struct-commerce-sync/pkg/interfaces"
)

// Dispatcher обрабатывает событие вебхука
type Dispatcher interface {
	Dispatch(ctx context.Context, event webhook.Event) webhook.Result
}

// Relay передает вебхуки из очереди в диспетчер.
// Семейство события берется из префикса X-Event-Key.
type Relay struct {
	dispatcher Dispatcher
	timeout    time.Duration
	logger     interfaces.LoggerPort
}

// NewRelay создает обработчик очереди вебхуков. timeout 0 не ограничивает обработку.
func NewRelay(dispatcher Dispatcher, timeout time.Duration, logger interfaces.LoggerPort) *Relay {
	return &Relay{
		dispatcher: dispatcher,
		timeout:    timeout,
		logger:     logger.WithField("component", "relay"),
	}
}

// Handle обрабатывает одно сообщение. Отказ и ошибки синхронизации сообщение подтверждают:
// повтор их не исправит, а итог уже опубликован в топик событий.
// Ошибка возвращается только при прерванной обработке, чтобы сообщение пришло снова.
func (r *Relay) Handle(ctx context.Context, msg *interfaces.Message) error {
	ctx = context.WithValue(ctx, interfaces.RequestIDKey, msg.ID)
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	key := msg.Headers[messaging.HeaderEventKey]
	r.logger.InfoWithContext(ctx, "Получен вебхук из очереди",
		interfaces.LogField{Key: "message_id", Value: msg.ID},
		interfaces.LogField{Key: "topic", Value: msg.Topic},
		interfaces.LogField{Key: "event", Value: key},
	)

	result := r.dispatcher.Dispatch(ctx, webhook.Event{
		Key:    key,
		Body:   msg.Value,
		Source: "kafka",
	})

	if err := ctx.Err(); err != nil {
		return err
	}

	switch {
	case len(result.Errors) > 0:
		r.logger.WarnWithContext(ctx, "Вебхук обработан с ошибками",
			interfaces.LogField{Key: "event", Value: key},
			interfaces.LogField{Key: "errors", Value: result.Errors},
		)
	case result.Status != http.StatusOK:
		r.logger.WarnWithContext(ctx, "Вебхук отклонен",
			interfaces.LogField{Key: "event", Value: key},
			interfaces.LogField{Key: "reason", Value: result.Message},
		)
	}
	return nil
}
