package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/athebyme/struct-commerce-sync/internal/adapters/messaging"
	"github.com/athebyme/struct-commerce-sync/internal/webhook"
	"github.com/athebyme/struct-commerce-sync/pkg/interfaces"
	"github.com/go-chi/render"
)

// MaxWebhookBodySize ограничивает тело вебхука
const MaxWebhookBodySize = 10 << 20

// Dispatcher обрабатывает событие вебхука
type Dispatcher interface {
	Dispatch(ctx context.Context, event webhook.Event) webhook.Result
}

// WebhookHandler принимает вебхуки Struct PIM по HTTP
type WebhookHandler struct {
	dispatcher Dispatcher
	logger     interfaces.LoggerPort
}

// NewWebhookHandler создает обработчик вебхуков
func NewWebhookHandler(dispatcher Dispatcher, logger interfaces.LoggerPort) *WebhookHandler {
	return &WebhookHandler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle возвращает обработчик для семейства событий
//
// @Summary     Executes a webhook
// @Description Применяет событие Struct PIM к Commercetools. Тип события передается в X-Event-Key.
// @Tags        webhooks
// @Accept      json
// @Produce     plain
// @Param       X-Event-Key header string true "Ключ события, например products:created"
// @Success     200
// @Failure     400 {string} string "Причина отказа"
// @Failure     400 {array}  string "Накопленные ошибки синхронизации"
// @Failure     401 {string} string
// @Router      /product/webhook [post]
// @Router      /variant/webhook [post]
// @Router      /category/webhook [post]
// @Router      /catalogue/webhook [post]
// @Router      /productstructure/webhook [post]
// @Router      /language/webhook [post]
// @Router      /attribute/webhook [post]
func (h *WebhookHandler) Handle(family string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxWebhookBodySize))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				render.Status(r, http.StatusRequestEntityTooLarge)
				render.PlainText(w, r, "Webhook body is too large")
				return
			}
			h.logger.WarnWithContext(r.Context(), "Не удалось прочитать тело вебхука",
				interfaces.LogField{Key: "family", Value: family},
				interfaces.LogField{Key: "error", Value: err.Error()},
			)
			badRequest(w, r, "No model provided")
			return
		}

		result := h.dispatcher.Dispatch(r.Context(), webhook.Event{
			Family: family,
			Key:    r.Header.Get(messaging.HeaderEventKey),
			Body:   body,
			Source: "http",
		})

		switch {
		case len(result.Errors) > 0:
			render.Status(r, result.Status)
			render.JSON(w, r, result.Errors)
		case result.Status != http.StatusOK:
			render.Status(r, result.Status)
			render.PlainText(w, r, result.Message)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}
}
