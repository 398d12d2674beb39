package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/athebyme/struct-commerce-sync/internal/domain/services"
	"github.com/athebyme/struct-commerce-sync/pkg/interfaces"
	"github.com/go-chi/render"
)

// ImportRunner выполняет первичный импорт и очистку
type ImportRunner interface {
	RunInitialImport(ctx context.Context) error
	RunClean(ctx context.Context) ([]string, error)
}

// ImportHandler запускает импорт Struct PIM в Commercetools
type ImportHandler struct {
	newRunner func() ImportRunner
	runs      interfaces.StoragePort
	logger    interfaces.LoggerPort
}

// NewImportHandler создает обработчик импорта. newRunner вызывается на каждый запрос,
// runs может быть nil, если журнал запусков отключен.
func NewImportHandler(newRunner func() ImportRunner, runs interfaces.StoragePort, logger interfaces.LoggerPort) *ImportHandler {
	return &ImportHandler{
		newRunner: newRunner,
		runs:      runs,
		logger:    logger,
	}
}

// Initial запускает первичный импорт
//
// @Summary Initial import
// @Tags    import
// @Produce plain
// @Success 200 {string} string "Import success"
// @Failure 400 {string} string "Import failed: <errors>"
// @Router  /import/initial [get]
func (h *ImportHandler) Initial(w http.ResponseWriter, r *http.Request) {
	// импорт доводится до конца даже при обрыве соединения
	ctx := context.WithoutCancel(r.Context())

	if err := h.newRunner().RunInitialImport(ctx); err != nil {
		h.logger.ErrorWithContext(ctx, "Первичный импорт завершился с ошибкой", interfaces.LogField{Key: "error", Value: err.Error()})
		badRequest(w, r, "Import failed: "+err.Error())
		return
	}

	render.Status(r, http.StatusOK)
	render.PlainText(w, r, "Import success")
}

// Clean удаляет из Commercetools все сущности Struct
//
// @Summary Clean Commercetools
// @Tags    import
// @Produce json
// @Success 200 {array}  string "Ошибки удаления"
// @Failure 400 {string} string "Not allowed"
// @Router  /import/clean [get]
func (h *ImportHandler) Clean(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())

	errs, err := h.newRunner().RunClean(ctx)
	if err != nil {
		if errors.Is(err, services.ErrCleanNotAllowed) {
			h.logger.WarnWithContext(ctx, "Очистка Commercetools запрещена настройками")
			badRequest(w, r, "Not allowed")
			return
		}
		h.logger.ErrorWithContext(ctx, "Очистка прервана", interfaces.LogField{Key: "error", Value: err.Error()})
		badRequest(w, r, err.Error())
		return
	}

	if errs == nil {
		errs = []string{}
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, errs)
}

// Runs возвращает журнал последних запусков
//
// @Summary Import run log
// @Tags    import
// @Produce json
// @Param   limit query int false "Количество записей"
// @Success 200 {array} interfaces.ImportRun
// @Failure 404 {object} errorResponse
// @Router  /import/runs [get]
func (h *ImportHandler) Runs(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		notFound(w, r, "Журнал запусков отключен")
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		limit = 0
	}

	runs, err := h.runs.ListRuns(r.Context(), limit)
	if err != nil {
		h.logger.ErrorWithContext(r.Context(), "Ошибка чтения журнала запусков", interfaces.LogField{Key: "error", Value: err.Error()})
		internalError(w, r, "Ошибка чтения журнала запусков")
		return
	}
	if runs == nil {
		runs = []*interfaces.ImportRun{}
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, runs)
}
