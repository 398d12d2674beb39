package handlers

import (
	"net/http"
	"strconv"

	"github.com/athebyme/struct-commerce-sync/pkg/interfaces"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

// PIMHandler отдает данные Struct PIM для диагностики интеграции
type PIMHandler struct {
	pim    interfaces.PIMPort
	logger interfaces.LoggerPort
}

func NewPIMHandler(pim interfaces.PIMPort, logger interfaces.LoggerPort) *PIMHandler {
	return &PIMHandler{
		pim:    pim,
		logger: logger,
	}
}

// CatalogueUID возвращает uid каталога категории
//
// @Summary Get catalogue Uid
// @Description Return the Struct catalogue Uid for the given category id
// @Tags    pim
// @Produce json
// @Param   categoryId query int true "Id категории"
// @Success 200 {string} string "Uid каталога или null"
// @Failure 400 {string} string
// @Router  /category [get]
func (h *PIMHandler) CatalogueUID(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.Atoi(r.URL.Query().Get("categoryId"))
	if err != nil {
		badRequest(w, r, "Invalid categoryId")
		return
	}

	category, err := h.pim.GetCategory(r.Context(), categoryID)
	if err != nil {
		h.failed(w, r, err)
		return
	}

	var catalogueUID *uuid.UUID
	if category != nil {
		catalogueUID = &category.CatalogueUid
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, catalogueUID)
}

// Products возвращает первые товары
//
// @Summary Get products
// @Tags    pim
// @Produce json
// @Param   limit query int false "Количество товаров"
// @Success 200 {array} models.ProductModel
// @Failure 400 {string} string
// @Router  /product [get]
func (h *PIMHandler) Products(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 0 {
		limit = 0
	}

	products, err := h.pim.ListProducts(r.Context(), limit)
	if err != nil {
		h.failed(w, r, err)
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, products)
}

// Classifications возвращает категории товара
//
// @Summary Get product classifications
// @Tags    pim
// @Produce json
// @Param   id path int true "Id товара"
// @Success 200 {array} models.ProductClassificationModel
// @Failure 400 {string} string
// @Router  /product/{id}/classifications [get]
func (h *PIMHandler) Classifications(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	classifications, err := h.pim.GetProductClassifications(r.Context(), productID)
	if err != nil {
		h.failed(w, r, err)
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, classifications)
}

// VariantIDs возвращает id вариантов товара
//
// @Summary Get variant ids
// @Tags    pim
// @Produce json
// @Param   id path int true "Id товара"
// @Success 200 {array} int
// @Failure 400 {string} string
// @Router  /product/{id}/variants [get]
func (h *PIMHandler) VariantIDs(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	ids, err := h.pim.GetVariantIDs(r.Context(), &productID)
	if err != nil {
		h.failed(w, r, err)
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, ids)
}

// ProductStructure возвращает структуру товара
//
// @Summary Get product structure
// @Tags    pim
// @Produce json
// @Param   uid path string true "Uid структуры товара"
// @Success 200 {object} models.ProductStructure
// @Failure 400 {string} string
// @Failure 404 {object} errorResponse
// @Router  /productstructure/{uid} [get]
func (h *PIMHandler) ProductStructure(w http.ResponseWriter, r *http.Request) {
	uid, err := uuid.Parse(chi.URLParam(r, "uid"))
	if err != nil {
		badRequest(w, r, "Invalid product structure uid")
		return
	}

	structure, err := h.pim.GetProductStructure(r.Context(), uid)
	if err != nil {
		h.failed(w, r, err)
		return
	}
	if structure == nil {
		notFound(w, r, "Структура товара не найдена")
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, structure)
}

func (h *PIMHandler) productID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "Invalid product id")
		return 0, false
	}
	return id, true
}

// failed ошибка Struct PIM отдается клиенту текстом
func (h *PIMHandler) failed(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorWithContext(r.Context(), "Ошибка запроса к Struct PIM", interfaces.LogField{Key: "error", Value: err.Error()})
	badRequest(w, r, err.Error())
}
