package http

import (
	"net/http"

	"github.com/catalogdesk/go-backend/internal/usecase"
	"github.com/catalogdesk/go-backend/pkg/e"
	"github.com/catalogdesk/go-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

const (
	maxTotalRequestSize = 150 << 20
	maxMemory           = 32 << 20
)

type ProductHandler struct {
	catalogUC usecase.CatalogUC
	logger    logger.Logger
}

func NewProductHandler(catalogUC usecase.CatalogUC, logger logger.Logger) *ProductHandler {
	return &ProductHandler{catalogUC: catalogUC, logger: logger}
}

// createProduct добавляет продукт в конец списка категории.
// Принимает multipart/form-data с полями записи и файлами изображений.
func (h *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	h.saveProduct(w, r, nil)
}

// updateProduct заменяет продукт категории по индексу.
func (h *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	index, err := parseIndexParam(chi.URLParam(r, "index"))
	if err != nil {
		WriteError(w, err)
		return
	}

	h.saveProduct(w, r, &index)
}

func (h *ProductHandler) saveProduct(w http.ResponseWriter, r *http.Request, index *int) {
	category, err := categoryParam(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxTotalRequestSize)

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), r.Header.Get("Content-Type"))
		WriteError(w, err)
		return
	}

	product, err := parseProductForm(r)
	if err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	images, err := parseImages(r.MultipartForm.File["images"])
	if err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	err = h.catalogUC.SaveProduct(r.Context(), usecase.NewSaveProductReq(category, index, product, images))
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	status := http.StatusCreated
	if index != nil {
		status = http.StatusOK
	}

	WriteSuccess(w, status, map[string]interface{}{
		"categories": h.catalogUC.Listing(r.Context(), ""),
	})
}

// getProduct отдаёт продукт с предпросмотром изображений для формы редактирования.
func (h *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	category, err := categoryParam(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	index, err := parseIndexParam(chi.URLParam(r, "index"))
	if err != nil {
		WriteError(w, err)
		return
	}

	detail, err := h.catalogUC.GetProduct(r.Context(), category, index)
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, detail)
}

// deleteProduct удаляет продукт по индексу; опустевшая категория остаётся.
func (h *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	category, err := categoryParam(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	index, err := parseIndexParam(chi.URLParam(r, "index"))
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.catalogUC.DeleteProduct(r.Context(), category, index); err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"categories": h.catalogUC.Listing(r.Context(), ""),
	})
}
