package http

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/catalogdesk/go-backend/internal/usecase"
	"github.com/catalogdesk/go-backend/pkg/e"
	"github.com/catalogdesk/go-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type CategoryHandler struct {
	catalogUC usecase.CatalogUC
	logger    logger.Logger
}

func NewCategoryHandler(catalogUC usecase.CatalogUC, logger logger.Logger) *CategoryHandler {
	return &CategoryHandler{catalogUC: catalogUC, logger: logger}
}

// createCategory создаёт пустую категорию.
func (h *CategoryHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	if err := h.catalogUC.AddCategory(r.Context(), req.Name); err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, map[string]interface{}{
		"categories": h.catalogUC.Listing(r.Context(), ""),
	})
}

// renameCategory переименовывает категорию, сохраняя её продукты.
func (h *CategoryHandler) renameCategory(w http.ResponseWriter, r *http.Request) {
	oldName, err := categoryParam(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	if err := h.catalogUC.RenameCategory(r.Context(), oldName, req.Name); err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"categories": h.catalogUC.Listing(r.Context(), ""),
	})
}

// deleteCategory удаляет категорию вместе со всеми продуктами.
func (h *CategoryHandler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	name, err := categoryParam(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.catalogUC.DeleteCategory(r.Context(), name); err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"categories": h.catalogUC.Listing(r.Context(), ""),
	})
}

// categoryParam извлекает имя категории из пути с учётом URL-кодирования.
func categoryParam(r *http.Request) (string, error) {
	name, err := url.PathUnescape(chi.URLParam(r, "category"))
	if err != nil || name == "" {
		return "", e.ErrCategoryNameRequired
	}
	return name, nil
}
