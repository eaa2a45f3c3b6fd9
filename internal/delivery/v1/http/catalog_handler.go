package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/catalogdesk/go-backend/internal/usecase"
	"github.com/catalogdesk/go-backend/pkg/e"
	"github.com/catalogdesk/go-backend/pkg/logger"
)

// CatalogHandler обслуживает листинг, массовое редактирование документа,
// ручное обновление из удалённого хранилища и тему оператора.
type CatalogHandler struct {
	catalogUC usecase.CatalogUC
	logger    logger.Logger
}

func NewCatalogHandler(catalogUC usecase.CatalogUC, logger logger.Logger) *CatalogHandler {
	return &CatalogHandler{catalogUC: catalogUC, logger: logger}
}

// listing отдаёт отрендеренный каталог с учётом поискового запроса.
func (h *CatalogHandler) listing(w http.ResponseWriter, r *http.Request) {
	blocks := h.catalogUC.Listing(r.Context(), r.URL.Query().Get("search"))

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"categories": blocks,
	})
}

// rawDocument отдаёт сериализованный каталог для массового редактирования.
func (h *CatalogHandler) rawDocument(w http.ResponseWriter, r *http.Request) {
	document, err := h.catalogUC.RawDocument(r.Context())
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(document)
}

// saveRawDocument заменяет каталог целиком документом оператора.
func (h *CatalogHandler) saveRawDocument(w http.ResponseWriter, r *http.Request) {
	const maxDocumentSize = 10 << 20

	document, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentSize))
	if err != nil {
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	if err := h.catalogUC.ReplaceAll(r.Context(), document); err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"categories": h.catalogUC.Listing(r.Context(), ""),
	})
}

// refresh перечитывает каталог из удалённого хранилища.
func (h *CatalogHandler) refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogUC.Refresh(r.Context()); err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"categories": h.catalogUC.Listing(r.Context(), ""),
	})
}

func (h *CatalogHandler) theme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.catalogUC.Theme(r.Context())
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"theme": theme,
	})
}

func (h *CatalogHandler) setTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	if err := h.catalogUC.SetTheme(r.Context(), req.Theme); err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"theme": req.Theme,
	})
}
