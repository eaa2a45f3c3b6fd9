package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/catalogdesk/go-backend/internal/domain"
	"github.com/catalogdesk/go-backend/internal/usecase"
	"github.com/catalogdesk/go-backend/pkg/e"
	"github.com/jimlawless/whereami"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrDuplicateCategory):
		return http.StatusConflict, e.ErrDuplicateCategory.Error()
	case errors.Is(err, e.ErrCategoryNotFound):
		return http.StatusNotFound, e.ErrCategoryNotFound.Error()
	case errors.Is(err, e.ErrProductNotFound):
		return http.StatusNotFound, e.ErrProductNotFound.Error()
	case errors.Is(err, e.ErrNoRemoteData):
		return http.StatusNotFound, e.ErrNoRemoteData.Error()
	case errors.Is(err, e.ErrMalformedDocument):
		return http.StatusBadRequest, e.ErrMalformedDocument.Error()
	case errors.Is(err, e.ErrStatusBadRequest):
		return http.StatusBadRequest, e.ErrStatusBadRequest.Error()
	case errors.Is(err, e.ErrExpectedMultipart):
		return http.StatusBadRequest, e.ErrExpectedMultipart.Error()
	case errors.Is(err, e.ErrMissingFields):
		return http.StatusBadRequest, e.ErrMissingFields.Error()
	case errors.Is(err, e.ErrProductNameRequired):
		return http.StatusBadRequest, e.ErrProductNameRequired.Error()
	case errors.Is(err, e.ErrCategoryNameRequired):
		return http.StatusBadRequest, e.ErrCategoryNameRequired.Error()
	case errors.Is(err, e.ErrInvalidPrice):
		return http.StatusBadRequest, e.ErrInvalidPrice.Error()
	case errors.Is(err, e.ErrInvalidStore):
		return http.StatusBadRequest, e.ErrInvalidStore.Error()
	case errors.Is(err, e.ErrInvalidTheme):
		return http.StatusBadRequest, e.ErrInvalidTheme.Error()
	case errors.Is(err, e.ErrInvalidIndex):
		return http.StatusBadRequest, e.ErrInvalidIndex.Error()
	case errors.Is(err, e.ErrTooManyImages):
		return http.StatusBadRequest, e.ErrTooManyImages.Error()
	case errors.Is(err, e.ErrFileTooLarge):
		return http.StatusBadRequest, e.ErrFileTooLarge.Error()
	case errors.Is(err, e.ErrUnsupportedMediaType):
		return http.StatusBadRequest, e.ErrUnsupportedMediaType.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func ensureMultipartForm(r *http.Request, maxMemory int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return e.Wrap(whereami.WhereAmI(), e.ErrExpectedMultipart)
	}
	return r.ParseMultipartForm(maxMemory)
}

// parseProductForm собирает запись продукта из полей multipart-формы.
// Числовые строки и магазины ссылок валидируются на уровне usecase.
func parseProductForm(r *http.Request) (domain.Product, error) {
	product := domain.Product{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Price:    strings.TrimSpace(r.FormValue("price")),
		Currency: strings.TrimSpace(r.FormValue("currency")),
		MRP:      strings.TrimSpace(r.FormValue("mrp")),
		Coupon:   strings.TrimSpace(r.FormValue("coupon")),
		Specs:    r.FormValue("specs"),
	}

	if product.Name == "" {
		return domain.Product{}, e.ErrProductNameRequired
	}

	if v := r.FormValue("inStock"); v != "" {
		inStock, err := strconv.ParseBool(v)
		if err != nil {
			return domain.Product{}, e.Wrap("inStock", e.ErrStatusBadRequest)
		}
		product.InStock = &inStock
	}

	if linksStr := r.FormValue("links"); linksStr != "" {
		var links []domain.Link
		if err := json.Unmarshal([]byte(linksStr), &links); err != nil {
			return domain.Product{}, e.Wrap("links", e.ErrStatusBadRequest)
		}
		product.Links = links
	}

	return product, nil
}

func parseImages(files []*multipart.FileHeader) ([]usecase.ProductImage, error) {
	const maxFileSize = 15 << 20

	images := make([]usecase.ProductImage, 0, len(files))
	for _, fh := range files {
		data, mimeType, err := readFile(fh, maxFileSize)
		if err != nil {
			return nil, err
		}
		images = append(images, *usecase.NewProductImage(data, mimeType, int64(len(data)), fh.Filename))
	}
	return images, nil
}

func readFile(fh *multipart.FileHeader, maxSize int64) ([]byte, string, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, "", e.ErrInternalServerError
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, "", e.ErrInternalServerError
	}
	if int64(len(data)) > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	mimeType := http.DetectContentType(data[:min(len(data), 512)])
	return data, mimeType, nil
}

// parseIndexParam разбирает индекс продукта из сегмента пути.
func parseIndexParam(raw string) (int, error) {
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return 0, e.ErrInvalidIndex
	}
	return index, nil
}
