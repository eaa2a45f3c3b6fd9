package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/catalogdesk/go-backend/internal/render"
	"github.com/catalogdesk/go-backend/internal/usecase"
	"github.com/catalogdesk/go-backend/pkg/e"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)        {}
func (nopLogger) Infof(string, ...any)         {}
func (nopLogger) Warnf(string, ...any)         {}
func (nopLogger) Errorf(error, string, ...any) {}

// fakeCatalogUC записывает аргументы вызовов и отдаёт настроенные ответы.
type fakeCatalogUC struct {
	blocks []render.CategoryBlock
	raw    []byte
	detail *usecase.ProductDetail
	theme  string
	err    error

	lastSearch  string
	lastRaw     []byte
	lastSaveReq *usecase.SaveProductReq
	lastNames   []string
	lastTheme   string
}

func (f *fakeCatalogUC) Load(context.Context) error { return f.err }

func (f *fakeCatalogUC) Listing(_ context.Context, searchTerm string) []render.CategoryBlock {
	f.lastSearch = searchTerm
	return f.blocks
}

func (f *fakeCatalogUC) RawDocument(context.Context) ([]byte, error) {
	return f.raw, f.err
}

func (f *fakeCatalogUC) ReplaceAll(_ context.Context, document []byte) error {
	f.lastRaw = document
	return f.err
}

func (f *fakeCatalogUC) Refresh(context.Context) error { return f.err }

func (f *fakeCatalogUC) AddCategory(_ context.Context, name string) error {
	f.lastNames = append(f.lastNames, name)
	return f.err
}

func (f *fakeCatalogUC) RenameCategory(_ context.Context, oldName, newName string) error {
	f.lastNames = append(f.lastNames, oldName, newName)
	return f.err
}

func (f *fakeCatalogUC) DeleteCategory(_ context.Context, name string) error {
	f.lastNames = append(f.lastNames, name)
	return f.err
}

func (f *fakeCatalogUC) SaveProduct(_ context.Context, req *usecase.SaveProductReq) error {
	f.lastSaveReq = req
	return f.err
}

func (f *fakeCatalogUC) GetProduct(context.Context, string, int) (*usecase.ProductDetail, error) {
	return f.detail, f.err
}

func (f *fakeCatalogUC) DeleteProduct(context.Context, string, int) error { return f.err }

func (f *fakeCatalogUC) Theme(context.Context) (string, error) { return f.theme, f.err }

func (f *fakeCatalogUC) SetTheme(_ context.Context, theme string) error {
	f.lastTheme = theme
	return f.err
}

func newTestServer(uc usecase.CatalogUC) *httptest.Server {
	mux := chi.NewRouter()
	NewRouter(mux, nopLogger{}).Init(uc)
	return httptest.NewServer(mux)
}

func doJSON(t *testing.T, method, url string, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestListing(t *testing.T) {
	uc := &fakeCatalogUC{blocks: []render.CategoryBlock{{Category: "Phones", Rows: []render.ProductRow{}}}}
	srv := newTestServer(uc)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/catalog/?search=pixel")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pixel", uc.lastSearch)

	body := decodeBody(t, resp)
	require.Contains(t, body, "categories")
	categories := body["categories"].([]any)
	require.Len(t, categories, 1)
	assert.Equal(t, "Phones", categories[0].(map[string]any)["category"])
}

func TestRawDocument(t *testing.T) {
	uc := &fakeCatalogUC{raw: []byte(`{"Phones": []}`)}
	srv := newTestServer(uc)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/catalog/raw")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var doc map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Contains(t, doc, "Phones")
}

func TestSaveRawDocument(t *testing.T) {
	uc := &fakeCatalogUC{}
	srv := newTestServer(uc)
	defer srv.Close()

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/v1/catalog/raw", `{"Phones": []}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"Phones": []}`, string(uc.lastRaw))
}

func TestSaveRawDocument_Malformed(t *testing.T) {
	uc := &fakeCatalogUC{err: e.ErrMalformedDocument}
	srv := newTestServer(uc)
	defer srv.Close()

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/v1/catalog/raw", `{"Phones": [`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRefresh_NoRemoteData(t *testing.T) {
	uc := &fakeCatalogUC{err: e.ErrNoRemoteData}
	srv := newTestServer(uc)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/catalog/refresh", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateCategory(t *testing.T) {
	uc := &fakeCatalogUC{}
	srv := newTestServer(uc)
	defer srv.Close()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/categories/", `{"name": "Phones"}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, []string{"Phones"}, uc.lastNames)
}

func TestCreateCategory_Duplicate(t *testing.T) {
	uc := &fakeCatalogUC{err: e.ErrDuplicateCategory}
	srv := newTestServer(uc)
	defer srv.Close()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/categories/", `{"name": "Phones"}`)

	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(http.StatusConflict), body["code"])
	assert.NotEmpty(t, body["message"])
}

func TestCreateCategory_BadJSON(t *testing.T) {
	uc := &fakeCatalogUC{}
	srv := newTestServer(uc)
	defer srv.Close()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/categories/", `{"name":`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, uc.lastNames)
}

func TestRenameCategory_EscapedName(t *testing.T) {
	uc := &fakeCatalogUC{}
	srv := newTestServer(uc)
	defer srv.Close()

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/v1/categories/Mobile%20Phones/", `{"name": "Phones"}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Mobile Phones", "Phones"}, uc.lastNames)
}

func TestDeleteCategory_NotFound(t *testing.T) {
	uc := &fakeCatalogUC{err: e.ErrCategoryNotFound}
	srv := newTestServer(uc)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/categories/Ghost/", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func productForm(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for name, value := range fields {
		require.NoError(t, mw.WriteField(name, value))
	}
	for name, data := range files {
		fw, err := mw.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestCreateProduct(t *testing.T) {
	uc := &fakeCatalogUC{}
	srv := newTestServer(uc)
	defer srv.Close()

	body, contentType := productForm(t, map[string]string{
		"name":    "Pixel 8",
		"price":   "499",
		"mrp":     "599",
		"coupon":  "SAVE10",
		"inStock": "true",
		"links":   `[{"store": "Amazon", "url": "https://example.com/p"}]`,
	}, map[string][]byte{
		"photo.jpg": []byte("fake image bytes"),
	})

	resp, err := http.Post(srv.URL+"/api/v1/categories/Phones/products/", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	require.NotNil(t, uc.lastSaveReq)
	assert.Equal(t, "Phones", uc.lastSaveReq.Category)
	assert.Nil(t, uc.lastSaveReq.Index)
	assert.Equal(t, "Pixel 8", uc.lastSaveReq.Product.Name)
	assert.Equal(t, "499", uc.lastSaveReq.Product.Price)
	require.NotNil(t, uc.lastSaveReq.Product.InStock)
	assert.True(t, *uc.lastSaveReq.Product.InStock)
	require.Len(t, uc.lastSaveReq.Product.Links, 1)
	require.Len(t, uc.lastSaveReq.Images, 1)
	assert.Equal(t, "photo.jpg", uc.lastSaveReq.Images[0].Name)
}

func TestCreateProduct_NotMultipart(t *testing.T) {
	uc := &fakeCatalogUC{}
	srv := newTestServer(uc)
	defer srv.Close()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/categories/Phones/products/", `{"name": "Pixel 8"}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Nil(t, uc.lastSaveReq)
}

func TestCreateProduct_MissingName(t *testing.T) {
	uc := &fakeCatalogUC{}
	srv := newTestServer(uc)
	defer srv.Close()

	body, contentType := productForm(t, map[string]string{"price": "499"}, nil)

	resp, err := http.Post(srv.URL+"/api/v1/categories/Phones/products/", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Nil(t, uc.lastSaveReq)
}

func TestUpdateProduct(t *testing.T) {
	uc := &fakeCatalogUC{}
	srv := newTestServer(uc)
	defer srv.Close()

	body, contentType := productForm(t, map[string]string{"name": "Pixel 8 Pro"}, nil)

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/v1/categories/Phones/products/2/", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NotNil(t, uc.lastSaveReq)
	require.NotNil(t, uc.lastSaveReq.Index)
	assert.Equal(t, 2, *uc.lastSaveReq.Index)
}

func TestUpdateProduct_BadIndex(t *testing.T) {
	uc := &fakeCatalogUC{}
	srv := newTestServer(uc)
	defer srv.Close()

	for _, raw := range []string{"abc", "-1"} {
		body, contentType := productForm(t, map[string]string{"name": "x"}, nil)

		req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/v1/categories/Phones/products/"+raw+"/", body)
		require.NoError(t, err)
		req.Header.Set("Content-Type", contentType)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "index %q", raw)
	}
}

func TestGetProduct(t *testing.T) {
	uc := &fakeCatalogUC{detail: &usecase.ProductDetail{Category: "Phones", Index: 0}}
	srv := newTestServer(uc)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/categories/Phones/products/0/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetProduct_NotFound(t *testing.T) {
	uc := &fakeCatalogUC{err: e.ErrProductNotFound}
	srv := newTestServer(uc)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/categories/Phones/products/9/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTheme(t *testing.T) {
	uc := &fakeCatalogUC{theme: "dark"}
	srv := newTestServer(uc)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/theme")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "dark", body["theme"])
}

func TestSetTheme(t *testing.T) {
	uc := &fakeCatalogUC{}
	srv := newTestServer(uc)
	defer srv.Close()

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/v1/theme", `{"theme": "dark"}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "dark", uc.lastTheme)
}

func TestSetTheme_Invalid(t *testing.T) {
	uc := &fakeCatalogUC{err: e.ErrInvalidTheme}
	srv := newTestServer(uc)
	defer srv.Close()

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/v1/theme", `{"theme": "solarized"}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{e.ErrDuplicateCategory, http.StatusConflict},
		{e.ErrCategoryNotFound, http.StatusNotFound},
		{e.ErrProductNotFound, http.StatusNotFound},
		{e.ErrNoRemoteData, http.StatusNotFound},
		{e.ErrMalformedDocument, http.StatusBadRequest},
		{e.ErrTooManyImages, http.StatusBadRequest},
		{e.ErrUnsupportedMediaType, http.StatusBadRequest},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		code, msg := ToHTTPResponse(tt.err)
		assert.Equal(t, tt.code, code, tt.err.Error())
		assert.NotEmpty(t, msg)
	}
}
