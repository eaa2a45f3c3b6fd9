package usecase

import (
	"context"

	"github.com/catalogdesk/go-backend/internal/render"
)

type CatalogUC interface {
	Load(ctx context.Context) error
	Listing(ctx context.Context, searchTerm string) []render.CategoryBlock
	RawDocument(ctx context.Context) ([]byte, error)
	ReplaceAll(ctx context.Context, document []byte) error
	Refresh(ctx context.Context) error

	AddCategory(ctx context.Context, name string) error
	RenameCategory(ctx context.Context, oldName, newName string) error
	DeleteCategory(ctx context.Context, name string) error

	SaveProduct(ctx context.Context, req *SaveProductReq) error
	GetProduct(ctx context.Context, category string, index int) (*ProductDetail, error)
	DeleteProduct(ctx context.Context, category string, index int) error

	Theme(ctx context.Context) (string, error)
	SetTheme(ctx context.Context, theme string) error
}
