package http

import (
	"github.com/catalogdesk/go-backend/internal/usecase"
	"github.com/catalogdesk/go-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(catalogUC usecase.CatalogUC) {
	r.router.Route("/api/v1", func(v1 chi.Router) {
		catalogHandler := NewCatalogHandler(catalogUC, r.logger)
		categoryHandler := NewCategoryHandler(catalogUC, r.logger)
		productHandler := NewProductHandler(catalogUC, r.logger)

		registerCatalogRoutes(v1, catalogHandler)
		registerCategoryRoutes(v1, categoryHandler, productHandler)
	})
}

func registerCatalogRoutes(router chi.Router, h *CatalogHandler) {
	router.Route("/catalog", func(c chi.Router) {
		c.Get("/", h.listing)
		c.Get("/raw", h.rawDocument)
		c.Put("/raw", h.saveRawDocument)
		c.Post("/refresh", h.refresh)
	})

	router.Get("/theme", h.theme)
	router.Put("/theme", h.setTheme)
}

func registerCategoryRoutes(router chi.Router, ch *CategoryHandler, ph *ProductHandler) {
	router.Route("/categories", func(c chi.Router) {
		c.Post("/", ch.createCategory)

		c.Route("/{category}", func(cat chi.Router) {
			cat.Put("/", ch.renameCategory)
			cat.Delete("/", ch.deleteCategory)

			cat.Route("/products", func(pr chi.Router) {
				pr.Post("/", ph.createProduct)

				pr.Route("/{index}", func(p chi.Router) {
					p.Get("/", ph.getProduct)
					p.Put("/", ph.updateProduct)
					p.Delete("/", ph.deleteProduct)
				})
			})
		})
	})
}
