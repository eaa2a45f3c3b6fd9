package usecase

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/catalogdesk/go-backend/internal/cfg"
	"github.com/catalogdesk/go-backend/internal/domain"
	"github.com/catalogdesk/go-backend/internal/render"
	"github.com/catalogdesk/go-backend/pkg/e"
	"github.com/catalogdesk/go-backend/pkg/logger"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CatalogUseCase владеет единственным экземпляром каталога на сессию
// и реализует бизнес-логику админки: мутация → персист (зеркало + удалённое
// хранилище + outbox-событие). Persist — fire-and-forget: неудачная запись
// логируется, но не откатывает уже применённую мутацию.
type CatalogUseCase struct {
	mu      sync.RWMutex
	catalog *domain.Catalog

	collectionRepo CollectionRepository
	mirrorRepo     MirrorRepository
	imageRepo      ImageRepository
	outboxRepo     OutboxRepository
	imagesInfra    ImagesInfra
	compressor     ImageCompressor
	dbPool         transaction.Transactional
	logger         logger.Logger
	cfg            *cfg.CatalogCfg
}

func NewCatalogUC(
	collectionRepo CollectionRepository,
	mirrorRepo MirrorRepository,
	imageRepo ImageRepository,
	outboxRepo OutboxRepository,
	imagesInfra ImagesInfra,
	compressor ImageCompressor,
	dbPool transaction.Transactional,
	logger logger.Logger,
	cfg *cfg.CatalogCfg,
) *CatalogUseCase {
	return &CatalogUseCase{
		catalog:        domain.NewCatalog(),
		collectionRepo: collectionRepo,
		mirrorRepo:     mirrorRepo,
		imageRepo:      imageRepo,
		outboxRepo:     outboxRepo,
		imagesInfra:    imagesInfra,
		compressor:     compressor,
		dbPool:         dbPool,
		logger:         logger,
		cfg:            cfg,
	}
}

// Load выполняет стартовую последовательность загрузки каталога:
// удалённый документ → локальное зеркало → пустой каталог.
// Удалённый документ, когда он есть, всегда перезаписывает зеркало.
func (c *CatalogUseCase) Load(ctx context.Context) error {
	const op = "CatalogUseCase.Load"

	document, err := c.collectionRepo.ReadCollection(ctx, c.cfg.CollectionName)
	switch {
	case err == nil:
		catalog := domain.NewCatalog()
		if err := json.Unmarshal(document, catalog); err != nil {
			return e.Wrap(op, e.ErrMalformedDocument)
		}

		c.swap(catalog)

		if err := c.mirrorRepo.SaveSnapshot(ctx, document); err != nil {
			c.logger.Warnf("failed to mirror remote document: %v", e.Wrap(op, err))
		}

		c.logger.Infof("catalog loaded from remote store, categories: %d", catalog.Len())
		return nil
	case errors.Is(err, e.ErrNoRemoteData):
		// нет удалённых данных — не ошибка, пробуем зеркало
	default:
		return e.Wrap(op, err)
	}

	snapshot, err := c.mirrorRepo.LoadSnapshot(ctx)
	switch {
	case err == nil:
		catalog := domain.NewCatalog()
		if err := json.Unmarshal(snapshot, catalog); err != nil {
			return e.Wrap(op, e.ErrMalformedDocument)
		}

		c.swap(catalog)
		c.logger.Infof("catalog loaded from local mirror, categories: %d", catalog.Len())
		return nil
	case errors.Is(err, e.ErrNoSnapshot):
		// полное отсутствие данных — инициализируем пустой каталог
	default:
		return e.Wrap(op, err)
	}

	c.swap(domain.NewCatalog())
	c.persist(ctx, []byte("{}"), c.changeEvent(EventCatalogReplaced, ""))
	c.logger.Infof("no catalog data found, initialized empty catalog")
	return nil
}

// Listing возвращает отрендеренный список категорий с учётом поискового запроса.
func (c *CatalogUseCase) Listing(_ context.Context, searchTerm string) []render.CategoryBlock {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return render.Render(c.catalog, searchTerm)
}

// RawDocument сериализует каталог для массового редактирования.
func (c *CatalogUseCase) RawDocument(_ context.Context) ([]byte, error) {
	const op = "CatalogUseCase.RawDocument"

	c.mu.RLock()
	defer c.mu.RUnlock()

	document, err := json.MarshalIndent(c.catalog, "", "  ")
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return document, nil
}

// ReplaceAll заменяет каталог целиком документом оператора.
// Нечитаемый документ отклоняется без частичной мутации.
func (c *CatalogUseCase) ReplaceAll(ctx context.Context, document []byte) error {
	const op = "CatalogUseCase.ReplaceAll"

	catalog := domain.NewCatalog()
	if err := json.Unmarshal(document, catalog); err != nil {
		return e.Wrap(op, e.ErrMalformedDocument)
	}

	c.swap(catalog)

	snapshot, err := json.Marshal(catalog)
	if err != nil {
		return e.Wrap(op, err)
	}

	c.persist(ctx, snapshot, c.changeEvent(EventCatalogReplaced, ""))
	return nil
}

// Refresh перечитывает каталог из удалённого хранилища, затирая локальные правки.
// Отсутствие удалённого документа — отдельная ошибка e.ErrNoRemoteData.
func (c *CatalogUseCase) Refresh(ctx context.Context) error {
	const op = "CatalogUseCase.Refresh"

	document, err := c.collectionRepo.ReadCollection(ctx, c.cfg.CollectionName)
	if err != nil {
		return e.Wrap(op, err)
	}

	catalog := domain.NewCatalog()
	if err := json.Unmarshal(document, catalog); err != nil {
		return e.Wrap(op, e.ErrMalformedDocument)
	}

	c.swap(catalog)

	if err := c.mirrorRepo.SaveSnapshot(ctx, document); err != nil {
		c.logger.Warnf("failed to mirror refreshed document: %v", e.Wrap(op, err))
	}

	return nil
}

// AddCategory создаёт пустую категорию.
func (c *CatalogUseCase) AddCategory(ctx context.Context, name string) error {
	const op = "CatalogUseCase.AddCategory"

	name = strings.TrimSpace(name)
	if name == "" {
		return e.Wrap(op, e.ErrCategoryNameRequired)
	}

	snapshot, err := c.mutate(func(catalog *domain.Catalog) error {
		return catalog.AddCategory(name)
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	c.persist(ctx, snapshot, c.changeEvent(EventCategoryAdded, name))
	return nil
}

// RenameCategory переименовывает категорию.
// Переименование в то же имя — молчаливый no-op без персиста.
func (c *CatalogUseCase) RenameCategory(ctx context.Context, oldName, newName string) error {
	const op = "CatalogUseCase.RenameCategory"

	newName = strings.TrimSpace(newName)
	if newName == "" {
		return e.Wrap(op, e.ErrCategoryNameRequired)
	}

	snapshot, err := c.mutate(func(catalog *domain.Catalog) error {
		return catalog.RenameCategory(oldName, newName)
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	if oldName == newName {
		return nil
	}

	c.persist(ctx, snapshot, c.changeEvent(EventCategoryRenamed, newName))
	return nil
}

// DeleteCategory удаляет категорию со всеми продуктами и чистит их изображения.
func (c *CatalogUseCase) DeleteCategory(ctx context.Context, name string) error {
	const op = "CatalogUseCase.DeleteCategory"

	var orphaned []string
	snapshot, err := c.mutate(func(catalog *domain.Catalog) error {
		if products, ok := catalog.Products(name); ok {
			for _, product := range products {
				orphaned = append(orphaned, product.Images...)
			}
		}
		return catalog.DeleteCategory(name)
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	c.persist(ctx, snapshot, c.changeEvent(EventCategoryDeleted, name))
	c.imagesInfra.CleanupImages(orphaned)
	return nil
}

// SaveProduct выполняет сценарий формы продукта: валидация, сжатие и
// конкурентная загрузка новых изображений, коммит в каталог строго после
// завершения всех загрузок, персист.
func (c *CatalogUseCase) SaveProduct(ctx context.Context, req *SaveProductReq) error {
	const op = "CatalogUseCase.SaveProduct"

	if err := c.validateProduct(req); err != nil {
		return e.Wrap(op, err)
	}

	existingImages, err := c.currentImages(req)
	if err != nil {
		return e.Wrap(op, err)
	}

	product := req.Product
	product.Images = nil

	uploaded := false
	if len(req.Images) > 0 {
		ids, err := c.compressAndUpload(ctx, req)
		if err != nil {
			return e.Wrap(op, err)
		}
		product.Images = ids
		uploaded = true
	} else if req.Index != nil {
		// без заново выбранных файлов прежние идентификаторы сохраняются
		product.Images = existingImages
	}

	eventType := EventProductAdded
	snapshot, err := c.mutate(func(catalog *domain.Catalog) error {
		if req.Index != nil {
			eventType = EventProductUpdated
			return catalog.UpdateProduct(req.Category, *req.Index, product)
		}
		return catalog.AddProduct(req.Category, product)
	})
	if err != nil {
		if uploaded {
			c.imagesInfra.CleanupImages(product.Images)
		}
		return e.Wrap(op, err)
	}

	c.persist(ctx, snapshot, c.changeEvent(eventType, req.Category))
	return nil
}

// GetProduct возвращает продукт с предпросмотром его изображений
// для предзаполнения формы редактирования.
func (c *CatalogUseCase) GetProduct(ctx context.Context, category string, index int) (*ProductDetail, error) {
	const op = "CatalogUseCase.GetProduct"

	c.mu.RLock()
	product, err := c.catalog.Product(category, index)
	c.mu.RUnlock()
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	previews := make([]ImagePreview, 0, len(product.Images))
	for _, id := range product.Images {
		data, contentType, err := c.imageRepo.Fetch(ctx, id)
		if err != nil {
			// предпросмотр — best effort, битая ссылка не валит форму
			c.logger.Warnf("failed to fetch image %s: %v", id, e.Wrap(op, err))
			continue
		}

		previews = append(previews, ImagePreview{
			ID:          id,
			ContentType: contentType,
			Data:        base64.StdEncoding.EncodeToString(data),
		})
	}

	return &ProductDetail{
		Category: category,
		Index:    index,
		Product:  product,
		Previews: previews,
	}, nil
}

// DeleteProduct удаляет продукт по индексу; опустевшая категория остаётся.
func (c *CatalogUseCase) DeleteProduct(ctx context.Context, category string, index int) error {
	const op = "CatalogUseCase.DeleteProduct"

	var orphaned []string
	snapshot, err := c.mutate(func(catalog *domain.Catalog) error {
		if product, err := catalog.Product(category, index); err == nil {
			orphaned = product.Images
		}
		return catalog.DeleteProduct(category, index)
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	c.persist(ctx, snapshot, c.changeEvent(EventProductDeleted, category))
	c.imagesInfra.CleanupImages(orphaned)
	return nil
}

// Theme возвращает сохранённую тему оператора, по умолчанию light.
func (c *CatalogUseCase) Theme(ctx context.Context) (string, error) {
	const op = "CatalogUseCase.Theme"

	theme, err := c.mirrorRepo.LoadTheme(ctx)
	switch {
	case err == nil:
		return theme, nil
	case errors.Is(err, e.ErrNoSnapshot):
		return "light", nil
	default:
		return "", e.Wrap(op, err)
	}
}

func (c *CatalogUseCase) SetTheme(ctx context.Context, theme string) error {
	const op = "CatalogUseCase.SetTheme"

	if theme != "dark" && theme != "light" {
		return e.Wrap(op, e.ErrInvalidTheme)
	}

	if err := c.mirrorRepo.SaveTheme(ctx, theme); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

// mutate применяет мутацию под блокировкой и возвращает сериализованный
// снимок каталога для последующего персиста.
func (c *CatalogUseCase) mutate(fn func(catalog *domain.Catalog) error) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := fn(c.catalog); err != nil {
		return nil, err
	}

	return json.Marshal(c.catalog)
}

func (c *CatalogUseCase) swap(catalog *domain.Catalog) {
	c.mu.Lock()
	c.catalog = catalog
	c.mu.Unlock()
}

// compressAndUpload сжимает все выбранные файлы и загружает их конкурентно.
// Возвращает идентификаторы в порядке исходных файлов; коммит продукта
// происходит строго после завершения всех загрузок.
func (c *CatalogUseCase) compressAndUpload(ctx context.Context, req *SaveProductReq) ([]string, error) {
	compressed := make([]ProductImage, 0, len(req.Images))
	for _, img := range req.Images {
		data, err := c.compressor.Compress(img.Data, c.cfg.ImageMaxSizeKB)
		if err != nil {
			return nil, err
		}

		compressed = append(compressed, *NewProductImage(data, "image/jpeg", int64(len(data)), img.Name))
	}

	res, err := c.imagesInfra.UploadImages(ctx, NewUploadImagesReq(req.Category, compressed))
	if err != nil {
		return nil, err
	}

	return res.ImageIDs, nil
}

// currentImages фиксирует существующие идентификаторы изображений
// редактируемого продукта и проверяет адресуемость категории/индекса.
func (c *CatalogUseCase) currentImages(req *SaveProductReq) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.catalog.Products(req.Category); !ok {
		return nil, e.ErrCategoryNotFound
	}

	if req.Index == nil {
		return nil, nil
	}

	product, err := c.catalog.Product(req.Category, *req.Index)
	if err != nil {
		return nil, err
	}

	return product.Images, nil
}

// persist записывает снимок в удалённое хранилище вместе с outbox-событием
// в одной транзакции, затем обновляет локальное зеркало. Ошибки персиста
// логируются и не отменяют применённую мутацию.
func (c *CatalogUseCase) persist(ctx context.Context, snapshot []byte, event *OutboxEvent) {
	const op = "CatalogUseCase.persist"

	txCtx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, c.dbPool)
	if err != nil {
		c.logger.Warnf("remote persist failed to start: %v", e.Wrap(op, err))
	} else {
		txCtx = context.WithValue(txCtx, "tx", tx.Transaction())

		err = c.collectionRepo.WriteCollection(txCtx, c.cfg.CollectionName, snapshot)
		if err == nil {
			_, err = c.outboxRepo.Create(txCtx, event)
		}

		switch {
		case err != nil:
			if tx.IsActive() {
				tx.Rollback(txCtx)
			}
			c.logger.Warnf("remote persist failed: %v", e.Wrap(op, err))
		default:
			if err := tx.Commit(txCtx); err != nil {
				c.logger.Warnf("remote persist commit failed: %v", e.Wrap(op, err))
			}
		}
	}

	if err := c.mirrorRepo.SaveSnapshot(ctx, snapshot); err != nil {
		c.logger.Warnf("mirror write failed: %v", e.Wrap(op, err))
	}
}

// changeEvent строит outbox-событие изменения каталога с JSON-нагрузкой.
func (c *CatalogUseCase) changeEvent(eventType OutboxEventType, category string) *OutboxEvent {
	eventID := uuid.NewString()

	payload, err := json.Marshal(CatalogChangeEvent{
		EventID:        eventID,
		EventTimestamp: time.Now().UnixNano(),
		Operation:      string(eventType),
		Category:       category,
	})
	if err != nil {
		c.logger.Warnf("failed to marshal change event payload: %v", err)
	}

	return NewOutboxEvent(eventID, eventType, category, payload)
}

// validateProduct проверяет корректность полей формы продукта.
func (c *CatalogUseCase) validateProduct(req *SaveProductReq) error {
	if strings.TrimSpace(req.Product.Name) == "" {
		return e.ErrProductNameRequired
	}

	if err := validateNumericField(req.Product.Price); err != nil {
		return err
	}
	if err := validateNumericField(req.Product.MRP); err != nil {
		return err
	}

	for _, link := range req.Product.Links {
		if !domain.ValidStore(link.Store) {
			return e.ErrInvalidStore
		}
	}

	if len(req.Images) > c.cfg.MaxImagesPerSave {
		return e.ErrTooManyImages
	}

	return nil
}

// validateNumericField допускает пустые значения; непустые обязаны быть
// неотрицательными числовыми строками.
func validateNumericField(value string) error {
	if value == "" {
		return nil
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return e.ErrInvalidPrice
	}

	if d.LessThan(decimal.Zero) {
		return e.ErrInvalidPrice
	}

	return nil
}
