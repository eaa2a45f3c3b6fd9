package usecase

import (
	"time"

	"github.com/catalogdesk/go-backend/internal/domain"
)

// CATALOG USECASE

// SaveProductReq — запрос на создание или редактирование продукта.
// Index == nil означает создание (добавление в конец списка категории),
// иначе — замену продукта по индексу.
type SaveProductReq struct {
	Category string
	Index    *int
	Product  domain.Product
	Images   []ProductImage
}

// ProductImage представляет изображение, загруженное через multipart/form-data.
type ProductImage struct {
	Data     []byte // байты изображения
	MimeType string // Content-Type из multipart (image/jpeg)
	Size     int64  // фактический размер в байтах
	Name     string // оригинальное имя файла (для логов)
}

// ProductDetail — продукт с предпросмотром его изображений для формы редактирования.
type ProductDetail struct {
	Category string         `json:"category"`
	Index    int            `json:"index"`
	Product  domain.Product `json:"product"`
	Previews []ImagePreview `json:"previews,omitempty"`
}

// ImagePreview — изображение продукта, закодированное для предпросмотра.
type ImagePreview struct {
	ID          string `json:"id"`
	ContentType string `json:"contentType"`
	Data        string `json:"data"` // base64
}

// INFRASTRUCTURE

// UploadImagesReq — запрос на загрузку изображений продукта.
type UploadImagesReq struct {
	Category string
	Images   []ProductImage
}

// UploadImagesRes — результат загрузки изображений: идентификаторы
// в порядке исходных файлов.
type UploadImagesRes struct {
	ImageIDs []string
}

// WriteRawMessageReq — готовая полезная нагрузка для брокера сообщений.
type WriteRawMessageReq struct {
	Key     string
	Payload []byte
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

const (
	EventCategoryAdded   OutboxEventType = "category_added"
	EventCategoryRenamed OutboxEventType = "category_renamed"
	EventCategoryDeleted OutboxEventType = "category_deleted"
	EventProductAdded    OutboxEventType = "product_added"
	EventProductUpdated  OutboxEventType = "product_updated"
	EventProductDeleted  OutboxEventType = "product_deleted"
	EventCatalogReplaced OutboxEventType = "catalog_replaced"
)

// OutboxEvent — запись outbox, фиксируемая в одной транзакции с документом каталога.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	Category    string
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// CatalogChangeEvent — полезная нагрузка события изменения каталога (JSON в Kafka).
type CatalogChangeEvent struct {
	EventID        string `json:"event_id"`
	EventTimestamp int64  `json:"event_timestamp"`
	Operation      string `json:"operation"`
	Category       string `json:"category,omitempty"`
}

// MAPPERS

func NewProductImage(data []byte, mimeType string, size int64, name string) *ProductImage {
	return &ProductImage{
		Data:     data,
		MimeType: mimeType,
		Size:     size,
		Name:     name,
	}
}

func NewSaveProductReq(category string, index *int, product domain.Product, images []ProductImage) *SaveProductReq {
	return &SaveProductReq{
		Category: category,
		Index:    index,
		Product:  product,
		Images:   images,
	}
}

func NewUploadImagesReq(category string, images []ProductImage) *UploadImagesReq {
	return &UploadImagesReq{
		Category: category,
		Images:   images,
	}
}

func NewUploadImagesRes(imageIDs []string) *UploadImagesRes {
	return &UploadImagesRes{
		ImageIDs: imageIDs,
	}
}

func NewWriteRawMessageReq(key string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:     key,
		Payload: payload,
	}
}

func NewOutboxEvent(eventID string, eventType OutboxEventType, category string, payload []byte) *OutboxEvent {
	return &OutboxEvent{
		EventID:   eventID,
		EventType: eventType,
		Category:  category,
		Payload:   payload,
		Status:    Pending,
		CreatedAt: time.Now().UTC(),
	}
}
