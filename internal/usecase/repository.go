package usecase

import (
	"context"

	"github.com/catalogdesk/go-backend/internal/domain"
)

// CollectionRepository — удалённое документное хранилище каталога.
// ReadCollection возвращает e.ErrNoRemoteData, если документа ещё нет.
type CollectionRepository interface {
	WriteCollection(ctx context.Context, name string, document []byte) error
	ReadCollection(ctx context.Context, name string) ([]byte, error)
}

// MirrorRepository — локальное durable-зеркало каталога и настроек оператора.
// LoadSnapshot возвращает e.ErrNoSnapshot при отсутствии зеркала.
type MirrorRepository interface {
	SaveSnapshot(ctx context.Context, document []byte) error
	LoadSnapshot(ctx context.Context) ([]byte, error)
	SaveTheme(ctx context.Context, theme string) error
	LoadTheme(ctx context.Context) (string, error)
}

// ImageRepository — хранилище байтов изображений, адресуемое непрозрачными идентификаторами.
type ImageRepository interface {
	Upload(ctx context.Context, image *domain.Image) (string, error)
	Fetch(ctx context.Context, id string) ([]byte, string, error)
	Delete(ctx context.Context, id string) error
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
}
