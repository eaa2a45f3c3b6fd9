package minio

import (
	"bytes"
	"context"
	"io"

	"github.com/catalogdesk/go-backend/internal/cfg"
	"github.com/catalogdesk/go-backend/internal/domain"
	"github.com/catalogdesk/go-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

// ImageRepo реализует хранилище изображений поверх MinIO.
// Ключ объекта совпадает с идентификатором изображения из каталога.
type ImageRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewImageRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *ImageRepo {
	return &ImageRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// Upload загружает изображение в MinIO и возвращает ключ объекта.
func (i *ImageRepo) Upload(ctx context.Context, image *domain.Image) (string, error) {
	reader := bytes.NewReader(image.Bytes)

	info, err := i.mc.PutObject(ctx, i.cfg.BucketName, image.ObjectKey, reader, *image.Size, minio.PutObjectOptions{
		ContentType: *image.ContentType,
	})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return info.Key, nil
}

// Fetch возвращает байты изображения и его content type по идентификатору.
func (i *ImageRepo) Fetch(ctx context.Context, id string) ([]byte, string, error) {
	obj, err := i.mc.GetObject(ctx, i.cfg.BucketName, id, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", e.Wrap(whereami.WhereAmI(), err)
	}
	defer obj.Close()

	stat, err := obj.Stat()
	if err != nil {
		return nil, "", e.Wrap(whereami.WhereAmI(), err)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, "", e.Wrap(whereami.WhereAmI(), err)
	}

	return data, stat.ContentType, nil
}

// Delete удаляет объект из MinIO по указанному ключу.
func (i *ImageRepo) Delete(ctx context.Context, id string) error {
	if err := i.mc.RemoveObject(ctx, i.cfg.BucketName, id, minio.RemoveObjectOptions{}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
