package minio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/catalogdesk/go-backend/internal/cfg"
	"github.com/catalogdesk/go-backend/internal/domain"
	"github.com/catalogdesk/go-backend/internal/infrastructure"
	"github.com/catalogdesk/go-backend/internal/usecase"
	"github.com/catalogdesk/go-backend/pkg/e"
	"github.com/catalogdesk/go-backend/pkg/jitter"
	"github.com/catalogdesk/go-backend/pkg/logger"
)

// MinioInfrastructure управляет загрузкой и очисткой изображений каталога в MinIO.
type MinioInfrastructure struct {
	minioRepo         usecase.ImageRepository
	cfg               *cfg.MinIOCfg
	logger            logger.Logger
	shutdownCtx       context.Context
	wg                sync.WaitGroup
	uploadImagesLimit int
}

func NewMinioInfrastructure(
	minioRepo usecase.ImageRepository,
	cfg *cfg.MinIOCfg,
	uploadImagesLimit int,
	logger logger.Logger,
	shutdownCtx context.Context,
) *MinioInfrastructure {
	return &MinioInfrastructure{
		minioRepo:         minioRepo,
		cfg:               cfg,
		logger:            logger,
		shutdownCtx:       shutdownCtx,
		uploadImagesLimit: uploadImagesLimit,
	}
}

// UploadImages загружает изображения формы продукта параллельно с ограничением
// одновременных операций. Идентификаторы формируются из времени отправки формы
// и порядкового номера файла, что гарантирует уникальность внутри отправки и
// сохраняет порядок файлов в результате. Возврат происходит строго после
// завершения всех загрузок; при первой ошибке остальные отменяются, а уже
// загруженные объекты отправляются в фоновую очистку.
func (m *MinioInfrastructure) UploadImages(ctx context.Context, req *usecase.UploadImagesReq) (*usecase.UploadImagesRes, error) {
	const op = "MinioInfrastructure.UploadImages"

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	batch := time.Now().UnixMilli()
	ids := make([]string, len(req.Images))
	errCh := make(chan error, len(req.Images))
	sem := make(chan struct{}, m.uploadImagesLimit)

	var uploadWg sync.WaitGroup
	for i, image := range req.Images {
		i, image := i, image
		uploadWg.Add(1)
		go func() {
			defer uploadWg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			select {
			case <-ctx.Done():
				return
			default:
			}

			ext, err := infrastructure.GetExtensionFromMIME(image.MimeType)
			if err != nil {
				errCh <- fmt.Errorf("invalid mime type %s for %s: %w", image.MimeType, image.Name, err)
				return
			}

			imageID := fmt.Sprintf("%d_%d.%s", batch, i, ext)
			size := image.Size
			newImage := domain.NewImage(imageID, m.cfg.BucketName, imageID, image.Data, &size, &image.MimeType)

			key, err := m.minioRepo.Upload(ctx, newImage)
			if err != nil {
				errCh <- fmt.Errorf("upload %s failed: %w", image.Name, err)
				return
			}

			ids[i] = key
		}()
	}

	done := make(chan struct{})
	go func() {
		uploadWg.Wait()
		close(done)
	}()

	select {
	case err := <-errCh:
		cancel()
		uploadWg.Wait()
		m.CleanupImages(uploadedOf(ids))
		return nil, e.Wrap(op, err)
	case <-done:
	}

	select {
	case err := <-errCh:
		m.CleanupImages(uploadedOf(ids))
		return nil, e.Wrap(op, err)
	default:
	}

	return usecase.NewUploadImagesRes(ids), nil
}

// uploadedOf отфильтровывает слоты файлов, до загрузки которых дело не дошло.
func uploadedOf(ids []string) []string {
	uploaded := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			uploaded = append(uploaded, id)
		}
	}
	return uploaded
}

// CleanupImages запускает фоновую очистку указанных объектов MinIO
func (m *MinioInfrastructure) CleanupImages(ids []string) {
	if len(ids) == 0 {
		return
	}
	m.wg.Add(1)
	go m.cleanupUploadedKeys(ids)
}

// cleanupUploadedKeys удаляет указанные объекты из MinIO с экспоненциальной задержкой и jitter.
func (m *MinioInfrastructure) cleanupUploadedKeys(ids []string) {
	defer m.wg.Done()
	const (
		op          = "MinioInfrastructure.cleanupUploadedKeys"
		maxAttempts = 3
		baseBackoff = time.Second
		maxBackoff  = 10 * time.Second
	)

	m.logger.Infof("%s: Cleaning up uploaded keys", op)

	ctx, cancel := context.WithTimeout(m.shutdownCtx, 30*time.Second)
	defer cancel()

	for _, id := range ids {
		for attempt := 0; attempt < maxAttempts; attempt++ {
			if err := m.minioRepo.Delete(ctx, id); err == nil {
				break
			}

			select {
			case <-ctx.Done():
				m.logger.Warnf("cleanup interrupted by shutdown, key=%v", id)
				return
			default:
			}

			if attempt < maxAttempts-1 {
				sleepTime := jitter.ExponentialBackoff(baseBackoff, maxBackoff, attempt, jitter.DefaultJitter)

				select {
				case <-time.After(sleepTime):
				case <-ctx.Done():
					m.logger.Warnf("cleanup interrupted by shutdown during backoff, key=%v", id)
					return
				}
			}
		}
	}
}

// WaitForCleanup ожидает завершения всех фоновых задач очистки с учётом таймаута завершения приложения.
func (m *MinioInfrastructure) WaitForCleanup(shutdownTimeoutCtx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownTimeoutCtx.Done():
		return fmt.Errorf("minio cleanup timeout during shutdown: %w", shutdownTimeoutCtx.Err())
	}
}
