package minio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/catalogdesk/go-backend/internal/cfg"
	"github.com/catalogdesk/go-backend/internal/domain"
	"github.com/catalogdesk/go-backend/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)        {}
func (nopLogger) Infof(string, ...any)         {}
func (nopLogger) Warnf(string, ...any)         {}
func (nopLogger) Errorf(error, string, ...any) {}

type fakeImageRepo struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	failOn  string // имя файла, загрузка которого падает
}

func newFakeImageRepo() *fakeImageRepo {
	return &fakeImageRepo{objects: make(map[string][]byte)}
}

func (f *fakeImageRepo) Upload(_ context.Context, image *domain.Image) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failOn != "" && strings.Contains(string(image.Bytes), f.failOn) {
		return "", errors.New("upload rejected")
	}

	f.objects[image.ID] = image.Bytes
	return image.ID, nil
}

func (f *fakeImageRepo) Fetch(_ context.Context, id string) ([]byte, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, ok := f.objects[id]
	if !ok {
		return nil, "", fmt.Errorf("object %s not found", id)
	}
	return data, "image/jpeg", nil
}

func (f *fakeImageRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.objects, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func newInfra(repo usecase.ImageRepository) *MinioInfrastructure {
	return NewMinioInfrastructure(repo, &cfg.MinIOCfg{BucketName: "catalog"}, 4, nopLogger{}, context.Background())
}

func jpegImage(name, payload string) usecase.ProductImage {
	return *usecase.NewProductImage([]byte(payload), "image/jpeg", int64(len(payload)), name)
}

func TestUploadImages_OrderedDistinctIDs(t *testing.T) {
	repo := newFakeImageRepo()
	infra := newInfra(repo)

	req := usecase.NewUploadImagesReq("Phones", []usecase.ProductImage{
		jpegImage("a.jpg", "payload-a"),
		jpegImage("b.jpg", "payload-b"),
		jpegImage("c.jpg", "payload-c"),
	})

	res, err := infra.UploadImages(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.ImageIDs, 3)

	// идентификаторы соответствуют порядку файлов формы и попарно различны
	seen := make(map[string]bool)
	for i, id := range res.ImageIDs {
		assert.True(t, strings.HasSuffix(id, fmt.Sprintf("_%d.jpg", i)), "id %q at position %d", id, i)
		assert.False(t, seen[id])
		seen[id] = true
	}

	assert.Len(t, repo.objects, 3)
}

func TestUploadImages_FailureCleansUploaded(t *testing.T) {
	repo := newFakeImageRepo()
	repo.failOn = "poison"
	infra := newInfra(repo)

	req := usecase.NewUploadImagesReq("Phones", []usecase.ProductImage{
		jpegImage("ok.jpg", "payload-ok"),
		jpegImage("bad.jpg", "poison"),
	})

	_, err := infra.UploadImages(context.Background(), req)
	require.Error(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, infra.WaitForCleanup(ctx))

	// успешно загруженные объекты этой отправки удалены
	assert.Empty(t, repo.objects)
}

func TestUploadImages_UnknownMIME(t *testing.T) {
	repo := newFakeImageRepo()
	infra := newInfra(repo)

	req := usecase.NewUploadImagesReq("Phones", []usecase.ProductImage{
		*usecase.NewProductImage([]byte("plain text"), "text/plain", 10, "notes.txt"),
	})

	_, err := infra.UploadImages(context.Background(), req)
	assert.Error(t, err)
}

func TestCleanupImages_NoIDsIsNoop(t *testing.T) {
	repo := newFakeImageRepo()
	infra := newInfra(repo)

	infra.CleanupImages(nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, infra.WaitForCleanup(ctx))
	assert.Empty(t, repo.deleted)
}
