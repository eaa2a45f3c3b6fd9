package redis

import (
	"context"
	"errors"

	"github.com/catalogdesk/go-backend/internal/cfg"
	"github.com/catalogdesk/go-backend/pkg/clients"
	"github.com/catalogdesk/go-backend/pkg/e"
	"github.com/catalogdesk/go-backend/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

const (
	snapshotKey = "catalog:snapshot"
	themeKey    = "catalog:theme"
)

// MirrorRepo реализует локальное durable-зеркало каталога поверх Redis:
// сквозная запись при каждой мутации, чтение — при недоступности удалённого
// хранилища на старте. Записи без TTL — зеркало живёт между сессиями.
type MirrorRepo struct {
	client *clients.RedisClient
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewMirrorRepo(client *clients.RedisClient, cfg *cfg.RedisCfg, logger logger.Logger) *MirrorRepo {
	return &MirrorRepo{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// SaveSnapshot сохраняет сериализованный каталог под фиксированным ключом.
func (m *MirrorRepo) SaveSnapshot(ctx context.Context, document []byte) error {
	if err := m.client.Client.Set(ctx, snapshotKey, document, 0).Err(); err != nil {
		m.logger.Warnf("Redis SET failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// LoadSnapshot читает зеркальный снимок каталога.
// Отсутствие ключа — e.ErrNoSnapshot.
func (m *MirrorRepo) LoadSnapshot(ctx context.Context) ([]byte, error) {
	document, err := m.client.Client.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return nil, e.ErrNoSnapshot
		}

		m.logger.Warnf("Redis GET failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return document, nil
}

// SaveTheme сохраняет предпочтение темы оператора.
func (m *MirrorRepo) SaveTheme(ctx context.Context, theme string) error {
	if err := m.client.Client.Set(ctx, themeKey, theme, 0).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// LoadTheme читает предпочтение темы. Отсутствие ключа — e.ErrNoSnapshot.
func (m *MirrorRepo) LoadTheme(ctx context.Context) (string, error) {
	theme, err := m.client.Client.Get(ctx, themeKey).Result()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return "", e.ErrNoSnapshot
		}

		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return theme, nil
}
