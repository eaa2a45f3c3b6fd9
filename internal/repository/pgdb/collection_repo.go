package pgdb

import (
	"context"
	"errors"
	"time"

	"github.com/catalogdesk/go-backend/pkg/e"
	"github.com/catalogdesk/go-backend/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// CollectionRepo реализует удалённое документное хранилище каталога поверх PostgreSQL.
// Каждая коллекция — одна jsonb-строка, адресуемая именем.
type CollectionRepo struct {
	pool *pgxpool.Pool
}

func NewCollectionRepo(pool *pgxpool.Pool) *CollectionRepo {
	return &CollectionRepo{
		pool: pool,
	}
}

// WriteCollection идемпотентно записывает документ коллекции целиком.
// Выполняется в транзакции из контекста вместе с outbox-событием.
func (c *CollectionRepo) WriteCollection(ctx context.Context, name string, document []byte) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO collections (name, document, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name)
		DO UPDATE SET
			document = EXCLUDED.document,
			updated_at = NOW();
	`

	if _, err := tx.Exec(ctx, query, name, document); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// ReadCollection возвращает документ коллекции.
// Отсутствие документа — e.ErrNoRemoteData, а не внутренняя ошибка.
func (c *CollectionRepo) ReadCollection(ctx context.Context, name string) ([]byte, error) {
	query := `
		SELECT document FROM collections WHERE name = $1;
	`

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var document []byte
	if err := c.pool.QueryRow(ctx, query, name).Scan(&document); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.ErrNoRemoteData
		}

		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return document, nil
}
