package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/catalogdesk/go-backend/internal/cfg"
	"github.com/catalogdesk/go-backend/internal/compress"
	v1Http "github.com/catalogdesk/go-backend/internal/delivery/v1/http"
	"github.com/catalogdesk/go-backend/internal/infrastructure/kafka"
	minioInfra "github.com/catalogdesk/go-backend/internal/infrastructure/minio"
	s3Repo "github.com/catalogdesk/go-backend/internal/repository/minio"
	"github.com/catalogdesk/go-backend/internal/repository/pgdb"
	"github.com/catalogdesk/go-backend/internal/repository/redis"
	"github.com/catalogdesk/go-backend/internal/usecase"
	"github.com/catalogdesk/go-backend/pkg/clients"
	"github.com/catalogdesk/go-backend/pkg/closer"
	"github.com/catalogdesk/go-backend/pkg/e"
	"github.com/catalogdesk/go-backend/pkg/logger"
	"github.com/catalogdesk/go-backend/pkg/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

// Run собирает зависимости, выполняет стартовую загрузку каталога,
// запускает HTTP-сервер и outbox-воркер и обеспечивает graceful shutdown.
func Run(cfg *config.Config, log logger.Logger) error {
	db, err := initPGDB(log, cfg)
	if err != nil {
		log.Errorf(err, "failed to initialize database")
		return err
	}

	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		log.Errorf(err, "failed to initialize minio client")
		return err
	}

	minioCtx, minioCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := clients.EnsureBucket(minioCtx, minioClient, cfg.Minio.BucketName); err != nil {
		minioCancel()
		log.Errorf(err, "failed to initialize MinIO bucket")
		return err
	}
	minioCancel()

	imageRepo := s3Repo.NewImageRepo(minioClient, cfg.Minio)

	redisClient := clients.NewRedisClient(cfg.Redis)
	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer redisCancel()
	if err := redisClient.Ping(redisCtx); err != nil {
		log.Errorf(err, "failed to connect to redis")
		return err
	}
	mirrorRepo := redis.NewMirrorRepo(redisClient, cfg.Redis, log)

	producer, err := kafka.NewProducer(log, cfg.Kafka)
	if err != nil {
		log.Errorf(err, "failed to initialize kafka producer")
		return err
	}
	if err := producer.EnsureTopic(10 * time.Second); err != nil {
		log.Errorf(err, "failed to ensure kafka topic")
		return err
	}

	// контекст фоновой очистки изображений, живёт до конца shutdown
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	collectionRepo := pgdb.NewCollectionRepo(db.Pool)
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool)
	imagesInfra := minioInfra.NewMinioInfrastructure(imageRepo, cfg.Minio, cfg.Catalog.UploadImagesLimit, log, cleanupCtx)

	catalogUC := usecase.NewCatalogUC(
		collectionRepo,
		mirrorRepo,
		imageRepo,
		outboxRepo,
		imagesInfra,
		compress.NewCompressor(),
		db.Pool,
		log,
		cfg.Catalog,
	)

	// стартовая последовательность: удалённый документ → зеркало → пустой каталог
	loadCtx, loadCancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = catalogUC.Load(loadCtx)
	loadCancel()
	if err != nil {
		log.Errorf(err, "failed to load catalog")
		return err
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	worker := kafka.NewOutboxWorker(outboxRepo, log, producer, db.Dsn)
	worker.Start(workerCtx)

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, log)
	router.Init(catalogUC)

	httpSrv := v1Http.NewServer(r, cfg.Http)

	errCh := make(chan error, 1)
	go func() {
		log.Infof("HTTP server started on port %s", cfg.Http.Port)
		if err := httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf(err, "HTTP server failed")
			errCh <- err
		}
	}()

	// === Ожидание сигнала или ошибки ===
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		log.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		log.Infof("Received shutdown signal, stopping gracefully...")
	}

	// === Graceful shutdown ===
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpSrv.Stop(shutdownCtx); err != nil {
		log.Errorf(err, "HTTP server shutdown error")
	} else {
		log.Infof("HTTP server stopped")
	}

	workerCancel()
	worker.Stop()
	log.Infof("Outbox worker stopped")

	done := make(chan error, 1)
	go func() {
		done <- imagesInfra.WaitForCleanup(shutdownCtx)
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Warnf("MinIO cleanup error: %v", err)
		} else {
			log.Infof("MinIO cleanup completed")
		}
	case <-time.After(5 * time.Second): // локальный таймаут ожидания cleanup
		log.Warnf("MinIO cleanup did not finish before shutdown, some temporary objects may remain")
	}

	// Ресурсы закрываются в порядке LIFO
	cl := closer.NewCloser(2 * time.Second)
	cl.Add(func(_ context.Context) error {
		db.Close()
		return nil
	})
	cl.Add(func(_ context.Context) error {
		return redisClient.Client.Close()
	})
	cl.Add(func(_ context.Context) error {
		return producer.Close()
	})

	if err := cl.Close(shutdownCtx); err != nil {
		log.Warnf("resource close error: %v", err)
	}

	log.Infof("Application shutdown complete")
	return appErr
}

func initPGDB(log logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		log.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(log); err != nil {
		log.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(); err != nil {
		log.Errorf(err, "failed to ping database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
