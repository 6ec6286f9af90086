package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat_economy/internal/app"
	"chat_economy/internal/audit"
	"chat_economy/internal/catalog"
	"chat_economy/internal/config"
	"chat_economy/internal/cooldown"
	"chat_economy/internal/pkg/logger"
	"chat_economy/internal/service"
	"chat_economy/internal/storage"

	"go.uber.org/zap"
)

func main() {
	var l *logger.Logger
	var err error
	if l, err = logger.CreateLogger(config.LogLevel); err != nil {
		log.Fatal("Failed to create logger:", err)
	}

	ctx := context.Background()

	storage, err := openStorage(ctx, l)
	if err != nil {
		log.Fatal(err)
	}
	defer storage.Close()

	redisClient, err := cooldown.NewRedisClient(ctx, config.RedisAddr, config.RedisPassword, config.RedisDB)
	if err != nil {
		log.Fatal(err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	tracker := cooldown.NewTracker(storage, redisClient, l)

	var archive *audit.Archive
	if config.AuditArchiveDir != "" {
		archive = audit.NewArchive(config.AuditArchiveDir)
	}
	auditLog := audit.NewLogger(storage, archive, l)
	defer auditLog.Close()

	app := app.NewApp(storage, tracker, auditLog, l,
		app.WithDefaultSettings(config.Settings()),
		app.WithStartingCoins(config.StartingCoins),
		app.WithStrictInvariants(config.StrictInvariants),
		app.WithDispatcherKeyHash(config.DispatcherKeyHash),
	)
	service := service.NewService(app, config.ServerRunAddress, l)

	const readHeaderTimeout = 5 * time.Second
	server := &http.Server{Addr: service.RunAddress(), Handler: service.NewRouter(), ReadHeaderTimeout: readHeaderTimeout}

	serverCtx, serverStopCtx := context.WithCancel(context.Background())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		const shutdownTimeout = 30 * time.Second
		shutdownCtx, cancel := context.WithTimeout(serverCtx, shutdownTimeout)
		defer cancel()

		go func() {
			<-shutdownCtx.Done()
			if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	l.Info("starting server",
		zap.String("address", service.RunAddress()),
		zap.String("storage", config.StorageDriver),
		zap.Bool("redis_cooldowns", redisClient != nil))

	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}

	<-serverCtx.Done()
}

// openStorage connects the configured store. PostgreSQL is migrated on start; the in-memory
// store is seeded with the catalog and settings since it starts empty.
func openStorage(ctx context.Context, l *logger.Logger) (storage.Storage, error) {
	if config.StorageDriver == config.DriverMemory {
		items, err := catalog.Load(config.CatalogPath)
		if err != nil {
			return nil, err
		}
		memory := storage.NewMemory()
		if err := memory.UpsertItems(ctx, items); err != nil {
			return nil, err
		}
		if err := memory.SaveSettings(ctx, config.Settings()); err != nil {
			return nil, err
		}
		return memory, nil
	}

	postgresql, err := storage.NewPostgreSQL(config.DatabaseURI, l)
	if err != nil {
		return nil, err
	}
	if err := postgresql.Migrate(ctx); err != nil {
		postgresql.Close()
		return nil, err
	}
	return postgresql, nil
}
