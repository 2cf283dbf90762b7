package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/kdninv/nota-api/internal/application/port"
	"github.com/kdninv/nota-api/internal/application/service"
	"github.com/kdninv/nota-api/internal/auth"
	"github.com/kdninv/nota-api/internal/config"
	"github.com/kdninv/nota-api/internal/infrastructure/notification"
	"github.com/kdninv/nota-api/internal/infrastructure/persistence/repository"
	"github.com/kdninv/nota-api/internal/infrastructure/persistence/sqlite"
	"github.com/kdninv/nota-api/internal/infrastructure/storage"
	"github.com/kdninv/nota-api/internal/infrastructure/worker"
	httpapi "github.com/kdninv/nota-api/internal/interfaces/http"
	"github.com/kdninv/nota-api/pkg/database"
	"github.com/kdninv/nota-api/pkg/utils"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting nota approval service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	sqliteDB := sqlite.NewDB(db.DB, logger)

	// Repositories
	pengajuanRepo := repository.NewPengajuanRepository(sqliteDB, logger)
	userRepo := repository.NewUserRepository(sqliteDB, logger)
	rekeningRepo := repository.NewRekeningRepository(sqliteDB, logger)
	pushRepo := repository.NewPushSubscriptionRepository(sqliteDB, logger)
	notaSequence := repository.NewNotaCounterRepository(sqliteDB, logger)

	workers := worker.NewManager(logger)

	// Push delivery is optional; without VAPID keys transitions simply go
	// unannounced.
	var notifier port.Notifier
	if cfg.PushEnabled() {
		sender := notification.NewWebPushSender(
			cfg.Push.VAPIDPublicKey,
			cfg.Push.VAPIDPrivateKey,
			cfg.Push.Subscriber,
			logger,
		)
		dispatcher := notification.NewDispatcher(pushRepo, sender, logger)
		workers.Register(dispatcher)
		notifier = dispatcher
	} else {
		logger.Warn("VAPID keys not configured, push notifications disabled")
		notifier = notification.NewNoopNotifier()
	}

	// Services
	kvLogger := utils.NewKVLogger(logger)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret)

	services := httpapi.Services{
		Auth:      service.NewAuthService(userRepo, tokens, kvLogger),
		Pengajuan: service.NewPengajuanService(pengajuanRepo, userRepo, notaSequence, sqliteDB, notifier, kvLogger),
		Users:     service.NewUserService(userRepo, kvLogger),
		Rekening:  service.NewRekeningService(rekeningRepo, kvLogger),
		Push:      service.NewPushService(pushRepo, kvLogger),
		Folder:    cfg.Cloudinary.Folder,
	}

	if cfg.Cloudinary.URL != "" {
		store, err := storage.NewCloudinaryStore(cfg.Cloudinary.URL, logger)
		if err != nil {
			logger.Fatal("Failed to initialize attachment store", zap.Error(err))
		}
		services.Store = store
	} else {
		logger.Warn("Cloudinary not configured, attachment uploads disabled")
	}

	server := httpapi.NewServer(httpapi.ServerConfig{
		Host:          cfg.Server.Host,
		Port:          cfg.Server.Port,
		ReadTimeout:   cfg.Server.ReadTimeout,
		WriteTimeout:  cfg.Server.WriteTimeout,
		SecureCookies: cfg.Server.SecureCookies,
	}, services, tokens, kvLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := workers.StartAll(ctx); err != nil {
		logger.Fatal("Failed to start workers", zap.Error(err))
	}

	// Start blocks until the context is cancelled, then shuts down cleanly.
	if err := server.Start(ctx); err != nil {
		logger.Error("HTTP server error", zap.Error(err))
	}

	if err := workers.StopAll(); err != nil {
		logger.Error("Failed to stop workers", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
