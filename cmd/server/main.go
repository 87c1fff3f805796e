package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"userdir/internal/config"
	apphttp "userdir/internal/http"
	"userdir/internal/notify"
	"userdir/internal/repository"
	"userdir/internal/repository/jsonfile"
	"userdir/internal/repository/sqlite"
	"userdir/internal/service"
	"userdir/internal/upload"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	userRepo, cleanup, err := buildRepository(cfg)
	if err != nil {
		logger.Fatalf("open user store: %v", err)
	}
	defer cleanup()

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user store: %v", err)
	}

	var notifier notify.Notifier = notify.Noop{}
	if cfg.Notify.Enabled {
		notifier = notify.NewDesktop()
	}

	userService := service.NewUserService(userRepo, notifier, logger)
	receiver := upload.NewReceiver(cfg.Upload.Dir)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(userService, receiver, logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s (backing %s)", cfg.Server.Addr, cfg.Storage.Backing)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func buildRepository(cfg config.Config) (repository.UserRepository, func(), error) {
	switch cfg.Storage.Backing {
	case config.BackingJSONFile:
		return jsonfile.NewUserRepository(cfg.JSONFile.Path), func() {}, nil
	default:
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewUserRepository(db), func() { _ = db.Close() }, nil
	}
}
