package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"legacy-migrator/api/router"
	"legacy-migrator/cmd/internal/app"
	"legacy-migrator/config"
)

// @title           Legacy Migrator API
// @version         1.0
// @description     Migrate legacy video content into enhanced fields and follow progress
// @BasePath        /api/v1
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)
	gin.SetMode(gin.ReleaseMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.Build(ctx, cfg)
	if err != nil {
		config.Logger.Errorf("failed to start: %v", err)
		os.Exit(1)
	}
	defer a.Close()

	r := router.New(a.Service, router.Options{
		Server:            cfg.Server,
		DefaultChunkLimit: cfg.Migration.DefaultChunkLimit,
		Health:            app.Health,
	})
	srv := &http.Server{Addr: cfg.Server.Addr, Handler: r}

	go func() {
		config.Logger.Infof("legacy-migrator api listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			config.Logger.Errorf("http server error: %v", err)
			cancel()
		}
	}()

	// Graceful shutdown 설정
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
	case <-ctx.Done():
	}
	config.Logger.Info("shutting down api server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		config.Logger.Errorf("http server shutdown: %v", err)
	}
	config.Logger.Info("api server stopped")
}
