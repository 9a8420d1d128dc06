package main

import (
	"context"
	"log"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"courtview/internal/config"
	"courtview/internal/http/handler"
	"courtview/internal/logging"
	"courtview/internal/otel"
	"courtview/internal/page"
	"courtview/internal/server"
	"courtview/internal/service"
	"courtview/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := logging.Default(cfg.Location())

	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Error("tracing_shutdown_failed", err, nil)
		}
	}()

	// The asset root and the page template must exist before accepting traffic
	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("failed to open asset store: %v", err)
	}

	pages, err := page.New(cfg.TemplateDir, page.Data{
		Title:        cfg.PageTitle,
		StaticPrefix: handler.StaticPrefix,
	})
	if err != nil {
		log.Fatalf("failed to load page template: %v", err)
	}

	srv, err := server.New(cfg, server.Deps{
		Pages:  pages,
		Assets: service.NewAssetService(store),
		Log:    logger,
	})
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}

	if err := srv.Start(ctx); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

func openStore(cfg *config.AppConfig) (storage.Storage, error) {
	if cfg.UseObjectStorage() {
		return storage.NewMinIO(cfg.MinIO)
	}
	return storage.NewLocal(cfg.StaticDir)
}
