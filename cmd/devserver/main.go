package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/stitchforge/embroidery-studio/internal/devserver"
	"github.com/stitchforge/embroidery-studio/pkg/config"
	"github.com/stitchforge/embroidery-studio/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "devserver"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "devserver",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	server, err := devserver.New(logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create dev server", err)
		os.Exit(1)
	}

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": cfg.DevServer.Addr,
	})
	logg.Info(ctx, "starting stub backend")

	httpServer := &http.Server{
		Addr:    cfg.DevServer.Addr,
		Handler: server,
	}

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "stub backend stopped unexpectedly", err)
		os.Exit(1)
	}
}
