package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/stitchforge/embroidery-studio/pkg/config"
	"github.com/stitchforge/embroidery-studio/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "studio"})

	if err := godotenv.Load(); err != nil {
		logg.Debug(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "studio",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := execute(cfg, logg); err != nil {
		os.Exit(1)
	}
}
