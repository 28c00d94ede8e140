package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("EMBRO_SESSION_DB_PATH", t.TempDir()+"/session.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "dev" {
		t.Fatalf("expected App.Env dev, got %q", cfg.App.Env)
	}
	if cfg.API.BaseURL != "http://localhost:8000/api" {
		t.Fatalf("unexpected API base URL: %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 120*time.Second {
		t.Fatalf("expected 120s timeout, got %v", cfg.API.Timeout)
	}
	if cfg.API.GenerateTimeout != 180*time.Second {
		t.Fatalf("expected 180s generate timeout, got %v", cfg.API.GenerateTimeout)
	}
	if cfg.Checkout.OrdersRedirectDelay != 1500*time.Millisecond {
		t.Fatalf("unexpected redirect delay: %v", cfg.Checkout.OrdersRedirectDelay)
	}
	if cfg.Defaults.MachineBrand != "Brother" || cfg.Defaults.Format != "pes" || cfg.Defaults.EmbroiderySizeCm != 10 {
		t.Fatalf("unexpected defaults: %+v", cfg.Defaults)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("EMBRO_SESSION_DB_PATH", t.TempDir()+"/session.db")
	t.Setenv(EnvAppEnv, "prod")
	t.Setenv(EnvAPIBaseURL, "https://studio.example.com/api")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if !cfg.App.IsProd() {
		t.Fatalf("expected prod env")
	}
	if cfg.API.BaseURL != "https://studio.example.com/api" {
		t.Fatalf("unexpected base URL %q", cfg.API.BaseURL)
	}
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
	if prodConfig.IsDev() {
		t.Fatalf("expected IsDev false for %q", prodConfig.Env)
	}
}
