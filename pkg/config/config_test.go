package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "prod" {
		t.Fatalf("expected App.Env to be prod, got %q", cfg.App.Env)
	}
	if cfg.API.BaseURL != "https://citycare.thynxai.cloud/api" {
		t.Fatalf("unexpected API base URL %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 15*time.Second {
		t.Fatalf("expected default timeout 15s, got %v", cfg.API.Timeout)
	}
	if cfg.Checkout.PlatformFeePaisa != 4900 {
		t.Fatalf("expected fee 4900 paisa, got %d", cfg.Checkout.PlatformFeePaisa)
	}
	if cfg.LocalStore.Backend != LocalStoreMemory {
		t.Fatalf("expected memory local store, got %q", cfg.LocalStore.Backend)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 {
		t.Fatalf("expected two default origins, got %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvAPITimeout, "3s")
	t.Setenv(EnvPlatformFee, "0")
	t.Setenv(EnvLocalStore, "REDIS")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.API.Timeout != 3*time.Second {
		t.Fatalf("expected 3s timeout, got %v", cfg.API.Timeout)
	}
	if cfg.Checkout.PlatformFeePaisa != 0 {
		t.Fatalf("expected fee override, got %d", cfg.Checkout.PlatformFeePaisa)
	}
	if cfg.LocalStore.Backend != LocalStoreRedis {
		t.Fatalf("expected normalized redis backend, got %q", cfg.LocalStore.Backend)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_LocalStoreRequirements(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvLocalStore, LocalStoreSQL)
	if _, err := Load(); err == nil {
		t.Fatal("expected sql backend without DSN to fail")
	}

	t.Setenv(EnvDBDSN, "file::memory:")
	t.Setenv(EnvDBDriver, "sqlite")
	if _, err := Load(); err != nil {
		t.Fatalf("expected sql backend with DSN to load, got %v", err)
	}

	t.Setenv(EnvLocalStore, "floppy")
	if _, err := Load(); err == nil {
		t.Fatal("expected unknown backend to fail")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "prod")
	t.Setenv(EnvPort, "8081")
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
}

func TestCheckoutLocationFallsBackToUTC(t *testing.T) {
	cfg := CheckoutConfig{Timezone: "Not/AZone"}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC fallback")
	}
}

func TestLoad_NormalizesLocalStoreBackend(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvLocalStore, "  Sql ")
	t.Setenv(EnvDBDSN, "file::memory:")
	t.Setenv(EnvDBDriver, "sqlite")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.LocalStore.Backend != LocalStoreSQL {
		t.Fatalf("expected normalized sql backend, got %q", cfg.LocalStore.Backend)
	}
}
