package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_RiotRequiresAPIKeyWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("RIOT_ENABLED", "true")
	t.Setenv("RIOT_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when RIOT_ENABLED=true without RIOT_API_KEY")
	}
}

func TestLoad_FaceitRequiresTokenWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("FACEIT_ENABLED", "true")
	t.Setenv("FACEIT_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when FACEIT_ENABLED=true without FACEIT_TOKEN")
	}
}

func TestLoad_ProdRequiresInternalJobToken(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("INTERNAL_JOB_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when APP_ENV=prod without INTERNAL_JOB_TOKEN")
	}
}

func TestLoad_ProviderConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("RIOT_ENABLED", "true")
	t.Setenv("RIOT_API_KEY", "rgapi-key-123")
	t.Setenv("RIOT_TIMEOUT", "5s")
	t.Setenv("RIOT_MAX_RETRIES", "3")
	t.Setenv("FACEIT_ENABLED", "true")
	t.Setenv("FACEIT_TOKEN", "faceit-token-123")
	t.Setenv("FACEIT_CIRCUIT_FAILURE_COUNT", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.RiotEnabled || cfg.RiotAPIKey != "rgapi-key-123" {
		t.Fatalf("unexpected riot config: %+v", cfg)
	}
	if cfg.RiotTimeout != 5*time.Second {
		t.Fatalf("unexpected RiotTimeout: %s", cfg.RiotTimeout)
	}
	if cfg.RiotMaxRetries != 3 {
		t.Fatalf("unexpected RiotMaxRetries: %d", cfg.RiotMaxRetries)
	}
	if !cfg.FaceitEnabled || cfg.FaceitToken != "faceit-token-123" {
		t.Fatalf("unexpected faceit config: %+v", cfg)
	}
	if cfg.FaceitCircuitFailureCount != 7 {
		t.Fatalf("unexpected FaceitCircuitFailureCount: %d", cfg.FaceitCircuitFailureCount)
	}
	if cfg.FaceitBaseURL != "https://open.faceit.com/data/v4" {
		t.Fatalf("unexpected FaceitBaseURL: %q", cfg.FaceitBaseURL)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ServiceName != "matchops-api" {
		t.Fatalf("unexpected ServiceName: %q", cfg.ServiceName)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected HTTPAddr: %q", cfg.HTTPAddr)
	}
	if cfg.DBURL != "" {
		t.Fatalf("expected empty DBURL by default, got %q", cfg.DBURL)
	}
	if cfg.ImportMaxWorkers != 4 {
		t.Fatalf("unexpected ImportMaxWorkers: %d", cfg.ImportMaxWorkers)
	}
	if cfg.CacheTTL != time.Minute {
		t.Fatalf("unexpected CacheTTL: %s", cfg.CacheTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected CORSAllowedOrigins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_ImportWorkersValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("IMPORT_MAX_WORKERS", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for IMPORT_MAX_WORKERS=0")
	}
}
