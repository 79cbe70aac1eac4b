package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DBDriver != "sqlite" {
		t.Errorf("DBDriver = %q", cfg.DBDriver)
	}
	if cfg.SQLitePath != "dashboard.db" {
		t.Errorf("SQLitePath = %q", cfg.SQLitePath)
	}
	if cfg.Timezone != "Asia/Bangkok" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %s", cfg.CacheTTL)
	}
	if cfg.LossThreshold != 0.10 || cfg.GainThreshold != 0.50 {
		t.Errorf("seuils = %g / %g", cfg.LossThreshold, cfg.GainThreshold)
	}
	if len(cfg.BlacklistKeywords) == 0 || len(cfg.ExcludedStatuses) == 0 {
		t.Error("listes par défaut vides")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATA_DIRS", "/data/tiktok, /data/shopee")
	t.Setenv("CACHE_TTL_MINUTES", "30")
	t.Setenv("LOSS_THRESHOLD", "0.25")
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBDriver != "postgres" {
		t.Errorf("DBDriver = %q", cfg.DBDriver)
	}
	if len(cfg.DataDirs) != 2 || cfg.DataDirs[1] != "/data/shopee" {
		t.Errorf("DataDirs = %v", cfg.DataDirs)
	}
	if cfg.CacheTTL != 30*time.Minute {
		t.Errorf("CacheTTL = %s", cfg.CacheTTL)
	}
	if cfg.LossThreshold != 0.25 {
		t.Errorf("LossThreshold = %g", cfg.LossThreshold)
	}
	if cfg.Location() != time.UTC {
		t.Errorf("Location = %v", cfg.Location())
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"driver inconnu", "DB_DRIVER", "oracle"},
		{"seuil de perte hors bornes", "LOSS_THRESHOLD", "1.5"},
		{"fuseau invalide", "TIMEZONE", "Mars/Olympus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Error("configuration invalide acceptée")
			}
		})
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("TEST_LIST", "a, b ,,c")
	got := getEnvList("TEST_LIST", []string{"fallback"})
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("getEnvList = %v", got)
	}

	t.Setenv("TEST_LIST", " , ")
	got = getEnvList("TEST_LIST", []string{"fallback"})
	if len(got) != 1 || got[0] != "fallback" {
		t.Errorf("liste vide: %v, fallback attendu", got)
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{
		DBHost: "db.internal", DBPort: "5433", DBUser: "app",
		DBPassword: "secret", DBName: "orders", DBSSLMode: "require",
	}
	dsn := cfg.PostgresDSN()
	for _, part := range []string{"host=db.internal", "port=5433", "user=app", "dbname=orders", "sslmode=require"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("DSN sans %q: %s", part, dsn)
		}
	}
}
