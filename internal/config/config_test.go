package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LOCK_TTL", "")
	t.Setenv("TASK_DATE_LAYOUT", "")

	cfg := Load()

	if cfg.LockTTL != 30*time.Second {
		t.Errorf("expected lock ttl 30s, got %s", cfg.LockTTL)
	}
	if cfg.TaskDateLayout != "02/01/2006" {
		t.Errorf("expected default date layout, got %q", cfg.TaskDateLayout)
	}
	if cfg.HTTPAddr == "" {
		t.Errorf("expected an http address")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LOCK_WAIT", "500ms")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	if cfg.LockWait != 500*time.Millisecond {
		t.Errorf("expected lock wait 500ms, got %s", cfg.LockWait)
	}
	if cfg.DBMaxConns != 25 {
		t.Errorf("expected 25 max conns, got %d", cfg.DBMaxConns)
	}
	if cfg.StorageDriver != "memory" {
		t.Errorf("expected memory driver, got %q", cfg.StorageDriver)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("expected two trimmed origins, got %v", cfg.CORSOrigins)
	}
}

func TestLocation(t *testing.T) {
	t.Run("known zone", func(t *testing.T) {
		loc, err := AppConfig{Timezone: "Europe/Berlin"}.Location()
		if err != nil {
			t.Fatalf("expected zone to load, got %v", err)
		}
		if loc.String() != "Europe/Berlin" {
			t.Errorf("expected Europe/Berlin, got %s", loc)
		}
	})

	t.Run("unknown zone fails", func(t *testing.T) {
		t.Setenv("APP_TIMEZONE", "not/a-zone")
		cfg := Load()
		if _, err := cfg.Location(); err == nil {
			t.Errorf("expected an error for an unknown zone")
		}
	})
}
