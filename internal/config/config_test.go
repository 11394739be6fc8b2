package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Set required env vars
	os.Setenv("SESSION_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	tests := []struct {
		name     string
		actual   time.Duration
		expected time.Duration
	}{
		{"SessionTTL", cfg.Session.TTL, 24 * time.Hour},
		{"ReadTimeout", cfg.Server.ReadTimeout, 15 * time.Second},
		{"WriteTimeout", cfg.Server.WriteTimeout, 15 * time.Second},
		{"IdleTimeout", cfg.Server.IdleTimeout, 60 * time.Second},
		{"ImportRunRetention", cfg.Import.RunRetention, 30 * 24 * time.Hour},
		{"ImportCleanupInterval", cfg.Import.CleanupInterval, 12 * time.Hour},
	}

	for _, tt := range tests {
		if tt.actual != tt.expected {
			t.Errorf("%s: got %v, want %v", tt.name, tt.actual, tt.expected)
		}
	}

	if cfg.Session.CookieName != "memberdir_session" {
		t.Errorf("CookieName: got %q, want %q", cfg.Session.CookieName, "memberdir_session")
	}
	if cfg.Import.MaxUploadBytes != 10<<20 {
		t.Errorf("MaxUploadBytes: got %d, want %d", cfg.Import.MaxUploadBytes, 10<<20)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Setenv("SESSION_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("SESSION_TTL", "1h")
	os.Setenv("SERVER_READ_TIMEOUT", "30s")
	os.Setenv("IMPORT_RUN_RETENTION", "48h")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Session.TTL != 1*time.Hour {
		t.Errorf("SessionTTL: got %v, want %v", cfg.Session.TTL, 1*time.Hour)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("ReadTimeout: got %v, want %v", cfg.Server.ReadTimeout, 30*time.Second)
	}
	if cfg.Import.RunRetention != 48*time.Hour {
		t.Errorf("RunRetention: got %v, want %v", cfg.Import.RunRetention, 48*time.Hour)
	}
}

func TestLoad_InvalidDuration_FallsBackToDefault(t *testing.T) {
	os.Setenv("SESSION_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("SESSION_TTL", "not-a-duration")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Session.TTL != 24*time.Hour {
		t.Errorf("SessionTTL: got %v, want %v", cfg.Session.TTL, 24*time.Hour)
	}
}

func TestLoad_MissingSessionSecret(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for missing SESSION_SECRET")
	}
}

func TestLoad_WeakSessionSecret(t *testing.T) {
	os.Clearenv()
	os.Setenv("SESSION_SECRET", "short")
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for weak SESSION_SECRET")
	}
}
