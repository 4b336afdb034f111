package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8123" {
		t.Errorf("Port = %q, want 8123", cfg.Port)
	}
	if cfg.MBPerMin != 20 {
		t.Errorf("MBPerMin = %d, want 20", cfg.MBPerMin)
	}
	if cfg.DeleteAfterDays != 30 {
		t.Errorf("DeleteAfterDays = %d, want 30", cfg.DeleteAfterDays)
	}
	if cfg.Autodelete {
		t.Error("Autodelete should default to false")
	}
}

func TestLoad_TOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recbutton.toml")
	content := `
host = "127.0.0.1"
port = "9000"
mb_per_min = 5
autodelete = true
keep_renamed_files = true
kodi_url = "http://kodi:8080/jsonrpc"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr() != "127.0.0.1:9000" {
		t.Errorf("Addr = %q, want 127.0.0.1:9000", cfg.Addr())
	}
	if cfg.MBPerMin != 5 {
		t.Errorf("MBPerMin = %d, want 5", cfg.MBPerMin)
	}
	if !cfg.Autodelete || !cfg.KeepRenamedFiles {
		t.Error("boolean settings not loaded from file")
	}
	if cfg.KodiURL != "http://kodi:8080/jsonrpc" {
		t.Errorf("KodiURL = %q", cfg.KodiURL)
	}
	// Unset file values keep their defaults.
	if cfg.DBPath != "history.db" {
		t.Errorf("DBPath = %q, want default", cfg.DBPath)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recbutton.toml")
	if err := os.WriteFile(path, []byte(`port = "9000"`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PORT", "7000")
	t.Setenv("MB_PER_MIN", "3")
	t.Setenv("HTTP_TIMEOUT", "30s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "7000" {
		t.Errorf("Port = %q, env should override file", cfg.Port)
	}
	if cfg.MBPerMin != 3 {
		t.Errorf("MBPerMin = %d, want 3", cfg.MBPerMin)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v, want 30s", cfg.HTTPTimeout)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recbutton.toml")
	if err := os.WriteFile(path, []byte(`port = [broken`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid TOML")
	}
}

func TestLoad_InvalidEnvValuesFallBack(t *testing.T) {
	t.Setenv("MB_PER_MIN", "lots")
	t.Setenv("AUTODELETE", "maybe")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MBPerMin != 20 {
		t.Errorf("MBPerMin = %d, want default 20", cfg.MBPerMin)
	}
	if cfg.Autodelete {
		t.Error("Autodelete should stay false on unparseable env value")
	}
}
