package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Storage.Driver != "local" {
		t.Errorf("expected local storage driver, got %q", cfg.Storage.Driver)
	}
	if cfg.Worker.Workers == 0 {
		t.Error("expected a non-zero default worker count")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
host = "127.0.0.1"
port = 9090

[database]
path = "/tmp/test.db"

[storage]
driver = "gateway"

[storage.gateway]
endpoint = "https://blobs.example.com"
container = "media"
token = "secret"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := cfg.Addr(); got != "127.0.0.1:9090" {
		t.Errorf("Addr() = %q, want 127.0.0.1:9090", got)
	}
	if cfg.Storage.Driver != "gateway" {
		t.Errorf("driver = %q, want gateway", cfg.Storage.Driver)
	}
	if cfg.Storage.Gateway.Container != "media" {
		t.Errorf("container = %q, want media", cfg.Storage.Gateway.Container)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}
