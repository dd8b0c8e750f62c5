package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"palettecore/internal/core"
	"palettecore/pkg/domain"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "palettecore.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
roles = "legacy"
page_size = 50

[storage]
driver = "memory"

[blob]
driver = "s3"

[blob.s3]
bucket = "catalogs"
endpoint = "http://localhost:9000"
path_style = true

[log]
level = "debug"
format = "json"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Driver != "memory" || cfg.Storage.SQLitePath == "" {
		t.Fatalf("expected memory driver over default sqlite path, got %+v", cfg.Storage)
	}
	if cfg.Blob.Driver != "s3" || cfg.Blob.S3.Bucket != "catalogs" || !cfg.Blob.S3.PathStyle {
		t.Fatalf("unexpected blob config %+v", cfg.Blob)
	}
	if cfg.PageSize != 50 || cfg.Log.Format != "json" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	roles, err := cfg.RoleSet()
	if err != nil {
		t.Fatalf("RoleSet: %v", err)
	}
	if _, ok := roles.Lookup(domain.RoleAccent); !ok {
		t.Fatalf("legacy roles must include accent, got %+v", roles)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "[storage]\ndriverr = \"sqlite\"\n")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "storage.driverr") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("explicit missing file must fail")
	}
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("missing default file must fall back to defaults: %v", err)
	}
	if cfg.Storage.Driver != string(core.StorageSQLite) || cfg.PageSize != DefaultPageSize {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PALETTECORE_STORAGE_DRIVER":     "postgres",
		"PALETTECORE_POSTGRES_DSN":       " postgres://localhost/palettes ",
		"PALETTECORE_BLOB_S3_PATH_STYLE": "true",
		"PALETTECORE_PAGE_SIZE":          "12",
		"PALETTECORE_LOG_LEVEL":          "warn",
	}
	cfg := Default()
	if err := cfg.ApplyEnv(func(k string) (string, bool) { v, ok := env[k]; return v, ok }); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	opts, err := cfg.StorageOptions()
	if err != nil {
		t.Fatalf("StorageOptions: %v", err)
	}
	if opts.Driver != core.StoragePostgres || opts.PostgresDSN != "postgres://localhost/palettes" {
		t.Fatalf("unexpected storage options %+v", opts)
	}
	if !cfg.Blob.S3.PathStyle || cfg.PageSize != 12 || cfg.Log.Level != "warn" {
		t.Fatalf("unexpected config %+v", cfg)
	}

	bad := Default()
	err = bad.ApplyEnv(func(k string) (string, bool) {
		if k == "PALETTECORE_PAGE_SIZE" {
			return "many", true
		}
		return "", false
	})
	if err == nil {
		t.Fatalf("expected page size parse error")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"storage driver", func(c *Config) { c.Storage.Driver = "mysql" }},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = "postgres" }},
		{"blob driver", func(c *Config) { c.Blob.Driver = "ftp" }},
		{"roles", func(c *Config) { c.Roles = "modern" }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
		{"page size", func(c *Config) { c.PageSize = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("dropped")
	logger.Warn("kept", "palette_id", 7)
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected one json line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "kept" || entry["palette_id"] != float64(7) {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if _, err := NewLogger(LogConfig{Level: "trace"}, &buf); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid level, got %v", err)
	}
}
