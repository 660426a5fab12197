package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "s3sign.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
storage:
  endpoint: https://account.r2.cloudflarestorage.com
  region: auto
  bucket: listings
  accessKeyId: AKID
  secretAccessKey: SECRET
server:
  address: ":9100"
  accessKeys:
    - accessKey: AK1
      secretKey: SK1
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Storage.Endpoint != "https://account.r2.cloudflarestorage.com" || cfg.Storage.Bucket != "listings" {
		t.Errorf("Unexpected storage config %+v", cfg.Storage)
	}
	if cfg.Storage.AccessKeyID != "AKID" || cfg.Storage.SecretAccessKey != "SECRET" {
		t.Errorf("Unexpected credentials %+v", cfg.Storage)
	}
	if cfg.Server.Address != ":9100" {
		t.Errorf("Expected :9100, got %q", cfg.Server.Address)
	}
	// Unset fields keep their defaults
	if cfg.Server.DataFile != "./s3sign.db" {
		t.Errorf("Expected default data file, got %q", cfg.Server.DataFile)
	}
	if len(cfg.Server.AccessKeys) != 1 || cfg.Server.AccessKeys[0].AccessKey != "AK1" {
		t.Errorf("Unexpected access keys %+v", cfg.Server.AccessKeys)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Unexpected log config %+v", cfg.Log)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
	if err := cfg.Storage.Validate(); err != nil {
		t.Errorf("Storage validate failed: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Address != Default().Server.Address {
		t.Errorf("Expected defaults, got %+v", cfg)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected an error for an explicit missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "storage: [unterminated")
	if _, err := Load(path); err == nil {
		t.Fatal("Expected a parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
storage:
  endpoint: https://from-file.example.com
  bucket: from-file
log:
  format: text
`)

	t.Setenv("S3SIGN_ENDPOINT", "http://127.0.0.1:9000")
	t.Setenv("S3SIGN_BUCKET", "from-env")
	t.Setenv("S3SIGN_REGION", "eu-west-1")
	t.Setenv("S3SIGN_ACCESS_KEY_ID", "ENVKEY")
	t.Setenv("S3SIGN_SECRET_ACCESS_KEY", "ENVSECRET")
	t.Setenv("S3SIGN_ADDR", ":9200")
	t.Setenv("S3SIGN_DATA_FILE", "/tmp/env.db")
	t.Setenv("S3SIGN_ACCESS_KEYS", "AK1:SK1, AK2:SK:with:colons ,broken,:nokey")
	t.Setenv("S3SIGN_LOG_LEVEL", "DEBUG")
	t.Setenv("S3SIGN_LOG_FORMAT", "xml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Storage.Endpoint != "http://127.0.0.1:9000" || cfg.Storage.Bucket != "from-env" || cfg.Storage.Region != "eu-west-1" {
		t.Errorf("Storage overrides not applied: %+v", cfg.Storage)
	}
	if cfg.Storage.AccessKeyID != "ENVKEY" || cfg.Storage.SecretAccessKey != "ENVSECRET" {
		t.Errorf("Credential overrides not applied: %+v", cfg.Storage)
	}
	if cfg.Server.Address != ":9200" || cfg.Server.DataFile != "/tmp/env.db" {
		t.Errorf("Server overrides not applied: %+v", cfg.Server)
	}

	want := []StaticAccessKey{
		{AccessKey: "AK1", SecretKey: "SK1"},
		{AccessKey: "AK2", SecretKey: "SK:with:colons"},
	}
	if len(cfg.Server.AccessKeys) != len(want) {
		t.Fatalf("Expected %d access keys, got %+v", len(want), cfg.Server.AccessKeys)
	}
	for i, k := range want {
		if cfg.Server.AccessKeys[i] != k {
			t.Errorf("AccessKeys[%d] = %+v, want %+v", i, cfg.Server.AccessKeys[i], k)
		}
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Expected debug level, got %q", cfg.Log.Level)
	}
	// Invalid formats are ignored
	if cfg.Log.Format != "text" {
		t.Errorf("Expected text format, got %q", cfg.Log.Format)
	}
}

func TestConfigFromEnvPath(t *testing.T) {
	path := writeConfig(t, "server:\n  address: \":9300\"\n")
	t.Setenv("S3SIGN_CONFIG", path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Address != ":9300" {
		t.Errorf("Expected :9300, got %q", cfg.Server.Address)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"Defaults", func(c *Config) {}, false},
		{"JSON format", func(c *Config) { c.Log.Format = "JSON" }, false},
		{"Bad format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"Incomplete access key", func(c *Config) {
			c.Server.AccessKeys = []StaticAccessKey{{AccessKey: "AK"}}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
