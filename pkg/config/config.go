// Package config loads s3sign settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wzshiming/s3sign/pkg/objstore"
)

// Config holds runtime configuration for s3sign.
//
// YAML example:
//
//	storage:
//	  endpoint: https://<account>.r2.cloudflarestorage.com
//	  region: auto
//	  bucket: listings
//	  accessKeyId: AKIAEXAMPLE
//	  secretAccessKey: secret
//	server:
//	  address: ":9000"
//	  dataFile: ./s3sign.db
//	  region: auto
//	  accessKeys:
//	    - accessKey: AKIAEXAMPLE
//	      secretKey: secret
//	log:
//	  level: info
//	  format: text   # text or json
//
// Environment overrides:
//
//	S3SIGN_CONFIG path to the YAML file; if empty, ./s3sign.yaml is tried.
//	S3SIGN_ENDPOINT, S3SIGN_REGION, S3SIGN_BUCKET, S3SIGN_ACCESS_KEY_ID,
//	S3SIGN_SECRET_ACCESS_KEY override the storage section.
//	S3SIGN_ADDR, S3SIGN_DATA_FILE override the server section.
//	S3SIGN_ACCESS_KEYS replaces server.accessKeys, "AK:SK,AK2:SK2".
//	S3SIGN_LOG_LEVEL, S3SIGN_LOG_FORMAT override the log section.
type Config struct {
	Storage objstore.Config `yaml:"storage"`
	Server  ServerConfig    `yaml:"server"`
	Log     LogConfig       `yaml:"log"`
}

// ServerConfig configures the development server
type ServerConfig struct {
	Address    string            `yaml:"address"`
	DataFile   string            `yaml:"dataFile"`
	Region     string            `yaml:"region"`
	AccessKeys []StaticAccessKey `yaml:"accessKeys"`
}

// StaticAccessKey defines a static credential pair.
type StaticAccessKey struct {
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
}

// LogConfig selects log level and output format
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultFile is read when no path is given
const DefaultFile = "s3sign.yaml"

// Default returns a Config with local defaults.
func Default() Config {
	return Config{
		Storage: objstore.Config{
			Region: "auto",
		},
		Server: ServerConfig{
			Address:  ":9000",
			DataFile: "./s3sign.db",
			Region:   "auto",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from path. If path is empty, S3SIGN_CONFIG and then
// ./s3sign.yaml are tried; a missing file yields Default(). Environment
// overrides are applied last.
func Load(path string) (Config, error) {
	explicit := path != ""
	if path == "" {
		path = os.Getenv("S3SIGN_CONFIG")
		explicit = path != ""
	}
	if path == "" {
		path = DefaultFile
	}

	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return applyEnvOverrides(cfg), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return applyEnvOverrides(cfg), nil
}

// Validate checks the log section. The storage section is validated by
// objstore.New when a client is built, since the serve command does not need it.
func (c Config) Validate() error {
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}
	for i, k := range c.Server.AccessKeys {
		if k.AccessKey == "" || k.SecretKey == "" {
			return fmt.Errorf("server.accessKeys[%d]: accessKey and secretKey are required", i)
		}
	}
	return nil
}

func applyEnvOverrides(cfg Config) Config {
	if v := os.Getenv("S3SIGN_ENDPOINT"); v != "" {
		cfg.Storage.Endpoint = strings.TrimSpace(v)
	}
	if v := os.Getenv("S3SIGN_REGION"); v != "" {
		cfg.Storage.Region = strings.TrimSpace(v)
	}
	if v := os.Getenv("S3SIGN_BUCKET"); v != "" {
		cfg.Storage.Bucket = strings.TrimSpace(v)
	}
	if v := os.Getenv("S3SIGN_ACCESS_KEY_ID"); v != "" {
		cfg.Storage.AccessKeyID = strings.TrimSpace(v)
	}
	if v := os.Getenv("S3SIGN_SECRET_ACCESS_KEY"); v != "" {
		cfg.Storage.SecretAccessKey = strings.TrimSpace(v)
	}

	if v := os.Getenv("S3SIGN_ADDR"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("S3SIGN_DATA_FILE"); v != "" {
		cfg.Server.DataFile = strings.TrimSpace(v)
	}
	if v := os.Getenv("S3SIGN_ACCESS_KEYS"); v != "" {
		// override existing list with env-provided keys
		if keys := parseAccessKeysEnv(v); len(keys) > 0 {
			cfg.Server.AccessKeys = keys
		}
	}

	if v := os.Getenv("S3SIGN_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("S3SIGN_LOG_FORMAT"); v != "" {
		format := strings.ToLower(strings.TrimSpace(v))
		switch format {
		case "text", "json":
			cfg.Log.Format = format
		default:
			// ignore invalid value; keep existing
		}
	}
	return cfg
}

// parseAccessKeysEnv parses comma-separated ACCESS_KEY:SECRET_KEY entries.
// The secret is everything after the first ':'.
func parseAccessKeysEnv(s string) []StaticAccessKey {
	var out []StaticAccessKey
	for _, e := range strings.Split(s, ",") {
		ak, sk, ok := strings.Cut(strings.TrimSpace(e), ":")
		if !ok {
			continue
		}
		ak = strings.TrimSpace(ak)
		sk = strings.TrimSpace(sk)
		if ak == "" || sk == "" {
			continue
		}
		out = append(out, StaticAccessKey{AccessKey: ak, SecretKey: sk})
	}
	return out
}
