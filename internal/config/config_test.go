package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := write(t, "wca.yaml", `
listen: ":9090"
log_level: debug
machine: greeter
store:
  backend: redis
  redis:
    addr: "redis:6379"
    db: 2
    ttl: 1h30m
services:
  - name: detector
    url: http://detector:8000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat, "unset keys keep their default")
	assert.Equal(t, "greeter", cfg.Machine)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, 90*time.Minute, time.Duration(cfg.Store.Redis.TTL))
	assert.Equal(t, []ServiceConfig{{Name: "detector", URL: "http://detector:8000"}}, cfg.Services)
}

func TestLoad_JSON(t *testing.T) {
	path := write(t, "wca.json", `{"machine": "m", "store": {"backend": "bolt", "path": "m.db", "redis": {"ttl": "10s"}}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "m", cfg.Machine)
	assert.Equal(t, BackendBolt, cfg.Store.Backend)
	assert.Equal(t, "m.db", cfg.Store.Path)
	assert.Equal(t, 10*time.Second, time.Duration(cfg.Store.Redis.TTL))
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"syntax", "bad.yaml", "store: [", "failed to parse"},
		{"backend", "b.yaml", "store: {backend: s3}", `unknown store backend "s3"`},
		{"duration", "d.yaml", "store: {redis: {ttl: soon}}", "failed to parse"},
		{"service url", "s.yaml", "services: [{name: det}]", `service "det": url is required`},
		{"duplicate service", "s.yaml", "services: [{name: a, url: x}, {name: a, url: y}]", "declared twice"},
		{"encryption key", "k.yaml", "store: {encryption_keys: [c2hvcnQ=]}", "must be 32 base64 encoded bytes"},
		{"empty machine", "m.json", `{"machine": ""}`, "machine is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(write(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
