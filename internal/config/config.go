// Package config loads the wca runtime configuration from YAML or JSON.
package config

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendBolt   = "bolt"
	BackendRedis  = "redis"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "wca.yaml"

// Config is the root of the configuration file.
type Config struct {
	Listen    string          `yaml:"listen" json:"listen"`
	LogLevel  string          `yaml:"log_level" json:"log_level"`
	LogFormat string          `yaml:"log_format" json:"log_format"`
	Machine   string          `yaml:"machine" json:"machine"`
	Store     StoreConfig     `yaml:"store" json:"store"`
	Services  []ServiceConfig `yaml:"services" json:"services"`
}

// StoreConfig selects where encoded machines are kept.
type StoreConfig struct {
	Backend string      `yaml:"backend" json:"backend"`
	Path    string      `yaml:"path" json:"path"`
	Redis   RedisConfig `yaml:"redis" json:"redis"`

	// EncryptionKeys are base64 AES-256 keys. The first encrypts, the
	// others only decrypt machines saved before a rotation.
	EncryptionKeys []string `yaml:"encryption_keys" json:"encryption_keys"`
}

type RedisConfig struct {
	Addr     string   `yaml:"addr" json:"addr"`
	Password string   `yaml:"password" json:"password"`
	DB       int      `yaml:"db" json:"db"`
	Prefix   string   `yaml:"prefix" json:"prefix"`
	TTL      Duration `yaml:"ttl" json:"ttl"`
}

// ServiceConfig names a processing service reachable over HTTP, such as a
// containerized object detector.
type ServiceConfig struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// Duration accepts Go duration strings ("90s", "1h") in both formats.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.set(s)
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.set(s)
}

func (d Duration) MarshalYAML() (any, error) { return time.Duration(d).String(), nil }
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) set(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Listen:    ":8080",
		LogLevel:  "info",
		LogFormat: "text",
		Machine:   "default",
		Store: StoreConfig{
			Backend: BackendFile,
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
	}
}

// Load reads the configuration file at path (YAML, or JSON when the
// extension is .json) over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	return cfg, cfg.Validate()
}

// Validate checks the values that cannot be defaulted.
func (c Config) Validate() error {
	var errs []error
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendBolt:
	case BackendRedis:
		if c.Store.Redis.Addr == "" {
			errs = append(errs, errors.New("store.redis.addr is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}

	for i, k := range c.Store.EncryptionKeys {
		if key, err := base64.StdEncoding.DecodeString(k); err != nil || len(key) != 32 {
			errs = append(errs, fmt.Errorf("store.encryption_keys[%d] must be 32 base64 encoded bytes", i))
		}
	}

	if c.Machine == "" {
		errs = append(errs, errors.New("machine is required"))
	}

	seen := make(map[string]bool)
	for i, s := range c.Services {
		switch {
		case s.Name == "":
			errs = append(errs, fmt.Errorf("services[%d]: name is required", i))
		case s.URL == "":
			errs = append(errs, fmt.Errorf("service %q: url is required", s.Name))
		case seen[s.Name]:
			errs = append(errs, fmt.Errorf("service %q is declared twice", s.Name))
		}
		seen[s.Name] = true
	}
	return errors.Join(errs...)
}
