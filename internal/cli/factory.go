// Package cli holds the logic behind the wca commands.
package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/wca/internal/adapters/file"
	"github.com/aretw0/wca/internal/config"
	"github.com/aretw0/wca/internal/logging"
	"github.com/aretw0/wca/pkg/adapters/bolt"
	"github.com/aretw0/wca/pkg/adapters/memory"
	"github.com/aretw0/wca/pkg/adapters/redis"
	"github.com/aretw0/wca/pkg/callable"
	"github.com/aretw0/wca/pkg/callable/zoo"
	"github.com/aretw0/wca/pkg/fsm"
	"github.com/aretw0/wca/pkg/persistence/middleware"
	"github.com/aretw0/wca/pkg/ports"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenStore creates the machine store selected by cfg. The returned closer
// releases the backend and must be called once the store is no longer used.
// With regs, machines that do not decode are refused on Save.
func OpenStore(cfg config.StoreConfig, regs *callable.Registries) (ports.MachineStore, io.Closer, error) {
	var mws []middleware.Middleware
	if regs != nil {
		mws = append(mws, middleware.NewVerifyMiddleware(regs))
	}
	if len(cfg.EncryptionKeys) > 0 {
		enc, err := newEncryption(cfg.EncryptionKeys)
		if err != nil {
			return nil, nil, err
		}
		mws = append(mws, enc)
	}

	store, closer, err := openBackend(cfg)
	if err != nil {
		return nil, nil, err
	}
	return middleware.Chain(store, mws...), closer, nil
}

func newEncryption(keys []string) (middleware.Middleware, error) {
	var ec middleware.EncryptionConfig
	for i, k := range keys {
		key, err := base64.StdEncoding.DecodeString(k)
		if err != nil {
			return nil, fmt.Errorf("invalid encryption key %d: %w", i, err)
		}
		if i == 0 {
			ec.ActiveKey = key
		} else {
			ec.FallbackKeys = append(ec.FallbackKeys, key)
		}
	}
	return middleware.NewEncryptionMiddleware(ec)
}

func openBackend(cfg config.StoreConfig) (ports.MachineStore, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.NewStore(), nopCloser{}, nil

	case config.BackendFile, "":
		return file.New(cfg.Path), nopCloser{}, nil

	case config.BackendBolt:
		path := cfg.Path
		if path == "" {
			path = filepath.Join(".wca", "machines.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		s, err := bolt.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil

	case config.BackendRedis:
		opts := []redis.Option{}
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		if ttl := time.Duration(cfg.Redis.TTL); ttl > 0 {
			opts = append(opts, redis.WithTTL(ttl))
		}
		s := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		return s, s, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}

// NewRegistries returns the built-in callables, with HTTP detectors
// resolving the services declared in cfg.
func NewRegistries(cfg config.Config) *callable.Registries {
	services := zoo.NewServiceDirectory()
	for _, s := range cfg.Services {
		services.Set(s.Name, s.URL)
	}
	return zoo.Default(zoo.WithServices(services), zoo.WithHTTPClient(zoo.NewHTTPClient()))
}

// NewLogger creates the application logger from cfg.
func NewLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.NewWithWriter(os.Stderr, level, cfg.LogFormat == "json"), nil
}

// LoadMachine reads and decodes the machine stored under name.
func LoadMachine(ctx context.Context, store ports.MachineStore, name string, regs *callable.Registries) (*fsm.Machine, error) {
	data, err := store.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load machine %q: %w", name, err)
	}
	m, err := fsm.DecodeMachine(data, regs)
	if err != nil {
		return nil, fmt.Errorf("failed to decode machine %q: %w", name, err)
	}
	return m, nil
}

// ReadMachineFile decodes an encoded machine from disk, bypassing the store.
func ReadMachineFile(path string, regs *callable.Registries) (*fsm.Machine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := fsm.DecodeMachine(data, regs)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return m, nil
}
