package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/wca/internal/config"
	"github.com/aretw0/wca/pkg/callable/zoo"
	"github.com/aretw0/wca/pkg/domain"
	"github.com/aretw0/wca/pkg/fsm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore(t *testing.T) {
	mr := miniredis.RunT(t)
	dir := t.TempDir()

	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))

	backends := map[string]config.StoreConfig{
		"memory":    {Backend: config.BackendMemory},
		"file":      {Backend: config.BackendFile, Path: filepath.Join(dir, "files")},
		"bolt":      {Backend: config.BackendBolt, Path: filepath.Join(dir, "nested", "m.db")},
		"redis":     {Backend: config.BackendRedis, Redis: config.RedisConfig{Addr: mr.Addr(), Prefix: "t:"}},
		"encrypted": {Backend: config.BackendMemory, EncryptionKeys: []string{key}},
	}

	start, err := ExampleMachine(ExampleOptions{})
	require.NoError(t, err)
	regs := zoo.Default()
	data, err := fsm.Encode(ExampleName, start, regs)
	require.NoError(t, err)

	for name, cfg := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store, closer, err := OpenStore(cfg, regs)
			require.NoError(t, err)
			defer closer.Close()

			require.NoError(t, store.Save(ctx, ExampleName, data))
			assert.Error(t, store.Save(ctx, "junk", []byte{0xff}), "undecodable machines are refused")

			m, err := LoadMachine(ctx, store, ExampleName, regs)
			require.NoError(t, err)
			assert.Equal(t, ExampleName, m.Name)
			assert.Equal(t, "start", m.Start.Name)

			_, err = LoadMachine(ctx, store, "missing", regs)
			assert.ErrorIs(t, err, domain.ErrMachineNotFound)
		})
	}

	_, _, err = OpenStore(config.StoreConfig{Backend: "tape"}, nil)
	assert.Error(t, err)

	_, _, err = OpenStore(config.StoreConfig{Backend: config.BackendMemory, EncryptionKeys: []string{"!!"}}, nil)
	assert.Error(t, err)
}

func TestLoadMachine_Corrupt(t *testing.T) {
	store, closer, err := OpenStore(config.StoreConfig{Backend: config.BackendMemory}, nil)
	require.NoError(t, err)
	defer closer.Close()

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "bad", []byte{0xff, 0xff}))
	_, err = LoadMachine(ctx, store, "bad", zoo.Default())
	assert.ErrorContains(t, err, `failed to decode machine "bad"`)
}

func TestReadMachineFile(t *testing.T) {
	start, err := ExampleMachine(ExampleOptions{})
	require.NoError(t, err)
	data, err := fsm.Encode("from-disk", start, zoo.Default())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "m.pbfsm")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	m, err := ReadMachineFile(path, zoo.Default())
	require.NoError(t, err)
	assert.Equal(t, "from-disk", m.Name)

	_, err = ReadMachineFile(filepath.Join(t.TempDir(), "nope"), zoo.Default())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewRegistries_Services(t *testing.T) {
	regs := NewRegistries(config.Config{Services: []config.ServiceConfig{{Name: "det", URL: "http://det:1"}}})

	p, err := regs.Processors.New(zoo.HTTPDetectorName, map[string]any{"service": "det"})
	require.NoError(t, err)
	assert.Equal(t, zoo.HTTPDetectorName, p.CallableName())

	// The declared service resolves during preparation.
	require.NoError(t, fsm.NewProcessor("det", p).Prepare(context.Background()))
}

func TestNewLogger(t *testing.T) {
	_, err := NewLogger(config.Config{LogLevel: "loud"})
	assert.Error(t, err)

	logger, err := NewLogger(config.Default())
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
