package bolt_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/wca/pkg/adapters/bolt"
	"github.com/aretw0/wca/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoltStore_Contract(t *testing.T) {
	store, err := bolt.Open(filepath.Join(t.TempDir(), "machines.db"))
	require.NoError(t, err)
	defer store.Close()

	ports.RunMachineStoreContract(t, store)
}

func TestBoltStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "machines.db")
	ctx := context.Background()

	store, err := bolt.Open(path, bolt.WithBucket("apps"))
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "greeter", []byte("bytes")))
	require.NoError(t, store.Close())

	store, err = bolt.Open(path, bolt.WithBucket("apps"))
	require.NoError(t, err)
	defer store.Close()

	data, err := store.Load(ctx, "greeter")
	require.NoError(t, err)
	assert.Equal(t, []byte("bytes"), data)
}
