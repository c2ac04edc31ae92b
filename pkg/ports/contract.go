package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/wca/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunMachineStoreContract runs a suite of tests to verify that a MachineStore
// implementation adheres to the defined interface contract.
func RunMachineStoreContract(t *testing.T, store MachineStore) {
	ctx := context.Background()
	name := "contract-" + time.Now().Format("20060102150405")
	payload := []byte{0x0a, 0x01, 'm', 0x12, 0x03, 0x0a, 0x01, 's', 0x22, 0x01, 's'}

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, payload), "Save should not return error")

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, payload, loaded)
	})

	t.Run("Overwrite", func(t *testing.T) {
		next := []byte("second version")
		require.NoError(t, store.Save(ctx, name, next))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, next, loaded)
	})

	t.Run("Isolation", func(t *testing.T) {
		data := []byte("original")
		require.NoError(t, store.Save(ctx, name, data))
		data[0] = 'X'

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, []byte("original"), loaded)

		loaded[0] = 'Y'
		again, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, []byte("original"), again)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, domain.ErrMachineNotFound)
	})

	t.Run("Invalid Name", func(t *testing.T) {
		assert.ErrorIs(t, store.Save(ctx, "", payload), domain.ErrInvalidMachineName)
		assert.ErrorIs(t, store.Save(ctx, "../escape", payload), domain.ErrInvalidMachineName)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, payload))

		require.NoError(t, store.Delete(ctx, name), "Delete should not return error")

		_, err := store.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrMachineNotFound, "Load after Delete should return ErrMachineNotFound")

		assert.NoError(t, store.Delete(ctx, name), "Deleting twice should not fail")
	})

	t.Run("List", func(t *testing.T) {
		id1 := name + "-b"
		id2 := name + "-a"
		require.NoError(t, store.Save(ctx, id1, payload))
		require.NoError(t, store.Save(ctx, id2, payload))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, id1)
		assert.Contains(t, names, id2)
		assert.IsNonDecreasing(t, names)
	})
}
