package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunAttributeStoreContract runs a suite of tests to verify that an
// AttributeStore implementation adheres to the defined interface contract.
func RunAttributeStoreContract(t *testing.T, store AttributeStore) {
	ctx := context.Background()
	name := "contract-test-attr-" + time.Now().Format("20060102150405")

	t.Run("Set and Get", func(t *testing.T) {
		err := store.Set(ctx, name, "greeting")
		require.NoError(t, err, "Set should not return error")

		val, ok, err := store.Get(ctx, name)
		require.NoError(t, err, "Get should not return error")
		require.True(t, ok, "Get should report the name as bound")
		assert.Equal(t, "greeting", val)
	})

	t.Run("Get Unbound", func(t *testing.T) {
		_, ok, err := store.Get(ctx, "unbound-"+name)
		require.NoError(t, err)
		assert.False(t, ok, "unbound name should report absence, not error")
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, name, 1))
		require.NoError(t, store.Set(ctx, name, 2))

		val, ok, err := store.Get(ctx, name)
		require.NoError(t, err)
		require.True(t, ok)
		// JSON-backed stores may widen ints; compare loosely.
		assert.EqualValues(t, 2, val)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, name, "to-delete"))
		require.NoError(t, store.Delete(ctx, name))

		_, ok, err := store.Get(ctx, name)
		require.NoError(t, err)
		assert.False(t, ok, "Get after Delete should report absence")

		// Deleting again must be a no-op.
		assert.NoError(t, store.Delete(ctx, name))
	})

	t.Run("Names", func(t *testing.T) {
		n1 := name + "-1"
		n2 := name + "-2"
		require.NoError(t, store.Set(ctx, n1, "a"))
		require.NoError(t, store.Set(ctx, n2, "b"))

		defer func() {
			_ = store.Delete(ctx, n1)
			_ = store.Delete(ctx, n2)
		}()

		names, err := store.Names(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, n1)
		assert.Contains(t, names, n2)
	})

	t.Run("Structured Values", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, name, map[string]any{"label": "Save", "count": 3}))

		val, ok, err := store.Get(ctx, name)
		require.NoError(t, err)
		require.True(t, ok)

		m, isMap := val.(map[string]any)
		require.True(t, isMap, "structured value should round-trip as map, got %T", val)
		assert.Equal(t, "Save", m["label"])
		assert.EqualValues(t, 3, m["count"])
	})
}
