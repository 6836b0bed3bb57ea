package arbor_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
)

func TestNewDefaults(t *testing.T) {
	app := arbor.New()

	require.NotNil(t, app.Factory())
	require.NotNil(t, app.Components())
	require.NotNil(t, app.ApplicationScope())
	assert.Empty(t, app.BasePath())
}

func TestContextScopes(t *testing.T) {
	app := arbor.New()

	t.Run("Defaults To Fresh Stores", func(t *testing.T) {
		ctx := app.NewContext()
		for _, scope := range domain.SearchOrder() {
			require.NotNil(t, ctx.Scope(scope), "scope %s", scope)
		}
	})

	t.Run("Application Scope Is Shared", func(t *testing.T) {
		first := app.NewContext()
		second := app.NewContext()

		require.NoError(t, first.Scope(domain.ScopeApplication).Set(t.Context(), "shared", "yes"))

		val, ok, err := second.Scope(domain.ScopeApplication).Get(t.Context(), "shared")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "yes", val)
	})

	t.Run("Request Scope Is Not Shared", func(t *testing.T) {
		first := app.NewContext()
		second := app.NewContext()

		require.NoError(t, first.Scope(domain.ScopeRequest).Set(t.Context(), "private", "yes"))

		_, ok, err := second.Scope(domain.ScopeRequest).Get(t.Context(), "private")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Injected Session Scope", func(t *testing.T) {
		session := memory.NewStore()
		require.NoError(t, session.Set(t.Context(), "cart", []any{"apple"}))

		ctx := app.NewContext(arbor.WithSessionScope(session))

		val, ok, err := arbor.Bean(ctx, "cart")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []any{"apple"}, val)
	})
}

func TestLookupOrder(t *testing.T) {
	app := arbor.New()
	ctx := app.NewContext()

	// The same name bound in a lower-priority scope is shadowed by the
	// higher one; removing the winner uncovers the next.
	require.NoError(t, ctx.Scope(domain.ScopeFlash).Set(t.Context(), "who", "flash"))
	require.NoError(t, ctx.Scope(domain.ScopeSession).Set(t.Context(), "who", "session"))

	val, ok, err := arbor.Bean(ctx, "who")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "session", val)

	require.NoError(t, arbor.RemoveBean(ctx, "who"))

	val, ok, err = arbor.Bean(ctx, "who")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "flash", val)
}

func TestInfo(t *testing.T) {
	info := arbor.Info()

	assert.Equal(t, "arbor", info.ImplementationTitle)
	assert.NotEmpty(t, info.ImplementationVersion)
	// The contract version is major.minor only.
	assert.Len(t, strings.Split(info.SpecificationVersion, "."), 2)
}
