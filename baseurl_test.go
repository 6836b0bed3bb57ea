package arbor_test

import (
	"crypto/tls"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor"
)

func TestBaseURLFromRequest(t *testing.T) {
	t.Run("Plain HTTP", func(t *testing.T) {
		r := httptest.NewRequest("GET", "http://localhost:8080/app/page", nil)

		got, err := arbor.BaseURLFromRequest(r, "/app")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080/app", got)
	})

	t.Run("HTTPS", func(t *testing.T) {
		r := httptest.NewRequest("GET", "https://example.com/", nil)
		r.TLS = &tls.ConnectionState{}

		got, err := arbor.BaseURLFromRequest(r, "")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", got)
	})

	t.Run("Context Path Without Slash", func(t *testing.T) {
		r := httptest.NewRequest("GET", "http://example.com/", nil)

		got, err := arbor.BaseURLFromRequest(r, "shop")
		require.NoError(t, err)
		assert.Equal(t, "http://example.com/shop", got)
	})
}

func TestBaseURL(t *testing.T) {
	app := arbor.New(arbor.WithBasePath("/app"))

	t.Run("From Context Request", func(t *testing.T) {
		r := httptest.NewRequest("GET", "http://localhost:8080/app/page", nil)
		ctx := app.NewContext(arbor.WithRequest(r))

		got, err := arbor.BaseURL(ctx)
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080/app", got)
	})

	t.Run("No Request", func(t *testing.T) {
		ctx := app.NewContext()

		_, err := arbor.BaseURL(ctx)
		assert.Error(t, err)
	})
}
