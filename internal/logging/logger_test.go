package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKeys(t *testing.T) {
	a := normalizeKeys(nil, slog.String("error", "boom"))
	assert.Equal(t, "err", a.Key)
	assert.Equal(t, "boom", a.Value.String())

	a = normalizeKeys(nil, slog.String("session_id", "abc"))
	assert.Equal(t, "session_id", a.Key, "only the error key is rewritten")
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	require.NotNil(t, logger)
	// Must not panic and must not emit anywhere visible.
	logger.Info("discarded", "error", "boom")
}
