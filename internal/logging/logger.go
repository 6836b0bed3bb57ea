// Package logging builds the process loggers. Stdout is reserved for
// rendered pages, CLI results, and MCP JSON-RPC, so all logging goes to
// stderr.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New creates the application logger at the given level. Attribute keys
// follow one convention across the codebase: errors are always logged
// under "err", whichever key the call site used.
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: normalizeKeys,
	}))
}

func normalizeKeys(groups []string, a slog.Attr) slog.Attr {
	if a.Key == "error" {
		a.Key = "err"
	}
	return a
}

// NewNop returns a logger that discards everything. It is the default for
// embedded use, where the host wires its own logger through options.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
