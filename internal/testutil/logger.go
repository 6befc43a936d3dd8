package testutil

import "log/slog"

// NopLogger returns a logger that discards everything, keeping test output
// readable.
func NopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
