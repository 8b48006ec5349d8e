// Package repository exposes the domain-level contracts the application
// consumes: reactive claim and analysis repositories over the local row
// store, and the Codespaces usage fetch repository over the GitHub API.
//
// Repositories exclusively own the translation between storage rows and
// domain objects; nothing above them touches raw rows, and nothing below
// them sees domain types.
package repository

import (
	"errors"
	"log/slog"
)

// ErrUnimplemented marks the remote-sync extension point. SyncWithRemote is
// a deliberate placeholder for future eventual-consistency sync; it fails
// with this error and never touches local state.
var ErrUnimplemented = errors.New("unimplemented")

func ensureLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
