package storage

import (
	"context"

	"github.com/julianstephens/dailyfix/internal/models"
)

// Provider persists the whole Store as one snapshot.
type Provider interface {
	// Init prepares the backend (directories, connection, schema). It is
	// safe to call on an already initialized backend.
	Init() error
	// Load returns the raw snapshot, or nil with no error when none has
	// been saved yet. Decoding and repair are the caller's job.
	Load() ([]byte, error)
	// Save replaces the snapshot with s.
	Save(s models.Store) error
	Close() error

	// GetConfigPath names the backend for display. It never includes
	// credentials.
	GetConfigPath() string
}

// Indexer is implemented by backends that keep a queryable copy of the
// completion ledger next to the snapshot.
type Indexer interface {
	IndexedCompletions() (int, error)
}

// Versioned is implemented by backends with a migrated SQL schema.
type Versioned interface {
	SchemaVersion(ctx context.Context) (current, latest int, err error)
}
