package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/dailyfix/internal/constants"
	"github.com/julianstephens/dailyfix/internal/keyring"
	"github.com/julianstephens/dailyfix/internal/storage/postgres"
	"github.com/julianstephens/dailyfix/internal/storage/sqlite"
)

// Kind of backend selected by the --config value.
type Kind int

const (
	KindJSON Kind = iota
	KindSQLite
	KindPostgres
	KindKeyring
)

func (k Kind) String() string {
	switch k {
	case KindSQLite:
		return "sqlite"
	case KindPostgres:
		return "postgres"
	case KindKeyring:
		return "postgres (keyring)"
	default:
		return "json"
	}
}

// KindOf classifies a --config value.
func KindOf(config string) Kind {
	switch {
	case config == constants.KeyringConfigValue:
		return KindKeyring
	case IsPostgres(config):
		return KindPostgres
	}
	switch strings.ToLower(filepath.Ext(config)) {
	case ".db", ".sqlite", ".sqlite3":
		return KindSQLite
	default:
		return KindJSON
	}
}

// IsPostgres reports whether config is a PostgreSQL URL.
func IsPostgres(config string) bool {
	return strings.HasPrefix(config, "postgres://") || strings.HasPrefix(config, "postgresql://")
}

// New returns the backend for config. PostgreSQL strings that embed a
// password are rejected; "keyring" reads the string from the OS keyring.
func New(config string) (Provider, error) {
	switch KindOf(config) {
	case KindKeyring:
		connStr, err := keyring.ConnectionEntry().Get()
		if err != nil {
			return nil, fmt.Errorf("failed to read connection string from keyring: %w", err)
		}
		// passwords are allowed inside the keyring
		if _, err := postgres.ValidateConnString(connStr); err != nil && !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return nil, err
		}
		return postgres.New(connStr), nil
	case KindPostgres:
		return newPostgres(config)
	case KindSQLite:
		return sqlite.NewStore(config), nil
	default:
		return NewJSONStore(config), nil
	}
}

func newPostgres(connStr string) (Provider, error) {
	if _, err := postgres.ValidateConnString(connStr); err != nil {
		return nil, err
	}
	return postgres.New(connStr), nil
}

// IsKeyringError reports whether err came from reading the keyring entry.
func IsKeyringError(err error) bool {
	return errors.Is(err, keyring.ErrNotFound) || errors.Is(err, keyring.ErrKeyringUnavailable)
}

// IsCredentialError reports whether a connection string was rejected for
// embedding a password.
func IsCredentialError(err error) bool {
	return errors.Is(err, postgres.ErrEmbeddedCredentials)
}

// ConfigDir is the directory that holds logs, backups and the lockfile for
// a given --config value. Database URLs fall back to the default location.
func ConfigDir(config string) string {
	switch KindOf(config) {
	case KindPostgres, KindKeyring:
		return filepath.Dir(ExpandHome(constants.DefaultConfigPath))
	default:
		return filepath.Dir(config)
	}
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
