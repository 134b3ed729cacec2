package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/dailyfix/internal/constants"
	"github.com/julianstephens/dailyfix/internal/logger"
	"github.com/julianstephens/dailyfix/internal/migration"
	"github.com/julianstephens/dailyfix/internal/models"
	"github.com/julianstephens/dailyfix/migrations"
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

// Store keeps the snapshot as JSONB in the dailyfix schema.
type Store struct {
	connStr string
	db      *sql.DB
}

func New(connStr string) *Store {
	return &Store{connStr: withSearchPath(connStr)}
}

// withSearchPath pins search_path to the app schema unless the caller set one.
func withSearchPath(connStr string) string {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		u, err := url.Parse(connStr)
		if err != nil {
			logger.Warn("Failed to parse Postgres connection string", "error", err)
			return connStr
		}
		q := u.Query()
		if q.Get("search_path") == "" {
			q.Set("search_path", constants.AppName)
			u.RawQuery = q.Encode()
		}
		return u.String()
	}
	if _, ok := dsnValue(connStr, "search_path"); ok {
		return connStr
	}
	return strings.TrimSpace(connStr) + " search_path=" + constants.AppName
}

// dsnValue looks up key (case-insensitively) in a key=value DSN.
func dsnValue(connStr, key string) (string, bool) {
	for _, field := range strings.Fields(connStr) {
		k, v, ok := strings.Cut(field, "=")
		if ok && strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

func hasSSLMode(connStr string) bool {
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" {
		for key := range u.Query() {
			if strings.EqualFold(key, "sslmode") {
				return true
			}
		}
	}
	_, ok := dsnValue(connStr, "sslmode")
	return ok
}

// ValidateConnString checks that connStr parses as a PostgreSQL URL or DSN
// and carries no password. Passwords belong in the keyring, PGPASSWORD or
// .pgpass.
func ValidateConnString(connStr string) (bool, error) {
	if strings.TrimSpace(connStr) == "" {
		return false, fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}
	if _, err := pq.NewConnector(connStr); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}

	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		u, err := url.Parse(connStr)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
		}
		if _, set := u.User.Password(); set {
			return false, ErrEmbeddedCredentials
		}
		if u.Host == "" && u.User == nil && (u.Path == "" || u.Path == "/") {
			return false, fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
		}
		return true, nil
	}

	if _, ok := dsnValue(connStr, "password"); ok {
		return false, ErrEmbeddedCredentials
	}
	return true, nil
}

func (s *Store) Init() error {
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(s.connStr) {
			return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec("CREATE SCHEMA IF NOT EXISTS " + pq.QuoteIdentifier(constants.AppName)); err != nil {
		db.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}
	s.db = db

	if err := s.runMigrations(context.Background()); err != nil {
		s.db.Close()
		s.db = nil
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		return nil, fmt.Errorf("failed to access postgres migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS, migration.Postgres), nil
}

func (s *Store) runMigrations(ctx context.Context) error {
	r, err := s.runner()
	if err != nil {
		return err
	}
	_, err = r.Apply(ctx, func(msg string) {
		logger.Debug(msg, "backend", "postgres")
	})
	return err
}

// SchemaVersion reports the applied schema version and the newest one this
// build knows about.
func (s *Store) SchemaVersion(ctx context.Context) (current, latest int, err error) {
	if err := s.Init(); err != nil {
		return 0, 0, err
	}
	r, err := s.runner()
	if err != nil {
		return 0, 0, err
	}
	if current, err = r.CurrentVersion(ctx); err != nil {
		return 0, 0, err
	}
	if latest, err = r.LatestVersion(); err != nil {
		return 0, 0, err
	}
	return current, latest, nil
}

func (s *Store) Load() ([]byte, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	var value string
	err := s.db.QueryRow("SELECT value::text FROM snapshots WHERE key = $1", constants.StoreKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return []byte(value), nil
}

func (s *Store) Save(store models.Store) error {
	if err := s.Init(); err != nil {
		return err
	}
	data, err := json.Marshal(store)
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin save: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO snapshots (key, value, updated_at) VALUES ($1, $2::jsonb, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		constants.StoreKey, string(data))
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM completions"); err != nil {
		return fmt.Errorf("failed to clear completion index: %w", err)
	}
	stmt, err := tx.Prepare(pq.CopyIn("completions", "day_key", "ordinal", "challenge_id", "completed_at", "type", "difficulty"))
	if err != nil {
		return fmt.Errorf("failed to prepare completion index: %w", err)
	}
	for day, recs := range store.Completions {
		for i, rec := range recs {
			if _, err := stmt.Exec(string(day), i, rec.ChallengeID, rec.CompletedAt, rec.Type, rec.Difficulty); err != nil {
				stmt.Close()
				return fmt.Errorf("failed to index completion %s#%d: %w", day, i, err)
			}
		}
	}
	if _, err := stmt.Exec(); err != nil {
		stmt.Close()
		return fmt.Errorf("failed to flush completion index: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("failed to close completion index: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// IndexedCompletions counts the rows of the completion index.
func (s *Store) IndexedCompletions() (int, error) {
	if err := s.Init(); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM completions").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count completions: %w", err)
	}
	return n, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// GetConfigPath returns a non-sensitive identifier instead of the
// connection string.
func (s *Store) GetConfigPath() string {
	return "postgresql"
}
