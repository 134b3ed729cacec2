package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/dailyfix/internal/constants"
	"github.com/julianstephens/dailyfix/internal/logger"
	"github.com/julianstephens/dailyfix/internal/migration"
	"github.com/julianstephens/dailyfix/internal/models"
	"github.com/julianstephens/dailyfix/migrations"
)

// Store keeps the snapshot in one row of a SQLite database, plus a
// flattened completions table rebuilt on every save.
type Store struct {
	path string
	db   *sql.DB
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Init() error {
	if s.db != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// one connection keeps writes serialized and avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)
	s.db = db

	if err := s.runMigrations(context.Background()); err != nil {
		s.db.Close()
		s.db = nil
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS, migration.SQLite), nil
}

func (s *Store) runMigrations(ctx context.Context) error {
	r, err := s.runner()
	if err != nil {
		return err
	}
	_, err = r.Apply(ctx, func(msg string) {
		logger.Debug(msg, "backend", "sqlite")
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
	err := s.db.QueryRow("SELECT value FROM snapshots WHERE key = ?", constants.StoreKey).Scan(&value)
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
		INSERT INTO snapshots (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		constants.StoreKey, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM completions"); err != nil {
		return fmt.Errorf("failed to clear completion index: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO completions (day_key, ordinal, challenge_id, completed_at, type, difficulty)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare completion index: %w", err)
	}
	defer stmt.Close()

	for day, recs := range store.Completions {
		for i, rec := range recs {
			if _, err := stmt.Exec(string(day), i, rec.ChallengeID, rec.CompletedAt, rec.Type, rec.Difficulty); err != nil {
				return fmt.Errorf("failed to index completion %s#%d: %w", day, i, err)
			}
		}
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

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying connection, nil before Init.
func (s *Store) GetDB() *sql.DB {
	return s.db
}
