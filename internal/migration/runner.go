package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Dialect selects the bind-parameter syntax for the version bookkeeping
// statements.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) placeholder() string {
	if d == Postgres {
		return "$1"
	}
	return "?"
}

// Step is one numbered schema file, e.g. 001_init.sql.
type Step struct {
	Version int
	Name    string
	SQL     string
}

// Runner applies numbered schema files in order and records the applied
// version in a single-row schema_version table.
type Runner struct {
	db      *sql.DB
	fs      fs.FS
	dialect Dialect
}

// NewRunner returns a runner that reads *.sql files from the root of files.
func NewRunner(db *sql.DB, files fs.FS, dialect Dialect) *Runner {
	return &Runner{db: db, fs: files, dialect: dialect}
}

func (r *Runner) ensureVersionTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)`)
	return err
}

// CurrentVersion returns the applied version, 0 for a fresh database.
func (r *Runner) CurrentVersion(ctx context.Context) (int, error) {
	if err := r.ensureVersionTable(ctx); err != nil {
		return 0, fmt.Errorf("failed to ensure schema_version table: %w", err)
	}

	var version int
	err := r.db.QueryRowContext(ctx, "SELECT version FROM schema_version").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// SetVersion overwrites the recorded version.
func (r *Runner) SetVersion(ctx context.Context, version int) error {
	if err := r.ensureVersionTable(ctx); err != nil {
		return fmt.Errorf("failed to ensure schema_version table: %w", err)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := r.writeVersion(ctx, tx, version); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *Runner) writeVersion(ctx context.Context, tx *sql.Tx, version int) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM schema_version"); err != nil {
		return fmt.Errorf("failed to clear schema version: %w", err)
	}
	stmt := "INSERT INTO schema_version (version) VALUES (" + r.dialect.placeholder() + ")"
	if _, err := tx.ExecContext(ctx, stmt, version); err != nil {
		return fmt.Errorf("failed to record schema version %d: %w", version, err)
	}
	return nil
}

// Steps parses every schema file, sorted by version.
func (r *Runner) Steps() ([]Step, error) {
	entries, err := fs.ReadDir(r.fs, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	var steps []Step
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		prefix, rest, ok := strings.Cut(entry.Name(), "_")
		if !ok {
			return nil, fmt.Errorf("invalid migration filename %s (expected NNN_name.sql)", entry.Name())
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("invalid version number in %s: %w", entry.Name(), err)
		}
		if version < 1 {
			return nil, fmt.Errorf("invalid version number in %s: version must be at least 1", entry.Name())
		}

		body, err := fs.ReadFile(r.fs, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}

		steps = append(steps, Step{
			Version: version,
			Name:    strings.TrimSuffix(rest, ".sql"),
			SQL:     string(body),
		})
	}

	sort.Slice(steps, func(i, j int) bool { return steps[i].Version < steps[j].Version })
	for i := 1; i < len(steps); i++ {
		if steps[i].Version == steps[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d", steps[i].Version)
		}
	}
	return steps, nil
}

// LatestVersion is the highest version on disk, 0 when there are none.
func (r *Runner) LatestVersion() (int, error) {
	steps, err := r.Steps()
	if err != nil || len(steps) == 0 {
		return 0, err
	}
	return steps[len(steps)-1].Version, nil
}

// Apply runs every pending step, each in its own transaction together with
// the version bump, and returns how many were applied. logFn may be nil.
func (r *Runner) Apply(ctx context.Context, logFn func(string)) (int, error) {
	if logFn == nil {
		logFn = func(string) {}
	}

	current, err := r.CurrentVersion(ctx)
	if err != nil {
		return 0, err
	}
	steps, err := r.Steps()
	if err != nil {
		return 0, err
	}
	if len(steps) == 0 {
		logFn("No migration files found")
		return 0, nil
	}

	latest := steps[len(steps)-1].Version
	if current > latest {
		return 0, newerSchemaError(current, latest)
	}

	var pending []Step
	for _, s := range steps {
		if s.Version > current {
			pending = append(pending, s)
		}
	}
	if len(pending) == 0 {
		logFn(fmt.Sprintf("Schema is up to date (version %d)", current))
		return 0, nil
	}

	logFn(fmt.Sprintf("Migrating schema from version %d to %d", current, latest))
	start := time.Now()
	applied := 0
	for _, s := range pending {
		if err := r.applyStep(ctx, s); err != nil {
			return applied, err
		}
		applied++
		logFn(fmt.Sprintf("  ✓ %03d_%s", s.Version, s.Name))
	}
	logFn(fmt.Sprintf("Applied %d migration(s) in %v", applied, time.Since(start).Round(time.Millisecond)))
	return applied, nil
}

func (r *Runner) applyStep(ctx context.Context, s Step) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %d: %w", s.Version, err)
	}
	if _, err := tx.ExecContext(ctx, s.SQL); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to apply migration %d (%s): %w", s.Version, s.Name, err)
	}
	if err := r.writeVersion(ctx, tx, s.Version); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", s.Version, err)
	}
	return nil
}

// Validate fails when the database was written by a newer build.
func (r *Runner) Validate(ctx context.Context) error {
	current, err := r.CurrentVersion(ctx)
	if err != nil {
		return err
	}
	latest, err := r.LatestVersion()
	if err != nil {
		return err
	}
	if current > latest {
		return newerSchemaError(current, latest)
	}
	return nil
}

func newerSchemaError(current, latest int) error {
	return fmt.Errorf("database schema version (%d) is newer than supported version (%d) - please upgrade dailyfix", current, latest)
}
