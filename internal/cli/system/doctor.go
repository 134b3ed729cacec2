package system

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/julianstephens/dailyfix/internal/cli"
	"github.com/julianstephens/dailyfix/internal/lock"
	"github.com/julianstephens/dailyfix/internal/migration"
	"github.com/julianstephens/dailyfix/internal/models"
	"github.com/julianstephens/dailyfix/internal/storage"
)

// ErrChecksFailed is returned when at least one diagnostic fails.
var ErrChecksFailed = errors.New("one or more health checks failed")

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	fail := func(name string, err error) {
		fmt.Printf("❌ %s: FAIL\n", name)
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	}
	warn := func(name string, err error) {
		fmt.Printf("⚠ %s: WARNING\n", name)
		fmt.Printf("   %v\n", err)
	}
	ok := func(name string) {
		fmt.Printf("✓ %s: OK\n", name)
	}

	// Check 1: storage reachable
	store, data, err := checkStorage(ctx)
	if err != nil {
		fail("Storage reachable", err)
	} else {
		ok("Storage reachable")
	}

	// Check 2: snapshot decodes (only if storage is reachable)
	var snapshot models.Store
	if store != nil {
		snapshot, err = migration.MigrateJSON(data, ctx.Clock.Now())
		if err != nil {
			fail("Snapshot", fmt.Errorf("%w; the next save will replace it with defaults", err))
		} else {
			ok("Snapshot")
		}
	} else {
		fmt.Printf("⊘ Snapshot: SKIPPED (storage not reachable)\n")
	}

	// Check 3: schema version
	if v, isVersioned := store.(storage.Versioned); isVersioned {
		if err := checkSchemaVersion(v); err != nil {
			fail("Schema version", err)
		} else {
			ok("Schema version")
		}
	}

	// Check 4: completion index matches the snapshot (warning only)
	if ix, isIndexer := store.(storage.Indexer); isIndexer && data != nil {
		if err := checkIndex(ix, snapshot); err != nil {
			warn("Completion index", err)
		} else {
			ok("Completion index")
		}
	}

	// Check 5: catalog
	if n, err := checkCatalog(ctx); err != nil {
		fail("Catalog", err)
	} else {
		ok(fmt.Sprintf("Catalog (%d %s challenges)", n, ctx.Language))
	}

	// Check 6: backups present (warning only)
	if err := checkBackupsPresent(ctx); err != nil {
		warn("Backups present", err)
	} else {
		ok("Backups present")
	}

	// Check 7: lockfile (warning only)
	if err := checkLock(ctx); err != nil {
		warn("Lockfile", err)
	} else {
		ok("Lockfile")
	}

	// Check 8: clock/timezone sanity
	if err := checkClockTimezone(ctx.Clock.Now()); err != nil {
		fail("Clock/timezone", err)
	} else {
		ok("Clock/timezone")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return ErrChecksFailed
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkStorage(ctx *cli.Context) (storage.Provider, []byte, error) {
	store, err := ctx.Storage()
	if err != nil {
		return nil, nil, err
	}
	if err := store.Init(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize %s: %w", store.GetConfigPath(), err)
	}
	data, err := store.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return store, data, nil
}

func checkSchemaVersion(v storage.Versioned) error {
	current, latest, err := v.SchemaVersion(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkIndex(ix storage.Indexer, snapshot models.Store) error {
	indexed, err := ix.IndexedCompletions()
	if err != nil {
		return fmt.Errorf("failed to count indexed completions: %w", err)
	}
	if total := snapshot.Completions.TotalCount(); indexed != total {
		return fmt.Errorf("index has %d completions, snapshot has %d; it is rebuilt on the next save", indexed, total)
	}
	return nil
}

func checkCatalog(ctx *cli.Context) (int, error) {
	challenges, err := ctx.Challenges(context.Background())
	if err != nil {
		return 0, err
	}
	return len(challenges), nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	backups, err := ctx.Backups().ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'dailyfix backup create'")
	}
	return nil
}

func checkLock(ctx *cli.Context) error {
	holder, err := lock.Inspect(ctx.ConfigDir())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("unreadable lockfile at %s: %v", lock.Path(ctx.ConfigDir()), err)
	}
	if holder.Alive {
		return fmt.Errorf("held by running process %d (%s)", holder.PID, holder.Executable)
	}
	return fmt.Errorf("stale lock from pid %d; it is reclaimed on the next write", holder.PID)
}

func checkClockTimezone(now time.Time) error {
	// Check if time is in a reasonable range (after 2020 and before 2100)
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	// Day keys follow local time, so note when that is UTC
	if _, offset := now.Zone(); offset == 0 && now.Location() == time.UTC {
		fmt.Printf("   Note: timezone is UTC\n")
	}
	return nil
}
