package system

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/dailyfix/internal/calendar"
	"github.com/julianstephens/dailyfix/internal/cli"
	"github.com/julianstephens/dailyfix/internal/storage"
	"github.com/julianstephens/dailyfix/internal/storage/sqlite"
)

// newContext returns a context over the embedded catalog with a fixed
// clock. name picks the backend by extension.
func newContext(t *testing.T, name string) *cli.Context {
	t.Helper()
	dir := t.TempDir()

	ctx := cli.NewContext(cli.Options{
		Config:   filepath.Join(dir, name),
		Language: "py",
	})
	ctx.Clock = &calendar.FixedClock{T: time.Date(2026, 3, 2, 12, 0, 0, 0, time.Local)}
	ctx.Interactive = func() bool { return false }
	ctx.Confirm = func(string, string) (bool, error) { return true, nil }
	t.Cleanup(func() { ctx.Close() })
	return ctx
}

func TestInitCmd(t *testing.T) {
	ctx := newContext(t, "dailyfix.json")

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if _, err := os.Stat(ctx.Config); err != nil {
		t.Fatalf("expected snapshot at %s: %v", ctx.Config, err)
	}

	err := (&InitCmd{}).Run(ctx)
	if !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("second init: got %v, want ErrAlreadyInitialized", err)
	}

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("init --force failed: %v", err)
	}
	backups, err := ctx.Backups().ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 {
		t.Errorf("expected 1 backup after --force, got %d", len(backups))
	}
}

func TestInitCmdSQLite(t *testing.T) {
	ctx := newContext(t, "dailyfix.db")

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	store, err := ctx.Storage()
	if err != nil {
		t.Fatal(err)
	}
	data, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"streak"`) {
		t.Errorf("expected a default snapshot, got %s", data)
	}
}

func TestDoctorCmd(t *testing.T) {
	for _, name := range []string{"dailyfix.json", "dailyfix.db"} {
		t.Run(name, func(t *testing.T) {
			ctx := newContext(t, name)
			if err := (&InitCmd{}).Run(ctx); err != nil {
				t.Fatal(err)
			}
			// Missing backups and the held lock are warnings only
			if err := (&DoctorCmd{}).Run(ctx); err != nil {
				t.Errorf("doctor failed on a healthy store: %v", err)
			}
		})
	}
}

func TestDoctorCmdCorruptSnapshot(t *testing.T) {
	ctx := newContext(t, "dailyfix.json")
	if err := os.WriteFile(ctx.Config, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	err := (&DoctorCmd{}).Run(ctx)
	if !errors.Is(err, ErrChecksFailed) {
		t.Errorf("got %v, want ErrChecksFailed", err)
	}
}

func TestDoctorCmdFutureSchema(t *testing.T) {
	ctx := newContext(t, "dailyfix.db")
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	store, err := ctx.Storage()
	if err != nil {
		t.Fatal(err)
	}
	db := store.(*sqlite.Store).GetDB()
	if db == nil {
		t.Fatal("database connection is nil")
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 999"); err != nil {
		t.Fatalf("failed to set schema version: %v", err)
	}

	err = (&DoctorCmd{}).Run(ctx)
	if !errors.Is(err, ErrChecksFailed) {
		t.Errorf("got %v, want ErrChecksFailed", err)
	}
}

func TestCheckSchemaVersion(t *testing.T) {
	tests := []struct {
		name            string
		current, latest int
		wantErr         bool
	}{
		{"current", 2, 2, false},
		{"behind", 1, 2, true},
		{"ahead", 3, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkSchemaVersion(fakeVersioned{tt.current, tt.latest})
			if (err != nil) != tt.wantErr {
				t.Errorf("checkSchemaVersion() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

type fakeVersioned struct{ current, latest int }

func (f fakeVersioned) SchemaVersion(_ context.Context) (int, int, error) {
	return f.current, f.latest, nil
}

var _ storage.Versioned = fakeVersioned{}

func TestCheckClockTimezone(t *testing.T) {
	if err := checkClockTimezone(time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := checkClockTimezone(time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)); err == nil {
		t.Error("expected an error for a clock set in 1999")
	}
}

func TestDebugPickCmd(t *testing.T) {
	ctx := newContext(t, "dailyfix.json")

	if err := (&DebugPickCmd{Day: "today"}).Run(ctx); err != nil {
		t.Errorf("debug pick today: %v", err)
	}
	if err := (&DebugPickCmd{Day: "2026-01-31", Ordinal: 2}).Run(ctx); err != nil {
		t.Errorf("debug pick with ordinal: %v", err)
	}
	if err := (&DebugPickCmd{Day: "31/01/2026"}).Run(ctx); err == nil {
		t.Error("expected an error for a malformed day")
	}
	if err := (&DebugPickCmd{Day: "today", Ordinal: -1}).Run(ctx); err == nil {
		t.Error("expected an error for a negative ordinal")
	}
}

func TestDebugPathsCmd(t *testing.T) {
	ctx := newContext(t, "dailyfix.db")
	if err := (&DebugPathsCmd{}).Run(ctx); err != nil {
		t.Errorf("debug paths: %v", err)
	}
}
