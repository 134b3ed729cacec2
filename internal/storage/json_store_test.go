package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/dailyfix/internal/models"
)

func TestJSONStoreLoadMissing(t *testing.T) {
	s := NewJSONStore(filepath.Join(t.TempDir(), "dailyfix.json"))
	if err := s.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	data, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if data != nil {
		t.Errorf("expected nil for a missing snapshot, got %q", data)
	}
}

func TestJSONStoreSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "dailyfix.json")
	s := NewJSONStore(path)
	if err := s.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	store := models.DefaultStore()
	store.Streak.Current = 1
	store.Streak.Best = 1
	store.Streak.LastCreditedDayKey = models.DayPtr("2026-06-01")
	store.Completions.Append("2026-06-01", models.CompletionRecord{ChallengeID: "py-fix-002", CompletedAt: "2026-06-01T07:00:00Z", Type: "fix_code", Difficulty: "easy", UserAnswer: "for i in range(1, 6):\n    print(i)\n"})

	if err := s.Save(store); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("snapshot permissions = %o, want 600", perm)
	}

	data, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !strings.Contains(string(data), `"lastCreditedDayKey": "2026-06-01"`) {
		t.Errorf("snapshot is not indented camelCase JSON:\n%s", data)
	}
	var got models.Store
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("snapshot does not decode: %v", err)
	}
	if got.Completions.RecordsFor("2026-06-01")[0].UserAnswer != store.Completions.RecordsFor("2026-06-01")[0].UserAnswer {
		t.Error("user answer not preserved")
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestEncodeNilLedger(t *testing.T) {
	data, err := Encode(models.Store{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"completions": {}`) {
		t.Errorf("nil ledger should encode as an empty object:\n%s", data)
	}
}
