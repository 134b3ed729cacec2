package postgres

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/julianstephens/dailyfix/internal/models"
)

// Set DAILYFIX_TEST_POSTGRES to a password-less connection string, e.g.
// "postgres://dailyfix@localhost:5432/dailyfix_test?sslmode=disable".
func TestStoreIntegration(t *testing.T) {
	connStr := os.Getenv("DAILYFIX_TEST_POSTGRES")
	if connStr == "" {
		t.Skip("DAILYFIX_TEST_POSTGRES not set, skipping PostgreSQL integration test")
	}

	s := New(connStr)
	if err := s.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer s.Close()

	store := models.DefaultStore()
	store.Streak.Current = 3
	store.Streak.Best = 3
	store.Completions.Append("2026-05-01", models.CompletionRecord{ChallengeID: "py-fix-001", CompletedAt: "2026-05-01T10:00:00Z", Type: "fix_code", Difficulty: "easy"})
	store.Completions.Append("2026-05-01", models.CompletionRecord{ChallengeID: "py-mcq-001", CompletedAt: "2026-05-01T10:05:00Z", Type: "mcq", Difficulty: "easy", UserAnswer: "1"})

	if err := s.Save(store); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := s.Load()
	if err != nil || data == nil {
		t.Fatalf("Load = %v, %v", data, err)
	}
	var got models.Store
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	if got.Streak.Current != 3 || got.Completions.TotalCount() != 2 {
		t.Errorf("round trip lost data: %+v", got)
	}

	n, err := s.IndexedCompletions()
	if err != nil || n != 2 {
		t.Errorf("IndexedCompletions = %d, %v; want 2", n, err)
	}

	if err := s.Save(models.DefaultStore()); err != nil {
		t.Fatalf("reset Save failed: %v", err)
	}
	if n, _ := s.IndexedCompletions(); n != 0 {
		t.Errorf("index has %d rows after reset", n)
	}
}
