package selector

import (
	"testing"

	"github.com/julianstephens/dailyfix/internal/calendar"
)

func TestHashKnownVectors(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
	}{
		{"", 2166136261},
		{"a", 0xe40c292c},
		{"foobar", 0xbf9cf968},
	}
	for _, tt := range tests {
		if got := Hash(tt.in); got != tt.want {
			t.Errorf("Hash(%q) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
}

func TestSeed(t *testing.T) {
	if got := Seed("2026-01-05", 2); got != "dailyfix|2026-01-05|2" {
		t.Errorf("Seed() = %q", got)
	}
}

func TestSelectDeterministic(t *testing.T) {
	day := calendar.Day("2026-04-01")
	first := Select(day, 0, 17)
	for i := 0; i < 100; i++ {
		if got := Select(day, 0, 17); got != first {
			t.Fatalf("Select is not deterministic: %d != %d", got, first)
		}
	}
	if want := int(Hash("dailyfix|2026-04-01|0") % 17); first != want {
		t.Errorf("Select() = %d, want %d", first, want)
	}
}

func TestSelectInRange(t *testing.T) {
	day := calendar.Day("2026-01-01")
	for ordinal := 0; ordinal < 50; ordinal++ {
		for _, size := range []int{1, 2, 7, 31} {
			idx := Select(day.AddDays(ordinal), ordinal, size)
			if idx < 0 || idx >= size {
				t.Fatalf("Select(ordinal=%d, size=%d) = %d out of range", ordinal, size, idx)
			}
		}
	}
}

func TestSelectSpreadsAcrossCatalog(t *testing.T) {
	const size = 10
	seen := make(map[int]bool)
	day := calendar.Day("2026-01-01")
	for i := 0; i < 365; i++ {
		seen[Select(day.AddDays(i), 0, size)] = true
	}
	if len(seen) < size/2 {
		t.Errorf("expected selection to cover most of the catalog, covered %d of %d", len(seen), size)
	}
}

func TestSelectPanicsOnEmptyCatalog(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for empty catalog")
		}
	}()
	Select("2026-01-01", 0, 0)
}
