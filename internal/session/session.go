// Package session owns the persisted Store for one process and runs every
// user-facing operation against it: picking today's challenge, checking
// answers, crediting the streak, grace, import, export and reset. Each
// mutation is saved before it returns.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/julianstephens/dailyfix/internal/calendar"
	"github.com/julianstephens/dailyfix/internal/catalog"
	"github.com/julianstephens/dailyfix/internal/logger"
	"github.com/julianstephens/dailyfix/internal/migration"
	"github.com/julianstephens/dailyfix/internal/models"
	"github.com/julianstephens/dailyfix/internal/selector"
	"github.com/julianstephens/dailyfix/internal/storage"
	"github.com/julianstephens/dailyfix/internal/streak"
	"github.com/julianstephens/dailyfix/internal/verify"
)

// ErrInvalidImport is returned when an import is not a JSON document. The
// current store is left untouched.
var ErrInvalidImport = errors.New("import is not valid JSON")

// Options for Open.
type Options struct {
	Storage storage.Provider
	Clock   calendar.Clock
	Catalog []models.Challenge
}

// Session is not safe for concurrent use; callers serialize access.
type Session struct {
	provider storage.Provider
	clock    calendar.Clock
	catalog  []models.Challenge
	byID     map[string]models.Challenge
	verifier *verify.Verifier
	store    models.Store
}

// Open initializes the backend and loads the store. A missing or
// unreadable snapshot starts from the default store.
func Open(opts Options) (*Session, error) {
	if len(opts.Catalog) == 0 {
		return nil, catalog.ErrEmptyCatalog
	}
	if opts.Clock == nil {
		opts.Clock = calendar.SystemClock{}
	}
	if err := opts.Storage.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	s := &Session{
		provider: opts.Storage,
		clock:    opts.Clock,
		catalog:  opts.Catalog,
		byID:     make(map[string]models.Challenge, len(opts.Catalog)),
		verifier: verify.New(),
	}
	for _, ch := range opts.Catalog {
		s.byID[ch.ID] = ch
	}
	s.store = s.load()
	return s, nil
}

func (s *Session) load() models.Store {
	data, err := s.provider.Load()
	if err != nil {
		logger.Warn("Failed to load snapshot, starting fresh", "storage", s.provider.GetConfigPath(), "error", err)
		return models.DefaultStore()
	}
	store, err := migration.MigrateJSON(data, s.clock.Now())
	if err != nil {
		logger.Warn("Snapshot is not valid JSON, starting fresh", "storage", s.provider.GetConfigPath(), "error", err)
	}
	return store
}

// save persists the store. When the backend fails the in-memory state is
// rolled back to prev so it never runs ahead of what was saved.
func (s *Session) save(prev models.Store) error {
	if err := s.provider.Save(s.store); err != nil {
		s.store = prev
		return fmt.Errorf("failed to save store: %w", err)
	}
	return nil
}

// Close releases the storage backend.
func (s *Session) Close() error {
	return s.provider.Close()
}

// Store returns the current state. The ledger map is shared; callers must
// not modify it.
func (s *Session) Store() models.Store {
	return s.store
}

// Catalog returns the loaded challenges.
func (s *Session) Catalog() []models.Challenge {
	return s.catalog
}

// Challenge looks up a catalog entry by id.
func (s *Session) Challenge(id string) (models.Challenge, bool) {
	ch, ok := s.byID[id]
	return ch, ok
}

// Day returns the clock's current calendar day.
func (s *Session) Day() calendar.Day {
	return calendar.Today(s.clock)
}

// Today describes the challenge for the next attempt of the current day.
type Today struct {
	Day       calendar.Day
	Count     int // completions already recorded for Day
	Ordinal   int
	Challenge models.Challenge
	Streak    models.StreakState

	// GraceOffered is set when the missed-day notice should offer grace.
	GraceOffered bool
	// AtRisk is set when the next credit will reset a running streak.
	AtRisk bool
}

// Today picks the challenge for the next attempt. Reloading without a new
// completion yields the same pick.
func (s *Session) Today() Today {
	day := s.Day()
	count := len(s.store.Completions.RecordsFor(day))
	idx := selector.Select(day, count, len(s.catalog))
	return Today{
		Day:          day,
		Count:        count,
		Ordinal:      count,
		Challenge:    s.catalog[idx],
		Streak:       s.store.Streak,
		GraceOffered: streak.GraceOffered(s.store, day),
		AtRisk:       streak.AtRisk(s.store.Streak, day),
	}
}

// Outcome of a submission.
type Outcome struct {
	verify.Result
	Recorded   bool
	First      bool // first completion of the day
	Transition streak.Transition
	CountToday int
	Streak     models.StreakState
}

// Submit checks sub against the challenge in t. On success it appends a
// completion for t.Day, credits the streak when that is the first
// completion of the day, and saves. The record is keyed to the day the
// challenge was picked for, even if midnight passed in between.
func (s *Session) Submit(t Today, sub verify.Submission) (Outcome, error) {
	res, err := s.verifier.Check(t.Challenge, sub)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{Result: res, CountToday: len(s.store.Completions.RecordsFor(t.Day)), Streak: s.store.Streak}
	if !res.Correct() {
		logger.Debug("Submission rejected", "challenge", t.Challenge.ID, "outcome", res.Outcome, "distance", res.Distance)
		return out, nil
	}

	prev := s.store.Clone()
	first := s.store.Completions.IsFirstOfDay(t.Day)
	s.store.Completions.Append(t.Day, models.CompletionRecord{
		ChallengeID: t.Challenge.ID,
		CompletedAt: s.clock.Now().UTC().Format(time.RFC3339Nano),
		Type:        string(t.Challenge.Type),
		Difficulty:  t.Challenge.Difficulty,
		UserAnswer:  res.UserAnswer,
	})

	out.Transition = streak.Unchanged
	if first {
		out.Transition = streak.CreditIfFirstOfDay(&s.store.Streak, t.Day)
	} else {
		streak.Touch(&s.store.Streak, t.Day)
	}
	if out.Transition == streak.ClockSkew {
		logger.Warn("Completion is dated before the last credited day; streak left unchanged", "day", t.Day)
	}

	out.Recorded = true
	out.First = first
	out.CountToday = len(s.store.Completions.RecordsFor(t.Day))
	out.Streak = s.store.Streak

	if err := s.save(prev); err != nil {
		return Outcome{Result: res, CountToday: len(prev.Completions.RecordsFor(t.Day)), Streak: prev.Streak}, err
	}
	logger.Info("Challenge completed",
		"challenge", t.Challenge.ID,
		"day", t.Day,
		"count", out.CountToday,
		"transition", out.Transition,
		"streak", s.store.Streak.Current)
	return out, nil
}

// GraceOffered reports whether grace can be armed for today.
func (s *Session) GraceOffered() bool {
	return streak.GraceOffered(s.store, s.Day())
}

// ArmGrace spends the one-time grace on today. It returns false, and saves
// nothing, when grace is not on offer.
func (s *Session) ArmGrace() (bool, error) {
	day := s.Day()
	prev := s.store.Clone()
	if !streak.MaybeArmGrace(&s.store, day) {
		return false, nil
	}
	if err := s.save(prev); err != nil {
		return false, err
	}
	logger.Info("Grace armed", "day", day)
	return true, nil
}

// SetGraceEnabled toggles the grace setting.
func (s *Session) SetGraceEnabled(enabled bool) error {
	if s.store.Settings.GraceEnabled == enabled {
		return nil
	}
	prev := s.store.Clone()
	s.store.Settings.GraceEnabled = enabled
	if err := s.save(prev); err != nil {
		return err
	}
	logger.Info("Setting changed", "graceEnabled", enabled)
	return nil
}

// Snapshot renders the store as the export document.
func (s *Session) Snapshot() ([]byte, error) {
	return storage.Encode(s.store)
}

// Export writes the store as indented JSON.
func (s *Session) Export(w io.Writer) error {
	data, err := s.Snapshot()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Import replaces the store with a migrated copy of the document in r.
func (s *Session) Import(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read import: %w", err)
	}
	return s.ImportBytes(data)
}

// ImportBytes is Import for an in-memory document.
func (s *Session) ImportBytes(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	prev := s.store
	s.store = migration.Migrate(raw, s.clock.Now())
	if err := s.save(prev); err != nil {
		return err
	}
	logger.Info("Store imported", "completions", s.store.Completions.TotalCount(), "streak", s.store.Streak.Current)
	return nil
}

// Reset replaces everything with the default store.
func (s *Session) Reset() error {
	prev := s.store
	s.store = models.DefaultStore()
	if err := s.save(prev); err != nil {
		return err
	}
	logger.Info("Store reset")
	return nil
}

// Stats summarizes progress.
type Stats struct {
	Current        int
	Best           int
	Total          int
	Today          int
	Days           int
	GraceEnabled   bool
	GraceAvailable bool
	GracePending   *calendar.Day
	LastCompleted  *calendar.Day
}

func (s *Session) Stats() Stats {
	st := s.store.Streak
	return Stats{
		Current:        st.Current,
		Best:           st.Best,
		Total:          s.store.Completions.TotalCount(),
		Today:          len(s.store.Completions.RecordsFor(s.Day())),
		Days:           len(s.store.Completions),
		GraceEnabled:   s.store.Settings.GraceEnabled,
		GraceAvailable: st.GraceAvailable,
		GracePending:   st.GraceUsedForDayKey,
		LastCompleted:  st.LastCompletedDayKey,
	}
}

// DaySummary is one row of the history view.
type DaySummary struct {
	Day     calendar.Day
	Records []models.CompletionRecord
}

// History lists days with completions, newest first. limit <= 0 means all.
func (s *Session) History(limit int) []DaySummary {
	days := s.store.Completions.Days()
	out := make([]DaySummary, 0, len(days))
	for _, day := range days {
		recs := s.store.Completions.RecordsFor(day)
		if len(recs) == 0 {
			continue
		}
		out = append(out, DaySummary{Day: day, Records: recs})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Hint returns hint n for the challenge.
func (s *Session) Hint(ch models.Challenge, n int) string {
	return verify.Hint(ch, n)
}

// Solution renders the answer for the challenge.
func (s *Session) Solution(ch models.Challenge) string {
	return verify.Solution(ch)
}
