package narrative

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mcdev12/worldwire/internal/models"
)

// Store persists narrative spend accounting and the headline cache in an
// embedded sqlite database. It is the only durable state in the system;
// sessions themselves are deliberately in-memory.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS narrative_usage (
	day   TEXT PRIMARY KEY,
	spent REAL NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS headline_cache (
	cache_key  TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
`

// NewStore opens (and migrates) the narrative store at path. Use ":memory:"
// for tests.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open narrative store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate narrative store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordSpend adds cost (USD) to today's usage row.
func (s *Store) RecordSpend(cost float64, now time.Time) error {
	day := now.Format("2006-01-02")
	_, err := s.db.Exec(`
		INSERT INTO narrative_usage (day, spent) VALUES (?, ?)
		ON CONFLICT(day) DO UPDATE SET spent = spent + excluded.spent`,
		day, cost)
	if err != nil {
		return fmt.Errorf("record spend: %w", err)
	}
	return nil
}

// SpentToday returns today's accumulated spend.
func (s *Store) SpentToday(now time.Time) (float64, error) {
	return s.spentWhere("day = ?", now.Format("2006-01-02"))
}

// SpentThisMonth returns the month-to-date spend.
func (s *Store) SpentThisMonth(now time.Time) (float64, error) {
	return s.spentWhere("day LIKE ?", now.Format("2006-01")+"%")
}

func (s *Store) spentWhere(where string, arg any) (float64, error) {
	var spent sql.NullFloat64
	err := s.db.QueryRow("SELECT SUM(spent) FROM narrative_usage WHERE "+where, arg).Scan(&spent)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("query spend: %w", err)
	}
	return spent.Float64, nil
}

// CachedHeadlines returns headlines previously stored under key, if any.
func (s *Store) CachedHeadlines(key string) ([]models.Headline, bool) {
	var payload string
	err := s.db.QueryRow("SELECT payload FROM headline_cache WHERE cache_key = ?", key).Scan(&payload)
	if err != nil {
		return nil, false
	}

	var headlines []models.Headline
	if err := json.Unmarshal([]byte(payload), &headlines); err != nil {
		return nil, false
	}
	return headlines, true
}

// CacheHeadlines stores headlines under key, replacing any previous entry.
func (s *Store) CacheHeadlines(key string, headlines []models.Headline, now time.Time) error {
	payload, err := json.Marshal(headlines)
	if err != nil {
		return fmt.Errorf("marshal cached headlines: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO headline_cache (cache_key, payload, created_at) VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at`,
		key, string(payload), now.Unix())
	if err != nil {
		return fmt.Errorf("cache headlines: %w", err)
	}
	return nil
}
