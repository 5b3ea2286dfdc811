// Package sqlite archives harvested observations in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/couchcryptid/weather-history-harvester/internal/domain"
)

// seq is the row's position within its day; the history table can list two
// reports at the same minute, so time alone is not a key.
const schema = `CREATE TABLE IF NOT EXISTS observations (
	date            TEXT NOT NULL,
	seq             INTEGER NOT NULL,
	time            TEXT NOT NULL,
	temperature_f   TEXT,
	humidity_pct    TEXT,
	wind_speed      TEXT,
	wind_speed_unit TEXT,
	pressure_in     TEXT,
	condition       TEXT,
	harvested_at    TEXT NOT NULL,
	PRIMARY KEY (date, seq)
);`

// Store archives observations one day at a time. The first observation of a
// date clears rows an earlier run stored for it, so re-running a range
// replaces days instead of duplicating them. It implements harvest.Sink.
type Store struct {
	db     *sql.DB
	clock  clockwork.Clock
	logger *slog.Logger

	mu      sync.Mutex
	day     string // date currently being written
	nextSeq int
}

// Open opens (or creates) the database at path and applies the schema.
// A nil clock uses real time for harvested_at.
func Open(path string, clock clockwork.Clock, logger *slog.Logger) (*Store, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		logger.Warn("could not enable WAL mode", "error", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, clock: clock, logger: logger}, nil
}

// Append stores one observation after the ones already written for its date.
func (s *Store) Append(ctx context.Context, obs domain.WeatherObservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	date := obs.Date.Format(domain.DateLayout)
	if date != s.day {
		res, err := s.db.ExecContext(ctx, `DELETE FROM observations WHERE date = ?`, date)
		if err != nil {
			return fmt.Errorf("clear %s: %w", date, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			s.logger.Debug("replacing archived day", "date", date, "rows", n)
		}
		s.day, s.nextSeq = date, 0
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO observations
			(date, seq, time, temperature_f, humidity_pct, wind_speed, wind_speed_unit, pressure_in, condition, harvested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		date, s.nextSeq, obs.Time, obs.TemperatureF, obs.HumidityPct,
		obs.WindSpeed, obs.WindSpeedUnit, obs.PressureIn, obs.Condition,
		s.clock.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert observation: %w", err)
	}
	s.nextSeq++
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
