// Package harvest runs the day loop: for each date in a range it selects the
// day on the history page, extracts the table, and hands every observation to
// the sinks, tolerating per-day failures.
package harvest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/weather-history-harvester/internal/domain"
	"github.com/couchcryptid/weather-history-harvester/internal/observability"
)

// Session is a live browser page bound to the history site.
type Session interface {
	// SelectDay points the page at day. It fails with domain.ErrSelectionTimeout
	// or domain.ErrElementNotFound when the page does not cooperate.
	SelectDay(ctx context.Context, day time.Time) error
	// Extract decodes the rows currently shown in the results table.
	Extract(ctx context.Context, day time.Time) ([]domain.WeatherObservation, error)
	Close() error
}

// SessionOpener starts a session with targetURL loaded.
type SessionOpener interface {
	Open(ctx context.Context, targetURL string) (Session, error)
}

// OpenerFunc adapts a function to SessionOpener.
type OpenerFunc func(ctx context.Context, targetURL string) (Session, error)

func (f OpenerFunc) Open(ctx context.Context, targetURL string) (Session, error) {
	return f(ctx, targetURL)
}

// Harvester owns one run over a date range.
type Harvester struct {
	opener    SessionOpener
	targetURL string
	sink      Sink
	pacer     Pacer
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool

	mu       sync.Mutex
	progress Progress

	windUnit       string // first wind unit seen in the run
	windUnitsMixed bool
}

// New creates a Harvester. A nil pacer means no pause between days.
func New(opener SessionOpener, targetURL string, sink Sink, pacer Pacer, logger *slog.Logger, metrics *observability.Metrics) *Harvester {
	if pacer == nil {
		pacer = FixedPacer{}
	}
	return &Harvester{
		opener:    opener,
		targetURL: targetURL,
		sink:      sink,
		pacer:     pacer,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once the browser session is open.
func (h *Harvester) CheckReadiness(_ context.Context) error {
	if !h.ready.Load() {
		return errors.New("browser session is not open")
	}
	return nil
}

// Progress is a point-in-time view of a run, served on the status endpoint.
type Progress struct {
	Start      string `json:"start,omitempty"`
	End        string `json:"end,omitempty"`
	CurrentDay string `json:"current_day,omitempty"`
	Recorded   int    `json:"recorded"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
	Rows       int    `json:"rows"`
}

// Progress returns a snapshot of the current (or last) run.
func (h *Harvester) Progress() Progress {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.progress
}

func (h *Harvester) record(result domain.DayResult) {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch result.State {
	case domain.DayRecorded:
		h.progress.Recorded++
	case domain.DaySkipped:
		h.progress.Skipped++
	case domain.DayFailed:
		h.progress.Failed++
	}
	h.progress.Rows += result.Rows
}

// Run visits every date of rng in ascending order. A day whose selection
// fails is logged and skipped; the returned error is non-nil only when the
// run could not continue at all (session, sink, or cancellation), in which
// case the summary covers the days processed so far. The session is closed
// on every return path.
func (h *Harvester) Run(ctx context.Context, rng domain.DateRange) (summary domain.RunSummary, err error) {
	summary.StartedAt = clock.Now()
	h.windUnit, h.windUnitsMixed = "", false
	h.mu.Lock()
	h.progress = Progress{
		Start: rng.Start.Format(domain.DateLayout),
		End:   rng.End.Format(domain.DateLayout),
	}
	h.mu.Unlock()
	h.metrics.RunInProgress.Set(1)
	defer func() {
		summary.FinishedAt = clock.Now()
		h.metrics.RunInProgress.Set(0)
	}()

	session, err := h.opener.Open(ctx, h.targetURL)
	if err != nil {
		return summary, fmt.Errorf("open session: %w", err)
	}
	h.ready.Store(true)
	defer func() {
		h.ready.Store(false)
		if cerr := session.Close(); cerr != nil {
			h.logger.Warn("close session failed", "error", cerr)
		}
	}()

	h.logger.Info("harvest started",
		"start", rng.Start.Format(domain.DateLayout),
		"end", rng.End.Format(domain.DateLayout),
		"days", rng.Len(),
	)

	for _, day := range rng.Days() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result, err := h.processDay(ctx, session, day)
		if err != nil {
			return summary, err
		}
		summary.Days = append(summary.Days, result)
		h.record(result)

		delay := h.pacer.Next(result)
		h.metrics.PaceDelay.Set(delay.Seconds())
		if !sleepWithContext(ctx, delay) {
			return summary, ctx.Err()
		}
	}

	h.logger.Info("harvest finished",
		"recorded", summary.Count(domain.DayRecorded),
		"skipped", summary.Count(domain.DaySkipped),
		"failed", summary.Count(domain.DayFailed),
		"rows", summary.Rows(),
	)
	return summary, nil
}

// processDay runs select, extract, and append for one date. Selection failures
// become a failed DayResult; any other error is returned and ends the run.
func (h *Harvester) processDay(ctx context.Context, session Session, day time.Time) (domain.DayResult, error) {
	start := clock.Now()
	dateStr := day.Format(domain.DateLayout)
	h.metrics.CurrentDay.Set(float64(day.Unix()))
	h.mu.Lock()
	h.progress.CurrentDay = dateStr
	h.mu.Unlock()
	h.logger.Info("fetching day", "date", dateStr)

	result := domain.DayResult{Date: day}
	defer func() {
		h.metrics.DayDuration.Observe(clock.Since(start).Seconds())
	}()

	observations, err := h.selectAndExtract(ctx, session, day)
	if err != nil {
		if ctx.Err() != nil || !domain.IsDayFailure(err) {
			return result, fmt.Errorf("harvest %s: %w", dateStr, err)
		}
		h.logger.Warn("day failed", "date", dateStr, "error", err)
		h.metrics.Days.WithLabelValues(string(domain.DayFailed)).Inc()
		result.State = domain.DayFailed
		result.Err = err
		return result, nil
	}

	if len(observations) == 0 {
		h.logger.Info("no data found", "date", dateStr)
		h.metrics.Days.WithLabelValues(string(domain.DaySkipped)).Inc()
		result.State = domain.DaySkipped
		return result, nil
	}

	for _, obs := range observations {
		if err := h.sink.Append(ctx, obs); err != nil {
			return result, fmt.Errorf("write %s: %w", dateStr, err)
		}
		result.Rows++
		h.metrics.ObservationsWritten.Inc()
		h.noteWindUnit(dateStr, obs.WindSpeedUnit)
	}

	h.logger.Info("day recorded", "date", dateStr, "rows", result.Rows)
	h.metrics.Days.WithLabelValues(string(domain.DayRecorded)).Inc()
	result.State = domain.DayRecorded
	return result, nil
}

func (h *Harvester) selectAndExtract(ctx context.Context, session Session, day time.Time) ([]domain.WeatherObservation, error) {
	if err := session.SelectDay(ctx, day); err != nil {
		return nil, err
	}
	return session.Extract(ctx, day)
}

// noteWindUnit warns once per run when the wind column starts mixing units,
// since the CSV column does not record them.
func (h *Harvester) noteWindUnit(dateStr, unit string) {
	if unit == "" || h.windUnitsMixed {
		return
	}
	if h.windUnit == "" {
		h.windUnit = unit
		return
	}
	if unit != h.windUnit {
		h.windUnitsMixed = true
		h.logger.Warn("wind speed units are mixed in this run",
			"date", dateStr, "first_unit", h.windUnit, "unit", unit)
	}
}
