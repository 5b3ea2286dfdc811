package harvest

import (
	"context"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"

	"github.com/couchcryptid/weather-history-harvester/internal/domain"
)

// Pacer decides how long to pause after a day before moving to the next one.
type Pacer interface {
	Next(result domain.DayResult) time.Duration
}

// FixedPacer pauses for the same delay after every day.
type FixedPacer struct {
	Delay time.Duration
}

func (p FixedPacer) Next(domain.DayResult) time.Duration {
	return p.Delay
}

// BackoffPacer pauses for Base after a recorded or skipped day and doubles
// the pause for each consecutive failed day, capped at Max.
type BackoffPacer struct {
	Base    time.Duration
	Max     time.Duration
	current time.Duration
}

// NewBackoffPacer creates a BackoffPacer starting at base.
func NewBackoffPacer(base, maxDelay time.Duration) *BackoffPacer {
	return &BackoffPacer{Base: base, Max: maxDelay}
}

func (p *BackoffPacer) Next(result domain.DayResult) time.Duration {
	if result.State != domain.DayFailed {
		p.current = 0
		return p.Base
	}
	if p.current == 0 {
		p.current = p.Base
	} else {
		p.current = retry.NextBackoff(p.current, p.Max)
	}
	return p.current
}

// sleepWithContext pauses for d on the package clock so tests can advance a
// fake clock. It returns false if ctx ended first, including for d <= 0.
func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
