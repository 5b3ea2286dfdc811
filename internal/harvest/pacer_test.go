package harvest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/weather-history-harvester/internal/domain"
)

func TestFixedPacer(t *testing.T) {
	p := FixedPacer{Delay: time.Second}
	assert.Equal(t, time.Second, p.Next(domain.DayResult{State: domain.DayRecorded}))
	assert.Equal(t, time.Second, p.Next(domain.DayResult{State: domain.DayFailed}))
}

func TestBackoffPacer(t *testing.T) {
	p := NewBackoffPacer(time.Second, 5*time.Second)
	failed := domain.DayResult{State: domain.DayFailed}

	assert.Equal(t, time.Second, p.Next(domain.DayResult{State: domain.DayRecorded}))
	assert.Equal(t, time.Second, p.Next(failed))
	assert.Equal(t, 2*time.Second, p.Next(failed))
	assert.Equal(t, 4*time.Second, p.Next(failed))
	assert.Equal(t, 5*time.Second, p.Next(failed))
	assert.Equal(t, 5*time.Second, p.Next(failed))

	// A skipped day still means the site answered, so the pause resets.
	assert.Equal(t, time.Second, p.Next(domain.DayResult{State: domain.DaySkipped}))
	assert.Equal(t, time.Second, p.Next(failed))
}

func TestSleepWithContext(t *testing.T) {
	assert.True(t, sleepWithContext(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, sleepWithContext(ctx, 0))
	assert.False(t, sleepWithContext(ctx, time.Hour))
}
