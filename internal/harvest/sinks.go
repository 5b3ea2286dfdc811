package harvest

import (
	"context"
	"fmt"

	"github.com/couchcryptid/weather-history-harvester/internal/domain"
)

// Sink receives observations as soon as they are extracted.
type Sink interface {
	Append(ctx context.Context, obs domain.WeatherObservation) error
}

// Sinks fans each observation out to every sink in order, stopping at the
// first error.
type Sinks []Sink

func (s Sinks) Append(ctx context.Context, obs domain.WeatherObservation) error {
	for i, sink := range s {
		if err := sink.Append(ctx, obs); err != nil {
			return fmt.Errorf("sink %d: %w", i, err)
		}
	}
	return nil
}
