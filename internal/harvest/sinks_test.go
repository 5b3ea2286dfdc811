package harvest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-history-harvester/internal/domain"
)

type recordingSink struct {
	name  string
	calls *[]string
	err   error
}

func (r recordingSink) Append(_ context.Context, _ domain.WeatherObservation) error {
	*r.calls = append(*r.calls, r.name)
	return r.err
}

func TestSinks_FanOutInOrder(t *testing.T) {
	var calls []string
	s := Sinks{recordingSink{name: "csv", calls: &calls}, recordingSink{name: "kafka", calls: &calls}}

	require.NoError(t, s.Append(context.Background(), domain.WeatherObservation{}))
	assert.Equal(t, []string{"csv", "kafka"}, calls)
}

func TestSinks_StopsAtFirstError(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	s := Sinks{
		recordingSink{name: "csv", calls: &calls, err: boom},
		recordingSink{name: "kafka", calls: &calls},
	}

	err := s.Append(context.Background(), domain.WeatherObservation{})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"csv"}, calls)
}
