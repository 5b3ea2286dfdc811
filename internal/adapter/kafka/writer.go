package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/weather-history-harvester/internal/config"
	"github.com/couchcryptid/weather-history-harvester/internal/domain"
)

// Writer publishes observations to a Kafka topic as they are harvested.
// It implements harvest.Sink.
type Writer struct {
	writer *kafkago.Writer
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured observation topic.
// A nil clock uses real time for the harvested_at header.
func NewWriter(cfg *config.Config, clock clockwork.Clock, logger *slog.Logger) *Writer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		// One synchronous write per observation; don't wait for a batch to fill.
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Writer{writer: w, clock: clock, logger: logger}
}

// Append publishes one observation.
func (w *Writer) Append(ctx context.Context, obs domain.WeatherObservation) error {
	msg, err := serializeToMessage(obs, w.clock.Now())
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish observation: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an observation into a Kafka message keyed by
// its date, so the hash balancer keeps all reports of one day on one
// partition, in table order.
func serializeToMessage(obs domain.WeatherObservation, harvestedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(obs)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize observation: %w", err)
	}
	date := obs.Date.Format(domain.DateLayout)
	return kafkago.Message{
		Key:   []byte(date),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "station_date", Value: []byte(date)},
			{Key: "harvested_at", Value: []byte(harvestedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
