// Package csvsink persists observations to the harvest CSV file.
package csvsink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"github.com/couchcryptid/weather-history-harvester/internal/domain"
)

// Sink appends observations to a CSV file, flushing after every row so that
// days already written survive a crash later in the run.
type Sink struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
	closed bool
}

// Open creates or truncates the file at path and writes the header row.
func Open(path string) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open output file: %w", err)
	}

	s := &Sink{file: f, writer: csv.NewWriter(f)}
	if err := s.write(domain.CSVHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	return s, nil
}

// Append writes one observation row.
func (s *Sink) Append(_ context.Context, obs domain.WeatherObservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("append to %s: sink closed", s.file.Name())
	}
	if err := s.write(obs.Record()); err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	return nil
}

// Path returns the file being written.
func (s *Sink) Path() string {
	return s.file.Name()
}

// Close flushes buffered data and closes the file. It is safe to call more than once.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}

func (s *Sink) write(record []string) error {
	if err := s.writer.Write(record); err != nil {
		return err
	}
	s.writer.Flush()
	return s.writer.Error()
}
