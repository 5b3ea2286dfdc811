package domain

import (
	"strconv"
	"time"
)

// CSVHeader is the fixed header row of the harvested CSV file.
var CSVHeader = []string{"date", "time", "temperature_F", "humidity_%", "wind_speed_kmh", "pressure_in", "condition"}

// WeatherObservation is one decoded row of the daily history table.
// Numeric fields keep the source text with the unit suffix removed.
type WeatherObservation struct {
	Date          time.Time `json:"date"`
	Time          string    `json:"time"`
	TemperatureF  string    `json:"temperature_f"`
	HumidityPct   string    `json:"humidity_pct"`
	WindSpeed     string    `json:"wind_speed"`
	WindSpeedUnit string    `json:"wind_speed_unit,omitempty"` // "km/h", "mph", or "" when no suffix was present
	PressureIn    string    `json:"pressure_in"`
	Condition     string    `json:"condition"`
}

// Record renders the observation in CSVHeader column order.
func (o WeatherObservation) Record() []string {
	return []string{
		FormatDate(o.Date),
		o.Time,
		o.TemperatureF,
		o.HumidityPct,
		o.WindSpeed,
		o.PressureIn,
		o.Condition,
	}
}

// FormatDate renders a date as M/D/YYYY without zero padding, e.g. 1/3/2024.
func FormatDate(d time.Time) string {
	return strconv.Itoa(int(d.Month())) + "/" + strconv.Itoa(d.Day()) + "/" + strconv.Itoa(d.Year())
}

// DayState is the terminal state of one day in a run.
type DayState string

const (
	DayRecorded DayState = "recorded"
	DaySkipped  DayState = "skipped"
	DayFailed   DayState = "failed"
)

// DayResult records what happened to a single date.
type DayResult struct {
	Date  time.Time
	State DayState
	Rows  int
	Err   error // set only when State is DayFailed
}

// RunSummary collects per-day results for a run, in visiting order.
type RunSummary struct {
	Days       []DayResult
	StartedAt  time.Time
	FinishedAt time.Time
}

// Count returns the number of days that ended in the given state.
func (s RunSummary) Count(state DayState) int {
	n := 0
	for _, d := range s.Days {
		if d.State == state {
			n++
		}
	}
	return n
}

// Rows returns the total number of observations written during the run.
func (s RunSummary) Rows() int {
	n := 0
	for _, d := range s.Days {
		n += d.Rows
	}
	return n
}
