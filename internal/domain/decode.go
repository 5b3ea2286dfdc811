package domain

import (
	"fmt"
	"strings"
	"time"
)

// Positions of the columns we keep in a history table row. The remaining
// cells (dew point, wind direction, gust, precipitation) are ignored.
const (
	colTime        = 0
	colTemperature = 1
	colHumidity    = 3
	colWindSpeed   = 5
	colPressure    = 7
	colCondition   = 9

	// MinRowCells is the smallest cell count a row needs to be decoded.
	MinRowCells = 10
)

const (
	WindUnitKmh = "km/h"
	WindUnitMph = "mph"
)

// DecodeRow maps the cells of one table row to an observation for the given date.
// Rows with fewer than MinRowCells cells fail with ErrMalformedRow.
func DecodeRow(date time.Time, cells []string) (WeatherObservation, error) {
	if len(cells) < MinRowCells {
		return WeatherObservation{}, fmt.Errorf("%w: %d cells, want at least %d", ErrMalformedRow, len(cells), MinRowCells)
	}

	wind, unit := StripWindSpeed(cells[colWindSpeed])

	return WeatherObservation{
		Date:          Day(date),
		Time:          strings.TrimSpace(cells[colTime]),
		TemperatureF:  StripTemperature(cells[colTemperature]),
		HumidityPct:   StripHumidity(cells[colHumidity]),
		WindSpeed:     wind,
		WindSpeedUnit: unit,
		PressureIn:    StripPressure(cells[colPressure]),
		Condition:     strings.TrimSpace(cells[colCondition]),
	}, nil
}

// StripTemperature removes the " °F" suffix, e.g. "75 °F" -> "75".
func StripTemperature(s string) string { return stripUnit(s, " °F") }

// StripHumidity removes the " %" suffix, e.g. "40 %" -> "40".
func StripHumidity(s string) string { return stripUnit(s, " %") }

// StripPressure removes the " in" suffix, e.g. "29.9 in" -> "29.9".
func StripPressure(s string) string { return stripUnit(s, " in") }

// StripWindSpeed removes either a " km/h" or a " mph" suffix and reports which
// one was present. The site is not consistent about wind units, so callers
// must not assume km/h.
func StripWindSpeed(s string) (value, unit string) {
	switch {
	case strings.Contains(s, " "+WindUnitKmh):
		unit = WindUnitKmh
	case strings.Contains(s, " "+WindUnitMph):
		unit = WindUnitMph
	}
	return stripUnit(s, " "+WindUnitKmh, " "+WindUnitMph), unit
}

func stripUnit(s string, suffixes ...string) string {
	for _, suffix := range suffixes {
		s = strings.ReplaceAll(s, suffix, "")
	}
	return strings.TrimSpace(s)
}
