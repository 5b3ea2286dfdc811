package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDay = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func TestDecodeRow(t *testing.T) {
	t.Run("full row", func(t *testing.T) {
		cells := []string{"12:00 AM", "75 °F", "-", "40 %", "-", "10 km/h", "-", "29.9 in", "-", "Clear"}
		obs, err := DecodeRow(testDay, cells)

		require.NoError(t, err)
		assert.Equal(t, testDay, obs.Date)
		assert.Equal(t, "12:00 AM", obs.Time)
		assert.Equal(t, "75", obs.TemperatureF)
		assert.Equal(t, "40", obs.HumidityPct)
		assert.Equal(t, "10", obs.WindSpeed)
		assert.Equal(t, WindUnitKmh, obs.WindSpeedUnit)
		assert.Equal(t, "29.9", obs.PressureIn)
		assert.Equal(t, "Clear", obs.Condition)
		assert.Equal(t, []string{"1/1/2024", "12:00 AM", "75", "40", "10", "29.9", "Clear"}, obs.Record())
	})

	t.Run("mph wind", func(t *testing.T) {
		cells := []string{"1:30 PM", "88 °F", "77 °F", "70 %", "SW", "6 mph", "0 mph", "29.8 in", "0.0 in", "Partly Cloudy"}
		obs, err := DecodeRow(testDay, cells)

		require.NoError(t, err)
		assert.Equal(t, "6", obs.WindSpeed)
		assert.Equal(t, WindUnitMph, obs.WindSpeedUnit)
		assert.Equal(t, "Partly Cloudy", obs.Condition)
	})

	t.Run("extra cells are ignored", func(t *testing.T) {
		cells := []string{"2:00 AM", "74 °F", "-", "90 %", "-", "0 km/h", "-", "29.8 in", "-", "Fair", "extra"}
		obs, err := DecodeRow(testDay, cells)

		require.NoError(t, err)
		assert.Equal(t, "Fair", obs.Condition)
	})

	t.Run("short row", func(t *testing.T) {
		cells := []string{"12:00 AM", "75 °F", "-", "40 %", "-", "10 km/h", "-", "29.9 in", "-"}
		_, err := DecodeRow(testDay, cells)

		require.ErrorIs(t, err, ErrMalformedRow)
	})

	t.Run("empty row", func(t *testing.T) {
		_, err := DecodeRow(testDay, nil)
		require.ErrorIs(t, err, ErrMalformedRow)
	})

	t.Run("date is truncated to the day", func(t *testing.T) {
		cells := []string{"12:00 AM", "75 °F", "-", "40 %", "-", "10 km/h", "-", "29.9 in", "-", "Clear"}
		obs, err := DecodeRow(testDay.Add(13*time.Hour), cells)

		require.NoError(t, err)
		assert.Equal(t, testDay, obs.Date)
	})
}

func TestStripUnits(t *testing.T) {
	tests := []struct {
		name  string
		strip func(string) string
		input string
		want  string
	}{
		{"temperature", StripTemperature, "75 °F", "75"},
		{"humidity", StripHumidity, "40 %", "40"},
		{"pressure", StripPressure, "29.9 in", "29.9"},
		{"padded", StripTemperature, "  75 °F  ", "75"},
		{"no unit", StripHumidity, "40", "40"},
		{"empty", StripPressure, "", ""},
		{"kmh", func(s string) string { v, _ := StripWindSpeed(s); return v }, "10 km/h", "10"},
		{"mph", func(s string) string { v, _ := StripWindSpeed(s); return v }, "6 mph", "6"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.strip(tc.input)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, tc.strip(got), "stripping must be idempotent")
		})
	}
}

func TestStripWindSpeed_Unit(t *testing.T) {
	_, unit := StripWindSpeed("10 km/h")
	assert.Equal(t, WindUnitKmh, unit)

	_, unit = StripWindSpeed("6 mph")
	assert.Equal(t, WindUnitMph, unit)

	_, unit = StripWindSpeed("0")
	assert.Empty(t, unit)
}
