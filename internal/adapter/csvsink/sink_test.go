package csvsink

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/weather-history-harvester/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wantHeader = "date,time,temperature_F,humidity_%,wind_speed_kmh,pressure_in,condition\n"

func testObservation(day int, condition string) domain.WeatherObservation {
	return domain.WeatherObservation{
		Date:          time.Date(2024, time.January, day, 0, 0, 0, 0, time.UTC),
		Time:          "12:00 AM",
		TemperatureF:  "75",
		HumidityPct:   "40",
		WindSpeed:     "10",
		WindSpeedUnit: domain.WindUnitKmh,
		PressureIn:    "29.9",
		Condition:     condition,
	}
}

func TestOpen_WritesHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, wantHeader, string(data))
}

func TestOpen_TruncatesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale,data\n"), 0o600))

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, wantHeader, string(data))
}

func TestOpen_BadPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "out.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open output file")
}

func TestAppend_VisibleBeforeClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Append(context.Background(), testObservation(1, "Clear")))

	// Rows must reach the file without waiting for Close.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, wantHeader+"1/1/2024,12:00 AM,75,40,10,29.9,Clear\n", string(data))
}

func TestAppend_QuotesAndNonASCII(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	s, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, s.Append(context.Background(), testObservation(2, "Light Rain, Mist")))
	require.NoError(t, s.Append(context.Background(), testObservation(3, "ฝนตกเล็กน้อย")))
	require.NoError(t, s.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, domain.CSVHeader, records[0])
	assert.Equal(t, "Light Rain, Mist", records[1][6])
	assert.Equal(t, "ฝนตกเล็กน้อย", records[2][6])
	for _, r := range records {
		assert.Len(t, r, len(domain.CSVHeader))
	}
}

func TestAppend_AfterClose(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "out.csv"))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "second close is a no-op")

	err = s.Append(context.Background(), testObservation(1, "Clear"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink closed")
}

func TestPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "songkhla.csv")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	assert.Equal(t, path, s.Path())
}
