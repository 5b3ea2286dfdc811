// Package cleaning prepares the accident CSV for joining with the harvested
// weather file: it folds separate date and time columns into one datetime
// column and drops columns the dashboard does not use.
package cleaning

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"
)

// OutputLayout is how merged datetimes are written.
const OutputLayout = "2006-01-02 15:04:05"

// Column names used by the accident export.
const (
	DefaultDateColumn   = "วันที่เกิดเหตุ"
	DefaultTimeColumn   = "เวลา"
	DefaultTargetColumn = "วันเวลาเกิด"
)

// Options selects the columns to merge.
type Options struct {
	DateColumn   string
	TimeColumn   string
	TargetColumn string
	// Drop lists columns removed from the output. Unknown names are ignored.
	Drop []string
	// DayFirst reads 02/01/2024 as 2 January instead of February 1.
	DayFirst bool
}

// Stats counts what MergeDateTime did.
type Stats struct {
	Rows    int
	Merged  int
	Coerced int // rows whose date/time could not be parsed; target left empty
}

var (
	monthFirstLayouts = []string{"1/2/2006", "01/02/2006", "1-2-2006"}
	dayFirstLayouts   = []string{"2/1/2006", "02/01/2006", "2-1-2006"}
	isoLayouts        = []string{"2006-01-02", "2006/01/02", "2-Jan-2006", "2 Jan 2006", "January 2, 2006"}
	timeLayouts       = []string{"15:04:05", "15:04", "15.04", "3:04 PM", "3:04:05 PM", "3:04PM", "3PM"}
	// Some exports already carry a timestamp in the date column.
	stampLayouts = []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02 15:04"}
)

// MergeDateTime copies the CSV in r to w, writing the combined datetime of
// the date and time columns into the target column. The target column is
// overwritten when it exists and appended otherwise. Values that cannot be
// parsed produce an empty target cell rather than an error.
func MergeDateTime(r io.Reader, w io.Writer, opts Options) (Stats, error) {
	var stats Stats

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return stats, errors.New("input has no header row")
		}
		return stats, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	dateIdx := slices.Index(header, opts.DateColumn)
	if dateIdx < 0 {
		return stats, fmt.Errorf("date column %q not found", opts.DateColumn)
	}
	timeIdx := slices.Index(header, opts.TimeColumn)
	if timeIdx < 0 {
		return stats, fmt.Errorf("time column %q not found", opts.TimeColumn)
	}
	targetIdx := slices.Index(header, opts.TargetColumn)
	if targetIdx < 0 {
		header = append(header, opts.TargetColumn)
		targetIdx = len(header) - 1
	}
	keep := keptColumns(header, opts.Drop)

	cw := csv.NewWriter(w)
	if err := cw.Write(project(header, keep)); err != nil {
		return stats, fmt.Errorf("write header: %w", err)
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("read row %d: %w", stats.Rows+1, err)
		}
		stats.Rows++

		for len(rec) < len(header) {
			rec = append(rec, "")
		}
		merged, ok := combine(cell(rec, dateIdx), cell(rec, timeIdx), opts.DayFirst)
		if ok {
			rec[targetIdx] = merged.Format(OutputLayout)
			stats.Merged++
		} else {
			rec[targetIdx] = ""
			stats.Coerced++
		}

		if err := cw.Write(project(rec, keep)); err != nil {
			return stats, fmt.Errorf("write row %d: %w", stats.Rows, err)
		}
	}

	cw.Flush()
	return stats, cw.Error()
}

func cell(rec []string, i int) string {
	if i < len(rec) {
		return strings.TrimSpace(rec[i])
	}
	return ""
}

// combine parses a date and an optional time of day into one timestamp.
func combine(date, clock string, dayFirst bool) (time.Time, bool) {
	if date == "" {
		return time.Time{}, false
	}
	if clock == "" {
		for _, layout := range stampLayouts {
			if t, err := time.Parse(layout, date); err == nil {
				return t, true
			}
		}
	}

	d, ok := parseDate(date, dayFirst)
	if !ok {
		return time.Time{}, false
	}
	if clock == "" {
		return d, true
	}
	tod, ok := parseClock(clock)
	if !ok {
		return time.Time{}, false
	}
	return d.Add(tod), true
}

func parseDate(s string, dayFirst bool) (time.Time, bool) {
	layouts := monthFirstLayouts
	if dayFirst {
		layouts = dayFirstLayouts
	}
	for _, group := range [][]string{isoLayouts, layouts} {
		for _, layout := range group {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func parseClock(s string) (time.Duration, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), " น.")
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, strings.ToUpper(s))
		if err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, true
		}
	}
	return 0, false
}

// keptColumns returns the indexes of header not named in drop.
func keptColumns(header, drop []string) []int {
	keep := make([]int, 0, len(header))
	for i, name := range header {
		if !slices.Contains(drop, name) {
			keep = append(keep, i)
		}
	}
	return keep
}

func project(rec []string, keep []int) []string {
	out := make([]string, len(keep))
	for j, i := range keep {
		out[j] = rec[i]
	}
	return out
}
