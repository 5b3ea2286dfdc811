// Command clean merges the date and time columns of the accident CSV into a
// single datetime column so it can be joined with the harvested weather file.
//
// Usage:
//
//	go run ./cmd/clean \
//	  -in Alldataaccident.csv \
//	  -out Alldataaccident_fixed.csv \
//	  -drop "ลำดับ,หมายเหตุ"
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/weather-history-harvester/internal/cleaning"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "clean:", err)
		os.Exit(1)
	}
}

func run() error {
	in := flag.String("in", "", "input CSV path")
	out := flag.String("out", "", "output CSV path")
	dateCol := flag.String("date-col", cleaning.DefaultDateColumn, "name of the date column")
	timeCol := flag.String("time-col", cleaning.DefaultTimeColumn, "name of the time column")
	targetCol := flag.String("target-col", cleaning.DefaultTargetColumn, "column receiving the merged datetime")
	drop := flag.String("drop", "", "comma-separated columns to remove")
	dayFirst := flag.Bool("day-first", false, "read ambiguous dates as day/month/year")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	if *in == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -in, -out")
	}
	logger := sharedobs.NewLogger(*logLevel, "text")

	src, err := os.Open(*in)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	stats, err := cleaning.MergeDateTime(src, dst, cleaning.Options{
		DateColumn:   *dateCol,
		TimeColumn:   *timeCol,
		TargetColumn: *targetCol,
		Drop:         splitList(*drop),
		DayFirst:     *dayFirst,
	})
	if cerr := dst.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close output: %w", cerr)
	}
	if err != nil {
		return err
	}

	logger.Info("clean finished",
		"in", *in,
		"out", *out,
		"rows", stats.Rows,
		"merged", stats.Merged,
		"coerced", stats.Coerced,
	)
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
