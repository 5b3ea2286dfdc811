package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-history-harvester/internal/adapter/browser"
	"github.com/couchcryptid/weather-history-harvester/internal/adapter/csvsink"
	httpadapter "github.com/couchcryptid/weather-history-harvester/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/weather-history-harvester/internal/adapter/kafka"
	"github.com/couchcryptid/weather-history-harvester/internal/adapter/sqlite"
	"github.com/couchcryptid/weather-history-harvester/internal/config"
	"github.com/couchcryptid/weather-history-harvester/internal/domain"
	"github.com/couchcryptid/weather-history-harvester/internal/harvest"
	"github.com/couchcryptid/weather-history-harvester/internal/observability"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred closes happen before exit.
func run() int {
	start := flag.String("start", "", "first date to harvest (YYYY-MM-DD), overrides START_DATE")
	end := flag.String("end", "", "last date to harvest (YYYY-MM-DD), overrides END_DATE")
	out := flag.String("out", "", "output CSV path, overrides OUTPUT_PATH")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	if err := cfg.ApplyOverrides(*start, *end, *out); err != nil {
		slog.Error("invalid flags", "error", err)
		return 1
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	csvSink, err := csvsink.Open(cfg.OutputPath)
	if err != nil {
		logger.Error("failed to open output", "path", cfg.OutputPath, "error", err)
		return 1
	}
	defer func() {
		if err := csvSink.Close(); err != nil {
			logger.Error("output close error", "error", err)
		}
	}()
	sinks := harvest.Sinks{csvSink}
	clock := clockwork.NewRealClock()

	// Optional fan-out sinks (feature-flagged via KAFKA_BROKERS / SQLITE_PATH).
	if len(cfg.KafkaBrokers) > 0 {
		writer := kafkaadapter.NewWriter(cfg, clock, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		sinks = append(sinks, writer)
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	if cfg.SQLitePath != "" {
		store, err := sqlite.Open(cfg.SQLitePath, clock, logger)
		if err != nil {
			logger.Error("failed to open sqlite archive", "path", cfg.SQLitePath, "error", err)
			return 1
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("sqlite close error", "error", err)
			}
		}()
		sinks = append(sinks, store)
		logger.Info("sqlite archive enabled", "path", cfg.SQLitePath)
	}

	var pacer harvest.Pacer = harvest.FixedPacer{Delay: cfg.PaceDelay}
	if cfg.PaceMode == config.PaceBackoff {
		pacer = harvest.NewBackoffPacer(cfg.PaceDelay, cfg.PaceMaxDelay)
	}

	opener := browser.Opener{
		Headless:    cfg.BrowserHeadless,
		ExecPath:    cfg.ChromePath,
		WaitTimeout: cfg.WaitTimeout,
		Logger:      logger,
	}
	h := harvest.New(harvest.OpenerFunc(func(ctx context.Context, url string) (harvest.Session, error) {
		s, err := opener.Open(ctx, url)
		if err != nil {
			return nil, err
		}
		return s, nil
	}), cfg.TargetURL, sinks, pacer, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *httpadapter.Server
	if cfg.HTTPEnabled {
		srv = httpadapter.NewServer(cfg.HTTPAddr, h, h, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	summary, runErr := h.Run(ctx, cfg.Range)
	logger.Info("run summary",
		"output", csvSink.Path(),
		"days", len(summary.Days),
		"rows", summary.Rows(),
		"failed", summary.Count(domain.DayFailed),
		"elapsed", summary.FinishedAt.Sub(summary.StartedAt).String(),
	)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			logger.Info("harvest interrupted", "error", runErr)
			return 1
		}
		logger.Error("harvest aborted", "error", runErr)
		return 1
	}
	logger.Info("shutdown complete")
	return 0
}
