// Package browser drives a headless Chrome session against a daily weather
// history page: one page load per run, then per-day dropdown selection and
// table extraction.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/couchcryptid/weather-history-harvester/internal/domain"
)

const (
	defaultWaitTimeout     = 15 * time.Second
	defaultNavigateTimeout = 60 * time.Second
)

// Opener launches browser sessions.
type Opener struct {
	Headless        bool
	ExecPath        string        // empty uses the Chrome found on PATH
	WaitTimeout     time.Duration // bound for each control and for the result rows
	NavigateTimeout time.Duration
	Selectors       Selectors
	Logger          *slog.Logger
}

// Session is one browser tab with the history page loaded. It is not safe
// for concurrent use.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	wait        time.Duration
	sel         Selectors
	logger      *slog.Logger
	closeOnce   sync.Once
	closeErr    error
}

// Open starts Chrome and loads targetURL once. The browser outlives ctx; it
// is released by Session.Close.
func (o Opener) Open(ctx context.Context, targetURL string) (*Session, error) {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), o.allocatorOptions()...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		logger.Debug(fmt.Sprintf(format, args...), "component", "chromedp")
	}))

	s := &Session{
		ctx:         tabCtx,
		cancel:      tabCancel,
		allocCancel: allocCancel,
		wait:        durationOr(o.WaitTimeout, defaultWaitTimeout),
		sel:         o.Selectors.withDefaults(),
		logger:      logger,
	}

	// The first Run starts Chrome; a deadline on it would bound the browser's lifetime.
	if err := chromedp.Run(tabCtx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	navCtx, navCancel := context.WithTimeout(tabCtx, durationOr(o.NavigateTimeout, defaultNavigateTimeout))
	defer navCancel()
	stop := context.AfterFunc(ctx, navCancel)
	defer stop()

	if err := chromedp.Run(navCtx, chromedp.Navigate(targetURL)); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("load %s: %w", targetURL, err)
	}

	logger.Info("browser session opened", "url", targetURL, "headless", o.Headless)
	return s, nil
}

// allocatorFlags are the Chrome switches every session runs with.
func (o Opener) allocatorFlags() map[string]any {
	flags := map[string]any{
		"disable-gpu":           true,
		"no-sandbox":            true,
		"disable-dev-shm-usage": true,
		"headless":              "new",
	}
	if !o.Headless {
		flags["headless"] = false
	}
	return flags
}

func (o Opener) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := slices.Clone(chromedp.DefaultExecAllocatorOptions[:])
	flags := o.allocatorFlags()
	for _, name := range slices.Sorted(maps.Keys(flags)) {
		opts = append(opts, chromedp.Flag(name, flags[name]))
	}
	if o.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(o.ExecPath))
	}
	return opts
}

// SelectDay sets the year, month, and day dropdowns to day, submits the query,
// and waits until the result rows differ from the ones shown before the
// submit. Each wait is bounded by the session's wait timeout; exceeding it
// fails with domain.ErrSelectionTimeout. A control without the wanted option
// fails with domain.ErrElementNotFound.
func (s *Session) SelectDay(ctx context.Context, day time.Time) error {
	for _, c := range s.sel.dayChoices(day) {
		if err := s.choose(ctx, c); err != nil {
			return err
		}
	}

	var previous string
	if err := s.run(ctx, "snapshot rows", chromedp.Evaluate(rowsTextExpr(s.sel.RowSelector), &previous)); err != nil {
		return err
	}
	if err := s.run(ctx, "submit", chromedp.Click(byID(s.sel.Submit), chromedp.ByQuery)); err != nil {
		return err
	}

	var changed bool
	return s.run(ctx, "wait for results",
		chromedp.Poll(rowsChangedExpr(s.sel.RowSelector, previous), &changed,
			chromedp.WithPollingTimeout(s.wait),
			chromedp.WithPollingInterval(100*time.Millisecond),
		),
	)
}

func (s *Session) choose(ctx context.Context, c choice) error {
	var status string
	err := s.run(ctx, c.name+" control",
		chromedp.WaitReady(byID(c.id), chromedp.ByQuery),
		chromedp.Evaluate(selectOptionExpr(c.id, c.text), &status),
	)
	if err != nil {
		return err
	}

	switch status {
	case selectOK:
		return nil
	case selectMissingOption:
		return fmt.Errorf("%s control has no option %q: %w", c.name, c.text, domain.ErrElementNotFound)
	default:
		return fmt.Errorf("%s control #%s: %w", c.name, c.id, domain.ErrElementNotFound)
	}
}

// Extract snapshots the page and decodes the rows of the results table.
// An empty slice means the table had no usable rows.
func (s *Session) Extract(ctx context.Context, day time.Time) ([]domain.WeatherObservation, error) {
	var html string
	if err := s.run(ctx, "snapshot page", chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, err
	}

	rows, err := ParseTableRows(html, s.sel.RowSelector)
	if err != nil {
		return nil, err
	}
	return DecodeRows(day, rows), nil
}

// Close shuts the browser down. Only the first call has an effect.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = chromedp.Cancel(s.ctx)
		s.cancel()
		s.allocCancel()
		s.logger.Info("browser session closed")
	})
	return s.closeErr
}

// run executes actions against the tab, bounded by the wait timeout and by ctx.
func (s *Session) run(ctx context.Context, step string, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.ctx, s.wait)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	return classify(ctx, runCtx, step, err)
}

// classify maps a chromedp error onto the harvester's error taxonomy.
func classify(callerCtx, runCtx context.Context, step string, err error) error {
	switch {
	case err == nil:
		return nil
	case callerCtx.Err() != nil:
		return callerCtx.Err()
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, chromedp.ErrPollingTimeout),
		errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", step, domain.ErrSelectionTimeout)
	default:
		return fmt.Errorf("%s: %w", step, err)
	}
}

func durationOr(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}
