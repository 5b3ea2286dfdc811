package browser

import (
	"context"
	"fmt"
	"testing"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-history-harvester/internal/domain"
)

func TestAllocatorFlags(t *testing.T) {
	tests := []struct {
		name     string
		headless bool
		want     any
	}{
		{"headless", true, "new"},
		{"headed", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := Opener{Headless: tt.headless}.allocatorFlags()

			assert.Equal(t, map[string]any{
				"disable-gpu":           true,
				"no-sandbox":            true,
				"disable-dev-shm-usage": true,
				"headless":              tt.want,
			}, flags)
		})
	}
}

func TestAllocatorOptions(t *testing.T) {
	base := len(chromedp.DefaultExecAllocatorOptions)

	assert.Len(t, Opener{Headless: true}.allocatorOptions(), base+4)
	assert.Len(t, Opener{Headless: true, ExecPath: "/usr/bin/chromium"}.allocatorOptions(), base+5)
}

func TestRowsChangedExpr_QuotesArguments(t *testing.T) {
	expr := rowsChangedExpr("table tbody tr", "12:00 AM\t75 °F\n\"quoted\"")

	assert.Contains(t, expr, `})("table tbody tr", "12:00 AM\t75 °F\n\"quoted\"")`)
	assert.Contains(t, expr, "if (rows.length === 0) { return false; }")
	assert.Contains(t, expr, "!== previous")
}

func TestRowsTextExpr(t *testing.T) {
	assert.Equal(t,
		`Array.from(document.querySelectorAll("table tbody tr")).map(r => r.innerText).join("\n")`,
		rowsTextExpr("table tbody tr"))
}

func TestClassify_PollingTimeoutIsSelectionTimeout(t *testing.T) {
	bg := context.Background()

	err := classify(bg, bg, "wait for results", fmt.Errorf("poll: %w", chromedp.ErrPollingTimeout))
	require.ErrorIs(t, err, domain.ErrSelectionTimeout)
	assert.True(t, domain.IsDayFailure(err))
	assert.Contains(t, err.Error(), "wait for results")
}
