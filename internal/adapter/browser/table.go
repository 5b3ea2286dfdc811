package browser

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/couchcryptid/weather-history-harvester/internal/domain"
)

// ParseTableRows returns the text of every cell of every row matched by
// rowSelector, top to bottom. Cell text has its whitespace collapsed so that
// split markup like "75<span>&nbsp;</span>°F" reads "75 °F".
func ParseTableRows(html, rowSelector string) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page html: %w", err)
	}

	var rows [][]string
	doc.Find(rowSelector).Each(func(_ int, row *goquery.Selection) {
		cells := make([]string, 0, domain.MinRowCells)
		row.Find("td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, cellText(cell.Text()))
		})
		rows = append(rows, cells)
	})
	return rows, nil
}

// DecodeRows converts table rows into observations for day, dropping
// malformed rows without reporting them.
func DecodeRows(day time.Time, rows [][]string) []domain.WeatherObservation {
	out := make([]domain.WeatherObservation, 0, len(rows))
	for _, cells := range rows {
		obs, err := domain.DecodeRow(day, cells)
		if err != nil {
			continue
		}
		out = append(out, obs)
	}
	return out
}

func cellText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
