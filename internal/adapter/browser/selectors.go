package browser

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Selectors locate the controls and the results table on the history page.
// Control fields are element ids; RowSelector is a CSS selector.
type Selectors struct {
	Year        string
	Month       string
	Day         string
	Submit      string
	RowSelector string
}

// DefaultSelectors match the Weather Underground daily history page.
var DefaultSelectors = Selectors{
	Year:        "yearSelection",
	Month:       "monthSelection",
	Day:         "daySelection",
	Submit:      "dateSubmit",
	RowSelector: "table tbody tr",
}

func (s Selectors) withDefaults() Selectors {
	if s.Year == "" {
		s.Year = DefaultSelectors.Year
	}
	if s.Month == "" {
		s.Month = DefaultSelectors.Month
	}
	if s.Day == "" {
		s.Day = DefaultSelectors.Day
	}
	if s.Submit == "" {
		s.Submit = DefaultSelectors.Submit
	}
	if s.RowSelector == "" {
		s.RowSelector = DefaultSelectors.RowSelector
	}
	return s
}

// choice is one dropdown and the visible option text to pick in it.
type choice struct {
	name string
	id   string
	text string
}

// dayChoices returns the dropdown settings for a date, in the order the page
// expects them: year, month by full English name, then day of month.
func (s Selectors) dayChoices(day time.Time) []choice {
	return []choice{
		{name: "year", id: s.Year, text: strconv.Itoa(day.Year())},
		{name: "month", id: s.Month, text: day.Month().String()},
		{name: "day", id: s.Day, text: strconv.Itoa(day.Day())},
	}
}

// Results of selectOptionScript.
const (
	selectOK            = "ok"
	selectMissingSelect = "missing-control"
	selectMissingOption = "missing-option"
)

// selectOptionScript picks the option whose visible text equals the given
// text and fires the events the page's framework listens for.
const selectOptionScript = `(function(id, text) {
	const el = document.getElementById(id);
	if (!el) { return %q; }
	const opt = Array.from(el.options || []).find(o => o.text.trim() === text);
	if (!opt) { return %q; }
	el.value = opt.value;
	el.dispatchEvent(new Event("input", { bubbles: true }));
	el.dispatchEvent(new Event("change", { bubbles: true }));
	return %q;
})(%s, %s)`

func selectOptionExpr(id, text string) string {
	return fmt.Sprintf(selectOptionScript, selectMissingSelect, selectMissingOption, selectOK, jsString(id), jsString(text))
}

// rowsTextExpr returns the text of every row matched by sel, or "" when the
// table is absent.
func rowsTextExpr(sel string) string {
	return fmt.Sprintf(`Array.from(document.querySelectorAll(%s)).map(r => r.innerText).join("\n")`, jsString(sel))
}

// rowsChangedExpr is truthy once rows matched by sel exist and their text
// differs from previous, so a table left over from the prior day does not
// count as the new result.
func rowsChangedExpr(sel, previous string) string {
	return fmt.Sprintf(`(function(sel, previous) {
	const rows = Array.from(document.querySelectorAll(sel));
	if (rows.length === 0) { return false; }
	return rows.map(r => r.innerText).join("\n") !== previous;
})(%s, %s)`, jsString(sel), jsString(previous))
}

func jsString(s string) string {
	b, _ := json.Marshal(s) //nolint:errchkjson // marshalling a string cannot fail
	return string(b)
}

func byID(id string) string {
	return "#" + id
}
