package domain

import "errors"

var (
	// ErrSelectionTimeout means a control or the first result row did not
	// appear within the wait bound.
	ErrSelectionTimeout = errors.New("selection timeout")

	// ErrElementNotFound means a control, or the option to select in it, is
	// absent from the page.
	ErrElementNotFound = errors.New("element not found")

	// ErrMalformedRow means a table row has fewer cells than the column contract needs.
	ErrMalformedRow = errors.New("malformed row")
)

// IsDayFailure reports whether err is a per-day selection failure that the
// day loop recovers from by moving on to the next date.
func IsDayFailure(err error) bool {
	return errors.Is(err, ErrSelectionTimeout) || errors.Is(err, ErrElementNotFound)
}
