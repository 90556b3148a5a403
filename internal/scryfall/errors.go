package scryfall

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a search yields no results (Scryfall answers
// such queries with HTTP 404). Callers treat it as an expected outcome.
var ErrNotFound = errors.New("scryfall: no results")

// StatusError is a non-OK HTTP response that survived the retry policy.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status code %d fetching %s", e.StatusCode, e.URL)
}

// retryable reports whether a status is worth another attempt: rate limits
// and server-side instability only. 400/404 are logical outcomes.
func retryable(status int) bool {
	return status == 429 || (status >= 500 && status <= 599)
}
