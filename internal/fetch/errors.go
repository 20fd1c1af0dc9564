package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrInvalidURL is returned when the requested URL cannot be parsed or
// lacks an http(s) scheme or host.
var ErrInvalidURL = errors.New("fetch: invalid URL")

// Error describes a failed fetch. It carries the URL, the HTTP status when
// the server answered with an error status, and the transport cause when it
// did not.
type Error struct {
	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status that failed the fetch, 0 when the
	// failure happened below the HTTP layer.
	StatusCode int

	// Err is the underlying cause, nil for pure status failures.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause so errors.Is/As see through it.
func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout reports whether the fetch failed because a deadline expired.
func (e *Error) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}
