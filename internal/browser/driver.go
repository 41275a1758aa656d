// Package browser wraps a live browser session behind a small interface so the
// login flow and the harvester can be driven by Chrome or by saved HTML.
package browser

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no element matches within the allowed time.
	ErrNotFound = errors.New("element not found")
	// ErrUnsupported is returned by drivers that cannot evaluate a selector kind.
	ErrUnsupported = errors.New("selector not supported by driver")
	// ErrClosed is returned once the session has been torn down.
	ErrClosed = errors.New("browser session closed")
)

// Driver is an open browser session.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	// Find returns every element currently matching sel. No match is not an error.
	Find(ctx context.Context, sel Selector) ([]Element, error)
	// WaitFor returns the first match, or ErrNotFound once timeout elapses.
	WaitFor(ctx context.Context, sel Selector, timeout time.Duration) (Element, error)
	ScrollPageDown(ctx context.Context) error
	ScrollToBottom(ctx context.Context) error
	CurrentURL(ctx context.Context) (string, error)
	PageHeight(ctx context.Context) (int64, error)
	Refresh(ctx context.Context) error
	// Alive reports an error when the session is no longer usable.
	Alive(ctx context.Context) error
	// Close is idempotent.
	Close() error
}

// Element is a handle to a node in the current page. Handles go stale after a
// refresh or navigation.
type Element interface {
	Text(ctx context.Context) (string, error)
	SendKeys(ctx context.Context, keys string) error
	Click(ctx context.Context) error
	ScrollIntoView(ctx context.Context) error
	// Closest returns the nearest ancestor div whose text is longer than
	// minChars characters, or ErrNotFound.
	Closest(ctx context.Context, minChars int) (Element, error)
}

// Launcher opens new sessions.
type Launcher interface {
	Launch(ctx context.Context) (Driver, error)
}
