// Package fetcher defines the interface for retrieving rendered page markup.
// Implement the Fetcher interface to plug a different rendering strategy into
// the tagscrape pipeline (for example a remote browser or a test stub).
package fetcher

import (
	"context"
	"errors"
	"time"
)

// Fetcher abstracts page rendering strategies.
type Fetcher interface {
	// Fetch retrieves the rendered markup of a URL.
	Fetch(ctx context.Context, url string, opts Options) (Content, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns a string identifying the fetcher type (e.g., "static", "dynamic").
	Type() string
}

// Options controls fetching behavior for a single call.
type Options struct {
	UserAgent string
	Timeout   time.Duration // Overall budget for the fetch

	// WaitForID is the element id the dynamic fetcher waits for before
	// reading the page. Empty disables the wait.
	WaitForID   string
	WaitTimeout time.Duration // Budget for the WaitForID wait

	Headers map[string]string
}

// Content is the rendered document returned by a Fetcher.
type Content struct {
	URL          string
	HTML         string
	Title        string
	StatusCode   int
	ContentType  string
	FetchedAt    time.Time
	WaitTimedOut bool // WaitForID never appeared within WaitTimeout
}

// Error types for distinguishing failure reasons.
// Check with errors.Is(err, fetcher.ErrNavigation).
var (
	// ErrBrowserLaunch indicates the browser process could not be started.
	ErrBrowserLaunch = errors.New("browser launch failed")
	// ErrNavigation indicates the page could not be loaded.
	ErrNavigation = errors.New("navigation failed")
	// ErrWaitTimeout indicates the wait target did not appear in time.
	// Fetchers recover from it; it is only surfaced through logs and
	// Content.WaitTimedOut.
	ErrWaitTimeout = errors.New("timed out waiting for element")
)
