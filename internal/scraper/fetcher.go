// Package scraper renders web pages for extraction. The dynamic fetcher drives
// headless Chrome through chromedp; the static fetcher issues a plain HTTP
// request through colly for pages that need no client-side rendering.
package scraper

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmylchreest/tagscrape/pkg/fetcher"
)

// DefaultUserAgent is the desktop Chrome user agent presented to servers.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// DefaultWaitForID is the element id waited for after navigation. It has no
// relation to the tag or id being extracted.
const DefaultWaitForID = "element"

// Timeouts
const (
	DefaultWaitTimeout = 10 * time.Second
	DefaultTimeout     = 60 * time.Second
)

// Browser window
const (
	DefaultWindowWidth  = 1920
	DefaultWindowHeight = 1080
)

// FetchMode determines how pages are fetched.
type FetchMode string

const (
	FetchModeDynamic FetchMode = "dynamic"
	FetchModeStatic  FetchMode = "static"
)

// ParseFetchMode converts a user-supplied name into a FetchMode.
// The empty string selects the dynamic mode.
func ParseFetchMode(s string) (FetchMode, error) {
	switch FetchMode(strings.ToLower(strings.TrimSpace(s))) {
	case FetchModeDynamic, "":
		return FetchModeDynamic, nil
	case FetchModeStatic:
		return FetchModeStatic, nil
	default:
		return "", fmt.Errorf("unknown fetch mode: %s (use 'dynamic' or 'static')", s)
	}
}

// Config holds common fetcher configuration.
type Config struct {
	UserAgent   string
	Timeout     time.Duration
	WaitTimeout time.Duration
	ExecPath    string // Chrome binary; looked up when empty
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent:   DefaultUserAgent,
		Timeout:     DefaultTimeout,
		WaitTimeout: DefaultWaitTimeout,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.WaitTimeout <= 0 {
		c.WaitTimeout = d.WaitTimeout
	}
	return c
}

// NewFetcher creates a fetcher for the given mode.
func NewFetcher(mode FetchMode, cfg Config) (fetcher.Fetcher, error) {
	switch mode {
	case FetchModeDynamic, "":
		return NewDynamicFetcher(cfg), nil
	case FetchModeStatic:
		return NewStaticFetcher(cfg), nil
	default:
		return nil, fmt.Errorf("unknown fetch mode: %s", mode)
	}
}

// resolve merges per-call options over the fetcher configuration.
func resolve(cfg Config, opts fetcher.Options) (userAgent string, timeout, waitTimeout time.Duration) {
	userAgent = coalesce(opts.UserAgent, cfg.UserAgent)
	timeout = opts.Timeout
	if timeout <= 0 {
		timeout = cfg.Timeout
	}
	waitTimeout = opts.WaitTimeout
	if waitTimeout <= 0 {
		waitTimeout = cfg.WaitTimeout
	}
	return userAgent, timeout, waitTimeout
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
