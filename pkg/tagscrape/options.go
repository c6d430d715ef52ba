package tagscrape

import (
	"time"

	"github.com/jmylchreest/tagscrape/internal/output"
	"github.com/jmylchreest/tagscrape/internal/scraper"
	"github.com/jmylchreest/tagscrape/pkg/fetcher"
)

// Config holds pipeline configuration.
type Config struct {
	// Fetching
	Fetcher     fetcher.Fetcher // overrides FetchMode when set
	FetchMode   scraper.FetchMode
	UserAgent   string
	ExecPath    string
	Timeout     time.Duration
	WaitForID   string
	WaitTimeout time.Duration
	Headers     map[string]string

	// Output
	Format  output.Format
	Compact bool   // single-line JSON
	Indent  string // JSON indentation when not compact
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		FetchMode:   scraper.FetchModeDynamic,
		UserAgent:   scraper.DefaultUserAgent,
		Timeout:     scraper.DefaultTimeout,
		WaitForID:   scraper.DefaultWaitForID,
		WaitTimeout: scraper.DefaultWaitTimeout,
		Format:      output.FormatText,
		Indent:      "  ",
	}
}

// writerOptions maps output settings onto writer options.
func (c Config) writerOptions() []output.WriterOption {
	opts := []output.WriterOption{output.WithPretty(!c.Compact)}
	if c.Indent != "" {
		opts = append(opts, output.WithIndent(c.Indent))
	}
	return opts
}

// Option configures a scrape.
type Option func(*Config)

// WithFetcher injects a fetcher. The caller keeps ownership and closes it.
func WithFetcher(f fetcher.Fetcher) Option {
	return func(c *Config) {
		c.Fetcher = f
	}
}

// WithFetchMode sets the fetch mode (dynamic, static).
func WithFetchMode(mode scraper.FetchMode) Option {
	return func(c *Config) {
		c.FetchMode = mode
	}
}

// WithUserAgent sets the browser user agent.
func WithUserAgent(ua string) Option {
	return func(c *Config) {
		c.UserAgent = ua
	}
}

// WithExecPath sets the Chrome binary used by the dynamic fetcher.
func WithExecPath(path string) Option {
	return func(c *Config) {
		c.ExecPath = path
	}
}

// WithTimeout sets the overall page load timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithWaitForID sets the element id waited for after navigation.
// An empty id disables the wait.
func WithWaitForID(id string) Option {
	return func(c *Config) {
		c.WaitForID = id
	}
}

// WithWaitTimeout sets how long to wait for the WaitForID element.
func WithWaitTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.WaitTimeout = d
	}
}

// WithHeaders sets extra request headers.
func WithHeaders(h map[string]string) Option {
	return func(c *Config) {
		c.Headers = h
	}
}

// WithFormat sets the output file format.
func WithFormat(f output.Format) Option {
	return func(c *Config) {
		c.Format = f
	}
}

// WithCompact writes JSON on a single line.
func WithCompact(enabled bool) Option {
	return func(c *Config) {
		c.Compact = enabled
	}
}

// WithIndent sets the JSON indentation string.
func WithIndent(indent string) Option {
	return func(c *Config) {
		c.Indent = indent
	}
}
