package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/jmylchreest/tagscrape/internal/logger"
	"github.com/jmylchreest/tagscrape/pkg/fetcher"
)

// StaticFetcher uses Colly for static HTML fetching. No script runs, so
// WaitForID is ignored.
type StaticFetcher struct {
	config Config
}

// NewStaticFetcher creates a new static fetcher.
func NewStaticFetcher(cfg Config) *StaticFetcher {
	return &StaticFetcher{config: cfg.withDefaults()}
}

// Fetch retrieves page markup with a single GET request.
func (f *StaticFetcher) Fetch(ctx context.Context, targetURL string, opts fetcher.Options) (fetcher.Content, error) {
	userAgent, timeout, _ := resolve(f.config, opts)

	result := fetcher.Content{
		URL:       targetURL,
		FetchedAt: time.Now(),
	}

	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(timeout)

	if opts.WaitForID != "" {
		logger.Debug("static fetch ignores wait target", "id", opts.WaitForID)
	}

	if len(opts.Headers) > 0 {
		c.OnRequest(func(r *colly.Request) {
			for k, v := range opts.Headers {
				r.Headers.Set(k, v)
			}
		})
	}

	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		result.StatusCode = r.StatusCode
		result.ContentType = r.Headers.Get("Content-Type")
		result.HTML = string(r.Body)
		logger.Debug("static fetch response received",
			"status", r.StatusCode,
			"content_type", result.ContentType,
			"body_size", len(r.Body))
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			result.StatusCode = r.StatusCode
		}
		fetchErr = err
	})

	logger.Debug("static fetch visiting URL", "url", targetURL, "user_agent", userAgent, "timeout", timeout)
	if err := c.Visit(targetURL); err != nil {
		return result, fmt.Errorf("%w: %s: %v", fetcher.ErrNavigation, targetURL, err)
	}
	if fetchErr != nil {
		return result, fmt.Errorf("%w: %s: %v", fetcher.ErrNavigation, targetURL, fetchErr)
	}

	if result.HTML != "" {
		result.Title = pageTitle(result.HTML)
	}

	logger.Debug("static fetch complete", "url", targetURL, "title", result.Title)
	return result, nil
}

// pageTitle returns the trimmed text of the first <title> element.
func pageTitle(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// Close releases resources.
func (f *StaticFetcher) Close() error {
	return nil
}

// Type returns the fetcher type.
func (f *StaticFetcher) Type() string {
	return string(FetchModeStatic)
}
