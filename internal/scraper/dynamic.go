package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/jmylchreest/tagscrape/internal/logger"
	"github.com/jmylchreest/tagscrape/pkg/fetcher"
)

// DynamicFetcher renders pages in headless Chrome.
//
// Every Fetch starts its own browser process and tears it down before
// returning, so a DynamicFetcher holds no browser between calls.
type DynamicFetcher struct {
	config Config
}

// NewDynamicFetcher creates a new dynamic fetcher.
func NewDynamicFetcher(cfg Config) *DynamicFetcher {
	cfg = cfg.withDefaults()
	if cfg.ExecPath == "" {
		cfg.ExecPath = FindChromePath()
	}

	logger.Debug("dynamic fetcher created",
		"user_agent", cfg.UserAgent,
		"timeout", cfg.Timeout,
		"wait_timeout", cfg.WaitTimeout,
		"exec_path", cfg.ExecPath)

	return &DynamicFetcher{config: cfg}
}

// browserFlags are the Chrome switches applied on top of chromedp's defaults.
func browserFlags() map[string]any {
	return map[string]any{
		"headless":              true,
		"disable-gpu":           true,
		"no-sandbox":            true,
		"disable-dev-shm-usage": true,
	}
}

// allocatorOptions builds the exec allocator options for one browser launch.
func (f *DynamicFetcher) allocatorOptions(userAgent string) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	for name, value := range browserFlags() {
		opts = append(opts, chromedp.Flag(name, value))
	}
	opts = append(opts,
		chromedp.WindowSize(DefaultWindowWidth, DefaultWindowHeight),
		chromedp.UserAgent(userAgent),
	)
	if f.config.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(f.config.ExecPath))
	}
	return opts
}

// Fetch launches a browser, navigates to targetURL, waits for
// opts.WaitForID and returns the rendered markup. A wait timeout is not an
// error: it is logged, recorded in Content.WaitTimedOut and the markup
// available at that point is returned.
func (f *DynamicFetcher) Fetch(ctx context.Context, targetURL string, opts fetcher.Options) (fetcher.Content, error) {
	userAgent, timeout, waitTimeout := resolve(f.config, opts)

	result := fetcher.Content{
		URL:       targetURL,
		FetchedAt: time.Now(),
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, f.allocatorOptions(userAgent)...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logger.Logf("chromedp")),
		chromedp.WithErrorf(logger.Logf("chromedp error")),
	)
	defer cancelBrowser()

	// Start the browser before applying the timeout so the process is bound
	// to browserCtx rather than to the per-request deadline.
	logger.Debug("starting browser", "url", targetURL)
	if err := chromedp.Run(browserCtx); err != nil {
		return result, fmt.Errorf("%w: %v", fetcher.ErrBrowserLaunch, err)
	}

	timeoutCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)
	defer cancelTimeout()

	doc := &documentResponse{}
	chromedp.ListenTarget(browserCtx, doc.listen)

	actions := []chromedp.Action{network.Enable()}
	if len(opts.Headers) > 0 {
		actions = append(actions, network.SetExtraHTTPHeaders(toNetworkHeaders(opts.Headers)))
	}
	actions = append(actions, chromedp.Navigate(targetURL))

	logger.Debug("navigating",
		"url", targetURL,
		"timeout", timeout,
		"headers", len(opts.Headers))
	if err := chromedp.Run(timeoutCtx, actions...); err != nil {
		return result, fmt.Errorf("%w: %s: %v", fetcher.ErrNavigation, targetURL, err)
	}

	// The overall timeout bounds navigation only; the wait has its own deadline.
	if opts.WaitForID != "" {
		timedOut, err := waitForID(browserCtx, opts.WaitForID, waitTimeout)
		if err != nil {
			return result, fmt.Errorf("waiting for #%s: %w", opts.WaitForID, err)
		}
		if timedOut {
			logger.Info(fetcher.ErrWaitTimeout.Error(),
				"id", opts.WaitForID,
				"wait_timeout", waitTimeout,
				"url", targetURL)
			result.WaitTimedOut = true
		}
	}

	var html, title string
	if err := chromedp.Run(browserCtx,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Title(&title),
	); err != nil {
		return result, fmt.Errorf("failed to read page markup: %w", err)
	}

	result.HTML = html
	result.Title = title
	result.StatusCode, result.ContentType = doc.get()

	logger.Debug("dynamic fetch complete",
		"url", targetURL,
		"title", title,
		"status", result.StatusCode,
		"html_size", len(html),
		"wait_timed_out", result.WaitTimedOut)

	return result, nil
}

// waitForID blocks until an element with the given id is present or
// waitTimeout elapses. Any deadline reports timedOut; cancellation of ctx is
// returned as an error.
func waitForID(ctx context.Context, id string, waitTimeout time.Duration) (timedOut bool, err error) {
	waitCtx, cancel := context.WithTimeout(ctx, waitTimeout)
	defer cancel()

	logger.Debug("waiting for element", "id", id, "wait_timeout", waitTimeout)
	err = chromedp.Run(waitCtx, chromedp.WaitReady(idQuery(id), chromedp.ByJSPath))
	return classifyWait(ctx, waitCtx, err)
}

// idQuery returns a JS path selecting the element with the given id. Using
// getElementById keeps ids containing CSS metacharacters usable.
func idQuery(id string) string {
	quoted, _ := json.Marshal(id)
	return "document.getElementById(" + string(quoted) + ")"
}

// classifyWait separates a recoverable wait deadline from other failures.
// A deadline is recoverable whether it belongs to waitCtx or to a parent;
// explicit cancellation (for example SIGINT) is fatal.
func classifyWait(parent, waitCtx context.Context, err error) (timedOut bool, fatal error) {
	if err == nil {
		return false, nil
	}
	if errors.Is(parent.Err(), context.Canceled) {
		return false, parent.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
		return true, nil
	}
	return false, err
}

// toNetworkHeaders converts plain headers into the CDP header map.
func toNetworkHeaders(h map[string]string) network.Headers {
	headers := make(network.Headers, len(h))
	for k, v := range h {
		headers[k] = v
	}
	return headers
}

// documentResponse records the status of the first document response seen
// on the target. Events arrive on chromedp's listener goroutine.
type documentResponse struct {
	mu          sync.Mutex
	status      int
	contentType string
}

func (d *documentResponse) listen(ev any) {
	resp, ok := ev.(*network.EventResponseReceived)
	if !ok || resp.Type != network.ResourceTypeDocument || resp.Response == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.status == 0 {
		d.status = int(resp.Response.Status)
		d.contentType = resp.Response.MimeType
	}
}

func (d *documentResponse) get() (int, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status, d.contentType
}

// Close is a no-op; browsers do not outlive a Fetch call.
func (f *DynamicFetcher) Close() error {
	return nil
}

// Type returns the fetcher type.
func (f *DynamicFetcher) Type() string {
	return string(FetchModeDynamic)
}
