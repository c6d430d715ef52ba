// Package tagscrape renders a web page, extracts the text of every element
// with a given tag (and optional id) and writes it to a file.
package tagscrape

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"

	"github.com/jmylchreest/tagscrape/internal/extractor"
	"github.com/jmylchreest/tagscrape/internal/logger"
	"github.com/jmylchreest/tagscrape/internal/output"
	"github.com/jmylchreest/tagscrape/internal/scraper"
	"github.com/jmylchreest/tagscrape/pkg/fetcher"
)

// Default output location.
const (
	DefaultOutputDir  = output.DefaultDir
	DefaultOutputFile = output.DefaultFile
)

// Request describes one scrape.
type Request struct {
	URL        string `validate:"required"`
	Tag        string `validate:"required"`
	ID         string // empty matches any id
	OutputDir  string // default "output"
	OutputFile string // default "scraped_data.txt"
}

// Result summarizes a completed scrape.
type Result struct {
	URL           string
	Path          string
	Blocks        int
	Bytes         int64
	WaitTimedOut  bool
	FetchDuration time.Duration
}

var validate = validator.New()

// Validate checks that the required fields are present.
func (r Request) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s is %s", e.Field(), e.Tag()))
	}
	return fmt.Errorf("invalid request: %s", strings.Join(msgs, ", "))
}

func (r Request) withDefaults() Request {
	if r.OutputDir == "" {
		r.OutputDir = DefaultOutputDir
	}
	if r.OutputFile == "" {
		r.OutputFile = DefaultOutputFile
	}
	return r
}

// Scrape renders req.URL, extracts the text of every element matching
// req.Tag and req.ID and writes one block per element to
// req.OutputDir/req.OutputFile. An existing file is overwritten.
func Scrape(ctx context.Context, req Request, opts ...Option) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	req = req.withDefaults()

	// The directory exists after every validated call, even a failed fetch.
	if err := output.EnsureDir(req.OutputDir); err != nil {
		return Result{}, err
	}

	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	f := cfg.Fetcher
	if f == nil {
		created, err := scraper.NewFetcher(cfg.FetchMode, scraper.Config{
			UserAgent:   cfg.UserAgent,
			Timeout:     cfg.Timeout,
			WaitTimeout: cfg.WaitTimeout,
			ExecPath:    cfg.ExecPath,
		})
		if err != nil {
			return Result{}, fmt.Errorf("failed to create fetcher: %w", err)
		}
		defer func() {
			if cerr := created.Close(); cerr != nil {
				logger.Warn("failed to close fetcher", "fetcher", created.Type(), "error", cerr)
			}
		}()
		f = created
	}

	logger.DebugContext(ctx, "scraping",
		"url", req.URL,
		"tag", req.Tag,
		"id", req.ID,
		"fetcher", f.Type())

	start := time.Now()
	content, err := f.Fetch(ctx, req.URL, fetcher.Options{
		UserAgent:   cfg.UserAgent,
		Timeout:     cfg.Timeout,
		WaitForID:   cfg.WaitForID,
		WaitTimeout: cfg.WaitTimeout,
		Headers:     cfg.Headers,
	})
	fetchDuration := time.Since(start)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch %s: %w", req.URL, err)
	}

	texts, err := extractor.Extract(content.HTML, req.Tag, req.ID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to extract %s: %w", extractor.NewSelector(req.Tag, req.ID), err)
	}

	stats, err := output.WriteFile(req.OutputDir, req.OutputFile, cfg.Format, texts, cfg.writerOptions()...)
	if err != nil {
		return Result{}, err
	}

	logger.InfoContext(ctx, "successfully scraped data",
		"url", req.URL,
		"path", stats.Path,
		"blocks", stats.Blocks,
		"size", humanize.Bytes(uint64(stats.Bytes)),
		"fetch_duration", fetchDuration.Round(time.Millisecond))

	return Result{
		URL:           req.URL,
		Path:          stats.Path,
		Blocks:        stats.Blocks,
		Bytes:         stats.Bytes,
		WaitTimedOut:  content.WaitTimedOut,
		FetchDuration: fetchDuration,
	}, nil
}

// Run calls Scrape and logs any failure instead of returning it.
func Run(ctx context.Context, req Request, opts ...Option) {
	if _, err := Scrape(ctx, req, opts...); err != nil {
		logger.Error("an error occurred", "error", err)
	}
}
