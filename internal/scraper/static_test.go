package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jmylchreest/tagscrape/pkg/fetcher"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestStaticFetcher_Fetch(t *testing.T) {
	var gotUA, gotHeader string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotHeader = r.Header.Get("X-Test")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><title> Listing </title></head><body><ul><li>Alpha</li></ul></body></html>`))
	})

	f := NewStaticFetcher(Config{})
	content, err := f.Fetch(context.Background(), srv.URL, fetcher.Options{
		WaitForID: "element",
		Headers:   map[string]string{"X-Test": "yes"},
	})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if gotUA != DefaultUserAgent {
		t.Errorf("User-Agent = %q, want default desktop UA", gotUA)
	}
	if gotHeader != "yes" {
		t.Errorf("X-Test header = %q, want yes", gotHeader)
	}
	if content.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", content.StatusCode)
	}
	if !strings.Contains(content.HTML, "<li>Alpha</li>") {
		t.Errorf("HTML missing body: %q", content.HTML)
	}
	if content.Title != "Listing" {
		t.Errorf("Title = %q, want Listing", content.Title)
	}
	if content.WaitTimedOut {
		t.Error("static fetch should never report a wait timeout")
	}
	if content.URL != srv.URL {
		t.Errorf("URL = %q, want %q", content.URL, srv.URL)
	}
}

func TestStaticFetcher_UserAgentOverride(t *testing.T) {
	var gotUA string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`<html></html>`))
	})

	f := NewStaticFetcher(Config{UserAgent: "config-agent"})
	if _, err := f.Fetch(context.Background(), srv.URL, fetcher.Options{UserAgent: "call-agent"}); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if gotUA != "call-agent" {
		t.Errorf("User-Agent = %q, per-call option should win", gotUA)
	}
}

func TestStaticFetcher_HTTPError(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})

	f := NewStaticFetcher(Config{})
	content, err := f.Fetch(context.Background(), srv.URL, fetcher.Options{})
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !errors.Is(err, fetcher.ErrNavigation) {
		t.Errorf("expected ErrNavigation, got %v", err)
	}
	if content.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", content.StatusCode)
	}
}

func TestStaticFetcher_InvalidURL(t *testing.T) {
	f := NewStaticFetcher(Config{Timeout: time.Second})
	_, err := f.Fetch(context.Background(), "::not a url", fetcher.Options{})
	if !errors.Is(err, fetcher.ErrNavigation) {
		t.Errorf("expected ErrNavigation, got %v", err)
	}
}

func TestStaticFetcher_Type(t *testing.T) {
	f := NewStaticFetcher(Config{})
	if f.Type() != "static" {
		t.Errorf("Type() = %q, want static", f.Type())
	}
	if err := f.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestPageTitle(t *testing.T) {
	if got := pageTitle(`<title>  One </title><title>Two</title>`); got != "One" {
		t.Errorf("pageTitle() = %q, want One", got)
	}
	if got := pageTitle(`<p>no title</p>`); got != "" {
		t.Errorf("pageTitle() = %q, want empty", got)
	}
}
