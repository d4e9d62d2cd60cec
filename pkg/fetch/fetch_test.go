package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>Harbor Fire Contained &amp; Controlled</title></head>
<body>
<article>
<h1>Harbor Fire Contained</h1>
<p>Firefighters contained a large fire in the harbor district on Monday evening after several hours of work. No casualties were reported by the authorities.</p>
<p>The fire started in a warehouse storing packaging material and spread to a neighboring building before crews arrived on scene.</p>
</article>
</body>
</html>`

func TestFetchExtractsArticle(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	fetcher := NewWebFetcher()
	result := fetcher.Fetch(context.Background(), srv.URL)

	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if result.Title != "Harbor Fire Contained & Controlled" {
		t.Errorf("Title = %q", result.Title)
	}
	if !strings.Contains(result.Content, "Firefighters contained a large fire") {
		t.Errorf("Content missing article text: %q", result.Content)
	}
	if result.Domain == "" {
		t.Error("expected non-empty domain")
	}

	// Second fetch must come from the cache.
	fetcher.Fetch(context.Background(), srv.URL)
	if hits.Load() != 1 {
		t.Errorf("expected 1 upstream hit, got %d", hits.Load())
	}
}

func TestFetchFailuresAreNonFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	tests := []struct {
		name string
		url  string
	}{
		{name: "http error status", url: srv.URL},
		{name: "unreachable host", url: "http://127.0.0.1:1/article"},
		{name: "invalid url", url: "://not-a-url"},
	}

	fetcher := NewWebFetcher()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := fetcher.Fetch(context.Background(), tt.url)
			if result.Success {
				t.Error("expected failure result")
			}
			if result.Error == "" {
				t.Error("expected diagnostic error message")
			}
		})
	}
}

func TestFetchRejectsNonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	result := NewWebFetcher().Fetch(context.Background(), srv.URL)
	if result.Success {
		t.Error("expected non-HTML content to be rejected")
	}
}
