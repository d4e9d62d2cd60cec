package fetch

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"verifact/pkg/logger"

	"codeberg.org/readeck/go-readability/v2"
	"golang.org/x/sync/singleflight"
)

// maxBodyBytes caps how much of a response body is read for extraction.
const maxBodyBytes = 5 << 20

var titleRe = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

// Result is the outcome of fetching one URL. Success false or empty Content
// means the caller skips the source; fetch failures are never fatal.
type Result struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Domain  string `json:"domain"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// WebFetcher downloads article pages and extracts their readable text.
// Results are cached per URL and concurrent fetches of the same URL are
// collapsed into a single request.
type WebFetcher struct {
	httpClient *http.Client

	cache   map[string]Result
	cacheMu sync.RWMutex
	group   singleflight.Group
}

func NewWebFetcher() *WebFetcher {
	return &WebFetcher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      make(map[string]Result),
	}
}

// Fetch retrieves a URL and extracts its main article text. Failures are
// reported in the Result rather than as an error so one bad source never
// aborts an analysis run.
func (f *WebFetcher) Fetch(ctx context.Context, rawURL string) Result {
	f.cacheMu.RLock()
	if cached, ok := f.cache[rawURL]; ok {
		f.cacheMu.RUnlock()
		return cached
	}
	f.cacheMu.RUnlock()

	result, _, _ := f.group.Do(rawURL, func() (any, error) {
		f.cacheMu.RLock()
		if cached, ok := f.cache[rawURL]; ok {
			f.cacheMu.RUnlock()
			return cached, nil
		}
		f.cacheMu.RUnlock()

		res := f.fetch(ctx, rawURL)
		if res.Success {
			f.cacheMu.Lock()
			f.cache[rawURL] = res
			f.cacheMu.Unlock()
		}
		return res, nil
	})

	return result.(Result)
}

func (f *WebFetcher) fetch(ctx context.Context, rawURL string) Result {
	failure := func(format string, args ...any) Result {
		msg := fmt.Sprintf(format, args...)
		logger.Debug("[Fetch] failed", "url", rawURL, "err", msg)
		return Result{Error: msg}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return failure("invalid url: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return failure("failed to create request: %v", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; verifact/1.0)")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return failure("failed to fetch url: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return failure("unexpected status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "text/html") {
		return failure("unsupported content type %q", contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return failure("failed to read body: %v", err)
	}

	article, err := readability.FromReader(bytes.NewReader(body), u)
	if err != nil {
		return failure("failed to parse html: %v", err)
	}

	var builder strings.Builder
	if err := article.RenderText(&builder); err != nil {
		return failure("failed to render article text: %v", err)
	}

	content := strings.TrimSpace(builder.String())
	if content == "" {
		return failure("no readable content")
	}

	return Result{
		Title:   extractTitle(body),
		Content: content,
		Domain:  strings.TrimPrefix(strings.ToLower(u.Host), "www."),
		Success: true,
	}
}

func extractTitle(body []byte) string {
	m := titleRe.FindSubmatch(body)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(string(m[1])))
}
