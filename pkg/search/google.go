package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"verifact/pkg/common"
)

// googleMaxResultsPerCall is the hard cap of the Custom Search API.
const googleMaxResultsPerCall = 10

// GoogleSearchClient discovers comparison sources through the Google Custom
// Search JSON API.
type GoogleSearchClient struct {
	apiKey     string
	engineID   string
	httpClient *http.Client
}

func NewGoogleSearchClient(apiKey string, engineID string) *GoogleSearchClient {
	return &GoogleSearchClient{
		apiKey:     apiKey,
		engineID:   engineID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *GoogleSearchClient) Name() string {
	return "GoogleSearch"
}

func (c *GoogleSearchClient) Search(
	ctx context.Context,
	query string,
	limit int,
) ([]common.SourceCandidate, error) {
	if limit > googleMaxResultsPerCall {
		limit = googleMaxResultsPerCall
	}

	endpoint := fmt.Sprintf(
		"https://www.googleapis.com/customsearch/v1?key=%s&cx=%s&q=%s&num=%d",
		c.apiKey, c.engineID, url.QueryEscape(query), limit,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("google search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google search fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google search status %d", resp.StatusCode)
	}

	var raw googleSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("google search decode: %w", err)
	}

	candidates := make([]common.SourceCandidate, 0, len(raw.Items))
	for _, item := range raw.Items {
		if item.Link == "" {
			continue
		}
		candidates = append(candidates, common.SourceCandidate{
			URL:        item.Link,
			Title:      item.Title,
			Snippet:    item.Snippet,
			SourceType: ClassifySourceType(item.Link),
			Domain:     ExtractDomain(item.Link),
		})
	}

	return candidates, nil
}

type googleSearchResponse struct {
	Items []googleSearchItem `json:"items"`
}

type googleSearchItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}
