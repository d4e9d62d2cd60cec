package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"verifact/internal/util"
	"verifact/pkg/common"
)

// NewsAPIClient discovers comparison sources through the NewsAPI.org
// /v2/everything endpoint.
type NewsAPIClient struct {
	apiKey     string
	httpClient *http.Client
}

func NewNewsAPIClient(apiKey string) *NewsAPIClient {
	return &NewsAPIClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *NewsAPIClient) Name() string {
	return "NewsAPI"
}

func (c *NewsAPIClient) Search(
	ctx context.Context,
	query string,
	limit int,
) ([]common.SourceCandidate, error) {
	endpoint := fmt.Sprintf(
		"https://newsapi.org/v2/everything?q=%s&pageSize=%d&sortBy=relevancy&language=en&apiKey=%s",
		url.QueryEscape(query), limit, c.apiKey,
	)

	raw, err := util.RetryWithContext(ctx, 2, func(ctx context.Context) (newsAPIResponse, error) {
		var parsed newsAPIResponse

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return parsed, fmt.Errorf("newsapi request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return parsed, fmt.Errorf("newsapi fetch: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return parsed, fmt.Errorf("newsapi status %d", resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return parsed, fmt.Errorf("newsapi decode: %w", err)
		}
		return parsed, nil
	})
	if err != nil {
		return nil, err
	}

	if raw.Status != "ok" {
		return nil, fmt.Errorf("newsapi error: %s", raw.Message)
	}

	candidates := make([]common.SourceCandidate, 0, len(raw.Articles))
	for _, item := range raw.Articles {
		if item.URL == "" {
			continue
		}
		candidates = append(candidates, common.SourceCandidate{
			URL:         item.URL,
			Title:       item.Title,
			Snippet:     item.Description,
			SourceType:  ClassifySourceType(item.URL),
			SourceName:  item.Source.Name,
			Domain:      ExtractDomain(item.URL),
			PublishedAt: item.PublishedAt,
		})
	}

	return candidates, nil
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source      newsAPISource `json:"source"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	PublishedAt string        `json:"publishedAt"`
}

type newsAPISource struct {
	Name string `json:"name"`
}
