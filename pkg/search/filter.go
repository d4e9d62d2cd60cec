package search

import (
	"context"

	"verifact/pkg/common"
)

// ArticleLookup resolves a URL to a persisted article, if one exists. A miss
// is reported as (nil, nil).
type ArticleLookup interface {
	FindArticleByURL(ctx context.Context, url string) (*common.Article, error)
}

// FilterSources drops candidates that cannot yield a new Analysis, preserving
// input order. A candidate is dropped when it has no URL, repeats a URL seen
// earlier in the same batch, points back at the original article, or resolves
// to a persisted article that was already analyzed.
func FilterSources(
	ctx context.Context,
	lookup ArticleLookup,
	sources []common.SourceCandidate,
	originalURL string,
	alreadyAnalyzedIDs []int64,
) []common.SourceCandidate {
	analyzed := make(map[int64]struct{}, len(alreadyAnalyzedIDs))
	for _, id := range alreadyAnalyzedIDs {
		analyzed[id] = struct{}{}
	}

	seen := map[string]struct{}{}
	filtered := []common.SourceCandidate{}

	for _, candidate := range sources {
		if candidate.URL == "" {
			continue
		}
		if _, ok := seen[candidate.URL]; ok {
			continue
		}
		seen[candidate.URL] = struct{}{}

		if candidate.URL == originalURL {
			continue
		}

		if lookup != nil && len(analyzed) > 0 {
			article, err := lookup.FindArticleByURL(ctx, candidate.URL)
			if err == nil && article != nil {
				if _, ok := analyzed[article.ID]; ok {
					continue
				}
			}
		}

		filtered = append(filtered, candidate)
	}

	return filtered
}
