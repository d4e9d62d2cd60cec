package search

import (
	"context"

	"verifact/pkg/common"
	"verifact/pkg/logger"
)

// Backend is one source-discovery provider. Backends are independent: a
// failing backend degrades to zero results without affecting the others.
type Backend interface {
	Search(ctx context.Context, query string, limit int) ([]common.SourceCandidate, error)
	Name() string
}

// MultiSearcher fans a query out to all configured backends, merges their
// results and de-duplicates them by URL before truncating to the configured
// maximum.
type MultiSearcher struct {
	backends   []Backend
	maxResults int
}

func NewMultiSearcher(maxResults int, backends ...Backend) *MultiSearcher {
	return &MultiSearcher{
		backends:   backends,
		maxResults: maxResults,
	}
}

// Search runs the query against every backend in order. Backend failures are
// logged and skipped; the merged result keeps first-seen order per URL.
func (s *MultiSearcher) Search(ctx context.Context, query string) []common.SourceCandidate {
	seen := map[string]struct{}{}
	merged := []common.SourceCandidate{}

	for _, backend := range s.backends {
		results, err := backend.Search(ctx, query, s.maxResults)
		if err != nil {
			logger.Warn("[Search] backend failed", "backend", backend.Name(), "err", err)
			continue
		}

		for _, candidate := range results {
			if _, ok := seen[candidate.URL]; ok {
				continue
			}
			seen[candidate.URL] = struct{}{}
			merged = append(merged, candidate)
		}
	}

	if s.maxResults > 0 && len(merged) > s.maxResults {
		merged = merged[:s.maxResults]
	}

	return merged
}
