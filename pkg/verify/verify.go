// Package verify drives the full fact-checking pipeline: ingest an article,
// extract its facts, discover corroborating sources, compare and score them,
// and aggregate the results into a report. Re-running the pipeline for the
// same article merges new evidence into the existing report instead of
// replacing it.
package verify

import (
	"context"
	"fmt"
	"time"

	"verifact/pkg/ai"
	"verifact/pkg/common"
	"verifact/pkg/facts"
	"verifact/pkg/fetch"
	"verifact/pkg/leaselock"
	"verifact/pkg/logger"
	"verifact/pkg/score"
	"verifact/pkg/search"
	"verifact/pkg/store"
)

const (
	defaultMaxAttempts   = 3
	defaultMaxPerAttempt = 5
	minSourcesThreshold  = 3

	cheapMaxAttempts   = 1
	cheapMaxPerAttempt = 3

	analyzeLockTTL = 5 * time.Minute
)

// Searcher finds candidate sources for a query. Failed backends degrade to
// an empty result rather than an error.
type Searcher interface {
	Search(ctx context.Context, query string) []common.SourceCandidate
}

// Fetcher downloads a page and extracts its readable text.
type Fetcher interface {
	Fetch(ctx context.Context, url string) fetch.Result
}

// Locker serializes concurrent analysis of the same article.
type Locker interface {
	WithLease(ctx context.Context, key string, opts leaselock.Options, fn func(ctx context.Context) error) error
}

// AnalyzeInput is a fact-check request. Exactly one of URL or Text must be
// set; Title is only used for text submissions. CheapMode trades coverage
// for cost: a single attempt against fewer sources.
type AnalyzeInput struct {
	URL       string
	Text      string
	Title     string
	CheapMode bool
}

// AnalyzeResult is the outcome of one pipeline run.
type AnalyzeResult struct {
	Report          *common.Report `json:"report"`
	WasMerged       bool           `json:"was_merged"`
	NewSourcesAdded int            `json:"new_sources_added"`
	TotalAttempts   int            `json:"total_attempts"`
}

// Service wires the pipeline stages together.
type Service struct {
	store    store.Store
	searcher Searcher
	fetcher  Fetcher
	locks    Locker

	extractor  *facts.Extractor
	optimizer  *facts.QueryOptimizer
	comparator *score.Comparator
}

func NewService(
	st store.Store,
	client ai.VerifyAIClient,
	searcher Searcher,
	fetcher Fetcher,
	locks Locker,
) *Service {
	return &Service{
		store:      st,
		searcher:   searcher,
		fetcher:    fetcher,
		locks:      locks,
		extractor:  facts.NewExtractor(client),
		optimizer:  facts.NewQueryOptimizer(client),
		comparator: score.NewComparator(client),
	}
}

// Analyze runs the pipeline end to end. A per-article lease keeps concurrent
// requests for the same article from racing each other; later requests wait
// and then merge into whatever the first one produced.
func (s *Service) Analyze(ctx context.Context, input AnalyzeInput) (*AnalyzeResult, error) {
	article, err := s.ingestOriginal(ctx, input)
	if err != nil {
		return nil, err
	}

	var result *AnalyzeResult
	lockKey := fmt.Sprintf("analyze:%d", article.ID)
	err = s.locks.WithLease(ctx, lockKey, leaselock.Options{TTL: analyzeLockTTL, Wait: true}, func(ctx context.Context) error {
		r, err := s.analyzeLocked(ctx, article, input.CheapMode)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) analyzeLocked(ctx context.Context, article *common.Article, cheapMode bool) (*AnalyzeResult, error) {
	originalFacts, err := s.originalFacts(ctx, article)
	if err != nil {
		return nil, err
	}

	maxAttempts := defaultMaxAttempts
	maxPerAttempt := defaultMaxPerAttempt
	if cheapMode {
		maxAttempts = cheapMaxAttempts
		maxPerAttempt = cheapMaxPerAttempt
	}

	result := &AnalyzeResult{}
	var report *common.Report

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result.TotalAttempts = attempt

		existing, err := s.store.FindLatestReportByArticle(ctx, article.ID)
		if err != nil {
			return nil, err
		}

		candidates := s.discoverSources(ctx, article, originalFacts, attempt, existing)
		if len(candidates) == 0 {
			logger.Info("[Verify] no new sources found", "article_id", article.ID, "attempt", attempt)
			if existing != nil {
				report = existing
				break
			}
			continue
		}
		if len(candidates) > maxPerAttempt {
			candidates = candidates[:maxPerAttempt]
		}

		newAnalyses := s.analyzeCandidates(ctx, article, originalFacts, candidates)
		newAnalyses = score.ReviewAnalyses(newAnalyses)

		persisted := make([]common.Analysis, 0, len(newAnalyses))
		for i := range newAnalyses {
			if err := s.store.CreateAnalysis(ctx, &newAnalyses[i]); err != nil {
				logger.Warn("[Verify] failed to persist analysis", "error", err)
				continue
			}
			persisted = append(persisted, newAnalyses[i])
		}

		if existing != nil {
			merged, added, err := MergeReports(ctx, s.store, existing, persisted)
			if err != nil {
				return nil, err
			}
			report = merged
			if added > 0 {
				result.WasMerged = true
				result.NewSourcesAdded += added
			}
		} else {
			generated := score.GenerateReport(article.ID, persisted)
			generated.AnalysisAttempts = attempt
			if err := s.store.CreateReport(ctx, &generated); err != nil {
				return nil, err
			}
			report = &generated
			result.NewSourcesAdded += len(persisted)
		}

		if report.AnalysisAttempts < attempt {
			report.AnalysisAttempts = attempt
			if err := s.store.UpdateReport(ctx, report); err != nil {
				return nil, err
			}
		}

		if report.SourcesChecked >= minSourcesThreshold {
			break
		}
	}

	if report == nil {
		generated := score.GenerateReport(article.ID, nil)
		generated.AnalysisAttempts = result.TotalAttempts
		if err := s.store.CreateReport(ctx, &generated); err != nil {
			return nil, err
		}
		report = &generated
	}

	result.Report = report
	logger.Info(
		"[Verify] analysis complete",
		"article_id", article.ID,
		"score", report.OverallScore,
		"sources", report.SourcesChecked,
		"attempts", result.TotalAttempts,
	)
	return result, nil
}

// discoverSources generates queries from the extracted facts, runs the
// search backends and filters out everything that cannot yield a new
// analysis. Retry attempts additionally query for official sources when the
// evidence so far has none.
func (s *Service) discoverSources(
	ctx context.Context,
	article *common.Article,
	originalFacts common.FactSet,
	attempt int,
	existing *common.Report,
) []common.SourceCandidate {
	queries := s.optimizer.Optimize(ctx, originalFacts, attempt)

	candidates := s.searcher.Search(ctx, queries.PrimaryQuery)
	for _, alt := range queries.AlternativeQueries {
		if len(candidates) > 0 {
			break
		}
		candidates = s.searcher.Search(ctx, alt)
	}

	if attempt > 1 && !hasOfficialSource(existing) {
		official := s.searcher.Search(ctx, facts.OfficialSourcesQuery(queries.PrimaryQuery))
		candidates = append(candidates, official...)
	}

	analyzedIDs, err := s.analyzedComparisonIDs(ctx, article.ID)
	if err != nil {
		logger.Warn("[Verify] failed to load prior analyses", "error", err)
	}

	return search.FilterSources(ctx, s.store, candidates, article.URL, analyzedIDs)
}

func (s *Service) analyzedComparisonIDs(ctx context.Context, originalID int64) ([]int64, error) {
	analyses, err := s.store.GetAnalysesByOriginalArticle(ctx, originalID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(analyses))
	for _, a := range analyses {
		ids = append(ids, a.ComparisonArticleID)
	}
	return ids, nil
}

// analyzeCandidates fetches, extracts and compares each candidate against
// the original article. Every per-candidate failure degrades to a skip; the
// pipeline never aborts because one source was unreachable or off-topic.
func (s *Service) analyzeCandidates(
	ctx context.Context,
	article *common.Article,
	originalFacts common.FactSet,
	candidates []common.SourceCandidate,
) []common.Analysis {
	analyses := []common.Analysis{}

	for _, candidate := range candidates {
		known, err := s.store.FindArticleByURL(ctx, candidate.URL)
		if err != nil {
			logger.Warn("[Verify] article lookup failed", "url", candidate.URL, "error", err)
			continue
		}
		if known != nil {
			prior, err := s.store.FindAnalysisByPair(ctx, article.ID, known.ID)
			if err != nil {
				logger.Warn("[Verify] analysis lookup failed", "url", candidate.URL, "error", err)
				continue
			}
			if prior != nil {
				logger.Debug("[Verify] source already analyzed", "url", candidate.URL)
				continue
			}
		}

		comparison, compFacts, err := s.prepareComparison(ctx, known, candidate)
		if err != nil {
			logger.Debug("[Verify] skipping source", "url", candidate.URL, "reason", err)
			continue
		}

		analysis, err := s.comparator.Compare(ctx, originalFacts, compFacts, comparison.SourceType, comparison.SourceDomain)
		if err != nil {
			logger.Warn("[Verify] comparison failed", "url", candidate.URL, "error", err)
			continue
		}
		if analysis == nil {
			continue
		}

		analysis.OriginalArticleID = article.ID
		analysis.ComparisonArticleID = comparison.ID
		analyses = append(analyses, *analysis)
	}

	return analyses
}

// prepareComparison resolves a candidate to a persisted comparison article
// with extracted facts, fetching and extracting on first sight.
func (s *Service) prepareComparison(ctx context.Context, comparison *common.Article, candidate common.SourceCandidate) (*common.Article, common.FactSet, error) {
	if comparison == nil {
		result := s.fetcher.Fetch(ctx, candidate.URL)
		if !result.Success || result.Content == "" {
			return nil, common.FactSet{}, fmt.Errorf("fetch failed: %s", result.Error)
		}

		title := result.Title
		if title == "" {
			title = candidate.Title
		}
		comparison = &common.Article{
			URL:          candidate.URL,
			Title:        title,
			Content:      result.Content,
			SourceType:   search.ClassifySourceType(candidate.URL),
			SourceDomain: result.Domain,
		}
		if err := s.store.CreateArticle(ctx, comparison); err != nil {
			return nil, common.FactSet{}, err
		}
	}

	compFacts, err := s.store.GetFactsByArticleID(ctx, comparison.ID)
	if err != nil {
		return nil, common.FactSet{}, err
	}
	if compFacts.IsEmpty() {
		compFacts, err = s.extractor.Extract(ctx, comparison.Title, comparison.Content)
		if err != nil {
			return nil, common.FactSet{}, fmt.Errorf("fact extraction failed: %w", err)
		}
		if compFacts.IsEmpty() {
			return nil, common.FactSet{}, fmt.Errorf("no facts extracted")
		}
		if err := s.store.SaveFacts(ctx, comparison.ID, compFacts); err != nil {
			return nil, common.FactSet{}, err
		}
	}

	return comparison, compFacts, nil
}

func hasOfficialSource(report *common.Report) bool {
	if report == nil {
		return false
	}
	return report.Detailed.SourceDistribution[common.SourceOfficial] > 0
}
