package verify

import (
	"context"
	"errors"
	"fmt"

	"verifact/internal/util"
	"verifact/pkg/common"
	"verifact/pkg/logger"
	"verifact/pkg/search"
)

// userInputSourceType marks articles submitted as raw text rather than
// discovered on the web.
const userInputSourceType = "user_input"

var (
	// ErrNoInput is returned when an analyze request carries neither a URL
	// nor article text.
	ErrNoInput = errors.New("either url or text is required")

	// ErrExtractionFailed marks the one fatal pipeline failure: the original
	// article's facts could not be extracted, so there is nothing to verify.
	ErrExtractionFailed = errors.New("fact extraction for original article failed")
)

// ingestOriginal resolves the analyze input to a persisted Article, creating
// one if needed. URL submissions are fetched; failure to fetch the original
// is fatal for the request. Text submissions are de-duplicated by content
// hash so re-submitting the same text reuses the existing article.
func (s *Service) ingestOriginal(ctx context.Context, input AnalyzeInput) (*common.Article, error) {
	switch {
	case input.URL != "":
		return s.ingestByURL(ctx, input.URL)
	case input.Text != "":
		return s.ingestByText(ctx, input.Title, input.Text)
	default:
		return nil, ErrNoInput
	}
}

func (s *Service) ingestByURL(ctx context.Context, url string) (*common.Article, error) {
	existing, err := s.store.FindArticleByURL(ctx, url)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Content != "" {
		return existing, nil
	}

	result := s.fetcher.Fetch(ctx, url)
	if !result.Success || result.Content == "" {
		return nil, fmt.Errorf("failed to fetch original article: %s", result.Error)
	}

	article := &common.Article{
		URL:          url,
		Title:        result.Title,
		Content:      result.Content,
		SourceType:   search.ClassifySourceType(url),
		SourceDomain: result.Domain,
	}
	if err := s.store.CreateArticle(ctx, article); err != nil {
		return nil, err
	}

	logger.Info("[Verify] ingested article", "id", article.ID, "domain", article.SourceDomain)
	return article, nil
}

func (s *Service) ingestByText(ctx context.Context, title string, text string) (*common.Article, error) {
	hash := util.HashContent(text)

	existing, err := s.store.FindArticleByContentHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if title == "" {
		title = "User-provided article"
	}

	article := &common.Article{
		URL:          common.UserProvidedURL,
		Title:        title,
		Content:      text,
		SourceType:   userInputSourceType,
		SourceDomain: userInputSourceType,
	}
	if err := s.store.CreateArticle(ctx, article); err != nil {
		return nil, err
	}

	logger.Info("[Verify] ingested user-provided text", "id", article.ID)
	return article, nil
}

// originalFacts loads the original article's persisted facts, extracting and
// persisting them on first use. Extraction failure here aborts the request.
func (s *Service) originalFacts(ctx context.Context, article *common.Article) (common.FactSet, error) {
	stored, err := s.store.GetFactsByArticleID(ctx, article.ID)
	if err != nil {
		return common.FactSet{}, err
	}
	if !stored.IsEmpty() {
		return stored, nil
	}

	extracted, err := s.extractor.Extract(ctx, article.Title, article.Content)
	if err != nil {
		return common.FactSet{}, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	if extracted.IsEmpty() {
		return common.FactSet{}, fmt.Errorf("%w: no facts found", ErrExtractionFailed)
	}

	if err := s.store.SaveFacts(ctx, article.ID, extracted); err != nil {
		return common.FactSet{}, err
	}

	return extracted, nil
}
