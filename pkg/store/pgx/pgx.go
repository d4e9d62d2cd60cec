// Package pgx implements the store.Store interface on PostgreSQL.
package pgx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"verifact/internal/util"
	"verifact/pkg/common"
	"verifact/pkg/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the PostgreSQL-backed persistence layer.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps a connection pool in a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// ensure interface compliance
var _ store.Store = (*Store)(nil)

func (s *Store) CreateArticle(ctx context.Context, article *common.Article) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO articles (url, title, content, source_type, source_domain, content_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`,
		article.URL,
		util.SanitizePostgresText(article.Title),
		util.SanitizePostgresText(article.Content),
		article.SourceType,
		article.SourceDomain,
		util.HashContent(article.Content),
	).Scan(&article.ID, &article.CreatedAt)
}

func (s *Store) GetArticleByID(ctx context.Context, id int64) (*common.Article, error) {
	article, err := s.scanArticle(s.pool.QueryRow(ctx, `
		SELECT id, url, title, content, source_type, source_domain, created_at
		FROM articles
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return article, nil
}

func (s *Store) FindArticleByURL(ctx context.Context, url string) (*common.Article, error) {
	article, err := s.scanArticle(s.pool.QueryRow(ctx, `
		SELECT id, url, title, content, source_type, source_domain, created_at
		FROM articles
		WHERE url = $1
		ORDER BY id
		LIMIT 1
	`, url))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return article, nil
}

func (s *Store) FindArticleByContentHash(ctx context.Context, hash string) (*common.Article, error) {
	article, err := s.scanArticle(s.pool.QueryRow(ctx, `
		SELECT id, url, title, content, source_type, source_domain, created_at
		FROM articles
		WHERE content_hash = $1
		ORDER BY id
		LIMIT 1
	`, hash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return article, nil
}

func (s *Store) scanArticle(row pgx.Row) (*common.Article, error) {
	var a common.Article
	err := row.Scan(&a.ID, &a.URL, &a.Title, &a.Content, &a.SourceType, &a.SourceDomain, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// SaveFacts replaces all persisted facts for an article. Importance and
// confidence labels are stored as their numeric weights.
func (s *Store) SaveFacts(ctx context.Context, articleID int64, facts common.FactSet) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM facts WHERE article_id = $1`, articleID); err != nil {
		return err
	}

	for _, f := range facts.Facts {
		_, err := tx.Exec(ctx, `
			INSERT INTO facts (article_id, kind, text, related_who, related_where, related_when, importance, confidence)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			articleID,
			string(f.Kind),
			util.SanitizePostgresText(f.Text),
			f.Who,
			f.Where,
			f.When,
			common.ImportanceWeight(f.Importance),
			common.ConfidenceWeight(f.Confidence),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) GetFactsByArticleID(ctx context.Context, articleID int64) (common.FactSet, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT kind, text, related_who, related_where, related_when, importance, confidence
		FROM facts
		WHERE article_id = $1
		ORDER BY id
	`, articleID)
	if err != nil {
		return common.FactSet{}, err
	}
	defer rows.Close()

	set := common.FactSet{}
	for rows.Next() {
		var (
			kind       string
			f          common.FactRecord
			importance float64
			confidence float64
		)
		if err := rows.Scan(&kind, &f.Text, &f.Who, &f.Where, &f.When, &importance, &confidence); err != nil {
			return common.FactSet{}, err
		}
		f.Kind = common.FactKind(kind)
		f.Importance = common.ImportanceLabel(importance)
		f.Confidence = common.ConfidenceLabel(confidence)
		set.Facts = append(set.Facts, f)
	}

	return set, rows.Err()
}

func (s *Store) CreateAnalysis(ctx context.Context, analysis *common.Analysis) error {
	matching, conflicting, details, err := marshalAnalysisBlobs(analysis)
	if err != nil {
		return err
	}

	return s.pool.QueryRow(ctx, `
		INSERT INTO analyses (original_article_id, comparison_article_id, accuracy_score, matching_facts, conflicting_facts, details)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`,
		analysis.OriginalArticleID,
		analysis.ComparisonArticleID,
		analysis.AccuracyScore,
		matching,
		conflicting,
		details,
	).Scan(&analysis.ID, &analysis.CreatedAt)
}

func (s *Store) UpdateAnalysis(ctx context.Context, analysis *common.Analysis) error {
	matching, conflicting, details, err := marshalAnalysisBlobs(analysis)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE analyses
		SET accuracy_score = $2, matching_facts = $3, conflicting_facts = $4, details = $5
		WHERE id = $1
	`, analysis.ID, analysis.AccuracyScore, matching, conflicting, details)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) GetAnalysisByID(ctx context.Context, id int64) (*common.Analysis, error) {
	analysis, err := scanAnalysis(s.pool.QueryRow(ctx, `
		SELECT id, original_article_id, comparison_article_id, accuracy_score, matching_facts, conflicting_facts, details, created_at
		FROM analyses
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return analysis, nil
}

func (s *Store) FindAnalysisByPair(ctx context.Context, originalID int64, comparisonID int64) (*common.Analysis, error) {
	analysis, err := scanAnalysis(s.pool.QueryRow(ctx, `
		SELECT id, original_article_id, comparison_article_id, accuracy_score, matching_facts, conflicting_facts, details, created_at
		FROM analyses
		WHERE original_article_id = $1 AND comparison_article_id = $2
		LIMIT 1
	`, originalID, comparisonID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return analysis, nil
}

func (s *Store) GetAnalysesByOriginalArticle(ctx context.Context, originalID int64) ([]common.Analysis, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, original_article_id, comparison_article_id, accuracy_score, matching_facts, conflicting_facts, details, created_at
		FROM analyses
		WHERE original_article_id = $1
		ORDER BY id
	`, originalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	analyses := []common.Analysis{}
	for rows.Next() {
		analysis, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, *analysis)
	}

	return analyses, rows.Err()
}

func marshalAnalysisBlobs(analysis *common.Analysis) ([]byte, []byte, []byte, error) {
	matching, err := json.Marshal(analysis.MatchingFacts)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal matching facts: %w", err)
	}
	conflicting, err := json.Marshal(analysis.ConflictingFacts)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal conflicting facts: %w", err)
	}
	details, err := json.Marshal(analysis.Details)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal analysis details: %w", err)
	}
	return matching, conflicting, details, nil
}

func scanAnalysis(row pgx.Row) (*common.Analysis, error) {
	var (
		a           common.Analysis
		matching    []byte
		conflicting []byte
		details     []byte
	)
	err := row.Scan(
		&a.ID,
		&a.OriginalArticleID,
		&a.ComparisonArticleID,
		&a.AccuracyScore,
		&matching,
		&conflicting,
		&details,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(matching, &a.MatchingFacts); err != nil {
		return nil, fmt.Errorf("unmarshal matching facts: %w", err)
	}
	if err := json.Unmarshal(conflicting, &a.ConflictingFacts); err != nil {
		return nil, fmt.Errorf("unmarshal conflicting facts: %w", err)
	}
	if err := json.Unmarshal(details, &a.Details); err != nil {
		return nil, fmt.Errorf("unmarshal analysis details: %w", err)
	}

	return &a, nil
}

func (s *Store) CreateReport(ctx context.Context, report *common.Report) error {
	detailed, err := json.Marshal(report.Detailed)
	if err != nil {
		return fmt.Errorf("marshal detailed results: %w", err)
	}

	return s.pool.QueryRow(ctx, `
		INSERT INTO reports (original_article_id, overall_score, confidence_level, sources_checked, summary, recommendations, detailed_results, is_merged, merge_count, analysis_attempts, parent_report_id, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		RETURNING id, created_at, last_updated
	`,
		report.OriginalArticleID,
		report.OverallScore,
		report.ConfidenceLevel,
		report.SourcesChecked,
		report.Summary,
		report.Recommendations,
		detailed,
		report.IsMerged,
		report.MergeCount,
		report.AnalysisAttempts,
		report.ParentReportID,
	).Scan(&report.ID, &report.CreatedAt, &report.LastUpdated)
}

func (s *Store) UpdateReport(ctx context.Context, report *common.Report) error {
	detailed, err := json.Marshal(report.Detailed)
	if err != nil {
		return fmt.Errorf("marshal detailed results: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE reports
		SET overall_score = $2,
			confidence_level = $3,
			sources_checked = $4,
			summary = $5,
			recommendations = $6,
			detailed_results = $7,
			is_merged = $8,
			merge_count = $9,
			analysis_attempts = $10,
			last_updated = now()
		WHERE id = $1
		RETURNING last_updated
	`,
		report.ID,
		report.OverallScore,
		report.ConfidenceLevel,
		report.SourcesChecked,
		report.Summary,
		report.Recommendations,
		detailed,
		report.IsMerged,
		report.MergeCount,
		report.AnalysisAttempts,
	)

	if err := row.Scan(&report.LastUpdated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Store) GetReportByID(ctx context.Context, id int64) (*common.Report, error) {
	report, err := scanReport(s.pool.QueryRow(ctx, `
		SELECT id, original_article_id, overall_score, confidence_level, sources_checked, summary, recommendations, detailed_results, is_merged, merge_count, analysis_attempts, parent_report_id, created_at, last_updated
		FROM reports
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return report, nil
}

func (s *Store) FindLatestReportByArticle(ctx context.Context, originalID int64) (*common.Report, error) {
	report, err := scanReport(s.pool.QueryRow(ctx, `
		SELECT id, original_article_id, overall_score, confidence_level, sources_checked, summary, recommendations, detailed_results, is_merged, merge_count, analysis_attempts, parent_report_id, created_at, last_updated
		FROM reports
		WHERE original_article_id = $1
		ORDER BY last_updated DESC, id DESC
		LIMIT 1
	`, originalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return report, nil
}

// ListReports returns the newest report per article; superseded merge
// ancestors stay reachable through GetReportByID only.
func (s *Store) ListReports(ctx context.Context, limit int) ([]common.Report, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, original_article_id, overall_score, confidence_level, sources_checked, summary, recommendations, detailed_results, is_merged, merge_count, analysis_attempts, parent_report_id, created_at, last_updated
		FROM (
			SELECT DISTINCT ON (original_article_id) *
			FROM reports
			ORDER BY original_article_id, last_updated DESC, id DESC
		) latest
		ORDER BY last_updated DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := []common.Report{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}

	return reports, rows.Err()
}

// DeleteReport removes a report, its merge ancestors, and the analyses the
// article owns in one transaction. Leaving ancestors behind would let a
// stale aggregate resurface as the article's latest report.
func (s *Store) DeleteReport(ctx context.Context, id int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var originalArticleID int64
	err = tx.QueryRow(ctx, `
		SELECT original_article_id FROM reports WHERE id = $1
	`, id).Scan(&originalArticleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrNotFound
		}
		return err
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM analyses WHERE original_article_id = $1
	`, originalArticleID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM reports WHERE original_article_id = $1
	`, originalArticleID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func scanReport(row pgx.Row) (*common.Report, error) {
	var (
		r        common.Report
		detailed []byte
	)
	err := row.Scan(
		&r.ID,
		&r.OriginalArticleID,
		&r.OverallScore,
		&r.ConfidenceLevel,
		&r.SourcesChecked,
		&r.Summary,
		&r.Recommendations,
		&detailed,
		&r.IsMerged,
		&r.MergeCount,
		&r.AnalysisAttempts,
		&r.ParentReportID,
		&r.CreatedAt,
		&r.LastUpdated,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(detailed, &r.Detailed); err != nil {
		return nil, fmt.Errorf("unmarshal detailed results: %w", err)
	}

	return &r, nil
}
