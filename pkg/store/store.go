// Package store defines the persistence boundary of the fact-checking
// pipeline. Find* methods report a miss as (nil, nil); Get* methods return
// ErrNotFound so API handlers can map it to a 404.
package store

import (
	"context"
	"errors"

	"verifact/pkg/common"
)

// ErrNotFound is returned by Get* lookups when no record exists.
var ErrNotFound = errors.New("record not found")

// Store is the persistence collaborator used by the orchestrator, the API
// routes and the queue worker.
type Store interface {
	// Articles
	CreateArticle(ctx context.Context, article *common.Article) error
	GetArticleByID(ctx context.Context, id int64) (*common.Article, error)
	FindArticleByURL(ctx context.Context, url string) (*common.Article, error)
	FindArticleByContentHash(ctx context.Context, hash string) (*common.Article, error)

	// Facts
	SaveFacts(ctx context.Context, articleID int64, facts common.FactSet) error
	GetFactsByArticleID(ctx context.Context, articleID int64) (common.FactSet, error)

	// Analyses
	CreateAnalysis(ctx context.Context, analysis *common.Analysis) error
	UpdateAnalysis(ctx context.Context, analysis *common.Analysis) error
	GetAnalysisByID(ctx context.Context, id int64) (*common.Analysis, error)
	FindAnalysisByPair(ctx context.Context, originalID int64, comparisonID int64) (*common.Analysis, error)
	GetAnalysesByOriginalArticle(ctx context.Context, originalID int64) ([]common.Analysis, error)

	// Reports
	CreateReport(ctx context.Context, report *common.Report) error
	UpdateReport(ctx context.Context, report *common.Report) error
	GetReportByID(ctx context.Context, id int64) (*common.Report, error)
	FindLatestReportByArticle(ctx context.Context, originalID int64) (*common.Report, error)
	ListReports(ctx context.Context, limit int) ([]common.Report, error)
	DeleteReport(ctx context.Context, id int64) error
}
