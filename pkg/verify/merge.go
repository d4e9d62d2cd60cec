package verify

import (
	"context"

	"verifact/pkg/common"
	"verifact/pkg/logger"
	"verifact/pkg/score"
	"verifact/pkg/store"
)

// MergeReports folds newly produced analyses into an existing report. The
// new batch must already be persisted; the aggregate is recomputed over
// everything stored for the article, deduplicated by comparison article id
// so a re-run can never double-count a source. The recomputed report is
// written as a new row whose ParentReportID points at the superseded one,
// so merge lineage stays walkable.
//
// With an empty batch the existing report is returned untouched.
func MergeReports(
	ctx context.Context,
	st store.Store,
	existing *common.Report,
	newAnalyses []common.Analysis,
) (*common.Report, int, error) {
	if len(newAnalyses) == 0 {
		return existing, 0, nil
	}

	persisted, err := st.GetAnalysesByOriginalArticle(ctx, existing.OriginalArticleID)
	if err != nil {
		return nil, 0, err
	}

	seen := make(map[int64]struct{}, len(persisted))
	union := make([]common.Analysis, 0, len(persisted))
	for _, a := range persisted {
		if _, ok := seen[a.ComparisonArticleID]; ok {
			continue
		}
		seen[a.ComparisonArticleID] = struct{}{}
		union = append(union, a)
	}

	newIDs := make(map[int64]struct{}, len(newAnalyses))
	for _, a := range newAnalyses {
		newIDs[a.ComparisonArticleID] = struct{}{}
	}
	added := len(newIDs)

	merged := score.GenerateReport(existing.OriginalArticleID, union)
	merged.SourcesChecked = len(union)
	merged.AnalysisAttempts = existing.AnalysisAttempts
	merged.IsMerged = true
	merged.MergeCount = existing.MergeCount + 1
	merged.ParentReportID = &existing.ID

	if err := st.CreateReport(ctx, &merged); err != nil {
		return nil, 0, err
	}

	logger.Info(
		"[Verify] merged report",
		"report_id", merged.ID,
		"new_sources", added,
		"total_sources", merged.SourcesChecked,
		"score", merged.OverallScore,
	)

	return &merged, added, nil
}
