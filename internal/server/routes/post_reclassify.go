package routes

import (
	"errors"
	"net/http"

	"verifact/internal/server/middleware"
	"verifact/pkg/common"
	"verifact/pkg/score"
	"verifact/pkg/store"

	"github.com/labstack/echo/v4"
)

// ReclassifyFactHandler manually moves a fact between the matching and
// conflicting lists of an analysis, rescores it and recomputes the report it
// feeds into.
func ReclassifyFactHandler(c echo.Context) error {
	type reclassifyBody struct {
		ID        int64  `param:"id" validate:"required,numeric"`
		Direction string `json:"direction" validate:"required,oneof=to_matching to_conflicting"`
		FactIndex *int   `json:"fact_index" validate:"required,min=0"`
	}

	type reclassifyResponse struct {
		Message  string           `json:"message"`
		Analysis *common.Analysis `json:"analysis,omitempty"`
		Report   *common.Report   `json:"report,omitempty"`
	}

	data := new(reclassifyBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, reclassifyResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, reclassifyResponse{
			Message: "Invalid request body",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	st := c.(*middleware.AppContext).App.Store

	analysis, err := st.GetAnalysisByID(ctx, data.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, reclassifyResponse{
				Message: "Analysis not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, reclassifyResponse{
			Message: "Internal server error",
		})
	}

	if err := score.ReclassifyFact(analysis, data.Direction, *data.FactIndex); err != nil {
		return c.JSON(http.StatusBadRequest, reclassifyResponse{
			Message: err.Error(),
		})
	}

	if err := st.UpdateAnalysis(ctx, analysis); err != nil {
		return c.JSON(http.StatusInternalServerError, reclassifyResponse{
			Message: "Internal server error",
		})
	}

	// Recompute the report over everything known for the article so the
	// manual correction is reflected in the aggregate.
	report, err := st.FindLatestReportByArticle(ctx, analysis.OriginalArticleID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, reclassifyResponse{
			Message: "Internal server error",
		})
	}
	if report != nil {
		analyses, err := st.GetAnalysesByOriginalArticle(ctx, analysis.OriginalArticleID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, reclassifyResponse{
				Message: "Internal server error",
			})
		}

		recomputed := score.GenerateReport(analysis.OriginalArticleID, analyses)
		report.OverallScore = recomputed.OverallScore
		report.ConfidenceLevel = recomputed.ConfidenceLevel
		report.Summary = recomputed.Summary
		report.Recommendations = recomputed.Recommendations
		report.Detailed = recomputed.Detailed

		if err := st.UpdateReport(ctx, report); err != nil {
			return c.JSON(http.StatusInternalServerError, reclassifyResponse{
				Message: "Internal server error",
			})
		}
	}

	return c.JSON(http.StatusOK, reclassifyResponse{
		Message:  "Fact reclassified",
		Analysis: analysis,
		Report:   report,
	})
}
