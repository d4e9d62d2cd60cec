package routes

import (
	"errors"
	"net/http"

	"verifact/internal/server/middleware"
	"verifact/pkg/common"
	"verifact/pkg/store"

	"github.com/labstack/echo/v4"
)

// GetReportsHandler lists the most recent fact-check reports.
func GetReportsHandler(c echo.Context) error {
	type getReportsParams struct {
		Limit int `query:"limit" validate:"omitempty,min=1,max=200"`
	}

	type getReportsResponse struct {
		Message string          `json:"message"`
		Reports []common.Report `json:"reports,omitempty"`
	}

	params := new(getReportsParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getReportsResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getReportsResponse{
			Message: "Invalid request params",
		})
	}
	if params.Limit == 0 {
		params.Limit = 50
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	st := c.(*middleware.AppContext).App.Store

	reports, err := st.ListReports(ctx, params.Limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, getReportsResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getReportsResponse{
		Message: "Reports retrieved",
		Reports: reports,
	})
}

// GetReportHandler returns one report with the analyzed article and its
// analyses.
func GetReportHandler(c echo.Context) error {
	type getReportParams struct {
		ID int64 `param:"id" validate:"required,numeric"`
	}

	type getReportResponse struct {
		Message  string            `json:"message"`
		Report   *common.Report    `json:"report,omitempty"`
		Article  *common.Article   `json:"article,omitempty"`
		Analyses []common.Analysis `json:"analyses,omitempty"`
	}

	params := new(getReportParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getReportResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getReportResponse{
			Message: "Invalid request params",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	st := c.(*middleware.AppContext).App.Store

	report, err := st.GetReportByID(ctx, params.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, getReportResponse{
				Message: "Report not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, getReportResponse{
			Message: "Internal server error",
		})
	}

	article, err := st.GetArticleByID(ctx, report.OriginalArticleID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, getReportResponse{
			Message: "Internal server error",
		})
	}

	analyses, err := st.GetAnalysesByOriginalArticle(ctx, report.OriginalArticleID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, getReportResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getReportResponse{
		Message:  "Report retrieved",
		Report:   report,
		Article:  article,
		Analyses: analyses,
	})
}
