package routes

import (
	"errors"
	"net/http"

	"verifact/internal/server/middleware"
	"verifact/pkg/store"

	"github.com/labstack/echo/v4"
)

// DeleteReportHandler deletes a report and the analyses produced for it.
func DeleteReportHandler(c echo.Context) error {
	type deleteReportParams struct {
		ID int64 `param:"id" validate:"required,numeric"`
	}

	type deleteReportResponse struct {
		Message string `json:"message"`
	}

	params := new(deleteReportParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteReportResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteReportResponse{
			Message: "Invalid request params",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	st := c.(*middleware.AppContext).App.Store

	if err := st.DeleteReport(ctx, params.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, deleteReportResponse{
				Message: "Report not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, deleteReportResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, deleteReportResponse{
		Message: "Report deleted",
	})
}
