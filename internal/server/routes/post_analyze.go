package routes

import (
	"net/http"

	"verifact/internal/queue"
	"verifact/internal/server/middleware"
	"verifact/internal/util"
	"verifact/pkg/verify"

	"github.com/labstack/echo/v4"
)

// AnalyzeHandler fact-checks an article. Requests with async=true are
// published to the analyze queue and return immediately; everything else
// runs the pipeline inline and returns the finished report.
func AnalyzeHandler(c echo.Context) error {
	type analyzeBody struct {
		URL       string `json:"url" validate:"omitempty,url"`
		Text      string `json:"text"`
		Title     string `json:"title"`
		CheapMode bool   `json:"cheap_mode"`
		Async     bool   `json:"async"`
	}

	type analyzeResponse struct {
		Message string                `json:"message"`
		Result  *verify.AnalyzeResult `json:"result,omitempty"`
	}

	data := new(analyzeBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, analyzeResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, analyzeResponse{
			Message: "Invalid request body",
		})
	}
	if data.URL == "" && data.Text == "" {
		return c.JSON(http.StatusBadRequest, analyzeResponse{
			Message: "Either url or text is required",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	app := c.(*middleware.AppContext).App

	if data.Async {
		msg := queue.AnalyzeMessage{
			URL:       data.URL,
			Text:      data.Text,
			Title:     data.Title,
			CheapMode: data.CheapMode,
		}
		err := queue.PublishFIFO(app.Queue, queue.AnalyzeQueue, []byte(util.ConvertStructToJson(msg)))
		if err != nil {
			return c.JSON(http.StatusInternalServerError, analyzeResponse{
				Message: "Internal server error",
			})
		}
		return c.JSON(http.StatusAccepted, analyzeResponse{
			Message: "Analysis queued",
		})
	}

	ctx := c.Request().Context()
	result, err := app.Verify.Analyze(ctx, verify.AnalyzeInput{
		URL:       data.URL,
		Text:      data.Text,
		Title:     data.Title,
		CheapMode: data.CheapMode,
	})
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, analyzeResponse{
			Message: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, analyzeResponse{
		Message: "Analysis complete",
		Result:  result,
	})
}
