package server

import (
	"verifact/internal/server/middleware"
	"verifact/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Analysis routes
	apiRoutes.POST("/analyze", routes.AnalyzeHandler)
	apiRoutes.POST("/analyses/:id/reclassify", routes.ReclassifyFactHandler)

	// Report routes
	apiRoutes.GET("/reports", routes.GetReportsHandler)
	apiRoutes.GET("/reports/:id", routes.GetReportHandler)
	apiRoutes.DELETE("/reports/:id", routes.DeleteReportHandler, middleware.RequireAdmin)
}
