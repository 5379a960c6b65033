package server

import (
	"github.com/labstack/echo/v4"

	"github.com/wfiftyfour/graphrag/internal/server/middleware"
	"github.com/wfiftyfour/graphrag/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route, also reachable under /api for probes that only
	// see the API prefix. Unauthenticated.
	health := func(c echo.Context) error {
		return c.String(200, "OK")
	}
	e.GET("/health", health)
	e.GET("/api/health", health)

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	apiRoutes.POST("/search", routes.SearchHandler)
	apiRoutes.POST("/evaluate", routes.EvaluateHandler)
	apiRoutes.POST("/index", routes.IndexHandler)
}
