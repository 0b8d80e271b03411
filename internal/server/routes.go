package server

import (
	"github.com/OFFIS-RIT/corpusgraph/internal/server/middleware"
	"github.com/OFFIS-RIT/corpusgraph/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Document routes
	apiRoutes.GET("/documents", routes.GetDocumentsHandler)
	apiRoutes.POST("/documents", routes.UploadDocumentsHandler, middleware.RequirePermission("document.create"))
	apiRoutes.GET("/documents/:file_name", routes.GetDocumentHandler)
	apiRoutes.GET("/documents/:file_name/download", routes.GetDocumentDownloadHandler, middleware.RequirePermission("document.view"))
	apiRoutes.POST("/documents/:file_name/cancel", routes.CancelDocumentHandler, middleware.RequirePermission("document.update"))
	apiRoutes.DELETE("/documents/:file_name", routes.DeleteDocumentHandler, middleware.RequirePermission("document.delete"))

	// Graph maintenance routes
	apiRoutes.POST("/similarity", routes.RefreshSimilarityHandler, middleware.RequireAnyPermission("graph.update", "document.update"))
}
