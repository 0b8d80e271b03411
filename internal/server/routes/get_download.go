package routes

import (
	"errors"
	"net/http"

	"github.com/OFFIS-RIT/corpusgraph/internal/server/middleware"
	"github.com/OFFIS-RIT/corpusgraph/internal/storage"
	"github.com/OFFIS-RIT/corpusgraph/pkg/logger"
	"github.com/OFFIS-RIT/corpusgraph/pkg/store"
	graphstore "github.com/OFFIS-RIT/corpusgraph/pkg/store/pgx"

	"github.com/labstack/echo/v4"
)

// GetDocumentDownloadHandler returns a presigned link for the original
// uploaded file.
func GetDocumentDownloadHandler(c echo.Context) error {
	fileName := c.Param("file_name")
	if fileName == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing file name"})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	doc, err := graphstore.NewGraphDBStoreWithConnection(app.DBConn).GetDocument(ctx, fileName)
	if err != nil {
		if errors.Is(err, store.ErrDocumentNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Document not found"})
		}
		logger.Error("Failed to load document", "file_name", fileName, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	if doc.Source != "s3" {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Document is not stored in object storage"})
	}

	link, err := storage.GenerateDownloadLink(ctx, app.S3, fileName)
	if err != nil {
		logger.Error("Failed to generate download link", "file_name", fileName, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, map[string]string{"url": link})
}
