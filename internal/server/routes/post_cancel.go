package routes

import (
	"errors"
	"net/http"

	"github.com/OFFIS-RIT/corpusgraph/internal/server/middleware"
	"github.com/OFFIS-RIT/corpusgraph/pkg/common"
	"github.com/OFFIS-RIT/corpusgraph/pkg/logger"
	"github.com/OFFIS-RIT/corpusgraph/pkg/store"
	graphstore "github.com/OFFIS-RIT/corpusgraph/pkg/store/pgx"

	"github.com/labstack/echo/v4"
)

// CancelDocumentHandler flags a running ingestion for cancellation. The
// worker notices the flag between chunk batches and stops.
func CancelDocumentHandler(c echo.Context) error {
	fileName := c.Param("file_name")
	if fileName == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing file name"})
	}

	ctx := c.Request().Context()
	storeClient := graphstore.NewGraphDBStoreWithConnection(c.(*middleware.AppContext).App.DBConn)

	doc, err := storeClient.GetDocument(ctx, fileName)
	if err != nil {
		if errors.Is(err, store.ErrDocumentNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Document not found"})
		}
		logger.Error("Failed to load document", "file_name", fileName, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	if doc.Status != common.StatusProcessing && doc.Status != common.StatusNew {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Document is not being processed"})
	}

	if err := storeClient.MarkCancelled(ctx, fileName); err != nil {
		logger.Error("Failed to mark document as cancelled", "file_name", fileName, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Cancellation requested"})
}
