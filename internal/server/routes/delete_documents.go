package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/OFFIS-RIT/corpusgraph/internal/queue"
	"github.com/OFFIS-RIT/corpusgraph/internal/server/middleware"
	"github.com/OFFIS-RIT/corpusgraph/pkg/logger"
	"github.com/OFFIS-RIT/corpusgraph/pkg/store"
	graphstore "github.com/OFFIS-RIT/corpusgraph/pkg/store/pgx"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// DeleteDocumentHandler queues the removal of a document, its chunks and
// any orphaned entities.
func DeleteDocumentHandler(c echo.Context) error {
	fileName := c.Param("file_name")
	if fileName == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing file name"})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	_, err := graphstore.NewGraphDBStoreWithConnection(app.DBConn).GetDocument(ctx, fileName)
	if err != nil {
		if errors.Is(err, store.ErrDocumentNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Document not found"})
		}
		logger.Error("Failed to load document", "file_name", fileName, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	correlationID, err := gonanoid.New()
	if err != nil {
		logger.Error("Failed to generate correlation ID", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	msg, err := json.Marshal(queue.DeleteJobMsg{
		Message:       "Delete document",
		CorrelationID: correlationID,
		FileName:      fileName,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	if err := queue.PublishFIFO(app.Queue, queue.DeleteQueue, msg); err != nil {
		logger.Error("Failed to queue deletion", "file_name", fileName, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"message":        "Document queued for deletion",
		"correlation_id": correlationID,
	})
}
