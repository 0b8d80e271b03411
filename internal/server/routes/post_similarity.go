package routes

import (
	"encoding/json"
	"net/http"

	"github.com/OFFIS-RIT/corpusgraph/internal/queue"
	"github.com/OFFIS-RIT/corpusgraph/internal/server/middleware"
	"github.com/OFFIS-RIT/corpusgraph/pkg/logger"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// RefreshSimilarityHandler queues a rebuild of the chunk similarity graph.
func RefreshSimilarityHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	correlationID, err := gonanoid.New()
	if err != nil {
		logger.Error("Failed to generate correlation ID", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	msg, err := json.Marshal(queue.KNNJobMsg{
		Message:       "Refresh similarity graph",
		CorrelationID: correlationID,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	if err := queue.PublishFIFO(app.Queue, queue.KNNQueue, msg); err != nil {
		logger.Error("Failed to queue similarity refresh", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"message":        "Similarity refresh queued",
		"correlation_id": correlationID,
	})
}
