package routes

import (
	"encoding/json"
	"net/http"

	"github.com/OFFIS-RIT/corpusgraph/internal/queue"
	"github.com/OFFIS-RIT/corpusgraph/internal/server/middleware"
	"github.com/OFFIS-RIT/corpusgraph/internal/storage"
	"github.com/OFFIS-RIT/corpusgraph/pkg/common"
	"github.com/OFFIS-RIT/corpusgraph/pkg/loader"
	"github.com/OFFIS-RIT/corpusgraph/pkg/logger"
	graphstore "github.com/OFFIS-RIT/corpusgraph/pkg/store/pgx"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// UploadDocumentsHandler accepts multipart file uploads, stores them in S3
// and queues one ingestion job per file.
func UploadDocumentsHandler(c echo.Context) error {
	type uploadResponse struct {
		Message       string   `json:"message"`
		CorrelationID string   `json:"correlation_id,omitempty"`
		Accepted      []string `json:"accepted,omitempty"`
		Rejected      []string `json:"rejected,omitempty"`
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadResponse{
			Message: "Invalid request body",
		})
	}
	uploads := form.File["files"]
	if len(uploads) == 0 {
		return c.JSON(http.StatusBadRequest, uploadResponse{
			Message: "No files provided",
		})
	}

	force := c.QueryParam("force") == "true"

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()
	storeClient := graphstore.NewGraphDBStoreWithConnection(app.DBConn)

	correlationID, err := gonanoid.New()
	if err != nil {
		logger.Error("Failed to generate correlation ID", "err", err)
		return c.JSON(http.StatusInternalServerError, uploadResponse{
			Message: "Internal server error",
		})
	}

	var accepted, rejected []string
	for _, file := range uploads {
		if !loader.IsSupported(file.Filename) {
			rejected = append(rejected, file.Filename)
			continue
		}

		src, err := file.Open()
		if err != nil {
			logger.Error("Failed to open uploaded file", "file_name", file.Filename, "err", err)
			rejected = append(rejected, file.Filename)
			continue
		}

		err = storage.PutFile(ctx, app.S3, file.Filename, src)
		src.Close()
		if err != nil {
			logger.Error("Failed to store uploaded file", "file_name", file.Filename, "err", err)
			rejected = append(rejected, file.Filename)
			continue
		}

		err = storeClient.CreateDocument(ctx, common.Document{
			FileName: file.Filename,
			Source:   "s3",
			Status:   common.StatusNew,
		})
		if err != nil {
			logger.Error("Failed to create document record", "file_name", file.Filename, "err", err)
			rejected = append(rejected, file.Filename)
			continue
		}

		msg, err := json.Marshal(queue.IngestJobMsg{
			Message:       "Ingest uploaded document",
			CorrelationID: correlationID,
			FileName:      file.Filename,
			Source:        "s3",
			Force:         force,
		})
		if err != nil {
			rejected = append(rejected, file.Filename)
			continue
		}
		if err := queue.PublishFIFO(app.Queue, queue.IngestQueue, msg); err != nil {
			logger.Error("Failed to queue ingestion", "file_name", file.Filename, "err", err)
			rejected = append(rejected, file.Filename)
			continue
		}

		accepted = append(accepted, file.Filename)
	}

	status := http.StatusAccepted
	if len(accepted) == 0 {
		status = http.StatusBadRequest
	}

	return c.JSON(status, uploadResponse{
		Message:       "Documents queued for ingestion",
		CorrelationID: correlationID,
		Accepted:      accepted,
		Rejected:      rejected,
	})
}
