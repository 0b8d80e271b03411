package routes

import (
	"errors"
	"net/http"

	"github.com/OFFIS-RIT/corpusgraph/internal/server/middleware"
	"github.com/OFFIS-RIT/corpusgraph/internal/server/util"
	"github.com/OFFIS-RIT/corpusgraph/pkg/common"
	"github.com/OFFIS-RIT/corpusgraph/pkg/logger"
	"github.com/OFFIS-RIT/corpusgraph/pkg/store"
	graphstore "github.com/OFFIS-RIT/corpusgraph/pkg/store/pgx"

	"github.com/labstack/echo/v4"
)

type documentResponse struct {
	FileName          string `json:"file_name"`
	Source            string `json:"source"`
	Status            string `json:"status"`
	TotalPages        int    `json:"total_pages"`
	TotalChunks       int    `json:"total_chunks"`
	ProcessedChunks   int    `json:"processed_chunks"`
	ProgressPercent   int    `json:"progress_percent"`
	NodeCount         int    `json:"node_count"`
	RelationshipCount int    `json:"relationship_count"`
	ErrorMessage      string `json:"error_message,omitempty"`
}

func toDocumentResponse(doc common.Document) documentResponse {
	return documentResponse{
		FileName:          doc.FileName,
		Source:            doc.Source,
		Status:            string(doc.Status),
		TotalPages:        doc.TotalPages,
		TotalChunks:       doc.TotalChunks,
		ProcessedChunks:   doc.ProcessedChunks,
		ProgressPercent:   util.IngestProgressPercent(doc.ProcessedChunks, doc.TotalChunks),
		NodeCount:         doc.NodeCount,
		RelationshipCount: doc.RelationshipCount,
		ErrorMessage:      doc.ErrorMessage,
	}
}

func GetDocumentsHandler(c echo.Context) error {
	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn

	docs, err := graphstore.NewGraphDBStoreWithConnection(conn).ListDocuments(ctx)
	if err != nil {
		logger.Error("Failed to list documents", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	response := make([]documentResponse, 0, len(docs))
	for _, doc := range docs {
		response = append(response, toDocumentResponse(doc))
	}

	return c.JSON(http.StatusOK, response)
}

func GetDocumentHandler(c echo.Context) error {
	fileName := c.Param("file_name")
	if fileName == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing file name"})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn

	doc, err := graphstore.NewGraphDBStoreWithConnection(conn).GetDocument(ctx, fileName)
	if err != nil {
		if errors.Is(err, store.ErrDocumentNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Document not found"})
		}
		logger.Error("Failed to load document", "file_name", fileName, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, toDocumentResponse(doc))
}
