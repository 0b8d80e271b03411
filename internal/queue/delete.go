package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/OFFIS-RIT/corpusgraph/internal/storage"
	"github.com/OFFIS-RIT/corpusgraph/pkg/logger"
	"github.com/OFFIS-RIT/corpusgraph/pkg/store"
	graphstore "github.com/OFFIS-RIT/corpusgraph/pkg/store/pgx"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
)

func ProcessDeleteMessage(
	ctx context.Context,
	s3Client *awss3.Client,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(DeleteJobMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}
	if data.FileName == "" {
		return fmt.Errorf("delete message missing file_name")
	}

	storeClient := graphstore.NewGraphDBStoreWithConnection(conn)

	doc, err := storeClient.GetDocument(ctx, data.FileName)
	if err != nil {
		if errors.Is(err, store.ErrDocumentNotFound) {
			logger.Info("[Queue][Delete] Document already gone", "file_name", data.FileName)
			return nil
		}
		return err
	}

	if err := storeClient.DeleteDocument(ctx, data.FileName); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", data.FileName, err)
	}

	if doc.Source == "s3" && s3Client != nil {
		if err := storage.DeleteFile(ctx, s3Client, data.FileName); err != nil {
			logger.Warn("[Queue][Delete] Failed to remove file from S3", "file_name", data.FileName, "err", err)
		}
	}

	logger.Info("[Queue][Delete] Document deleted", "file_name", data.FileName)
	return nil
}
