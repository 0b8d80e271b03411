package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/OFFIS-RIT/corpusgraph/internal/util"
	"github.com/OFFIS-RIT/corpusgraph/pkg/ai"
	"github.com/OFFIS-RIT/corpusgraph/pkg/common"
	"github.com/OFFIS-RIT/corpusgraph/pkg/graph"
	"github.com/OFFIS-RIT/corpusgraph/pkg/leaselock"
	"github.com/OFFIS-RIT/corpusgraph/pkg/loader"
	ioloader "github.com/OFFIS-RIT/corpusgraph/pkg/loader/io"
	pdfloader "github.com/OFFIS-RIT/corpusgraph/pkg/loader/pdf"
	s3loader "github.com/OFFIS-RIT/corpusgraph/pkg/loader/s3"
	"github.com/OFFIS-RIT/corpusgraph/pkg/logger"
	graphstore "github.com/OFFIS-RIT/corpusgraph/pkg/store/pgx"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"
)

func ptr[T any](v T) *T {
	return &v
}

func sourceLoader(source string, s3Client *awss3.Client) loader.ByteLoader {
	if source == "s3" {
		bucket := util.GetEnvString("AWS_BUCKET", "corpusgraph")
		return s3loader.NewS3ByteLoaderWithClient(bucket, s3Client)
	}
	return ioloader.NewIOByteLoader(util.GetEnvString("DATA_DIR", "./data"))
}

func pageLoaderFor(fileName string, source loader.ByteLoader) (loader.PageLoader, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".pdf":
		return pdfloader.NewPDFPageLoader(source), nil
	case ".txt", ".md":
		return &loader.TextLoader{Source: source}, nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
}

func ProcessIngestMessage(
	ctx context.Context,
	s3Client *awss3.Client,
	aiClient ai.GraphAIClient,
	ch *amqp091.Channel,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(IngestJobMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}
	if data.FileName == "" {
		return fmt.Errorf("ingest message missing file_name")
	}

	storeClient := graphstore.NewGraphDBStoreWithConnection(conn)

	pageLoader, err := pageLoaderFor(data.FileName, sourceLoader(data.Source, s3Client))
	if err != nil {
		// mark failed and ack, no retry for unsupported types
		markErr := storeClient.UpdateDocument(ctx, data.FileName, common.DocumentUpdate{
			Status:       ptr(common.StatusFailed),
			ErrorMessage: ptr(err.Error()),
		})
		if markErr != nil {
			logger.Warn("[Queue][Ingest] Failed to mark unsupported document as failed", "file_name", data.FileName, "err", markErr)
		}
		logger.Error("[Queue][Ingest] Rejecting unsupported document", "file_name", data.FileName, "err", err)
		return nil
	}

	pages, err := pageLoader.GetPages(ctx, data.FileName)
	if err != nil {
		return fmt.Errorf("failed to load pages for %s: %w", data.FileName, err)
	}

	graphClient, err := graph.NewGraphClient(graph.NewGraphClientParams{})
	if err != nil {
		return err
	}

	lockClient := leaselock.New(conn)
	err = lockClient.WithLease(ctx, "document:"+data.FileName, leaselock.Options{
		TTL:         10 * time.Minute,
		RenewEvery:  4 * time.Minute,
		TokenPrefix: "ingest/",
	}, func(leaseCtx context.Context) error {
		return graphClient.Ingest(leaseCtx, graph.IngestParams{
			FileName: data.FileName,
			Pages:    pages,
			Force:    data.Force,
		}, aiClient, storeClient)
	})
	switch {
	case errors.Is(err, leaselock.ErrBusy):
		logger.Info("[Queue][Ingest] Another worker holds the document lock, dropping message", "file_name", data.FileName)
		return nil
	case errors.Is(err, graph.ErrAlreadyProcessing):
		logger.Info("[Queue][Ingest] Document already processing, dropping message", "file_name", data.FileName)
		return nil
	case errors.Is(err, graph.ErrEmptyDocument):
		// already recorded on the document, retrying cannot fix it
		logger.Warn("[Queue][Ingest] Document has no extractable text", "file_name", data.FileName)
		return nil
	case err != nil:
		return err
	}

	knnMsg, err := json.Marshal(KNNJobMsg{
		Message:       "Refresh similarity graph after ingest",
		CorrelationID: data.CorrelationID,
	})
	if err != nil {
		return err
	}
	if err := PublishFIFO(ch, KNNQueue, knnMsg); err != nil {
		logger.Warn("[Queue][Ingest] Failed to enqueue similarity refresh", "file_name", data.FileName, "err", err)
	}

	return nil
}
