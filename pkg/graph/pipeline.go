package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/OFFIS-RIT/corpusgraph/pkg/ai"
	"github.com/OFFIS-RIT/corpusgraph/pkg/common"
	"github.com/OFFIS-RIT/corpusgraph/pkg/loader"
	"github.com/OFFIS-RIT/corpusgraph/pkg/logger"
	"github.com/OFFIS-RIT/corpusgraph/pkg/store"

	"golang.org/x/sync/errgroup"
)

// IngestParams describes one ingestion run.
//
// Pages holds the extracted document pages. Force re-ingests a document
// even when a previous run already completed.
type IngestParams struct {
	FileName string
	Pages    []loader.Page
	Force    bool
}

func ptr[T any](v T) *T {
	return &v
}

// Ingest runs the full pipeline for one document: chunking, linkage,
// embeddings, entity extraction and graph merge, updating the document's
// status and progress along the way.
//
// The document row must already exist. A document whose last run completed
// is skipped unless Force is set, and a run notices cancellation between
// chunk batches. Ingest never leaves a document in the Processing state.
func (g *GraphClient) Ingest(
	ctx context.Context,
	params IngestParams,
	aiClient ai.GraphAIClient,
	storeClient store.GraphStore,
) error {
	doc, err := storeClient.GetDocument(ctx, params.FileName)
	if err != nil {
		return fmt.Errorf("failed to load document %s: %w", params.FileName, err)
	}

	switch doc.Status {
	case common.StatusProcessing:
		if !params.Force {
			return ErrAlreadyProcessing
		}
	case common.StatusCompleted:
		if !params.Force {
			logger.Info("[Graph][Ingest] Document already completed, skipping", "file_name", params.FileName)
			return nil
		}
	}

	err = g.run(ctx, params, aiClient, storeClient)
	switch {
	case err == nil:
		return g.finalize(params.FileName, storeClient, common.StatusCompleted, "")
	case errors.Is(err, errCancelled), errors.Is(err, context.Canceled):
		if ferr := g.finalize(params.FileName, storeClient, common.StatusCancelled, ""); ferr != nil {
			return ferr
		}
		logger.Info("[Graph][Ingest] Ingestion cancelled", "file_name", params.FileName)
		return nil
	default:
		if ferr := g.finalize(params.FileName, storeClient, common.StatusFailed, err.Error()); ferr != nil {
			logger.Error("[Graph][Ingest] Failed to record failure", "file_name", params.FileName, "error", ferr)
		}
		return err
	}
}

// finalize records the terminal status of a run. Status updates happen
// outside the run's context so a cancelled context cannot leave the
// document stuck in Processing.
func (g *GraphClient) finalize(fileName string, storeClient store.GraphStore, status common.Status, errMsg string) error {
	update := common.DocumentUpdate{
		Status:       ptr(status),
		ErrorMessage: ptr(errMsg),
	}
	if err := storeClient.UpdateDocument(context.Background(), fileName, update); err != nil {
		return fmt.Errorf("failed to set document status to %s: %w", status, err)
	}
	return nil
}

func (g *GraphClient) run(
	ctx context.Context,
	params IngestParams,
	aiClient ai.GraphAIClient,
	storeClient store.GraphStore,
) error {
	codec, err := g.tokenizer()
	if err != nil {
		return fmt.Errorf("failed to load token encoding: %w", err)
	}

	chunks, links := buildChunkGraph(params.Pages, params.FileName, codec, g.chunkTokenSize, g.chunkTokenOverlap)
	if len(chunks) == 0 {
		return ErrEmptyDocument
	}

	logger.Info("[Graph][Ingest] Processing document",
		"file_name", params.FileName, "pages", len(params.Pages), "chunks", len(chunks))

	update := common.DocumentUpdate{
		Status:            ptr(common.StatusProcessing),
		TotalPages:        ptr(len(params.Pages)),
		TotalChunks:       ptr(len(chunks)),
		ProcessedChunks:   ptr(0),
		NodeCount:         ptr(0),
		RelationshipCount: ptr(0),
		ErrorMessage:      ptr(""),
	}
	if err := storeClient.UpdateDocument(ctx, params.FileName, update); err != nil {
		return fmt.Errorf("failed to mark document as processing: %w", err)
	}

	if err := storeClient.SaveChunks(ctx, params.FileName, chunks, links); err != nil {
		return fmt.Errorf("failed to save chunks: %w", err)
	}

	if err := storeClient.EnsureVectorIndex(ctx, g.embedDimensions); err != nil {
		return fmt.Errorf("failed to ensure vector index: %w", err)
	}

	counter := newRunCounter()
	processed := 0

	for start := 0; start < len(chunks); start += g.chunkBatchSize {
		end := min(start+g.chunkBatchSize, len(chunks))
		batch := chunks[start:end]

		doc, err := storeClient.GetDocument(ctx, params.FileName)
		if err != nil {
			return fmt.Errorf("failed to check cancellation: %w", err)
		}
		if doc.IsCancelled {
			return errCancelled
		}

		var embeddings []common.ChunkEmbedding
		var fragments []common.Fragment

		eg, gCtx := errgroup.WithContext(ctx)
		eg.Go(func() error {
			var err error
			embeddings, err = embedChunks(gCtx, aiClient, batch, g.embedBatchSize, g.embedWorkers)
			return err
		})
		eg.Go(func() error {
			var err error
			fragments, err = g.extractFragments(gCtx, combineChunks(batch, g.combineSize), params.FileName, aiClient)
			return err
		})
		if err := eg.Wait(); err != nil {
			return fmt.Errorf("failed to process chunk batch at %d: %w", start, err)
		}

		if err := storeClient.SaveEmbeddings(ctx, embeddings); err != nil {
			return fmt.Errorf("failed to save embeddings: %w", err)
		}
		if err := storeClient.MergeFragments(ctx, fragments); err != nil {
			return fmt.Errorf("failed to merge graph fragments: %w", err)
		}
		if err := storeClient.LinkChunkEntities(ctx, chunkEntityLinks(fragments)); err != nil {
			return fmt.Errorf("failed to link chunk entities: %w", err)
		}

		counter.add(fragments)
		processed += len(batch)

		progress := common.DocumentUpdate{
			ProcessedChunks:   ptr(processed),
			NodeCount:         ptr(counter.nodeCount()),
			RelationshipCount: ptr(counter.relationshipCount()),
		}
		if err := storeClient.UpdateDocument(ctx, params.FileName, progress); err != nil {
			return fmt.Errorf("failed to update progress: %w", err)
		}

		logger.Debug("[Graph][Ingest] Batch done",
			"file_name", params.FileName, "processed", processed, "total", len(chunks))
	}

	return nil
}

// UpdateSimilarity recomputes the KNN similarity edges between embedded
// chunks and returns the number of edges written.
func (g *GraphClient) UpdateSimilarity(ctx context.Context, storeClient store.GraphStore) (int, error) {
	logger.Info("[Graph][KNN] Updating similarity graph",
		"k", g.knn.K, "min_score", g.knn.MinScore)

	edges, err := storeClient.UpdateKNNGraph(ctx, g.knn)
	if err != nil {
		return 0, fmt.Errorf("failed to update similarity graph: %w", err)
	}

	logger.Info("[Graph][KNN] Similarity graph updated", "edges", edges)
	return edges, nil
}
