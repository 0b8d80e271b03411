package queue

import (
	"context"
	"encoding/json"

	"github.com/OFFIS-RIT/corpusgraph/pkg/graph"
	"github.com/OFFIS-RIT/corpusgraph/pkg/logger"
	graphstore "github.com/OFFIS-RIT/corpusgraph/pkg/store/pgx"

	"github.com/jackc/pgx/v5/pgxpool"
)

func ProcessKNNMessage(
	ctx context.Context,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(KNNJobMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}

	graphClient, err := graph.NewGraphClient(graph.NewGraphClientParams{})
	if err != nil {
		return err
	}

	edges, err := graphClient.UpdateSimilarity(ctx, graphstore.NewGraphDBStoreWithConnection(conn))
	if err != nil {
		return err
	}

	logger.Info("[Queue][KNN] Similarity refresh done", "correlation_id", data.CorrelationID, "edges", edges)
	return nil
}
