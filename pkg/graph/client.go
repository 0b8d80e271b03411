package graph

import (
	"strconv"
	"strings"

	"github.com/OFFIS-RIT/corpusgraph/internal/util"
	"github.com/OFFIS-RIT/corpusgraph/pkg/store"
)

// GraphClient drives the document ingestion pipeline: chunking, embedding,
// entity extraction and graph merging. It manages token encoding, batch
// sizes and worker counts for the concurrent stages.
//
// A GraphClient should be created using NewGraphClient.
type GraphClient struct {
	tokenEncoder      string
	codec             tokenCodec
	chunkTokenSize    int
	chunkTokenOverlap int
	combineSize       int
	chunkBatchSize    int
	embedBatchSize    int
	embedWorkers      int
	extractWorkers    int
	maxRetries        int
	embedDimensions   int

	allowedEntityTypes   []string
	allowedRelationTypes []string

	knn store.KNNParams
}

// NewGraphClientParams defines the configuration parameters for creating
// a new GraphClient. Zero values fall back to the matching environment
// variable, then to a built-in default.
type NewGraphClientParams struct {
	TokenEncoder      string
	ChunkTokenSize    int
	ChunkTokenOverlap int
	CombineSize       int
	ChunkBatchSize    int
	EmbedBatchSize    int
	EmbedWorkers      int
	ExtractWorkers    int
	MaxRetries        int
	EmbedDimensions   int

	AllowedEntityTypes   []string
	AllowedRelationTypes []string

	KNN store.KNNParams
}

func intOrEnv(v int, key string, def int) int {
	if v > 0 {
		return v
	}
	return int(util.GetEnvNumeric(key, def))
}

func typesOrEnv(v []string, key string) []string {
	if len(v) > 0 {
		return v
	}
	raw := util.GetEnvString(key, "")
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for t := range strings.SplitSeq(raw, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// NewGraphClient creates and returns a new GraphClient configured with
// the provided parameters.
//
// Example:
//
//	client, err := graph.NewGraphClient(graph.NewGraphClientParams{
//		TokenEncoder: "o200k_base",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
func NewGraphClient(params NewGraphClientParams) (*GraphClient, error) {
	encoder := params.TokenEncoder
	if encoder == "" {
		encoder = "o200k_base"
	}

	knn := params.KNN
	if knn.K <= 0 {
		knn = store.DefaultKNNParams()
		if raw := util.GetEnvString("KNN_MIN_SCORE", ""); raw != "" {
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				knn.MinScore = f
			}
		}
	}

	g := &GraphClient{
		tokenEncoder:         encoder,
		chunkTokenSize:       intOrEnv(params.ChunkTokenSize, "CHUNK_TOKEN_SIZE", 200),
		chunkTokenOverlap:    intOrEnv(params.ChunkTokenOverlap, "CHUNK_TOKEN_OVERLAP", 20),
		combineSize:          intOrEnv(params.CombineSize, "CHUNK_COMBINE_SIZE", 1),
		chunkBatchSize:       intOrEnv(params.ChunkBatchSize, "CHUNK_BATCH_SIZE", 20),
		embedBatchSize:       intOrEnv(params.EmbedBatchSize, "EMBED_BATCH_SIZE", 16),
		embedWorkers:         intOrEnv(params.EmbedWorkers, "AI_EMBED_WORKERS", 4),
		extractWorkers:       intOrEnv(params.ExtractWorkers, "AI_EXTRACT_WORKERS", 4),
		maxRetries:           intOrEnv(params.MaxRetries, "AI_MAX_RETRIES", 3),
		embedDimensions:      intOrEnv(params.EmbedDimensions, "AI_EMBED_DIM", 768),
		allowedEntityTypes:   typesOrEnv(params.AllowedEntityTypes, "ALLOWED_ENTITY_TYPES"),
		allowedRelationTypes: typesOrEnv(params.AllowedRelationTypes, "ALLOWED_RELATION_TYPES"),
		knn:                  knn,
	}

	if g.chunkTokenOverlap >= g.chunkTokenSize {
		g.chunkTokenOverlap = g.chunkTokenSize / 10
	}

	return g, nil
}

// tokenizer returns the token codec, loading the configured tiktoken
// encoding on first use.
func (g *GraphClient) tokenizer() (tokenCodec, error) {
	if g.codec == nil {
		codec, err := newTokenCodec(g.tokenEncoder)
		if err != nil {
			return nil, err
		}
		g.codec = codec
	}
	return g.codec, nil
}
