package graph

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/OFFIS-RIT/corpusgraph/internal/util"
	"github.com/OFFIS-RIT/corpusgraph/pkg/ai"
	"github.com/OFFIS-RIT/corpusgraph/pkg/common"
	"github.com/OFFIS-RIT/corpusgraph/pkg/logger"

	"github.com/panjf2000/ants/v2"
)

type extractNode struct {
	ID          string `json:"id" jsonschema_description:"Name of the entity as it appears in the text"`
	Type        string `json:"type" jsonschema_description:"One of the allowed node types, or a sensible type if none are given"`
	Description string `json:"description" jsonschema_description:"Comprehensive description of the entity's attributes, activities and information provided by the source"`
}

type extractRelationship struct {
	SourceID   string `json:"source_id" jsonschema_description:"Name of the source entity, as identified in the nodes array"`
	SourceType string `json:"source_type" jsonschema_description:"Type of the source entity"`
	Type       string `json:"type" jsonschema_description:"Short verb-like label describing the relationship"`
	TargetID   string `json:"target_id" jsonschema_description:"Name of the target entity, as identified in the nodes array"`
	TargetType string `json:"target_type" jsonschema_description:"Type of the target entity"`
}

type extractResponse struct {
	Nodes         []extractNode         `json:"nodes" jsonschema_description:"Entities identified in the text"`
	Relationships []extractRelationship `json:"relationships" jsonschema_description:"Relationships identified in the text"`
}

// extractTask is a combined run of one or more adjacent chunks handed to
// the model as a single prompt.
type extractTask struct {
	chunkIDs []string
	text     string
}

// combineChunks concatenates runs of combineSize adjacent chunks into
// extraction tasks. Each task remembers the IDs of the chunks it covers.
func combineChunks(chunks []common.Chunk, combineSize int) []extractTask {
	if combineSize <= 0 {
		combineSize = 1
	}

	var tasks []extractTask
	for start := 0; start < len(chunks); start += combineSize {
		end := min(start+combineSize, len(chunks))

		var text strings.Builder
		ids := make([]string, 0, end-start)
		for _, chunk := range chunks[start:end] {
			if text.Len() > 0 {
				text.WriteString(" ")
			}
			text.WriteString(chunk.Text)
			ids = append(ids, chunk.ID)
		}

		tasks = append(tasks, extractTask{chunkIDs: ids, text: text.String()})
	}
	return tasks
}

func typeHint(types []string) string {
	if len(types) == 0 {
		return ai.AnyTypeHint
	}
	return strings.Join(types, ",")
}

func allowedType(types []string, t string) bool {
	if len(types) == 0 {
		return true
	}
	for _, a := range types {
		if strings.EqualFold(a, t) {
			return true
		}
	}
	return false
}

func extractFromTask(
	ctx context.Context,
	task extractTask,
	fileName string,
	client ai.GraphAIClient,
	allowedEntities []string,
	allowedRelations []string,
) (common.Fragment, error) {
	systemPrompt := fmt.Sprintf(
		ai.ExtractPrompt,
		typeHint(allowedEntities),
		typeHint(allowedRelations),
		fileName,
	)

	var res extractResponse
	err := client.GenerateCompletionWithFormat(
		ctx,
		"extract_nodes_and_relationships",
		"Extract entities and relationships from a provided document.",
		task.text,
		&res,
		ai.WithSystemPrompts(systemPrompt),
	)
	if err != nil {
		return common.Fragment{}, err
	}

	fragment := common.Fragment{ChunkIDs: task.chunkIDs}

	seen := make(map[string]struct{}, len(res.Nodes))
	for _, node := range res.Nodes {
		id := strings.TrimSpace(node.ID)
		nodeType := strings.TrimSpace(node.Type)
		if id == "" || nodeType == "" {
			continue
		}
		if !allowedType(allowedEntities, nodeType) {
			continue
		}
		key := nodeType + "|" + id
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		fragment.Nodes = append(fragment.Nodes, common.Entity{
			Type:        nodeType,
			ID:          id,
			Description: strings.TrimSpace(node.Description),
		})
	}

	for _, rel := range res.Relationships {
		relType := strings.TrimSpace(rel.Type)
		if relType == "" || !allowedType(allowedRelations, relType) {
			continue
		}
		srcKey := strings.TrimSpace(rel.SourceType) + "|" + strings.TrimSpace(rel.SourceID)
		tgtKey := strings.TrimSpace(rel.TargetType) + "|" + strings.TrimSpace(rel.TargetID)
		if _, ok := seen[srcKey]; !ok {
			continue
		}
		if _, ok := seen[tgtKey]; !ok {
			continue
		}
		fragment.Relationships = append(fragment.Relationships, common.Relationship{
			SourceType: strings.TrimSpace(rel.SourceType),
			SourceID:   strings.TrimSpace(rel.SourceID),
			Type:       relType,
			TargetType: strings.TrimSpace(rel.TargetType),
			TargetID:   strings.TrimSpace(rel.TargetID),
		})
	}

	return fragment, nil
}

// extractFragments runs entity extraction for all tasks on a worker pool.
// A task that still fails after retries is logged and dropped so the rest
// of the batch can finish.
func (g *GraphClient) extractFragments(
	ctx context.Context,
	tasks []extractTask,
	fileName string,
	client ai.GraphAIClient,
) ([]common.Fragment, error) {
	if len(tasks) == 0 {
		return nil, nil
	}

	pool, err := ants.NewPool(g.extractWorkers)
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction pool: %w", err)
	}
	defer pool.Release()

	fragments := make([]common.Fragment, len(tasks))
	ok := make([]bool, len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()

			if ctx.Err() != nil {
				return
			}

			fragment, err := util.RetryWithContext(ctx, g.maxRetries, func(ctx context.Context) (common.Fragment, error) {
				return extractFromTask(ctx, task, fileName, client, g.allowedEntityTypes, g.allowedRelationTypes)
			})
			if err != nil {
				logger.Warn("[Graph][Extract] Dropping failed extraction task",
					"file_name", fileName, "chunks", len(task.chunkIDs), "error", err)
				return
			}

			fragments[i] = fragment
			ok[i] = true
		}); err != nil {
			wg.Done()
			return nil, fmt.Errorf("failed to submit extraction task: %w", err)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make([]common.Fragment, 0, len(tasks))
	for i := range fragments {
		if ok[i] {
			result = append(result, fragments[i])
		}
	}
	return result, nil
}
