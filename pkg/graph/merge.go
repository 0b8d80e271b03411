package graph

import (
	"github.com/OFFIS-RIT/corpusgraph/pkg/common"
)

// runCounter tracks graph growth over one ingestion run. Nodes count as
// distinct (type, id) pairs across the run, relationships count per
// extracted instance.
type runCounter struct {
	seenNodes     map[string]struct{}
	relationships int
}

func newRunCounter() *runCounter {
	return &runCounter{seenNodes: make(map[string]struct{})}
}

func (c *runCounter) add(fragments []common.Fragment) {
	for _, fragment := range fragments {
		for _, node := range fragment.Nodes {
			c.seenNodes[node.Type+"|"+node.ID] = struct{}{}
		}
		c.relationships += len(fragment.Relationships)
	}
}

func (c *runCounter) nodeCount() int {
	return len(c.seenNodes)
}

func (c *runCounter) relationshipCount() int {
	return c.relationships
}

// chunkEntityLinks expands fragments into one link per covered chunk and
// extracted node.
func chunkEntityLinks(fragments []common.Fragment) []common.ChunkEntityLink {
	var links []common.ChunkEntityLink
	for _, fragment := range fragments {
		for _, chunkID := range fragment.ChunkIDs {
			for _, node := range fragment.Nodes {
				links = append(links, common.ChunkEntityLink{
					ChunkID:    chunkID,
					EntityType: node.Type,
					EntityID:   node.ID,
				})
			}
		}
	}
	return links
}
