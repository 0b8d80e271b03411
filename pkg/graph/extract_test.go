package graph

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/OFFIS-RIT/corpusgraph/pkg/ai"
	"github.com/OFFIS-RIT/corpusgraph/pkg/ai/mock"
	"github.com/OFFIS-RIT/corpusgraph/pkg/common"
)

func testChunks(texts ...string) []common.Chunk {
	chunks := make([]common.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = common.Chunk{
			ID:       chunkID(text),
			FileName: "test.pdf",
			Text:     text,
			Position: i + 1,
			Length:   len(text),
		}
	}
	return chunks
}

func TestCombineChunks(t *testing.T) {
	chunks := testChunks("one", "two", "three", "four", "five")

	tests := []struct {
		name        string
		combineSize int
		wantTasks   int
		wantFirst   string
	}{
		{"size one keeps chunks separate", 1, 5, "one"},
		{"size two pairs chunks", 2, 3, "one two"},
		{"size larger than input", 10, 1, "one two three four five"},
		{"zero size falls back to one", 0, 5, "one"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := combineChunks(chunks, tt.combineSize)
			if len(tasks) != tt.wantTasks {
				t.Fatalf("got %d tasks, want %d", len(tasks), tt.wantTasks)
			}
			if tasks[0].text != tt.wantFirst {
				t.Errorf("first task text = %q, want %q", tasks[0].text, tt.wantFirst)
			}

			covered := 0
			for _, task := range tasks {
				covered += len(task.chunkIDs)
			}
			if covered != len(chunks) {
				t.Errorf("tasks cover %d chunks, want %d", covered, len(chunks))
			}
		})
	}
}

func extractReply(res extractResponse) func(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	return func(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
		*out.(*extractResponse) = res
		return nil
	}
}

func TestExtractFromTaskFiltersTypes(t *testing.T) {
	client := mock.New()
	client.FormatFn = extractReply(extractResponse{
		Nodes: []extractNode{
			{ID: "Ada Lovelace", Type: "Person", Description: "mathematician"},
			{ID: "Analytical Engine", Type: "Machine", Description: "mechanical computer"},
			{ID: "", Type: "Person", Description: "missing id"},
			{ID: "Ada Lovelace", Type: "Person", Description: "duplicate"},
		},
		Relationships: []extractRelationship{
			{SourceID: "Ada Lovelace", SourceType: "Person", Type: "WORKED_ON", TargetID: "Analytical Engine", TargetType: "Machine"},
			{SourceID: "Ada Lovelace", SourceType: "Person", Type: "KNOWS", TargetID: "Charles Babbage", TargetType: "Person"},
		},
	})

	task := extractTask{chunkIDs: []string{"c1"}, text: "some text"}
	fragment, err := extractFromTask(context.Background(), task, "test.pdf", client, []string{"Person"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(fragment.Nodes) != 1 {
		t.Fatalf("got %d nodes, want 1: %+v", len(fragment.Nodes), fragment.Nodes)
	}
	if fragment.Nodes[0].ID != "Ada Lovelace" || fragment.Nodes[0].Type != "Person" {
		t.Errorf("unexpected node: %+v", fragment.Nodes[0])
	}

	// both relationships reference nodes missing from the filtered set
	if len(fragment.Relationships) != 0 {
		t.Errorf("got %d relationships, want 0: %+v", len(fragment.Relationships), fragment.Relationships)
	}
}

func TestExtractFromTaskKeepsValidRelationships(t *testing.T) {
	client := mock.New()
	client.FormatFn = extractReply(extractResponse{
		Nodes: []extractNode{
			{ID: "Ada Lovelace", Type: "Person"},
			{ID: "Charles Babbage", Type: "Person"},
		},
		Relationships: []extractRelationship{
			{SourceID: "Ada Lovelace", SourceType: "Person", Type: "KNOWS", TargetID: "Charles Babbage", TargetType: "Person"},
		},
	})

	task := extractTask{chunkIDs: []string{"c1", "c2"}, text: "some text"}
	fragment, err := extractFromTask(context.Background(), task, "test.pdf", client, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(fragment.Nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(fragment.Nodes))
	}
	if len(fragment.Relationships) != 1 {
		t.Fatalf("got %d relationships, want 1", len(fragment.Relationships))
	}
	rel := fragment.Relationships[0]
	if rel.SourceID != "Ada Lovelace" || rel.Type != "KNOWS" || rel.TargetID != "Charles Babbage" {
		t.Errorf("unexpected relationship: %+v", rel)
	}
	if len(fragment.ChunkIDs) != 2 {
		t.Errorf("fragment lost chunk coverage: %+v", fragment.ChunkIDs)
	}
}

func TestExtractFromTaskRelationTypeFilter(t *testing.T) {
	client := mock.New()
	client.FormatFn = extractReply(extractResponse{
		Nodes: []extractNode{
			{ID: "A", Type: "Person"},
			{ID: "B", Type: "Person"},
		},
		Relationships: []extractRelationship{
			{SourceID: "A", SourceType: "Person", Type: "KNOWS", TargetID: "B", TargetType: "Person"},
			{SourceID: "A", SourceType: "Person", Type: "HATES", TargetID: "B", TargetType: "Person"},
		},
	})

	task := extractTask{chunkIDs: []string{"c1"}, text: "text"}
	fragment, err := extractFromTask(context.Background(), task, "test.pdf", client, nil, []string{"KNOWS"})
	if err != nil {
		t.Fatal(err)
	}

	if len(fragment.Relationships) != 1 || fragment.Relationships[0].Type != "KNOWS" {
		t.Errorf("allow-list not applied: %+v", fragment.Relationships)
	}
}

func TestExtractFragmentsDropsFailedTasks(t *testing.T) {
	client := mock.New()
	client.FormatFn = func(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
		if strings.Contains(prompt, "poison") {
			return errors.New("model error")
		}
		*out.(*extractResponse) = extractResponse{
			Nodes: []extractNode{{ID: "Node", Type: "Concept"}},
		}
		return nil
	}

	g := &GraphClient{extractWorkers: 2, maxRetries: 2}
	tasks := []extractTask{
		{chunkIDs: []string{"c1"}, text: "good text"},
		{chunkIDs: []string{"c2"}, text: "poison text"},
		{chunkIDs: []string{"c3"}, text: "more good text"},
	}

	fragments, err := g.extractFragments(context.Background(), tasks, "test.pdf", client)
	if err != nil {
		t.Fatal(err)
	}

	if len(fragments) != 2 {
		t.Fatalf("got %d fragments, want 2 (failed task dropped)", len(fragments))
	}
	for _, fragment := range fragments {
		if fragment.ChunkIDs[0] == "c2" {
			t.Error("failed task produced a fragment")
		}
	}
}

func TestExtractFragmentsRetries(t *testing.T) {
	attempts := 0
	client := mock.New()
	client.FormatFn = func(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
		attempts++
		if attempts == 1 {
			return errors.New("transient")
		}
		*out.(*extractResponse) = extractResponse{
			Nodes: []extractNode{{ID: "Node", Type: "Concept"}},
		}
		return nil
	}

	g := &GraphClient{extractWorkers: 1, maxRetries: 3}
	tasks := []extractTask{{chunkIDs: []string{"c1"}, text: "text"}}

	fragments, err := g.extractFragments(context.Background(), tasks, "test.pdf", client)
	if err != nil {
		t.Fatal(err)
	}
	if len(fragments) != 1 {
		t.Fatalf("got %d fragments, want 1", len(fragments))
	}
	if attempts != 2 {
		t.Errorf("got %d attempts, want 2", attempts)
	}
}

func TestRunCounter(t *testing.T) {
	counter := newRunCounter()
	counter.add([]common.Fragment{
		{
			Nodes: []common.Entity{
				{Type: "Person", ID: "Ada"},
				{Type: "Person", ID: "Charles"},
			},
			Relationships: []common.Relationship{
				{SourceType: "Person", SourceID: "Ada", Type: "KNOWS", TargetType: "Person", TargetID: "Charles"},
			},
		},
	})
	counter.add([]common.Fragment{
		{
			Nodes: []common.Entity{
				{Type: "Person", ID: "Ada"},
				{Type: "Concept", ID: "Ada"},
			},
			Relationships: []common.Relationship{
				{SourceType: "Person", SourceID: "Ada", Type: "KNOWS", TargetType: "Person", TargetID: "Charles"},
			},
		},
	})

	if got := counter.nodeCount(); got != 3 {
		t.Errorf("nodeCount = %d, want 3 (distinct type+id pairs)", got)
	}
	if got := counter.relationshipCount(); got != 2 {
		t.Errorf("relationshipCount = %d, want 2 (per instance)", got)
	}
}

func TestChunkEntityLinks(t *testing.T) {
	links := chunkEntityLinks([]common.Fragment{
		{
			ChunkIDs: []string{"c1", "c2"},
			Nodes: []common.Entity{
				{Type: "Person", ID: "Ada"},
			},
		},
	})

	if len(links) != 2 {
		t.Fatalf("got %d links, want 2", len(links))
	}
	if links[0].ChunkID != "c1" || links[1].ChunkID != "c2" {
		t.Errorf("unexpected chunk coverage: %+v", links)
	}
	for _, link := range links {
		if link.EntityType != "Person" || link.EntityID != "Ada" {
			t.Errorf("unexpected entity link: %+v", link)
		}
	}
}
