package graph

import (
	"strings"
	"testing"

	"github.com/OFFIS-RIT/corpusgraph/pkg/common"
	"github.com/OFFIS-RIT/corpusgraph/pkg/loader"
)

// wordCodec is a tokenCodec that treats every space-separated word as
// one token, so chunk boundaries in tests are easy to reason about.
type wordCodec struct {
	words []string
	index map[string]int
}

func newWordCodec() *wordCodec {
	return &wordCodec{index: make(map[string]int)}
}

func (c *wordCodec) Encode(text string) []int {
	var tokens []int
	for _, w := range strings.Fields(text) {
		id, ok := c.index[w]
		if !ok {
			id = len(c.words)
			c.words = append(c.words, w)
			c.index[w] = id
		}
		tokens = append(tokens, id)
	}
	return tokens
}

func (c *wordCodec) Decode(tokens []int) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = c.words[tok]
	}
	return strings.Join(parts, " ")
}

func TestCleanPages(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"strips double quotes", `he said "hello"`, "he said hello"},
		{"strips single quotes", "it's a 'test'", "its a test"},
		{"newlines become spaces", "line one\nline two", "line one line two"},
		{"trims surrounding space", "  padded  ", "padded"},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cleanPages([]loader.Page{{Number: 1, Text: tt.in}})
			if got[0].Text != tt.want {
				t.Errorf("cleanPages(%q) = %q, want %q", tt.in, got[0].Text, tt.want)
			}
			if got[0].Number != 1 {
				t.Errorf("page number changed: got %d", got[0].Number)
			}
		})
	}
}

func TestTokenWindows(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		size    int
		overlap int
		want    [][2]int
	}{
		{
			name: "fits in one window",
			n:    10, size: 20, overlap: 5,
			want: [][2]int{{0, 10}},
		},
		{
			name: "exact fit",
			n:    20, size: 20, overlap: 5,
			want: [][2]int{{0, 20}},
		},
		{
			name: "overlapping windows",
			n:    50, size: 20, overlap: 5,
			want: [][2]int{{0, 20}, {15, 35}, {30, 50}},
		},
		{
			name: "short tail window",
			n:    25, size: 20, overlap: 5,
			want: [][2]int{{0, 20}, {15, 25}},
		},
		{
			name: "no overlap",
			n:    40, size: 20, overlap: 0,
			want: [][2]int{{0, 20}, {20, 40}},
		},
		{
			name: "overlap larger than size is ignored",
			n:    40, size: 20, overlap: 30,
			want: [][2]int{{0, 20}, {20, 40}},
		},
		{
			name: "zero tokens",
			n:    0, size: 20, overlap: 5,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenWindows(tt.n, tt.size, tt.overlap)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d windows, want %d: %v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("window %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTokenWindowsCoverAllTokens(t *testing.T) {
	windows := tokenWindows(537, 200, 20)
	if len(windows) == 0 {
		t.Fatal("no windows")
	}
	if windows[0][0] != 0 {
		t.Errorf("first window starts at %d", windows[0][0])
	}
	if windows[len(windows)-1][1] != 537 {
		t.Errorf("last window ends at %d, want 537", windows[len(windows)-1][1])
	}
	for i := 1; i < len(windows); i++ {
		if windows[i][0] > windows[i-1][1] {
			t.Errorf("gap between window %d and %d", i-1, i)
		}
	}
}

func TestChunkIDContentAddressed(t *testing.T) {
	a := chunkID("some text")
	if a != chunkID("some text") {
		t.Error("same text produced different IDs")
	}
	if len(a) != 40 {
		t.Errorf("expected 40 hex chars, got %d", len(a))
	}
	if chunkID("other text") == a {
		t.Error("different text must produce different IDs")
	}
}

func TestChunkIDIgnoresDocumentAndPosition(t *testing.T) {
	codec := newWordCodec()
	pages := []loader.Page{{Number: 0, Text: "shared boilerplate text"}}

	first, _ := buildChunkGraph(pages, "a.txt", codec, 10, 0)
	second, _ := buildChunkGraph(pages, "b.txt", codec, 10, 0)
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected one chunk per document, got %d and %d", len(first), len(second))
	}
	if first[0].ID != second[0].ID {
		t.Errorf("identical text produced different IDs: %s vs %s", first[0].ID, second[0].ID)
	}

	// the same text twice in one document also shares the ID
	repeat := []loader.Page{{Number: 1, Text: "shared boilerplate text"}, {Number: 2, Text: "shared boilerplate text"}}
	chunks, _ := buildChunkGraph(repeat, "c.txt", codec, 10, 0)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].ID != chunks[1].ID {
		t.Error("repeated text within a document produced different IDs")
	}
	if chunks[0].Position == chunks[1].Position {
		t.Error("positions must stay distinct")
	}
}

func TestBuildChunkGraphPagedDocument(t *testing.T) {
	codec := newWordCodec()
	pages := []loader.Page{
		{Number: 1, Text: "one two three four five six"},
		{Number: 2, Text: "seven eight nine"},
	}

	chunks, links := buildChunkGraph(pages, "doc.pdf", codec, 3, 0)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	wantText := []string{"one two three", "four five six", "seven eight nine"}
	wantPage := []int{1, 1, 2}
	offset := 0
	for i, chunk := range chunks {
		if chunk.Text != wantText[i] {
			t.Errorf("chunk %d text = %q, want %q", i, chunk.Text, wantText[i])
		}
		if chunk.Position != i+1 {
			t.Errorf("chunk %d position = %d, want %d", i, chunk.Position, i+1)
		}
		if chunk.ContentOffset != offset {
			t.Errorf("chunk %d offset = %d, want %d", i, chunk.ContentOffset, offset)
		}
		if chunk.PageNumber == nil || *chunk.PageNumber != wantPage[i] {
			t.Errorf("chunk %d page = %v, want %d", i, chunk.PageNumber, wantPage[i])
		}
		offset += len(chunk.Text)
	}

	if len(links) != 3 {
		t.Fatalf("expected 3 links, got %d", len(links))
	}
	if links[0].Type != common.LinkFirstChunk || links[0].ChunkID != chunks[0].ID {
		t.Errorf("first link = %+v", links[0])
	}
	for i := 1; i < len(links); i++ {
		if links[i].Type != common.LinkNextChunk {
			t.Errorf("link %d type = %s", i, links[i].Type)
		}
		if links[i].PreviousID != chunks[i-1].ID || links[i].ChunkID != chunks[i].ID {
			t.Errorf("link %d = %+v", i, links[i])
		}
	}
}

func TestBuildChunkGraphMergesUnpagedPages(t *testing.T) {
	codec := newWordCodec()
	pages := []loader.Page{
		{Number: 0, Text: "alpha beta"},
		{Number: 0, Text: "gamma delta"},
	}

	chunks, _ := buildChunkGraph(pages, "notes.txt", codec, 10, 0)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "alpha beta gamma delta" {
		t.Errorf("merged text = %q", chunks[0].Text)
	}
	if chunks[0].PageNumber != nil {
		t.Errorf("unpaged chunk carries page number %d", *chunks[0].PageNumber)
	}
}
