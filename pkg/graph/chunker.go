package graph

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"github.com/OFFIS-RIT/corpusgraph/pkg/common"
	"github.com/OFFIS-RIT/corpusgraph/pkg/loader"

	"github.com/pkoukk/tiktoken-go"
)

// tokenCodec turns text into token IDs and back. The production
// implementation wraps a tiktoken BPE encoding.
type tokenCodec interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

type tiktokenCodec struct {
	enc *tiktoken.Tiktoken
}

func (c tiktokenCodec) Encode(text string) []int {
	return c.enc.Encode(text, nil, nil)
}

func (c tiktokenCodec) Decode(tokens []int) string {
	return c.enc.Decode(tokens)
}

func newTokenCodec(encoding string) (tokenCodec, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, err
	}
	return tiktokenCodec{enc: enc}, nil
}

var pageCleaner = strings.NewReplacer(`"`, "", `'`, "", "\n", " ")

// cleanPages normalizes raw page text before tokenization: quotes are
// stripped and newlines collapse into spaces.
func cleanPages(pages []loader.Page) []loader.Page {
	out := make([]loader.Page, 0, len(pages))
	for _, p := range pages {
		out = append(out, loader.Page{
			Number: p.Number,
			Text:   strings.TrimSpace(pageCleaner.Replace(p.Text)),
		})
	}
	return out
}

// tokenWindows returns [start, end) index pairs covering n tokens with
// windows of at most size tokens, each starting overlap tokens before the
// end of the previous window. The final window may be shorter.
func tokenWindows(n, size, overlap int) [][2]int {
	if n <= 0 || size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var windows [][2]int
	step := size - overlap
	for start := 0; start < n; start += step {
		end := start + size
		if end > n {
			end = n
		}
		windows = append(windows, [2]int{start, end})
		if end == n {
			break
		}
	}
	return windows
}

// chunkID is the hex SHA-1 of the chunk text alone. Byte-identical text
// always maps to the same ID, so repeated content merges into one chunk
// row instead of duplicating.
func chunkID(text string) string {
	sum := sha1.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// buildChunkGraph splits the cleaned pages into token chunks and wires the
// linkage between them. Positions are 1-based across the whole document and
// the content offset of each chunk is the total text length of all chunks
// before it. When the pages carry page numbers, chunk boundaries never cross
// a page.
func buildChunkGraph(
	pages []loader.Page,
	fileName string,
	codec tokenCodec,
	tokenSize int,
	tokenOverlap int,
) ([]common.Chunk, []common.ChunkLink) {
	pages = cleanPages(pages)

	paged := loader.HasPageNumbers(pages)
	if !paged {
		var merged strings.Builder
		for _, p := range pages {
			if p.Text == "" {
				continue
			}
			if merged.Len() > 0 {
				merged.WriteString(" ")
			}
			merged.WriteString(p.Text)
		}
		pages = []loader.Page{{Number: 0, Text: merged.String()}}
	}

	var chunks []common.Chunk
	position := 0
	offset := 0

	for _, page := range pages {
		if page.Text == "" {
			continue
		}

		tokens := codec.Encode(page.Text)
		for _, w := range tokenWindows(len(tokens), tokenSize, tokenOverlap) {
			text := strings.TrimSpace(codec.Decode(tokens[w[0]:w[1]]))
			if text == "" {
				continue
			}

			position++
			chunk := common.Chunk{
				ID:            chunkID(text),
				FileName:      fileName,
				Text:          text,
				Position:      position,
				Length:        len(text),
				ContentOffset: offset,
			}
			if paged {
				n := page.Number
				chunk.PageNumber = &n
			}
			chunks = append(chunks, chunk)
			offset += len(text)
		}
	}

	links := make([]common.ChunkLink, 0, len(chunks))
	for i, chunk := range chunks {
		if i == 0 {
			links = append(links, common.ChunkLink{
				Type:    common.LinkFirstChunk,
				ChunkID: chunk.ID,
			})
			continue
		}
		links = append(links, common.ChunkLink{
			Type:       common.LinkNextChunk,
			PreviousID: chunks[i-1].ID,
			ChunkID:    chunk.ID,
		})
	}

	return chunks, links
}
