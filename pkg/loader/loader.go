package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Page is a single page of extracted text. Number is 1-based and zero
// when the source format has no page structure (e.g. plain text files).
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// HasPageNumbers reports whether the pages carry page metadata.
func HasPageNumbers(pages []Page) bool {
	return len(pages) > 0 && pages[0].Number > 0
}

// ByteLoader fetches the raw bytes of a file from a backing store.
// Implementations may load from the local filesystem, S3, or other
// sources.
type ByteLoader interface {
	GetFile(ctx context.Context, key string) ([]byte, error)
}

// PageLoader extracts pages of text from a stored file.
type PageLoader interface {
	GetPages(ctx context.Context, key string) ([]Page, error)
}

// TextPages wraps plain text content into a single unnumbered page.
func TextPages(content []byte) []Page {
	return []Page{{Number: 0, Text: string(content)}}
}

// TextLoader is a PageLoader for formats without page structure. The
// whole file becomes one page.
type TextLoader struct {
	Source ByteLoader
}

func (l *TextLoader) GetPages(ctx context.Context, key string) ([]Page, error) {
	content, err := l.Source.GetFile(ctx, key)
	if err != nil {
		return nil, err
	}
	return TextPages(content), nil
}

// SupportedExtensions lists the file extensions the ingestion pipeline
// accepts.
var SupportedExtensions = []string{".pdf", ".txt", ".md"}

// IsSupported reports whether the given file name has a supported
// extension.
func IsSupported(fileName string) bool {
	ext := strings.ToLower(filepath.Ext(fileName))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// CacheKey generates a unique cache key for a stored file.
func CacheKey(key string) string {
	return fmt.Sprintf("file:%s", key)
}
