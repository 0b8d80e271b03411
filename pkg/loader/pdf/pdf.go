package pdf

import (
	"context"
	"sync"

	"github.com/OFFIS-RIT/corpusgraph/pkg/loader"

	"golang.org/x/sync/singleflight"
)

// PDFPageLoader extracts per-page text from PDF files fetched through a
// ByteLoader.
type PDFPageLoader struct {
	source loader.ByteLoader

	cache   map[string][]loader.Page
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewPDFPageLoader creates a PDF loader that extracts text directly from
// PDF content via pdftotext.
func NewPDFPageLoader(source loader.ByteLoader) *PDFPageLoader {
	return &PDFPageLoader{
		source: source,
		cache:  make(map[string][]loader.Page),
	}
}

// GetPages extracts the text of each PDF page, preserving 1-based page
// numbers. Results are cached per key.
func (l *PDFPageLoader) GetPages(ctx context.Context, key string) ([]loader.Page, error) {
	cacheKey := loader.CacheKey(key)

	l.cacheMu.RLock()
	if cached, ok := l.cache[cacheKey]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(cacheKey, func() (any, error) {
		l.cacheMu.RLock()
		if cached, ok := l.cache[cacheKey]; ok {
			l.cacheMu.RUnlock()
			return cached, nil
		}
		l.cacheMu.RUnlock()

		content, err := l.source.GetFile(ctx, key)
		if err != nil {
			return nil, err
		}

		text, err := parsePDF(content)
		if err != nil {
			return nil, err
		}
		pages := splitPages(string(text))

		l.cacheMu.Lock()
		l.cache[cacheKey] = pages
		l.cacheMu.Unlock()

		return pages, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]loader.Page), nil
}
