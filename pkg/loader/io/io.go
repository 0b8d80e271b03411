package io

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/OFFIS-RIT/corpusgraph/pkg/loader"

	"golang.org/x/sync/singleflight"
)

// IOByteLoader loads files directly from the local filesystem with caching.
type IOByteLoader struct {
	baseDir string

	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewIOByteLoader creates a new filesystem-based file loader. Keys are
// resolved relative to baseDir; an empty baseDir uses keys as-is.
func NewIOByteLoader(baseDir string) *IOByteLoader {
	return &IOByteLoader{
		baseDir: baseDir,
		cache:   make(map[string][]byte),
	}
}

// GetFile reads the file content from the filesystem. Results are cached.
func (l *IOByteLoader) GetFile(ctx context.Context, key string) ([]byte, error) {
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

		path := key
		if l.baseDir != "" {
			path = filepath.Join(l.baseDir, key)
		}

		result, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		l.cacheMu.Lock()
		l.cache[cacheKey] = result
		l.cacheMu.Unlock()

		return result, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}
