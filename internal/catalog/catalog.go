// Package catalog serves the static category document that lists every
// category and its subcategories.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"expensetracker/internal/cache"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

const cacheSize = 8

// Reader reads the category document from a file on every call unless a
// cache TTL was configured.
type Reader struct {
	path  string
	cache *cache.LRUCache[string]
}

// NewReader returns a Reader for path. A ttl of zero or less disables caching.
func NewReader(path string, ttl time.Duration) *Reader {
	r := &Reader{path: path}
	if ttl > 0 {
		r.cache = cache.NewLRUCache[string](cacheSize, ttl)
	}
	return r
}

// Path returns the configured document location.
func (r *Reader) Path() string {
	return r.path
}

// Cache exposes the underlying cache so it can be registered for cleanup.
// It returns nil when caching is disabled.
func (r *Reader) Cache() cache.Cleaner {
	if r.cache == nil {
		return nil
	}
	return r.cache
}

// Read returns the document text verbatim. A missing file is a
// *core.NotFoundError.
func (r *Reader) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r.cache != nil {
		if doc, ok := r.cache.Get(r.path); ok {
			return doc, nil
		}
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &core.NotFoundError{Resource: "category catalog", Err: err}
		}
		return "", fmt.Errorf("read category catalog: %w", err)
	}

	doc := string(data)
	if r.cache != nil {
		r.cache.Set(r.path, doc)
	}
	slog.DebugContext(ctx, "Category catalog loaded", log.FieldComponent, log.ComponentCatalog, "path", r.path, "bytes", len(data))
	return doc, nil
}

// Decode reads the document and parses it as a category to subcategories map.
func (r *Reader) Decode(ctx context.Context) (map[string][]string, error) {
	doc, err := r.Read(ctx)
	if err != nil {
		return nil, err
	}
	var categories map[string][]string
	if err := json.Unmarshal([]byte(doc), &categories); err != nil {
		return nil, fmt.Errorf("decode category catalog: %w", err)
	}
	return categories, nil
}
