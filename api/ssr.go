package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Prefetcher loads backend JSON for server-rendered pages. Any failure
// (non-2xx, network error, timeout) yields nil so the page renders with
// placeholder content instead of failing the whole request.
type Prefetcher struct {
	base       string
	httpClient *http.Client
	cache      *redis.Client // optional revalidation cache
	logger     *zap.Logger
}

type PrefetchOptions struct {
	// Timeout bounds the whole call; zero means DefaultTimeout.
	Timeout time.Duration
	// Revalidate > 0 caches successful responses for that long, keyed by
	// path, so repeated renders within the window skip the backend.
	Revalidate time.Duration
}

const DefaultTimeout = 3 * time.Second

func NewPrefetcher(baseURL string, cache *redis.Client, logger *zap.Logger) *Prefetcher {
	return &Prefetcher{
		base:       strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		cache:      cache,
		logger:     logger,
	}
}

// Prefetch returns the response body for GET base+path, or nil. It never
// returns an error and never hangs past the timeout.
func (p *Prefetcher) Prefetch(ctx context.Context, path string, opts PrefetchOptions) json.RawMessage {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	cacheKey := "ssr:" + path
	if p.cache != nil && opts.Revalidate > 0 {
		if cached, err := p.cache.Get(ctx, cacheKey).Bytes(); err == nil && len(cached) > 0 {
			return cached
		}
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.base+path, nil)
	if err != nil {
		return nil
	}
	res, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Warn("prefetch failed", zap.String("path", path), zap.Error(err))
		return nil
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		p.logger.Warn("prefetch non-2xx", zap.String("path", path), zap.Int("status", res.StatusCode))
		return nil
	}

	body, err := io.ReadAll(res.Body)
	if err != nil || !json.Valid(body) {
		return nil
	}

	if p.cache != nil && opts.Revalidate > 0 {
		// Cache write failures are not the page's problem.
		p.cache.Set(context.Background(), cacheKey, body, opts.Revalidate)
	}
	return body
}

// PrefetchAll issues the calls concurrently. Failures are isolated: a slow
// or failing path produces a nil in its slot and nothing else.
func (p *Prefetcher) PrefetchAll(ctx context.Context, paths []string, opts PrefetchOptions) []json.RawMessage {
	results := make([]json.RawMessage, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			results[i] = p.Prefetch(ctx, path, opts)
		}(i, path)
	}
	wg.Wait()
	return results
}

// PrefetchInto decodes a prefetched body into out, reporting whether data
// was available. Callers treat false as "render without this data".
func PrefetchInto(raw json.RawMessage, out interface{}) bool {
	if raw == nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}
