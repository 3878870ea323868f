package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const defaultLoadTimeout = 30 * time.Second

type CacheConfig struct {
	Size        int     // LRU capacity, defaults to 128
	MaxRunes    int     // input is cut to this many runes before embedding; 0 keeps it whole
	RateLimit   float64 // upstream calls per second; 0 disables limiting
	Burst       int
	LoadTimeout time.Duration // bound on one shared upstream load, defaults to 30s
}

// VectorCache is an optional second-level store shared between instances.
// Misses and storage errors are indistinguishable to the caller.
type VectorCache interface {
	Get(ctx context.Context, key string) ([]float32, bool)
	Set(ctx context.Context, key string, vec []float32)
}

// CachedEmbedder fronts an Embedder with a bounded LRU keyed by the exact query
// text. Concurrent misses for the same text share one upstream call, which runs
// detached from every caller's cancellation; a caller that gives up only stops
// waiting. Returned slices are copies, so callers may modify them freely.
type CachedEmbedder struct {
	inner       Embedder
	cache       *lru.Cache[string, []float32]
	group       singleflight.Group
	limiter     *rate.Limiter
	shared      VectorCache
	maxRunes    int
	loadTimeout time.Duration
}

func NewCachedEmbedder(inner Embedder, cfg CacheConfig, shared VectorCache) (*CachedEmbedder, error) {
	if cfg.Size <= 0 {
		cfg.Size = 128
	}
	cache, err := lru.New[string, []float32](cfg.Size)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = defaultLoadTimeout
	}

	return &CachedEmbedder{
		inner:       inner,
		cache:       cache,
		limiter:     limiter,
		shared:      shared,
		maxRunes:    cfg.MaxRunes,
		loadTimeout: cfg.LoadTimeout,
	}, nil
}

func (c *CachedEmbedder) Model() string {
	return c.inner.Model()
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text = truncateRunes(text, c.maxRunes)
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	if vec, ok := c.cache.Get(text); ok {
		return cloneVector(vec), nil
	}

	results := c.group.DoChan(text, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()
		return c.load(loadCtx, text)
	})

	select {
	case res := <-results:
		if res.Err != nil {
			return nil, res.Err
		}
		return cloneVector(res.Val.([]float32)), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
	}
}

func (c *CachedEmbedder) load(ctx context.Context, text string) ([]float32, error) {
	key := c.sharedKey(text)
	if c.shared != nil {
		if vec, ok := c.shared.Get(ctx, key); ok {
			c.cache.Add(text, vec)
			return vec, nil
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %v", ErrUnavailable, err)
		}
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		if !errors.Is(err, ErrUnavailable) {
			err = fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}

	c.cache.Add(text, vec)
	if c.shared != nil {
		c.shared.Set(ctx, key, vec)
	}
	return vec, nil
}

func (c *CachedEmbedder) sharedKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "embed:" + c.inner.Model() + ":" + hex.EncodeToString(sum[:])
}

func cloneVector(vec []float32) []float32 {
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}

// Uncached returns an Embedder that shares truncation and the rate limit but
// skips both cache tiers. The catalogue indexer embeds each row once, so
// caching those vectors would only evict query entries.
func (c *CachedEmbedder) Uncached() Embedder {
	return uncachedEmbedder{c: c}
}

type uncachedEmbedder struct {
	c *CachedEmbedder
}

func (u uncachedEmbedder) Model() string {
	return u.c.inner.Model()
}

func (u uncachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text = truncateRunes(text, u.c.maxRunes)
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	if u.c.limiter != nil {
		if err := u.c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %v", ErrUnavailable, err)
		}
	}

	vec, err := u.c.inner.Embed(ctx, text)
	if err != nil && !errors.Is(err, ErrUnavailable) {
		err = fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return vec, err
}
