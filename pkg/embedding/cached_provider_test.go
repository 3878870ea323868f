package embedding

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	calls atomic.Int32
	delay time.Duration
	err   error
	seen  []string
	mu    sync.Mutex
}

func (e *countingEmbedder) Model() string { return "counting" }

func (e *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	e.mu.Lock()
	e.seen = append(e.seen, text)
	e.mu.Unlock()
	if e.delay > 0 {
		time.Sleep(e.delay)
	}
	if e.err != nil {
		return nil, e.err
	}
	return []float32{float32(len(text)), 0.5, -0.25}, nil
}

type mapCache struct {
	mu   sync.Mutex
	data map[string][]float32
}

func (m *mapCache) Get(_ context.Context, key string) ([]float32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *mapCache) Set(_ context.Context, key string, vec []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = vec
}

func TestCachedEmbedder_RepeatedQueryHitsUpstreamOnce(t *testing.T) {
	inner := &countingEmbedder{}
	c, err := NewCachedEmbedder(inner, CacheConfig{}, nil)
	require.NoError(t, err)

	first, err := c.Embed(context.Background(), "ayam jago")
	require.NoError(t, err)
	second, err := c.Embed(context.Background(), "ayam jago")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, inner.calls.Load())
}

func TestCachedEmbedder_ReturnsCopies(t *testing.T) {
	c, err := NewCachedEmbedder(&countingEmbedder{}, CacheConfig{}, nil)
	require.NoError(t, err)

	first, err := c.Embed(context.Background(), "sapi")
	require.NoError(t, err)
	first[0] = 999

	second, err := c.Embed(context.Background(), "sapi")
	require.NoError(t, err)
	assert.Equal(t, float32(4), second[0])
}

func TestCachedEmbedder_FailuresAreNotCached(t *testing.T) {
	inner := &countingEmbedder{err: errors.New("connection refused")}
	c, err := NewCachedEmbedder(inner, CacheConfig{}, nil)
	require.NoError(t, err)

	_, err = c.Embed(context.Background(), "padi")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = c.Embed(context.Background(), "padi")
	require.Error(t, err)
	assert.EqualValues(t, 2, inner.calls.Load())
}

func TestCachedEmbedder_RejectsBlankInput(t *testing.T) {
	inner := &countingEmbedder{}
	c, err := NewCachedEmbedder(inner, CacheConfig{}, nil)
	require.NoError(t, err)

	_, err = c.Embed(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.EqualValues(t, 0, inner.calls.Load())
}

func TestCachedEmbedder_TruncatesLongInput(t *testing.T) {
	inner := &countingEmbedder{}
	c, err := NewCachedEmbedder(inner, CacheConfig{MaxRunes: 4}, nil)
	require.NoError(t, err)

	_, err = c.Embed(context.Background(), "kerbau liar")
	require.NoError(t, err)
	require.Len(t, inner.seen, 1)
	assert.Equal(t, "kerb", inner.seen[0])
}

func TestCachedEmbedder_EvictsLeastRecentlyUsed(t *testing.T) {
	inner := &countingEmbedder{}
	c, err := NewCachedEmbedder(inner, CacheConfig{Size: 2}, nil)
	require.NoError(t, err)

	ctx := context.Background()
	for _, q := range []string{"a1", "b2", "c3", "a1"} {
		_, err := c.Embed(ctx, q)
		require.NoError(t, err)
	}
	assert.EqualValues(t, 4, inner.calls.Load())
}

func TestCachedEmbedder_ConcurrentMissesShareOneCall(t *testing.T) {
	inner := &countingEmbedder{delay: 50 * time.Millisecond}
	c, err := NewCachedEmbedder(inner, CacheConfig{}, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Embed(context.Background(), "bebek")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, inner.calls.Load())
}

func TestCachedEmbedder_UsesSharedCache(t *testing.T) {
	shared := &mapCache{data: map[string][]float32{}}
	inner := &countingEmbedder{}

	first, err := NewCachedEmbedder(inner, CacheConfig{}, shared)
	require.NoError(t, err)
	_, err = first.Embed(context.Background(), "traktor")
	require.NoError(t, err)
	require.Len(t, shared.data, 1)

	second, err := NewCachedEmbedder(inner, CacheConfig{}, shared)
	require.NoError(t, err)
	vec, err := second.Embed(context.Background(), "traktor")
	require.NoError(t, err)

	assert.Equal(t, []float32{7, 0.5, -0.25}, vec)
	assert.EqualValues(t, 1, inner.calls.Load())
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héll", truncateRunes("héllo", 4))
	assert.Equal(t, "héllo", truncateRunes("héllo", 10))
	assert.Equal(t, "héllo", truncateRunes("héllo", 0))
}

func TestVectorCodecRoundTrip(t *testing.T) {
	vec := []float32{0.1, -2.5, 3}
	assert.Equal(t, vec, decodeVector(encodeVector(vec)))
}

func TestCachedEmbedder_UncachedBypassesCache(t *testing.T) {
	inner := &countingEmbedder{}
	c, err := NewCachedEmbedder(inner, CacheConfig{MaxRunes: 4}, nil)
	require.NoError(t, err)

	doc := c.Uncached()
	_, err = doc.Embed(context.Background(), "ayam jago")
	require.NoError(t, err)
	_, err = doc.Embed(context.Background(), "ayam jago")
	require.NoError(t, err)

	assert.EqualValues(t, 2, inner.calls.Load())
	assert.Equal(t, []string{"ayam", "ayam"}, inner.seen)

	_, err = doc.Embed(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyInput)

	inner.err = errors.New("boom")
	_, err = doc.Embed(context.Background(), "sapi")
	assert.ErrorIs(t, err, ErrUnavailable)
}

// gatedEmbedder blocks until release is closed or its own ctx ends.
type gatedEmbedder struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (e *gatedEmbedder) Model() string { return "gated" }

func (e *gatedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.calls.Add(1) == 1 {
		close(e.started)
	}
	select {
	case <-e.release:
		return []float32{1, 0}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestCachedEmbedder_CancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	inner := &gatedEmbedder{started: make(chan struct{}), release: make(chan struct{})}
	c, err := NewCachedEmbedder(inner, CacheConfig{LoadTimeout: 5 * time.Second}, nil)
	require.NoError(t, err)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.Embed(ctxA, "ayam")
		errA <- err
	}()
	<-inner.started

	type result struct {
		vec []float32
		err error
	}
	resB := make(chan result, 1)
	go func() {
		vec, err := c.Embed(context.Background(), "ayam")
		resB <- result{vec, err}
	}()

	cancelA()
	select {
	case err := <-errA:
		assert.ErrorIs(t, err, ErrUnavailable)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	// Give B time to join the in-flight load before it completes.
	time.Sleep(20 * time.Millisecond)
	close(inner.release)

	select {
	case res := <-resB:
		require.NoError(t, res.err)
		assert.Equal(t, []float32{1, 0}, res.vec)
	case <-time.After(time.Second):
		t.Fatal("live caller never got a result")
	}
	assert.Equal(t, int32(1), inner.calls.Load())
}

func TestCachedEmbedder_SharedLoadIsBounded(t *testing.T) {
	inner := &gatedEmbedder{started: make(chan struct{}), release: make(chan struct{})}
	c, err := NewCachedEmbedder(inner, CacheConfig{LoadTimeout: 30 * time.Millisecond}, nil)
	require.NoError(t, err)

	_, err = c.Embed(context.Background(), "ayam")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), context.DeadlineExceeded.Error())
}
