package embedding

import (
	"context"
	"sync"
	"sync/atomic"
)

// lazyHandle builds a shared value on first successful use and keeps it for the
// life of the process; there is no teardown. A failed build is not stored, so the
// next caller retries. Readers after initialisation never take the lock.
type lazyHandle[T any] struct {
	mu    sync.Mutex
	value atomic.Pointer[T]
	build func(ctx context.Context) (T, error)
}

func newLazyHandle[T any](build func(ctx context.Context) (T, error)) *lazyHandle[T] {
	return &lazyHandle[T]{build: build}
}

func (h *lazyHandle[T]) get(ctx context.Context) (T, error) {
	if v := h.value.Load(); v != nil {
		return *v, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if v := h.value.Load(); v != nil {
		return *v, nil
	}

	v, err := h.build(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	h.value.Store(&v)
	return v, nil
}
