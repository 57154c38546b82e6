package engine

import (
	"context"
	"io"
	"sync"
)

// Handle is the single owner of the engine binding. Binding happens once and
// asynchronously; consumers wait for it with Await.
type Handle struct {
	bindOnce sync.Once
	ready    chan struct{}

	mu     sync.Mutex
	eng    Engine
	err    error
	closed bool
}

// NewHandle creates an unbound handle.
func NewHandle() *Handle {
	return &Handle{ready: make(chan struct{})}
}

// Bound returns a handle already bound to e.
func Bound(e Engine) *Handle {
	h := NewHandle()
	h.resolve(e, nil)
	return h
}

// Bind starts acquiring the engine in the background. Only the first call
// has an effect.
func (h *Handle) Bind(ctx context.Context, acquire func(context.Context) (Engine, error)) {
	h.bindOnce.Do(func() {
		go func() {
			e, err := acquire(ctx)
			h.resolve(e, err)
		}()
	})
}

func (h *Handle) resolve(e Engine, err error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		if e != nil {
			_ = closeEngine(e)
		}
		return
	}
	h.eng, h.err = e, err
	h.markReadyLocked()
	h.mu.Unlock()
}

// markReadyLocked closes ready once. Callers hold h.mu.
func (h *Handle) markReadyLocked() {
	select {
	case <-h.ready:
	default:
		close(h.ready)
	}
}

// Ready is closed once binding has completed, successfully or not.
func (h *Handle) Ready() <-chan struct{} {
	return h.ready
}

// Await blocks until the engine is bound or ctx is done.
func (h *Handle) Await(ctx context.Context) (Engine, error) {
	select {
	case <-h.ready:
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.eng, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close releases the engine if it was bound. A binding still in flight is
// released as soon as it completes.
func (h *Handle) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	e := h.eng
	switch {
	case e != nil:
		h.err = ErrClosed
	case h.err == nil:
		h.err = ErrNotBound
	}
	h.eng = nil
	h.markReadyLocked()
	h.mu.Unlock()

	if e != nil {
		return closeEngine(e)
	}
	return nil
}

func closeEngine(e Engine) error {
	if c, ok := e.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
