package model

import (
	"context"
	"sync"

	"github.com/frankli0324/go-http-message/internal/headers"
)

// Trailer is a future of the trailing headers of a message, which are only
// known once the body has been transferred. It settles exactly once.
type Trailer struct {
	mu        sync.Mutex
	done      chan struct{}
	settled   bool
	h         *headers.Headers
	err       error
	callbacks []func(*headers.Headers, error)
}

func NewTrailer() *Trailer {
	return &Trailer{done: make(chan struct{})}
}

// ResolvedTrailer returns a settled trailer, a nil h resolves to an empty map.
func ResolvedTrailer(h *headers.Headers) *Trailer {
	t := NewTrailer()
	t.Resolve(h)
	return t
}

// Resolve settles t with h. It reports false if t was already settled.
func (t *Trailer) Resolve(h *headers.Headers) bool {
	if h == nil {
		h = &headers.Headers{}
	}
	return t.settle(h, nil)
}

// Reject settles t with err. It reports false if t was already settled.
func (t *Trailer) Reject(err error) bool {
	return t.settle(nil, err)
}

func (t *Trailer) settle(h *headers.Headers, err error) bool {
	t.mu.Lock()
	if t.settled {
		t.mu.Unlock()
		return false
	}
	t.settled, t.h, t.err = true, h, err
	cbs := t.callbacks
	t.callbacks = nil
	close(t.done)
	t.mu.Unlock()

	for _, cb := range cbs {
		cb(h, err)
	}
	return true
}

// Done is closed once t settles.
func (t *Trailer) Done() <-chan struct{} { return t.done }

// Wait blocks until t settles or ctx is done.
func (t *Trailer) Wait(ctx context.Context) (*headers.Headers, error) {
	select {
	case <-t.done:
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.h, t.err
}

// Peek returns the resolved headers without blocking. ok is false while
// t is pending or if it was rejected.
func (t *Trailer) Peek() (h *headers.Headers, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.h, t.settled && t.err == nil
}

// Err returns the rejection error, nil while pending or once resolved.
func (t *Trailer) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Then returns a trailer settled with fn applied to the resolved headers of
// t. A rejection is passed through without calling fn. fn runs in the
// goroutine settling t, or right away if t is already settled.
func (t *Trailer) Then(fn func(*headers.Headers) (*headers.Headers, error)) *Trailer {
	next := NewTrailer()
	forward := func(h *headers.Headers, err error) {
		if err != nil {
			next.Reject(err)
			return
		}
		h, err = fn(h)
		if err != nil {
			next.Reject(err)
			return
		}
		next.Resolve(h)
	}

	t.mu.Lock()
	if !t.settled {
		t.callbacks = append(t.callbacks, forward)
		t.mu.Unlock()
		return next
	}
	h, err := t.h, t.err
	t.mu.Unlock()
	forward(h, err)
	return next
}

// Clone returns a trailer resolving to a copy of the headers t resolves to.
func (t *Trailer) Clone() *Trailer {
	return t.Then(func(h *headers.Headers) (*headers.Headers, error) {
		return h.Clone(), nil
	})
}
