// package model contains the Request and Response envelopes composing a
// header map, a body, a trailer future and a signal.
package model

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/frankli0324/go-http-message/internal/body"
	"github.com/frankli0324/go-http-message/internal/headers"
	"github.com/frankli0324/go-http-message/internal/signal"
)

// Event is a state transition of an envelope. The value passed to
// listeners is the transferred byte count for EventProgress and 0 otherwise.
type Event int

const (
	EventHeaders Event = iota
	EventBody
	EventTrailers
	EventStarted
	EventFinished
	EventProgress
	EventAbort
	EventConnection
	EventClosed
)

var eventNames = [...]string{
	EventHeaders:    "headers",
	EventBody:       "body",
	EventTrailers:   "trailers",
	EventStarted:    "started",
	EventFinished:   "finished",
	EventProgress:   "progress",
	EventAbort:      "abort",
	EventConnection: "connection",
	EventClosed:     "closed",
}

func (e Event) String() string {
	if e >= 0 && int(e) < len(eventNames) {
		return eventNames[e]
	}
	return "unknown"
}

type message struct {
	events signal.Emitter[Event, int64]

	mu               sync.Mutex
	headers          *headers.Headers
	body             *body.Body
	trailer          *Trailer
	sig              *signal.Signal
	started          bool
	finished         bool
	bytesTransferred int64
	aborted          atomic.Bool

	log zerolog.Logger
}

// commonOptions are the construction options shared by both envelopes.
type commonOptions struct {
	body               any
	headers            any
	trailer            any
	signal             *signal.Signal
	omitDefaultHeaders bool
	maxBufferSize      int64
	logger             *zerolog.Logger
}

func (m *message) build(opts commonOptions) error {
	h, err := headers.New(opts.headers)
	if err != nil {
		return err
	}
	// the body always derives its headers, omitting only skips the copy
	b, err := body.New(opts.body, body.Options{
		Headers:       h,
		MaxBufferSize: opts.maxBufferSize,
		Logger:        opts.logger,
	})
	if err != nil {
		return err
	}
	if !opts.omitDefaultHeaders {
		mergeMissing(h, b.Headers())
	}

	var t *Trailer
	switch v := opts.trailer.(type) {
	case nil:
		t = ResolvedTrailer(nil)
	case *Trailer:
		t = v
	default:
		th, err := headers.New(v)
		if err != nil {
			return err
		}
		t = ResolvedTrailer(th)
	}

	log := zerolog.Nop()
	if opts.logger != nil {
		log = *opts.logger
	}
	m.init(h, b, t, opts.signal, log)
	return nil
}

// init wires the parts together, used by constructors and clones alike.
func (m *message) init(h *headers.Headers, b *body.Body, t *Trailer, sig *signal.Signal, log zerolog.Logger) {
	if sig == nil {
		sig = signal.New()
	}
	m.headers, m.body, m.trailer, m.sig, m.log = h, b, t, sig, log
	sig.Once(signal.Abort, func(int64) { m.onAbort() })
	if sig.Aborted() {
		m.onAbort()
	}
}

func (m *message) onAbort() {
	if !m.aborted.CompareAndSwap(false, true) {
		return
	}
	m.Body().Destroy()
	m.log.Debug().Msg("message aborted")
	m.events.Emit(EventAbort, 0)
}

// mergeMissing copies entries of src whose names are absent in dst.
func mergeMissing(dst, src *headers.Headers) {
	for k := range src.Keys() {
		if !dst.Has(k) {
			dst.Set(k, src.GetAll(k)...)
		}
	}
}

// On registers fn for ev and returns a func removing it. Events are only
// emitted by the setters of the message.
func (m *message) On(ev Event, fn func(int64)) (off func()) { return m.events.On(ev, fn) }

func (m *message) Once(ev Event, fn func(int64)) (off func()) { return m.events.Once(ev, fn) }

// Each registers fn for every event.
func (m *message) Each(fn func(Event, int64)) (off func()) { return m.events.Each(fn) }

func (m *message) Headers() *headers.Headers {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.headers
}

func (m *message) SetHeaders(h *headers.Headers) {
	if h == nil {
		h = &headers.Headers{}
	}
	m.mu.Lock()
	m.headers = h
	m.mu.Unlock()
	m.events.Emit(EventHeaders, 0)
}

// AllHeaders returns a copy of the envelope headers completed with the
// headers derived from the body. Envelope values always win.
func (m *message) AllHeaders() *headers.Headers {
	m.mu.Lock()
	h, b := m.headers.Clone(), m.body
	m.mu.Unlock()
	mergeMissing(h, b.Headers())
	return h
}

func (m *message) Body() *body.Body {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.body
}

// SetBody replaces the body. A body set on an aborted message is destroyed
// right away.
func (m *message) SetBody(b *body.Body) {
	if b == nil {
		b, _ = body.New(nil, body.Options{})
	}
	m.mu.Lock()
	m.body = b
	m.mu.Unlock()
	if m.sig.Aborted() {
		b.Destroy()
	}
	m.events.Emit(EventBody, 0)
}

func (m *message) Trailer() *Trailer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trailer
}

func (m *message) SetTrailer(t *Trailer) {
	if t == nil {
		t = ResolvedTrailer(nil)
	}
	m.mu.Lock()
	m.trailer = t
	m.mu.Unlock()
	m.events.Emit(EventTrailers, 0)
}

func (m *message) Signal() *signal.Signal { return m.sig }

func (m *message) Started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// MarkStarted sets the started flag. The flag never resets, only the first
// call notifies listeners.
func (m *message) MarkStarted() {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()
	m.log.Debug().Msg("message started")
	m.events.Emit(EventStarted, 0)
}

func (m *message) Finished() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finished
}

// MarkFinished sets the finished flag, see [message.MarkStarted].
func (m *message) MarkFinished() {
	m.mu.Lock()
	if m.finished {
		m.mu.Unlock()
		return
	}
	m.finished = true
	m.mu.Unlock()
	m.log.Debug().Msg("message finished")
	m.events.Emit(EventFinished, 0)
}

func (m *message) BytesTransferred() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bytesTransferred
}

// SetBytesTransferred records transfer progress. Values not above the
// current count are ignored, it reports whether n was recorded.
func (m *message) SetBytesTransferred(n int64) bool {
	m.mu.Lock()
	if n <= m.bytesTransferred {
		m.mu.Unlock()
		return false
	}
	m.bytesTransferred = n
	m.mu.Unlock()
	m.events.Emit(EventProgress, n)
	return true
}

// Aborted reports whether the signal of the message has fired.
func (m *message) Aborted() bool { return m.sig.Aborted() }

// BodyUsed reports whether the current body has been consumed.
func (m *message) BodyUsed() bool { return m.Body().Used() }

func (m *message) Bytes(ctx context.Context) ([]byte, error) { return m.Body().Bytes(ctx) }

func (m *message) Text(ctx context.Context) (string, error) { return m.Body().Text(ctx) }

func (m *message) JSON(ctx context.Context, v any) error { return m.Body().JSON(ctx, v) }

func (m *message) Stream() (io.ReadCloser, error) { return m.Body().Stream() }

// Destroy destroys the current body.
func (m *message) Destroy() error { return m.Body().Destroy() }
