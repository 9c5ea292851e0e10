package model

import (
	"net/url"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/frankli0324/go-http-message/internal/errs"
	"github.com/frankli0324/go-http-message/internal/signal"
)

// Connection describes the transport a request arrived on.
type Connection struct {
	RemoteAddr string `json:"remoteAddress,omitempty"`
	RemotePort int    `json:"remotePort,omitempty"`
	LocalAddr  string `json:"localAddress,omitempty"`
	LocalPort  int    `json:"localPort,omitempty"`
	Encrypted  bool   `json:"encrypted"`
}

type RequestOptions struct {
	// Method defaults to GET, it is upper-cased.
	Method string

	// Body is passed to [body.New].
	Body any
	// Headers and Trailer accept anything [headers.Headers.Extend] does.
	// Trailer also accepts a *Trailer that is settled later on.
	Headers any
	Trailer any

	// Signal is created when nil.
	Signal     *signal.Signal
	Connection *Connection

	OmitDefaultHeaders bool
	MaxBufferSize      int64
	Logger             *zerolog.Logger
}

type Request struct {
	message

	method string
	rawURL string
	parsed *url.URL
	conn   *Connection
	closed bool
}

func NewRequest(rawURL string, opts RequestOptions) (*Request, error) {
	r := &Request{
		method: normalizeMethod(opts.Method),
		rawURL: rawURL,
		conn:   opts.Connection,
	}
	err := r.build(commonOptions{
		body:               opts.Body,
		headers:            opts.Headers,
		trailer:            opts.Trailer,
		signal:             opts.Signal,
		omitDefaultHeaders: opts.OmitDefaultHeaders,
		maxBufferSize:      opts.MaxBufferSize,
		logger:             opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	r.log = r.log.With().Str("method", r.method).Str("url", rawURL).Logger()
	return r, nil
}

func normalizeMethod(method string) string {
	if method == "" {
		return "GET"
	}
	return strings.ToUpper(method)
}

func (r *Request) Method() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.method
}

func (r *Request) SetMethod(method string) {
	r.mu.Lock()
	r.method = normalizeMethod(method)
	r.mu.Unlock()
}

func (r *Request) URL() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rawURL
}

// SetURL replaces the URL and drops the cached parse result.
func (r *Request) SetURL(rawURL string) {
	r.mu.Lock()
	r.rawURL, r.parsed = rawURL, nil
	r.mu.Unlock()
}

// ParsedURL parses the URL on first use and caches the result until the
// next [Request.SetURL]. The returned value must not be modified.
func (r *Request) ParsedURL() (*url.URL, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.parsed != nil {
		return r.parsed, nil
	}
	u, err := url.Parse(r.rawURL)
	if err != nil {
		return nil, err
	}
	r.parsed = u
	return u, nil
}

func (r *Request) Connection() *Connection {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn
}

// SetConnection records the connection once, later calls are ignored.
func (r *Request) SetConnection(c *Connection) bool {
	r.mu.Lock()
	if c == nil || r.conn != nil {
		r.mu.Unlock()
		return false
	}
	r.conn = c
	r.mu.Unlock()
	r.events.Emit(EventConnection, 0)
	return true
}

func (r *Request) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// MarkClosed records that the underlying connection went away. Like the
// started and finished flags it never resets.
func (r *Request) MarkClosed() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()
	r.events.Emit(EventClosed, 0)
}

// Abort fires the signal of the request, destroying the body of every
// message sharing it. It reports false when the request already finished,
// was closed or was aborted before.
func (r *Request) Abort() bool {
	r.mu.Lock()
	done := r.finished || r.closed
	r.mu.Unlock()
	if done {
		return false
	}
	return r.sig.Abort()
}

// cloneable reports why r can not be copied, if it can not.
func (r *Request) cloneable() error {
	if r.Started() {
		return errs.ErrInvalidState.Wrap(errRequestStarted)
	}
	if r.Aborted() {
		return errs.ErrInvalidState.Wrap(errRequestAborted)
	}
	return nil
}

// Clone returns a copy of the request with cloned headers and body and a
// trailer resolving to a copy of the trailer of r. The clone shares the
// signal of r. Started or aborted requests can not be cloned.
func (r *Request) Clone() (*Request, error) {
	if err := r.cloneable(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	h, b, t := r.headers, r.body, r.trailer
	c := &Request{method: r.method, rawURL: r.rawURL, conn: r.conn}
	r.mu.Unlock()

	cb, err := b.Clone()
	if err != nil {
		return nil, err
	}
	c.init(h.Clone(), cb, t.Clone(), r.sig, r.log)
	return c, nil
}

// FromRequest creates a request for the URL of src. Method, Body, Headers,
// Trailer, Signal and Connection are taken from opts when set and copied
// from src otherwise, like [Request.Clone] does. A body taken from opts
// leaves the body of src untouched.
func FromRequest(src *Request, opts RequestOptions) (*Request, error) {
	if err := src.cloneable(); err != nil {
		return nil, err
	}
	src.mu.Lock()
	rawURL := src.rawURL
	if opts.Method == "" {
		opts.Method = src.method
	}
	if opts.Connection == nil {
		opts.Connection = src.conn
	}
	if opts.Headers == nil {
		h := src.headers.Clone()
		if opts.Body != nil {
			// defaults derived from the old body do not describe the new one
			derived := src.body.Headers()
			for k := range derived.Keys() {
				if slices.Equal(h.GetAll(k), derived.GetAll(k)) {
					h.Delete(k)
				}
			}
		}
		opts.Headers = h
	}
	if opts.Body == nil {
		opts.Body = src.body // cloned by body.New
	}
	if opts.Trailer == nil {
		opts.Trailer = src.trailer.Clone()
	}
	src.mu.Unlock()
	if opts.Signal == nil {
		opts.Signal = src.sig
	}
	return NewRequest(rawURL, opts)
}
