package model

import (
	"github.com/rs/zerolog"

	"github.com/frankli0324/go-http-message/internal/signal"
)

type ResponseOptions struct {
	// Status defaults to 200.
	Status     int
	StatusText string

	Headers any
	Trailer any

	// Request is the request the response answers, if known. Signal
	// defaults to the signal of Request, or a new one.
	Request *Request
	Signal  *signal.Signal

	OmitDefaultHeaders bool
	MaxBufferSize      int64
	Logger             *zerolog.Logger
}

type Response struct {
	message

	status     int
	statusText string
	request    *Request
}

func NewResponse(body any, opts ResponseOptions) (*Response, error) {
	r := &Response{
		status:     opts.Status,
		statusText: opts.StatusText,
		request:    opts.Request,
	}
	if r.status == 0 {
		r.status = 200
	}
	sig := opts.Signal
	if sig == nil && opts.Request != nil {
		sig = opts.Request.Signal()
	}
	err := r.build(commonOptions{
		body:               body,
		headers:            opts.Headers,
		trailer:            opts.Trailer,
		signal:             sig,
		omitDefaultHeaders: opts.OmitDefaultHeaders,
		maxBufferSize:      opts.MaxBufferSize,
		logger:             opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	r.log = r.log.With().Int("status", r.status).Logger()
	return r, nil
}

func (r *Response) Status() int { return r.status }

func (r *Response) StatusText() string { return r.statusText }

// OK reports whether the status is in the 2xx range.
func (r *Response) OK() bool { return r.status >= 200 && r.status < 300 }

// Request returns the request r answers, nil if unknown.
func (r *Response) Request() *Request { return r.request }

// Clone returns a copy of the response with cloned headers and body and a
// trailer resolving to a copy of the trailer of r.
func (r *Response) Clone() (*Response, error) {
	r.mu.Lock()
	h, b, t := r.headers, r.body, r.trailer
	r.mu.Unlock()

	cb, err := b.Clone()
	if err != nil {
		return nil, err
	}
	c := &Response{status: r.status, statusText: r.statusText, request: r.request}
	c.init(h.Clone(), cb, t.Clone(), r.sig, r.log)
	return c, nil
}
