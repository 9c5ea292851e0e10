package model

import (
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/frankli0324/go-http-message/internal/body"
	"github.com/frankli0324/go-http-message/internal/headers"
)

// RequestSnapshot describes a request for logging. The payload is never
// read, only described.
type RequestSnapshot struct {
	URL              string           `json:"url"`
	Method           string           `json:"method"`
	Headers          *headers.Headers `json:"headers"`
	HeaderListSize   uint32           `json:"headerListSize"`
	Trailer          *headers.Headers `json:"trailer,omitempty"`
	Body             body.Snapshot    `json:"body"`
	Connection       *Connection      `json:"connection,omitempty"`
	Started          bool             `json:"started"`
	Finished         bool             `json:"finished"`
	Aborted          bool             `json:"aborted"`
	Closed           bool             `json:"closed"`
	BytesTransferred int64            `json:"bytesTransferred"`
}

type ResponseSnapshot struct {
	Status           int              `json:"status"`
	StatusText       string           `json:"statusText,omitempty"`
	Headers          *headers.Headers `json:"headers"`
	HeaderListSize   uint32           `json:"headerListSize"`
	Trailer          *headers.Headers `json:"trailer,omitempty"`
	Body             body.Snapshot    `json:"body"`
	Started          bool             `json:"started"`
	Finished         bool             `json:"finished"`
	BytesTransferred int64            `json:"bytesTransferred"`
}

func (r *Request) Snapshot() RequestSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	trailer, _ := r.trailer.Peek()
	return RequestSnapshot{
		URL:              r.rawURL,
		Method:           r.method,
		Headers:          r.headers.Clone(),
		HeaderListSize:   r.headers.ListSize(),
		Trailer:          trailer,
		Body:             r.body.Snapshot(),
		Connection:       r.conn,
		Started:          r.started,
		Finished:         r.finished,
		Aborted:          r.sig.Aborted(),
		Closed:           r.closed,
		BytesTransferred: r.bytesTransferred,
	}
}

func (r *Request) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Snapshot())
}

func (r *Request) MarshalZerologObject(e *zerolog.Event) {
	s := r.Snapshot()
	e.Str("method", s.Method).
		Str("url", s.URL).
		Bool("started", s.Started).
		Bool("finished", s.Finished).
		Bool("aborted", s.Aborted).
		Int64("bytesTransferred", s.BytesTransferred).
		Object("body", r.Body())
}

func (r *Response) Snapshot() ResponseSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	trailer, _ := r.trailer.Peek()
	return ResponseSnapshot{
		Status:           r.status,
		StatusText:       r.statusText,
		Headers:          r.headers.Clone(),
		HeaderListSize:   r.headers.ListSize(),
		Trailer:          trailer,
		Body:             r.body.Snapshot(),
		Started:          r.started,
		Finished:         r.finished,
		BytesTransferred: r.bytesTransferred,
	}
}

func (r *Response) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Snapshot())
}

func (r *Response) MarshalZerologObject(e *zerolog.Event) {
	s := r.Snapshot()
	e.Int("status", s.Status).
		Bool("ok", r.OK()).
		Bool("started", s.Started).
		Bool("finished", s.Finished).
		Int64("bytesTransferred", s.BytesTransferred).
		Object("body", r.Body())
}
