// package body implements the message payload: a single-consumption
// resource over an empty, text, binary or streamed representation.
package body

import (
	"context"
	"io"
	"mime"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"

	"github.com/frankli0324/go-http-message/internal/errs"
	"github.com/frankli0324/go-http-message/internal/headers"
)

type State int

const (
	Unused State = iota
	Used
	Destroyed
)

func (s State) String() string {
	switch s {
	case Unused:
		return "unused"
	case Used:
		return "used"
	case Destroyed:
		return "destroyed"
	}
	return "unknown"
}

type Options struct {
	// Headers set explicitly by the caller. Derived defaults are only
	// generated for names missing here, Headers itself is never modified.
	Headers *headers.Headers

	// OmitDefaultHeaders skips deriving Content-Type and Content-Length.
	OmitDefaultHeaders bool

	// MaxBufferSize bounds how much of a stream Bytes and Text buffer,
	// 0 means no bound.
	MaxBufferSize int64

	Logger *zerolog.Logger
}

type Body struct {
	mu      sync.Mutex
	state   State
	payload payload // nil once used or destroyed

	kind          Kind
	size          int64
	headers       *headers.Headers
	contentType   string
	maxBufferSize int64
	log           zerolog.Logger
}

func logger(l *zerolog.Logger) zerolog.Logger {
	if l == nil {
		return zerolog.Nop()
	}
	return *l
}

// Headers returns the headers derived from the payload.
func (b *Body) Headers() *headers.Headers { return b.headers }

func (b *Body) Kind() Kind { return b.kind }

func (b *Body) HasBody() bool { return b.kind != KindEmpty }

// Buffered reports whether reading the body leaves no external resource
// exhausted, that is, the payload is held in memory.
func (b *Body) Buffered() bool { return b.kind != KindStream }

// Len returns the payload size, -1 for streams.
func (b *Body) Len() int64 { return b.size }

func (b *Body) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Body) Used() bool { return b.State() == Used }

func (b *Body) Destroyed() bool { return b.State() == Destroyed }

func (b *Body) check() error {
	switch b.state {
	case Used:
		return errs.ErrBodyUsed
	case Destroyed:
		return errs.ErrBodyDestroyed
	}
	return nil
}

// take hands out the payload and marks the body used. The empty payload
// has nothing to consume, it is handed out any number of times.
func (b *Body) take() (payload, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(); err != nil {
		return nil, err
	}
	p := b.payload
	if p.kind() != KindEmpty {
		b.payload = nil
		b.state = Used
	}
	return p, nil
}

// Bytes consumes the body and returns its content, bounded by the
// configured MaxBufferSize.
func (b *Body) Bytes(ctx context.Context) ([]byte, error) {
	return b.Buffer(ctx, b.maxBufferSize)
}

// Buffer is like Bytes with an explicit bound, limit <= 0 means none.
// The bound only applies to streams.
func (b *Body) Buffer(ctx context.Context, limit int64) ([]byte, error) {
	p, err := b.take()
	if err != nil {
		return nil, err
	}
	return p.bytes(ctx, limit)
}

// Text consumes the body and returns it as a string. Binary and streamed
// content is decoded with the charset of the Content-Type, if one other
// than UTF-8 is declared.
func (b *Body) Text(ctx context.Context) (string, error) {
	p, err := b.take()
	if err != nil {
		return "", err
	}
	if t, ok := p.(textPayload); ok {
		return string(t), nil
	}
	raw, err := p.bytes(ctx, b.maxBufferSize)
	if err != nil {
		return "", err
	}
	if enc := lookupEncoding(b.contentType); enc != nil {
		decoded, err := enc.NewDecoder().Bytes(raw)
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	}
	return string(raw), nil
}

func lookupEncoding(contentType string) encoding.Encoding {
	if contentType == "" {
		return nil
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil || params["charset"] == "" {
		return nil
	}
	enc, name := charset.Lookup(params["charset"])
	if enc == nil || name == "utf-8" {
		return nil
	}
	return enc
}

// JSON consumes the body and decodes it into v. Decoding failures are
// returned as is, they do not affect the state of the body.
func (b *Body) JSON(ctx context.Context, v any) error {
	text, err := b.Text(ctx)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(text), v)
}

// Stream consumes the body and returns a reader over its content. For
// streams the caller owns the returned reader and must close it.
func (b *Body) Stream() (io.ReadCloser, error) {
	p, err := b.take()
	if err != nil {
		return nil, err
	}
	return p.reader(), nil
}

// Clone returns an independent body with the same content. A stream is
// split so the body and its clone can each be read in full.
func (b *Body) Clone() (*Body, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(); err != nil {
		return nil, err
	}
	keep, clone := b.payload.split()
	b.payload = keep
	return &Body{
		payload:       clone,
		kind:          b.kind,
		size:          b.size,
		headers:       b.headers.Clone(),
		contentType:   b.contentType,
		maxBufferSize: b.maxBufferSize,
		log:           b.log,
	}, nil
}

// Destroy makes the body permanently unreadable and cancels a stream that
// has not been handed out yet. It is safe to call more than once.
func (b *Body) Destroy() error {
	b.mu.Lock()
	if b.state == Destroyed {
		b.mu.Unlock()
		return nil
	}
	p := b.payload
	b.payload = nil
	b.state = Destroyed
	b.mu.Unlock()

	b.log.Debug().Stringer("kind", b.kind).Msg("body destroyed")
	if p == nil {
		return nil
	}
	if err := p.close(); err != nil {
		b.log.Warn().Err(err).Msg("body: error cancelling stream")
		return err
	}
	return nil
}

type Snapshot struct {
	Kind     string           `json:"kind"`
	State    string           `json:"state"`
	BodyUsed bool             `json:"bodyUsed"`
	HasBody  bool             `json:"hasBody"`
	Buffered bool             `json:"buffered"`
	Length   int64            `json:"length"`
	Headers  *headers.Headers `json:"headers"`
}

// Snapshot describes the body without reading it.
func (b *Body) Snapshot() Snapshot {
	state := b.State()
	return Snapshot{
		Kind:     b.kind.String(),
		State:    state.String(),
		BodyUsed: state == Used,
		HasBody:  b.HasBody(),
		Buffered: b.Buffered(),
		Length:   b.size,
		Headers:  b.headers,
	}
}

func (b *Body) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Snapshot())
}

func (b *Body) MarshalZerologObject(e *zerolog.Event) {
	state := b.State()
	e.Str("kind", b.kind.String()).
		Str("state", state.String()).
		Bool("buffered", b.Buffered()).
		Int64("length", b.size)
}
