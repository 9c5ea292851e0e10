package body

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/frankli0324/go-http-message/internal/errs"
	"github.com/frankli0324/go-http-message/internal/headers"
)

// HeaderSource is implemented by streams declaring their own headers,
// e.g. an encoder that knows its content type. Those headers are merged
// into the derived headers of the body.
type HeaderSource interface {
	Header() http.Header
}

// New creates a body from value:
//
//	nil                                   empty
//	string, *strings.Reader               text
//	[]byte, *bytes.Buffer, *bytes.Reader  binary
//	io.Reader                             stream
//	*Body                                 a clone of the body
//	anything else                         JSON encoded text
//
// Readers of the bytes and strings packages are snapshotted, reading the
// body does not advance them.
func New(value any, opts Options) (*Body, error) {
	if v, ok := native(value); ok {
		value = v
	}

	b := &Body{
		headers:       &headers.Headers{},
		maxBufferSize: opts.MaxBufferSize,
		log:           logger(opts.Logger),
	}
	contentType := ""

	switch v := value.(type) {
	case nil:
		b.payload = emptyPayload{}
	case *Body:
		if v == nil {
			b.payload = emptyPayload{}
			break
		}
		c, err := v.Clone()
		if err != nil {
			return nil, err
		}
		if opts.MaxBufferSize != 0 {
			c.maxBufferSize = opts.MaxBufferSize
		}
		if opts.Logger != nil {
			c.log = *opts.Logger
		}
		return c, nil
	case string:
		b.payload, contentType = textPayload(v), "text/plain"
	case *strings.Reader:
		snapshot := *v
		s, _ := io.ReadAll(&snapshot)
		b.payload, contentType = textPayload(s), "text/plain"
	case []byte:
		b.payload, contentType = binaryPayload(v), "application/octet-stream"
	case *bytes.Buffer:
		b.payload, contentType = binaryPayload(v.Bytes()), "application/octet-stream"
	case *bytes.Reader:
		snapshot := *v
		s, _ := io.ReadAll(&snapshot)
		b.payload, contentType = binaryPayload(s), "application/octet-stream"
	case io.Reader:
		rc, ok := v.(io.ReadCloser)
		if !ok {
			rc = io.NopCloser(v)
		}
		b.payload, contentType = streamPayload{rc}, "application/octet-stream"
	default:
		str, err := encodeJSON(v)
		if err != nil {
			return nil, errs.ErrUnsupportedPayload.Wrap(fmt.Errorf("%T: %w", value, err))
		}
		b.payload, contentType = textPayload(str), "application/json"
	}

	b.kind, b.size = b.payload.kind(), b.payload.size()
	if !opts.OmitDefaultHeaders && b.kind != KindEmpty {
		b.deriveHeaders(opts.Headers, contentType)
		if src, ok := value.(HeaderSource); ok {
			for k, v := range src.Header() {
				if !opts.Headers.Has(k) {
					b.headers.Set(k, v...)
				}
			}
		}
	}

	b.contentType = opts.Headers.Value("Content-Type")
	if b.contentType == "" {
		b.contentType = b.headers.Value("Content-Type")
	}
	return b, nil
}

// encodeJSON encodes v without escaping <, > and &, so the text matches
// what other JSON producers send.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (b *Body) deriveHeaders(explicit *headers.Headers, contentType string) {
	if !explicit.Has("Content-Type") {
		b.headers.Set("Content-Type", contentType)
	}
	if b.size >= 0 && !explicit.Has("Content-Length") {
		b.headers.Set("Content-Length", strconv.FormatInt(b.size, 10))
	}
}
