package body

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
)

type Kind int

const (
	KindEmpty Kind = iota
	KindText
	KindBinary
	KindStream
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindText:
		return "text"
	case KindBinary:
		return "binary"
	case KindStream:
		return "stream"
	}
	return "unknown"
}

// payload is the shape specific part of a [Body]. A payload is handed out
// at most once by its Body, except for the empty payload which is stateless.
type payload interface {
	kind() Kind
	// size is the payload length in bytes, -1 if unknown
	size() int64
	bytes(ctx context.Context, limit int64) ([]byte, error)
	reader() io.ReadCloser
	// split returns two payloads each yielding the full content, the first
	// replaces the receiver.
	split() (payload, payload)
	close() error
}

type emptyPayload struct{}

func (emptyPayload) kind() Kind  { return KindEmpty }
func (emptyPayload) size() int64 { return 0 }
func (emptyPayload) bytes(context.Context, int64) ([]byte, error) {
	return []byte{}, nil
}
func (emptyPayload) reader() io.ReadCloser       { return http.NoBody }
func (p emptyPayload) split() (payload, payload) { return p, p }
func (emptyPayload) close() error                { return nil }

type textPayload string

func (textPayload) kind() Kind    { return KindText }
func (p textPayload) size() int64 { return int64(len(p)) }
func (p textPayload) bytes(context.Context, int64) ([]byte, error) {
	return []byte(p), nil
}
func (p textPayload) reader() io.ReadCloser {
	return io.NopCloser(strings.NewReader(string(p)))
}
func (p textPayload) split() (payload, payload) { return p, p }
func (textPayload) close() error                { return nil }

type binaryPayload []byte

func (binaryPayload) kind() Kind    { return KindBinary }
func (p binaryPayload) size() int64 { return int64(len(p)) }
func (p binaryPayload) bytes(context.Context, int64) ([]byte, error) {
	return p, nil
}
func (p binaryPayload) reader() io.ReadCloser {
	return io.NopCloser(bytes.NewReader(p))
}

// the clone gets its own copy so a caller mutating the slice returned by
// Bytes on one side cannot be observed on the other
func (p binaryPayload) split() (payload, payload) {
	return p, binaryPayload(bytes.Clone(p))
}
func (binaryPayload) close() error { return nil }

type streamPayload struct {
	rc io.ReadCloser
}

func (streamPayload) kind() Kind  { return KindStream }
func (streamPayload) size() int64 { return -1 }
func (p streamPayload) bytes(ctx context.Context, limit int64) ([]byte, error) {
	return drain(ctx, p.rc, limit)
}
func (p streamPayload) reader() io.ReadCloser { return p.rc }
func (p streamPayload) split() (payload, payload) {
	a, b := tee(p.rc)
	return streamPayload{a}, streamPayload{b}
}
func (p streamPayload) close() error { return p.rc.Close() }
