package message

import (
	"github.com/frankli0324/go-http-message/internal/adapter"
	"github.com/frankli0324/go-http-message/internal/body"
	"github.com/frankli0324/go-http-message/internal/errs"
	"github.com/frankli0324/go-http-message/internal/headers"
	"github.com/frankli0324/go-http-message/internal/model"
	"github.com/frankli0324/go-http-message/internal/signal"
)

type Headers = headers.Headers

type Body = body.Body
type BodyOptions = body.Options
type BodyKind = body.Kind
type BodyState = body.State
type BodySnapshot = body.Snapshot
type HeaderSource = body.HeaderSource

type Request = model.Request
type RequestOptions = model.RequestOptions
type RequestSnapshot = model.RequestSnapshot
type PreparedRequest = model.PreparedRequest
type Connection = model.Connection
type Response = model.Response
type ResponseOptions = model.ResponseOptions
type ResponseSnapshot = model.ResponseSnapshot
type Trailer = model.Trailer
type Event = model.Event
type HTTPError = model.HTTPError

type Signal = signal.Signal
type SignalEvent = signal.Event

type AdapterOptions = adapter.Options

const (
	KindEmpty  = body.KindEmpty
	KindText   = body.KindText
	KindBinary = body.KindBinary
	KindStream = body.KindStream

	Unused    = body.Unused
	Used      = body.Used
	Destroyed = body.Destroyed
)

const (
	EventHeaders    = model.EventHeaders
	EventBody       = model.EventBody
	EventTrailers   = model.EventTrailers
	EventStarted    = model.EventStarted
	EventFinished   = model.EventFinished
	EventProgress   = model.EventProgress
	EventAbort      = model.EventAbort
	EventConnection = model.EventConnection
	EventClosed     = model.EventClosed

	SignalAbort           = signal.Abort
	SignalRequestStarted  = signal.RequestStarted
	SignalRequestBytes    = signal.RequestBytes
	SignalRequestEnded    = signal.RequestEnded
	SignalResponseStarted = signal.ResponseStarted
	SignalResponseBytes   = signal.ResponseBytes
	SignalResponseEnded   = signal.ResponseEnded
)

const (
	CodeAbort       = model.CodeAbort
	CodeTimeout     = model.CodeTimeout
	CodeUnavailable = model.CodeUnavailable
)

var (
	NewHeaders      = headers.New
	FromPairs       = headers.FromPairs
	NewBody         = body.New
	NewRequest      = model.NewRequest
	FromRequest     = model.FromRequest
	NewResponse     = model.NewResponse
	NewTrailer      = model.NewTrailer
	ResolvedTrailer = model.ResolvedTrailer
	NewSignal       = signal.New
	NewHTTPError    = model.NewHTTPError
)

var (
	FromHTTPRequest  = adapter.FromHTTPRequest
	ToHTTPRequest    = adapter.ToHTTPRequest
	FromHTTPResponse = adapter.FromHTTPResponse
	WriteResponse    = adapter.WriteResponse
	RoundTrip        = adapter.RoundTrip
)

var (
	ErrBodyUsed            = errs.ErrBodyUsed
	ErrBodyDestroyed       = errs.ErrBodyDestroyed
	ErrUnsupportedPayload  = errs.ErrUnsupportedPayload
	ErrUnsupportedHeaders  = errs.ErrUnsupportedHeaders
	ErrBufferLimit         = errs.ErrBufferLimit
	ErrMalformedHeaderList = errs.ErrMalformedHeaderList
	ErrInvalidHeader       = errs.ErrInvalidHeader
	ErrInvalidState        = errs.ErrInvalidState
	ErrAborted             = errs.ErrAborted
)
