package model

import (
	"errors"

	"github.com/frankli0324/go-http-message/internal/headers"
)

var (
	errRequestStarted = errors.New("request already started")
	errRequestAborted = errors.New("request has been aborted")
)

// Codes carried by [HTTPError].
const (
	CodeAbort       = "EABORT"
	CodeTimeout     = "ETIMEOUT"
	CodeUnavailable = "EUNAVAILABLE"
)

// HTTPError reports the failure of a request exchange to application code.
type HTTPError struct {
	Message string
	Code    string
	Status  int

	Request  *Request
	Response *Response // nil if no response was received
	Headers  *headers.Headers

	Cause error
}

func NewHTTPError(message, code string, status int, req *Request, cause error) *HTTPError {
	return &HTTPError{Message: message, Code: code, Status: status, Request: req, Cause: cause}
}

func (e *HTTPError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error { return e.Cause }
