package errs

// Error identifies a failure kind by its message. Errors of the same kind
// compare equal under [errors.Is] regardless of the wrapped cause.
type Error struct {
	msg string
	error
}

func (e Error) Error() string {
	if e.error != nil {
		return e.msg + ": " + e.error.Error()
	}
	return e.msg
}

func (e Error) Wrap(err error) Error {
	if err == nil {
		return e
	}
	return Error{e.msg, err}
}

func (e Error) Unwrap() error {
	return e.error
}

func (e Error) Is(err error) bool {
	if err, ok := err.(Error); ok {
		return e.msg == err.msg
	}
	return false
}

func reg(msg string) Error { return Error{msg, nil} }

var (
	// body state, permanent for the instance
	ErrBodyUsed      = reg("body already used")
	ErrBodyDestroyed = reg("body is destroyed")

	// data errors, permanent for the call only
	ErrUnsupportedPayload  = reg("unsupported body type")
	ErrUnsupportedHeaders  = reg("unsupported headers type")
	ErrBufferLimit         = reg("exceeded max buffer size")
	ErrMalformedHeaderList = reg("malformed header list")
	ErrInvalidHeader       = reg("invalid header field")

	ErrInvalidState = reg("invalid state")
	ErrAborted      = reg("aborted")
)
