package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/net/http/httpguts"

	"github.com/frankli0324/go-http-message/internal/errs"
	"github.com/frankli0324/go-http-message/internal/headers"
	"github.com/frankli0324/go-http-message/internal/model"
)

// ToHTTPRequest converts req into an outgoing net/http request, consuming
// its body. The returned context of the request is cancelled when ctx is
// done, when the signal of req aborts, or when cancel is called.
//
// Trailer names declared with the Trailer header are sent with the values
// req's trailer resolves to, which is waited for after the body was sent.
func ToHTTPRequest(ctx context.Context, req *model.Request) (_ *http.Request, cancel context.CancelFunc, err error) {
	if err := req.AllHeaders().Validate(); err != nil {
		return nil, nil, err
	}
	pr, err := req.Prepare()
	if err != nil {
		return nil, nil, err
	}
	if !httpguts.ValidHostHeader(pr.HeaderHost) {
		return nil, nil, errs.ErrInvalidHeader.Wrap(fmt.Errorf("host %q", pr.HeaderHost))
	}

	ctx, cancel = req.Signal().Context(ctx)
	defer func() {
		if err != nil {
			cancel()
		}
	}()
	r, err := http.NewRequestWithContext(ctx, req.Method(), pr.U.String(), nil)
	if err != nil {
		return nil, nil, err
	}
	r.Header = pr.Header
	r.Host = pr.HeaderHost
	r.ContentLength = pr.ContentLength

	var onEOF func()
	if names := trailerNames(r.Header); len(names) > 0 {
		r.Trailer = make(http.Header, len(names))
		for _, name := range names {
			r.Trailer[name] = nil
		}
		r.Header.Del("Trailer")
		r.ContentLength = -1 // trailers require chunked encoding
		onEOF = func() {
			th, err := req.Trailer().Wait(ctx)
			if err != nil {
				return
			}
			for name := range r.Trailer {
				r.Trailer[name] = th.GetAll(name)
			}
		}
	}

	body, err := pr.GetBody()
	if err != nil {
		return nil, nil, err
	}
	if body != http.NoBody {
		r.Body = newMeter(body, req, requestPhase, onEOF)
	} else {
		r.Body = http.NoBody
		if onEOF != nil {
			onEOF()
		}
	}
	if pr.Replayable && r.Body != http.NoBody {
		r.GetBody = func() (io.ReadCloser, error) {
			rc, err := pr.GetBody()
			if err != nil {
				return nil, err
			}
			return newMeter(rc, req, requestPhase, onEOF), nil
		}
	}
	return r, cancel, nil
}

func trailerNames(h http.Header) []string {
	var names []string
	for _, v := range h.Values("Trailer") {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, http.CanonicalHeaderKey(name))
			}
		}
	}
	return names
}

// FromHTTPResponse wraps a response received by a net/http client. req is
// the request it answers, it may be nil. The body is metered and the
// trailer resolves once the body was read in full.
func FromHTTPResponse(res *http.Response, req *model.Request, opts Options) (*model.Response, error) {
	h, err := headers.New(res.Header)
	if err != nil {
		return nil, err
	}

	trailer := model.NewTrailer()
	resolve := func() {
		th, _ := headers.New(res.Trailer)
		trailer.Resolve(th)
	}
	var payload any
	var m *meter
	if res.Body != nil && res.Body != http.NoBody {
		m = newMeter(res.Body, nil, responsePhase, resolve)
		payload = m
	} else {
		resolve()
	}

	log := opts.logger()
	out, err := model.NewResponse(payload, model.ResponseOptions{
		Status:             res.StatusCode,
		StatusText:         statusText(res),
		Headers:            h,
		Trailer:            trailer,
		Request:            req,
		OmitDefaultHeaders: true,
		MaxBufferSize:      opts.MaxBufferSize,
		Logger:             &log,
	})
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.msg = out
	}
	return out, nil
}

// statusText strips the code from "200 OK".
func statusText(res *http.Response) string {
	code, text, ok := strings.Cut(res.Status, " ")
	if !ok || code != strconv.Itoa(res.StatusCode) {
		return http.StatusText(res.StatusCode)
	}
	return text
}

// RoundTrip sends req with rt, http.DefaultTransport if nil. Failures are
// reported as *model.HTTPError classified by their cause.
func RoundTrip(ctx context.Context, rt http.RoundTripper, req *model.Request, opts Options) (*model.Response, error) {
	if rt == nil {
		rt = http.DefaultTransport
	}
	log := opts.logger()

	r, cancel, err := ToHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("method", r.Method).Str("url", req.URL()).Msg("adapter: round trip")
	res, err := rt.RoundTrip(r)
	if err != nil {
		herr := classify(req, context.Cause(r.Context()), err)
		cancel()
		log.Warn().Err(err).Str("code", herr.Code).Msg("adapter: round trip failed")
		return nil, herr
	}

	if body := res.Body; body != nil && body != http.NoBody {
		res.Body = bodyCloser{body, func() error {
			defer cancel()
			return body.Close()
		}}
	} else {
		cancel()
	}
	out, err := FromHTTPResponse(res, req, opts)
	if err != nil {
		res.Body.Close()
		return nil, err
	}
	return out, nil
}

func classify(req *model.Request, cause, err error) *model.HTTPError {
	var nerr net.Error
	switch {
	case req.Aborted() || errors.Is(cause, errs.ErrAborted):
		return model.NewHTTPError("request aborted", model.CodeAbort, 499, req, err)
	case errors.Is(cause, context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &nerr) && nerr.Timeout():
		return model.NewHTTPError("request timed out", model.CodeTimeout, 408, req, err)
	}
	return model.NewHTTPError("unable to connect", model.CodeUnavailable, 502, req, err)
}
