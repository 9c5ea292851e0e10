package adapter

import (
	"context"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/frankli0324/go-http-message/internal/headers"
	"github.com/frankli0324/go-http-message/internal/model"
)

// FromHTTPRequest wraps a request received by a net/http server. The body
// is streamed and metered, the trailer resolves once the body was read in
// full, and the request aborts when r's context ends before it finished.
//
// Headers are taken as received, no defaults are derived for them.
func FromHTTPRequest(r *http.Request, opts Options) (*model.Request, error) {
	u := *r.URL
	if u.Host == "" {
		u.Host = r.Host
	}
	if u.Scheme == "" {
		u.Scheme = "http"
		if r.TLS != nil {
			u.Scheme = "https"
		}
	}

	h, err := headers.New(r.Header)
	if err != nil {
		return nil, err
	}
	if r.Host != "" && !h.Has("Host") {
		h.Set("Host", r.Host)
	}

	trailer := model.NewTrailer()
	resolve := func() {
		th, _ := headers.New(r.Trailer)
		trailer.Resolve(th)
	}

	var payload any
	var m *meter
	if r.Body != nil && r.Body != http.NoBody {
		m = newMeter(r.Body, nil, requestPhase, resolve)
		payload = m
	} else {
		resolve()
	}

	log := opts.logger()
	req, err := model.NewRequest(u.String(), model.RequestOptions{
		Method:             r.Method,
		Body:               payload,
		Headers:            h,
		Trailer:            trailer,
		Connection:         connectionOf(r),
		OmitDefaultHeaders: true,
		MaxBufferSize:      opts.MaxBufferSize,
		Logger:             &log,
	})
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.msg = req
	} else {
		// nothing to transfer, the request is complete as received
		m = newMeter(http.NoBody, req, requestPhase, nil)
		m.start()
		m.end()
	}

	context.AfterFunc(r.Context(), func() {
		if req.Abort() {
			log.Debug().Str("url", req.URL()).Msg("adapter: request context done before the body was read")
		}
		req.MarkClosed()
	})
	return req, nil
}

func connectionOf(r *http.Request) *model.Connection {
	c := &model.Connection{Encrypted: r.TLS != nil}
	c.RemoteAddr, c.RemotePort = splitAddr(r.RemoteAddr)
	if addr, ok := r.Context().Value(http.LocalAddrContextKey).(net.Addr); ok {
		c.LocalAddr, c.LocalPort = splitAddr(addr.String())
	}
	return c
}

func splitAddr(addr string) (string, int) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 0
	}
	p, _ := strconv.Atoi(port)
	return host, p
}

// WriteResponse writes res to w: headers including those derived from the
// body, the status, the streamed body and, once the body is written, the
// trailer waited for with ctx.
func WriteResponse(ctx context.Context, w http.ResponseWriter, res *model.Response) error {
	dst := w.Header()
	for k, v := range res.AllHeaders().Entries() {
		dst.Add(k, v)
	}
	rc, err := res.Stream()
	if err != nil {
		return err
	}
	body := newMeter(rc, res, responsePhase, nil)
	defer body.Close()

	body.start()
	w.WriteHeader(res.Status())
	if _, err := io.Copy(w, body); err != nil {
		return err
	}
	body.end()

	th, err := res.Trailer().Wait(ctx)
	if err != nil {
		return err
	}
	for k, v := range th.Entries() {
		dst.Add(http.TrailerPrefix+k, v)
	}
	return nil
}
