package model

import (
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/frankli0324/go-http-message/internal/body"
)

// PreparedRequest is a request flattened for handing over to a transport:
// the URL is parsed, Host and Content-Length are lifted out of the headers
// and GetBody yields the payload.
type PreparedRequest struct {
	*Request

	U          *url.URL
	GetBody    func() (io.ReadCloser, error)
	Header     http.Header
	HeaderHost string

	// ContentLength is -1 when unknown.
	ContentLength int64
	// Replayable reports whether GetBody can be called more than once.
	Replayable bool
}

// Prepare consumes the body of r. Buffered bodies can be replayed through
// GetBody, streams are handed out once.
func (r *Request) Prepare() (*PreparedRequest, error) {
	u, err := r.ParsedURL()
	if err != nil {
		return nil, err
	}

	all := r.AllHeaders()
	host := u.Host
	cl := int64(-1)
	// user defined headers has higher priority
	if v, ok := all.Get("Host"); ok && v != "" {
		host = v
	}
	if v, ok := all.Get("Content-Length"); ok {
		if v, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			cl = v
		}
	}
	all.Delete("Host").Delete("Content-Length")
	if host == "" {
		return nil, url.InvalidHostError("empty host")
	}

	pr := &PreparedRequest{
		Request:       r,
		U:             u,
		Header:        all.HTTPHeader(),
		HeaderHost:    host,
		ContentLength: cl,
	}
	if err := pr.updateBody(r.Body()); err != nil {
		return nil, err
	}
	return pr, nil
}

// should only be called once at [Request.Prepare]
func (r *PreparedRequest) updateBody(b *body.Body) error {
	if !b.HasBody() {
		r.ContentLength, r.Replayable = 0, true
		r.GetBody = func() (io.ReadCloser, error) {
			return http.NoBody, nil
		}
		return nil
	}
	if !b.Buffered() {
		rc, err := b.Stream()
		if err != nil {
			return err
		}
		once := atomic.Bool{}
		r.GetBody = func() (io.ReadCloser, error) {
			if once.CompareAndSwap(false, true) {
				return rc, nil
			}
			return nil, http.ErrBodyReadAfterClose
		}
		return nil
	}

	// keep a private copy to replay from and mark the original used
	tmpl, err := b.Clone()
	if err != nil {
		return err
	}
	if _, err := b.Stream(); err != nil {
		return err
	}
	if r.ContentLength < 0 {
		r.ContentLength = b.Len()
	}
	r.Replayable = true
	r.GetBody = func() (io.ReadCloser, error) {
		c, err := tmpl.Clone()
		if err != nil {
			return nil, err
		}
		return c.Stream()
	}
	return nil
}
